package series

import (
	"errors"
	"math"
	"testing"
)

func makeTestSeries(t *testing.T, n int) *Series {
	t.Helper()
	s := New("test")
	for i := n; i > 0; i-- {
		if err := s.Append(Point{X: float64(i), Y: float64(i) * float64(i)}); err != nil {
			t.Fatalf("append %d failed: %v", i, err)
		}
	}
	return s
}

func TestNewSeriesIsEmpty(t *testing.T) {
	s := New("empty")
	if s.Len() != 0 {
		t.Errorf("expected initial length 0, got %d", s.Len())
	}
	if s.Cap() != 0 {
		t.Errorf("expected initial capacity 0, got %d", s.Cap())
	}
	if _, err := s.Window(); !errors.Is(err, ErrEmpty) {
		t.Errorf("expected ErrEmpty from empty window, got %v", err)
	}
}

func TestAppendPreservesOrder(t *testing.T) {
	n := 10000
	s := makeTestSeries(t, n)
	if s.Len() != n {
		t.Errorf("expected %d points, got %d", n, s.Len())
	}
	if s.Cap() < n {
		t.Errorf("expected capacity >= %d, got %d", n, s.Cap())
	}
	for i, p := range s.All() {
		want := float64(n - i)
		if p.X != want || p.Y != want*want {
			t.Fatalf("point %d: expected (%g, %g), got %v", i, want, want*want, p)
		}
	}
}

func TestAppendGrowth(t *testing.T) {
	s := New("growth")
	expected := []int{8, 8, 8, 8, 8, 8, 8, 8, 16, 16}
	for i, want := range expected {
		if err := s.Append(Point{X: float64(i)}); err != nil {
			t.Fatalf("append %d failed: %v", i, err)
		}
		if s.Cap() != want {
			t.Errorf("after %d appends expected capacity %d, got %d", i+1, want, s.Cap())
		}
		if s.Len() > s.Cap() {
			t.Errorf("length %d exceeds capacity %d", s.Len(), s.Cap())
		}
	}
}

func TestAppendLimit(t *testing.T) {
	s := New("limited")
	s.SetLimit(10)
	for i := 0; i < 10; i++ {
		if err := s.Append(Point{X: float64(i)}); err != nil {
			t.Fatalf("append %d within limit failed: %v", i, err)
		}
	}
	if s.Cap() != 10 {
		t.Errorf("expected capacity clamped to limit 10, got %d", s.Cap())
	}
	if err := s.Append(Point{}); !errors.Is(err, ErrCapacity) {
		t.Errorf("expected ErrCapacity past the limit, got %v", err)
	}
	if s.Len() != 10 {
		t.Errorf("expected failed append to leave 10 points, got %d", s.Len())
	}
}

func TestWindow(t *testing.T) {
	s := makeTestSeries(t, 10000)
	w, err := s.Window()
	if err != nil {
		t.Fatalf("window failed: %v", err)
	}
	expected := Window{MinX: 1, MaxX: 10000, MinY: 1, MaxY: 100000000}
	if w != expected {
		t.Errorf("expected window %v, got %v", expected, w)
	}
	for _, p := range s.All() {
		if !w.Contains(p) {
			t.Fatalf("window %v does not contain %v", w, p)
		}
	}
}

func TestWindowSkipsNonFinite(t *testing.T) {
	s := New("log")
	for _, p := range []Point{{0, math.Inf(-1)}, {1, 2}, {2, math.NaN()}, {3, 5}} {
		s.Append(p)
	}
	w, err := s.Window()
	if err != nil {
		t.Fatalf("window failed: %v", err)
	}
	expected := Window{MinX: 1, MaxX: 3, MinY: 2, MaxY: 5}
	if w != expected {
		t.Errorf("expected window %v, got %v", expected, w)
	}

	bad := New("bad")
	bad.Append(Point{0, math.NaN()})
	if _, err := bad.Window(); !errors.Is(err, ErrEmpty) {
		t.Errorf("expected ErrEmpty for all-NaN series, got %v", err)
	}
}

func TestCopy(t *testing.T) {
	s := makeTestSeries(t, 9)
	c := s.Copy()
	if c.Len() != s.Len() {
		t.Errorf("expected copy length %d, got %d", s.Len(), c.Len())
	}
	sw, _ := s.Window()
	cw, _ := c.Window()
	if sw != cw {
		t.Errorf("expected copy window %v, got %v", sw, cw)
	}
	c.Transform(func(p Point) Point { return Point{p.X, -p.Y} })
	if s.At(0).Y < 0 {
		t.Errorf("mutating the copy changed the source")
	}
	if New("x").Copy().Len() != 0 {
		t.Errorf("expected copy of empty series to be empty")
	}
}

func TestSortPoints(t *testing.T) {
	s := New("unsorted")
	for _, p := range []Point{{3, 0}, {1, 1}, {2, 2}, {1, 3}} {
		s.Append(p)
	}
	s.SortPoints()
	expected := []Point{{1, 1}, {1, 3}, {2, 2}, {3, 0}}
	for i, p := range s.Points() {
		if p != expected[i] {
			t.Errorf("point %d: expected %v, got %v", i, expected[i], p)
		}
	}
}

func TestReset(t *testing.T) {
	s := makeTestSeries(t, 20)
	s.Reset()
	if s.Len() != 0 || s.Cap() != 0 {
		t.Errorf("expected reset series to be empty, got len %d cap %d", s.Len(), s.Cap())
	}
}
