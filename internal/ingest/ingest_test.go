package ingest

import (
	"errors"
	"strings"
	"testing"

	"grapt/internal/series"
)

func TestReadTwoColumns(t *testing.T) {
	s, err := Read(strings.NewReader("1 2\n2 4\n3 9\n"), "stdin", Options{})
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	expected := []series.Point{{1, 2}, {2, 4}, {3, 9}}
	if s.Len() != len(expected) {
		t.Fatalf("expected %d points, got %d", len(expected), s.Len())
	}
	for i, p := range s.All() {
		if p != expected[i] {
			t.Errorf("point %d: expected %v, got %v", i, expected[i], p)
		}
	}
	w, err := s.Window()
	if err != nil {
		t.Fatalf("window failed: %v", err)
	}
	if w != (series.Window{MinX: 1, MaxX: 3, MinY: 2, MaxY: 9}) {
		t.Errorf("unexpected window %v", w)
	}
}

func TestReadOneColumn(t *testing.T) {
	s, err := Read(strings.NewReader("5\n5\n5\n"), "stdin", Options{})
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	for i, p := range s.All() {
		if p.X != float64(i) || p.Y != 5 {
			t.Errorf("point %d: expected (%d, 5), got %v", i, i, p)
		}
	}
	w, _ := s.Window()
	if w.SpanY() != 0 {
		t.Errorf("expected zero Y span, got %g", w.SpanY())
	}
}

func TestReadWhitespace(t *testing.T) {
	s, err := Read(strings.NewReader("  1\t2  \n-3.5e1   4\r\n"), "tabs", Options{})
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if s.At(1) != (series.Point{X: -35, Y: 4}) {
		t.Errorf("unexpected point %v", s.At(1))
	}
}

func TestReadErrors(t *testing.T) {
	for _, tc := range []struct {
		input string
		line  int
		err   error
	}{
		{"1 2\n3\n", 2, ErrColumnMismatch},
		{"1\n2 3\n", 2, ErrColumnMismatch},
		{"1 2\n\n3 4\n", 2, ErrMalformed},
		{"abc\n", 1, ErrMalformed},
		{"1 2 3\n", 1, ErrMalformed},
		{"1 x\n", 1, ErrMalformed},
	} {
		_, err := Read(strings.NewReader(tc.input), "in", Options{})
		if !errors.Is(err, tc.err) {
			t.Errorf("%q: expected %v, got %v", tc.input, tc.err, err)
			continue
		}
		var perr *ParseError
		if !errors.As(err, &perr) {
			t.Errorf("%q: expected a ParseError, got %T", tc.input, err)
		} else if perr.Line != tc.line {
			t.Errorf("%q: expected failure on line %d, got %d", tc.input, tc.line, perr.Line)
		}
	}
}

func TestReadMaxPoints(t *testing.T) {
	_, err := Read(strings.NewReader("1\n2\n3\n"), "in", Options{MaxPoints: 2})
	if !errors.Is(err, series.ErrCapacity) {
		t.Errorf("expected ErrCapacity, got %v", err)
	}
}

func TestReadChainResetsIndex(t *testing.T) {
	chain, err := ReadChain([]Input{
		{Name: "a", Reader: strings.NewReader("1\n2\n")},
		{Name: "b", Reader: strings.NewReader("7\n8\n9\n")},
	}, Options{})
	if err != nil {
		t.Fatalf("read chain failed: %v", err)
	}
	if chain.Len() != 2 {
		t.Fatalf("expected 2 series, got %d", chain.Len())
	}
	if chain.At(1).At(0).X != 0 || chain.At(1).At(2).X != 2 {
		t.Errorf("expected index X to restart for each series, got %v", chain.At(1).Points())
	}
	if chain.At(1).Name() != "b" {
		t.Errorf("expected series named b, got %q", chain.At(1).Name())
	}
}

func TestReadChainAbortsOnError(t *testing.T) {
	chain, err := ReadChain([]Input{
		{Name: "good", Reader: strings.NewReader("1\n")},
		{Name: "bad", Reader: strings.NewReader("1 2\n3\n")},
	}, Options{})
	if chain != nil {
		t.Errorf("expected no partial chain")
	}
	var perr *ParseError
	if !errors.As(err, &perr) || perr.Source != "bad" {
		t.Errorf("expected a parse error from input bad, got %v", err)
	}
}
