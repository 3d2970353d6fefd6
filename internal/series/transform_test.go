package series

import (
	"errors"
	"math"
	"testing"
)

func TestLogScale(t *testing.T) {
	for _, tc := range []struct {
		base     float64
		y        float64
		expected float64
	}{
		{NaturalBase, math.E, 1},
		{NaturalBase, 1, 0},
		{10, 1000, 3},
		{2, 8, 3},
		{0.5, 4, -2},
	} {
		f, err := LogScale(tc.base)
		if err != nil {
			t.Fatalf("base %g rejected: %v", tc.base, err)
		}
		p := f(Point{X: 7, Y: tc.y})
		if p.X != 7 {
			t.Errorf("expected X to pass through, got %g", p.X)
		}
		if math.Abs(p.Y-tc.expected) > 1e-12 {
			t.Errorf("log_%g(%g): expected %g, got %g", tc.base, tc.y, tc.expected, p.Y)
		}
	}
}

func TestLogScaleDomainErrors(t *testing.T) {
	f, err := LogScale(10)
	if err != nil {
		t.Fatalf("base 10 rejected: %v", err)
	}
	if p := f(Point{Y: 0}); !math.IsInf(p.Y, -1) {
		t.Errorf("expected -Inf for log(0), got %g", p.Y)
	}
	if p := f(Point{Y: -1}); !math.IsNaN(p.Y) {
		t.Errorf("expected NaN for log(-1), got %g", p.Y)
	}
}

func TestLogScaleInvalidBase(t *testing.T) {
	for _, base := range []float64{0, -2, 1, math.NaN(), math.Inf(1)} {
		if _, err := LogScale(base); !errors.Is(err, ErrInvalidBase) {
			t.Errorf("base %g: expected ErrInvalidBase, got %v", base, err)
		}
	}
}

func TestParseBase(t *testing.T) {
	for _, tc := range []struct {
		in       string
		expected float64
		ok       bool
	}{
		{"e", NaturalBase, true},
		{"LN", NaturalBase, true},
		{"10", 10, true},
		{" 2.5 ", 2.5, true},
		{"1", 0, false},
		{"0", 0, false},
		{"-3", 0, false},
		{"ten", 0, false},
	} {
		base, err := ParseBase(tc.in)
		if tc.ok && err != nil {
			t.Errorf("%q: expected success, got %v", tc.in, err)
		} else if !tc.ok && !errors.Is(err, ErrInvalidBase) {
			t.Errorf("%q: expected ErrInvalidBase, got %v", tc.in, err)
		} else if base != tc.expected {
			t.Errorf("%q: expected %g, got %g", tc.in, tc.expected, base)
		}
	}
}
