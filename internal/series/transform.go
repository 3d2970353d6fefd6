package series

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// NaturalBase selects the natural logarithm in LogScale.
const NaturalBase = math.E

// ErrInvalidBase is returned for logarithm bases that are not positive or are
// equal to one.
var ErrInvalidBase = errors.New("series: invalid log base")

// TransformFunc maps one point to another. It must not depend on the order
// in which points are visited.
type TransformFunc func(Point) Point

// Identity returns its argument unchanged.
func Identity(p Point) Point {
	return p
}

// LogScale returns a transform replacing Y with its logarithm in the given
// base. X is passed through. Non-positive Y values yield NaN or -Inf rather
// than an error; Window skips them.
func LogScale(base float64) (TransformFunc, error) {
	if err := ValidateBase(base); err != nil {
		return nil, err
	}
	if base == NaturalBase {
		return func(p Point) Point {
			return Point{X: p.X, Y: math.Log(p.Y)}
		}, nil
	}
	d := math.Log(base)
	return func(p Point) Point {
		return Point{X: p.X, Y: math.Log(p.Y) / d}
	}, nil
}

func ValidateBase(base float64) error {
	if math.IsNaN(base) || math.IsInf(base, 0) || base <= 0 || base == 1 {
		return fmt.Errorf("%w: %g", ErrInvalidBase, base)
	}
	return nil
}

// ParseBase parses a log base. "e" and "ln" select NaturalBase.
func ParseBase(s string) (float64, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "e", "ln":
		return NaturalBase, nil
	}
	base, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidBase, s)
	}
	if err := ValidateBase(base); err != nil {
		return 0, err
	}
	return base, nil
}
