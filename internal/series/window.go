package series

import (
	"fmt"
	"math"
)

// Window is the bounding box of one or more series in data space.
type Window struct {
	MinX, MaxX, MinY, MaxY float64
}

func (w Window) SpanX() float64 {
	return w.MaxX - w.MinX
}

func (w Window) SpanY() float64 {
	return w.MaxY - w.MinY
}

// Degenerate reports whether either axis has zero span, in which case no
// scale factor onto a canvas exists.
func (w Window) Degenerate() bool {
	return w.SpanX() == 0 || w.SpanY() == 0
}

// Union returns the smallest window containing both w and o.
func (w Window) Union(o Window) Window {
	return Window{
		MinX: math.Min(w.MinX, o.MinX),
		MaxX: math.Max(w.MaxX, o.MaxX),
		MinY: math.Min(w.MinY, o.MinY),
		MaxY: math.Max(w.MaxY, o.MaxY),
	}
}

func (w Window) Contains(p Point) bool {
	return p.X >= w.MinX && p.X <= w.MaxX && p.Y >= w.MinY && p.Y <= w.MaxY
}

// Expand gives each zero-width axis a span of at least minSpan centered on
// its value. Axes with a non-zero span are left alone. Far from zero the span
// grows with the magnitude so the new bounds stay distinct.
func (w Window) Expand(minSpan float64) Window {
	if w.SpanX() == 0 {
		w.MinX, w.MaxX = widen(w.MinX, minSpan)
	}
	if w.SpanY() == 0 {
		w.MinY, w.MaxY = widen(w.MinY, minSpan)
	}
	return w
}

// relativeSpan is the fraction of a value's magnitude used as its span when
// that is larger than the requested minimum.
const relativeSpan = 1e-9

func widen(v, minSpan float64) (lo, hi float64) {
	half := max(minSpan, math.Abs(v)*relativeSpan) / 2
	lo = max(v-half, -math.MaxFloat64)
	hi = min(v+half, math.MaxFloat64)
	if hi-lo == 0 {
		lo, hi = math.Nextafter(v, math.Inf(-1)), math.Nextafter(v, math.Inf(1))
	}
	return lo, hi
}

func (w Window) String() string {
	return fmt.Sprintf("x=[%g, %g] y=[%g, %g]", w.MinX, w.MaxX, w.MinY, w.MaxY)
}

// Finite reports whether both coordinates of p are neither NaN nor infinite.
func Finite(p Point) bool {
	return !math.IsNaN(p.X) && !math.IsInf(p.X, 0) && !math.IsNaN(p.Y) && !math.IsInf(p.Y, 0)
}
