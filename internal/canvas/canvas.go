// Package canvas maps data-space points onto a fixed pixel canvas.
package canvas

import (
	"errors"
	"fmt"

	"grapt/internal/series"
)

const (
	DefaultWidth   = 640
	DefaultHeight  = 480
	DefaultPadding = 10
)

var (
	ErrInvalidCanvas = errors.New("canvas: invalid dimensions")
	// ErrDegenerateWindow is returned when a window has zero span on an axis,
	// leaving no scale factor for that axis.
	ErrDegenerateWindow = errors.New("canvas: degenerate window")
)

// Canvas is the pixel area a plot is drawn on. Padding pixels are reserved on
// all four edges.
type Canvas struct {
	Width   int
	Height  int
	Padding int
}

func Default() Canvas {
	return Canvas{Width: DefaultWidth, Height: DefaultHeight, Padding: DefaultPadding}
}

func (c Canvas) Validate() error {
	switch {
	case c.Width <= 0:
		return fmt.Errorf("%w: width %d", ErrInvalidCanvas, c.Width)
	case c.Height <= 0:
		return fmt.Errorf("%w: height %d", ErrInvalidCanvas, c.Height)
	case c.Padding < 0:
		return fmt.Errorf("%w: padding %d", ErrInvalidCanvas, c.Padding)
	case 2*c.Padding >= c.Width || 2*c.Padding >= c.Height:
		return fmt.Errorf("%w: padding %d leaves no room in %dx%d", ErrInvalidCanvas, c.Padding, c.Width, c.Height)
	}
	return nil
}

// PlotWidth is the horizontal extent left once padding is removed.
func (c Canvas) PlotWidth() int {
	return c.Width - 2*c.Padding
}

// PlotHeight is the vertical extent left once padding is removed.
func (c Canvas) PlotHeight() int {
	return c.Height - 2*c.Padding
}

func (c Canvas) String() string {
	return fmt.Sprintf("%dx%d+%d", c.Width, c.Height, c.Padding)
}

// Mapper is the affine transform from one data window onto one canvas. Pixel
// rows grow downward, so the Y axis is flipped.
type Mapper struct {
	window series.Window
	canvas Canvas
	spanX  float64
	spanY  float64
}

func NewMapper(w series.Window, c Canvas) (*Mapper, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if w.Degenerate() {
		return nil, fmt.Errorf("%w: %v", ErrDegenerateWindow, w)
	}
	return &Mapper{
		window: w,
		canvas: c,
		spanX:  w.SpanX(),
		spanY:  w.SpanY(),
	}, nil
}

func (m *Mapper) Window() series.Window {
	return m.window
}

func (m *Mapper) Canvas() Canvas {
	return m.canvas
}

// ScaleX is the number of pixels per data unit along X.
func (m *Mapper) ScaleX() float64 {
	return float64(m.canvas.PlotWidth()) / m.spanX
}

// ScaleY is the number of pixels per data unit along Y.
func (m *Mapper) ScaleY() float64 {
	return float64(m.canvas.PlotHeight()) / m.spanY
}

// Project returns the pixel position of p. Points inside the window land
// inside [Padding, Width-Padding] x [Padding, Height-Padding], with the
// window corners on the inset exactly.
func (m *Mapper) Project(p series.Point) (x, y float64) {
	pad := float64(m.canvas.Padding)
	x = (p.X-m.window.MinX)/m.spanX*float64(m.canvas.PlotWidth()) + pad
	y = float64(m.canvas.Height) - (p.Y-m.window.MinY)/m.spanY*float64(m.canvas.PlotHeight()) - pad
	return x, y
}

// Project maps a single point without keeping a Mapper around.
func Project(p series.Point, w series.Window, c Canvas) (x, y float64, err error) {
	m, err := NewMapper(w, c)
	if err != nil {
		return 0, 0, err
	}
	x, y = m.Project(p)
	return x, y, nil
}
