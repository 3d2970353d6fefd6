// Package render rasterizes a projected series chain to PNG.
package render

import (
	"fmt"
	"image/color"
	"io"

	"github.com/fogleman/gg"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"

	"grapt/internal/canvas"
	"grapt/internal/metrics"
	"grapt/internal/series"
)

const (
	defaultLineWidth = 1.0
	labelInset       = 3.0
)

var (
	backgroundColor = color.White
	labelColor      = color.NRGBA{96, 96, 96, 255}
	palette         = []color.NRGBA{
		{255, 0, 0, 255},
		{105, 115, 191, 255},
		{115, 191, 105, 255},
		{234, 184, 57, 255},
		{196, 22, 42, 255},
		{242, 73, 92, 255},
	}
)

// Plot is everything needed to draw one image: the chain, the window shared
// by all of its series and the canvas they are projected onto.
type Plot struct {
	Chain  *series.Chain
	Window series.Window
	Canvas canvas.Canvas
	// Mapper is nil when Empty is set.
	Mapper *canvas.Mapper
	Empty  bool
}

type Options struct {
	LineWidth float64
	Labels    bool
	Face      font.Face
}

func DefaultOptions() Options {
	return Options{LineWidth: defaultLineWidth, Face: basicfont.Face7x13}
}

// LoadFace loads a TrueType face, falling back to the built-in bitmap face
// when path is empty.
func LoadFace(path string, points float64) (font.Face, error) {
	if path == "" {
		return basicfont.Face7x13, nil
	}
	face, err := gg.LoadFontFace(path, points)
	if err != nil {
		return nil, fmt.Errorf("loading font %s: %w", path, err)
	}
	return face, nil
}

type Renderer struct {
	opts Options
}

func New(opts Options) *Renderer {
	if opts.LineWidth <= 0 {
		opts.LineWidth = defaultLineWidth
	}
	if opts.Face == nil {
		opts.Face = basicfont.Face7x13
	}
	return &Renderer{opts: opts}
}

// Tint is the stroke color of the i-th series in a chain.
func Tint(i int) color.Color {
	return palette[i%len(palette)]
}

// Weight is the stroke width of the i-th series in a chain.
func (r *Renderer) Weight(i int) float64 {
	return r.opts.LineWidth + 0.5*float64(i%4)
}

// Draw rasterizes p onto a new context.
func (r *Renderer) Draw(p Plot) *gg.Context {
	dc := gg.NewContext(p.Canvas.Width, p.Canvas.Height)
	dc.SetColor(backgroundColor)
	dc.Clear()

	if p.Empty || p.Mapper == nil {
		logrus.Info("No points found - rendering 'No data' message")
		dc.SetColor(labelColor)
		dc.SetFontFace(r.opts.Face)
		dc.DrawStringAnchored("No data", float64(p.Canvas.Width)/2, float64(p.Canvas.Height)/2, 0.5, 0.5)
		return dc
	}

	for i, s := range p.Chain.All() {
		logrus.Debugf("Drawing series %d %q (%d points)", i, s.Name(), s.Len())
		dc.SetColor(Tint(i))
		dc.SetLineWidth(r.Weight(i))
		r.drawSeries(dc, p.Mapper, s, r.Weight(i))
	}

	if r.opts.Labels {
		r.drawLabels(dc, p)
	}
	return dc
}

// drawSeries strokes consecutive points as one polyline. A point with a
// non-finite coordinate lifts the pen; a lone point between two such gaps is
// drawn as a dot.
func (r *Renderer) drawSeries(dc *gg.Context, m *canvas.Mapper, s *series.Series, weight float64) {
	var dots [][2]float64
	run := 0
	var lastX, lastY float64
	endRun := func() {
		if run == 1 {
			dots = append(dots, [2]float64{lastX, lastY})
		}
		run = 0
	}
	for i, pt := range s.All() {
		if !series.Finite(pt) {
			logrus.Tracef("Skipping non-finite point %d %v", i, pt)
			endRun()
			continue
		}
		x, y := m.Project(pt)
		if run == 0 {
			dc.MoveTo(x, y)
		} else {
			logrus.Tracef("Drawing line from %.1f, %.1f to %.1f, %.1f", lastX, lastY, x, y)
			dc.LineTo(x, y)
		}
		lastX, lastY = x, y
		run++
	}
	endRun()
	dc.Stroke()

	for _, d := range dots {
		dc.DrawPoint(d[0], d[1], weight)
	}
	if len(dots) > 0 {
		dc.Fill()
	}
}

func (r *Renderer) drawLabels(dc *gg.Context, p Plot) {
	logrus.Debug("Drawing extent labels")
	w := p.Window
	pad := float64(p.Canvas.Padding)
	width, height := float64(p.Canvas.Width), float64(p.Canvas.Height)
	dc.SetColor(labelColor)
	dc.SetFontFace(r.opts.Face)
	dc.DrawStringAnchored(formatValue(w.MaxY), pad+labelInset, pad+labelInset, 0, 1)
	dc.DrawStringAnchored(formatValue(w.MinY), pad+labelInset, height-pad-labelInset, 0, 0)
	dc.DrawStringAnchored(formatValue(w.MaxX), width-pad-labelInset, height-pad-labelInset, 1, 0)
}

// WritePNG draws p and encodes it to w.
func (r *Renderer) WritePNG(w io.Writer, p Plot) error {
	timer := prometheus.NewTimer(metrics.RenderDuration)
	dc := r.Draw(p)
	timer.ObserveDuration()
	if err := dc.EncodePNG(w); err != nil {
		return fmt.Errorf("encoding png: %w", err)
	}
	return nil
}

// SavePNG draws p and writes it to path.
func (r *Renderer) SavePNG(path string, p Plot) error {
	timer := prometheus.NewTimer(metrics.RenderDuration)
	dc := r.Draw(p)
	timer.ObserveDuration()
	if err := dc.SavePNG(path); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	logrus.Infof("Wrote %s", path)
	return nil
}

func formatValue(v float64) string {
	return fmt.Sprintf("%.4g", v)
}
