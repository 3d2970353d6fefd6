// Package pipeline runs the plot stages in order: transform, smooth, compute
// the shared window, and build the projection for the renderer.
package pipeline

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"grapt/internal/canvas"
	"grapt/internal/config"
	"grapt/internal/ingest"
	"grapt/internal/metrics"
	"grapt/internal/render"
	"grapt/internal/series"
)

// MinSpan is substituted for a zero-width axis so a constant or single-point
// series can still be drawn.
const MinSpan = 1.0

type Options struct {
	Canvas canvas.Canvas
	// Transform is applied to every point before smoothing. Nil skips it.
	Transform series.TransformFunc
	// Smooth is the block size of the derived smoothed series. Zero skips it.
	Smooth    int
	MaxPoints int
}

// OptionsFromConfig validates c and extracts the stage options from it.
func OptionsFromConfig(c config.Config) (Options, error) {
	if err := c.Validate(); err != nil {
		return Options{}, err
	}
	f, err := c.Transform()
	if err != nil {
		return Options{}, err
	}
	return Options{
		Canvas:    c.Canvas(),
		Transform: f,
		Smooth:    c.Smooth,
		MaxPoints: c.MaxPoints,
	}, nil
}

// Run takes ownership of chain and turns it into a Plot. The chain is
// mutated in place and must not be used by the caller afterwards except
// through the returned Plot.
func Run(chain *series.Chain, opts Options) (render.Plot, error) {
	plot, err := run(chain, opts)
	switch {
	case err != nil:
		metrics.PipelineRuns.WithLabelValues(metrics.OutcomeFailed).Inc()
	case plot.Empty:
		metrics.PipelineRuns.WithLabelValues(metrics.OutcomeEmpty).Inc()
	default:
		metrics.PipelineRuns.WithLabelValues(metrics.OutcomeOK).Inc()
	}
	return plot, err
}

func run(chain *series.Chain, opts Options) (render.Plot, error) {
	if err := opts.Canvas.Validate(); err != nil {
		return render.Plot{}, err
	}
	if opts.Smooth < 0 {
		return render.Plot{}, fmt.Errorf("%w: %d", series.ErrInvalidWindow, opts.Smooth)
	}
	metrics.PointsIngested.Add(float64(chain.Points()))

	if opts.Transform != nil {
		logrus.Debug("Applying value transform")
		chain.Transform(opts.Transform)
	}
	if opts.Smooth > 0 {
		logrus.Debugf("Smoothing %d series with window %d", chain.Len(), opts.Smooth)
		if err := chain.Smooth(opts.Smooth); err != nil {
			return render.Plot{}, err
		}
	}

	plot := render.Plot{Chain: chain, Canvas: opts.Canvas}
	w, err := chain.Window()
	if errors.Is(err, series.ErrEmpty) {
		logrus.Info("No plottable points")
		plot.Empty = true
		return plot, nil
	} else if err != nil {
		return render.Plot{}, err
	}
	logrus.Debugf("Calculated window %v over %d series", w, chain.Len())

	m, err := canvas.NewMapper(w, opts.Canvas)
	if errors.Is(err, canvas.ErrDegenerateWindow) {
		logrus.Warnf("%v, widening to a span of %g", err, MinSpan)
		w = w.Expand(MinSpan)
		m, err = canvas.NewMapper(w, opts.Canvas)
	}
	if err != nil {
		return render.Plot{}, err
	}
	plot.Window = w
	plot.Mapper = m
	return plot, nil
}

// Build reads every input into its own series and runs the stages over the
// resulting chain.
func Build(inputs []ingest.Input, opts Options) (render.Plot, error) {
	chain, err := ingest.ReadChain(inputs, ingest.Options{MaxPoints: opts.MaxPoints})
	if err != nil {
		metrics.PipelineRuns.WithLabelValues(metrics.OutcomeFailed).Inc()
		return render.Plot{}, err
	}
	logrus.Debugf("Read %d points across %d series", chain.Points(), chain.Len())
	return Run(chain, opts)
}
