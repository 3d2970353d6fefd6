// Package server exposes the plot pipeline over HTTP.
package server

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"grapt/internal/config"
	"grapt/internal/influx"
	"grapt/internal/ingest"
	"grapt/internal/metrics"
	"grapt/internal/pipeline"
	"grapt/internal/render"
	"grapt/internal/series"
)

const (
	minWidth     = 100
	maxWidth     = 4000
	minHeight    = 100
	maxHeight    = 4000
	maxBodyBytes = 32 << 20
	defaultRange = 24 * time.Hour
)

type Server struct {
	cfg      config.Config
	renderer *render.Renderer
	source   *influx.Source
	mux      *http.ServeMux
}

// New builds a server rendering with r. source may be nil, in which case
// /query answers 503.
func New(cfg config.Config, r *render.Renderer, source *influx.Source) *Server {
	s := &Server{cfg: cfg, renderer: r, source: source, mux: http.NewServeMux()}

	s.mux.Handle("/monitoring/metrics", promhttp.Handler())
	s.mux.HandleFunc("/monitoring/ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("pong"))
	})
	s.mux.Handle("/plot", instrument("plot", http.HandlerFunc(s.handlePlot)))
	s.mux.Handle("/query", instrument("query", http.HandlerFunc(s.handleQuery)))
	return s
}

func instrument(name string, h http.Handler) http.Handler {
	return promhttp.InstrumentHandlerDuration(
		metrics.HTTPDuration.MustCurryWith(prometheus.Labels{"handler": name}),
		promhttp.InstrumentHandlerCounter(metrics.HTTPRequests, h),
	)
}

func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) ListenAndServe() error {
	logrus.Infof("Starting server on port: %s", s.cfg.HTTPPort)
	return http.ListenAndServe(":"+s.cfg.HTTPPort, s.mux)
}

func (s *Server) handlePlot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "samples must be POSTed", http.StatusMethodNotAllowed)
		return
	}
	cfg, err := parsePlotParams(r, s.cfg)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	opts, err := pipeline.OptionsFromConfig(cfg)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	name := r.URL.Query().Get("name")
	if name == "" {
		name = "request"
	}
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	plot, err := pipeline.Build([]ingest.Input{{Name: name, Reader: body}}, opts)
	if err != nil {
		logrus.Warnf("Failed to build plot: %v", err)
		http.Error(w, err.Error(), statusFor(err))
		return
	}
	s.respond(w, plot, cfg.Format)
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	if s.source == nil {
		http.Error(w, "InfluxDB is not configured", http.StatusServiceUnavailable)
		return
	}
	cfg, err := parsePlotParams(r, s.cfg)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	opts, err := pipeline.OptionsFromConfig(cfg)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	sel, err := parseSelector(r, time.Now())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	data, err := s.source.Series(r.Context(), sel)
	if err != nil {
		logrus.Warnf("Failed to query datapoints: %v", err)
		http.Error(w, err.Error(), statusFor(err))
		return
	}
	plot, err := pipeline.Run(series.NewChain(data), opts)
	if err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}
	s.respond(w, plot, cfg.Format)
}

func (s *Server) respond(w http.ResponseWriter, plot render.Plot, format string) {
	defer func() {
		if r := recover(); r != nil {
			logrus.Warnf("Failed to render %s: %v", format, r)
			http.Error(w, "Internal server error", http.StatusInternalServerError)
		}
	}()

	switch format {
	case "png":
		logrus.Info("Generating PNG image")
		var buf bytes.Buffer
		if err := s.renderer.WritePNG(&buf, plot); err != nil {
			logrus.Warnf("Failed to encode PNG: %v", err)
			http.Error(w, "Failed to render image", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.Write(buf.Bytes())
	case "csv":
		logrus.Info("Generating CSV data")
		w.Header().Set("Content-Type", "text/csv")
		if err := render.WriteCSV(w, plot.Chain); err != nil {
			logrus.Warnf("Failed to write CSV: %v", err)
		}
	}
	metrics.PlotRequests.WithLabelValues(format).Inc()
}

// parsePlotParams overrides the rendering settings of base with the query
// parameters of r. The result is not validated.
func parsePlotParams(r *http.Request, base config.Config) (config.Config, error) {
	q := r.URL.Query()
	cfg := base

	if v := q.Get("format"); v != "" {
		cfg.Format = v
	}
	if v := q.Get("width"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < minWidth || n > maxWidth {
			return config.Config{}, fmt.Errorf("invalid 'width' query parameter")
		}
		logrus.Tracef("Overriding width to: %d", n)
		cfg.Width = n
	}
	if v := q.Get("height"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < minHeight || n > maxHeight {
			return config.Config{}, fmt.Errorf("invalid 'height' query parameter")
		}
		logrus.Tracef("Overriding height to: %d", n)
		cfg.Height = n
	}
	if v := q.Get("padding"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return config.Config{}, fmt.Errorf("invalid 'padding' query parameter")
		}
		cfg.Padding = n
	}
	if v := q.Get("log"); v != "" {
		b, err := series.ParseBase(v)
		if err != nil {
			return config.Config{}, fmt.Errorf("invalid 'log' query parameter: %w", err)
		}
		cfg.LogBase = b
	}
	if v := q.Get("smooth"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return config.Config{}, fmt.Errorf("invalid 'smooth' query parameter")
		}
		cfg.Smooth = n
	}
	logrus.Debugf("Using image size: width=%d, height=%d", cfg.Width, cfg.Height)
	return cfg, nil
}

// parseSelector reads measurement, field, range, every, end and tag
// parameters. tag values have the form key:value.
func parseSelector(r *http.Request, now time.Time) (influx.Selector, error) {
	q := r.URL.Query()
	sel := influx.Selector{
		Measurement: q.Get("measurement"),
		Field:       q.Get("field"),
		Stop:        now,
	}
	if sel.Measurement == "" {
		return influx.Selector{}, fmt.Errorf("missing 'measurement' query parameter")
	}
	if sel.Field == "" {
		return influx.Selector{}, fmt.Errorf("missing 'field' query parameter")
	}
	if v := q.Get("end"); v != "" {
		end, err := time.Parse(time.RFC3339, v)
		if err != nil {
			logrus.Warnf("Failed to parse 'end' query parameter: %v", err)
			return influx.Selector{}, fmt.Errorf("invalid 'end' parameter format, expected RFC3339")
		}
		sel.Stop = end
	}
	span := defaultRange
	if v := q.Get("range"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return influx.Selector{}, fmt.Errorf("invalid 'range' query parameter")
		}
		span = d
	}
	sel.Start = sel.Stop.Add(-span)
	if v := q.Get("every"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return influx.Selector{}, fmt.Errorf("invalid 'every' query parameter")
		}
		sel.Every = d
	}
	for _, tag := range q["tag"] {
		k, v, ok := strings.Cut(tag, ":")
		if !ok || k == "" {
			return influx.Selector{}, fmt.Errorf("invalid 'tag' query parameter %q, expected key:value", tag)
		}
		if sel.Tags == nil {
			sel.Tags = map[string]string{}
		}
		sel.Tags[k] = v
	}
	return sel, nil
}

func statusFor(err error) int {
	var perr *ingest.ParseError
	var maxErr *http.MaxBytesError
	switch {
	case errors.As(err, &perr), errors.Is(err, series.ErrCapacity), errors.Is(err, influx.ErrBadSelector):
		return http.StatusBadRequest
	case errors.As(err, &maxErr):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, config.ErrInvalid):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
