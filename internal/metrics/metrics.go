// Package metrics declares the Prometheus collectors shared by the CLI and
// the HTTP service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	OutcomeOK     = "ok"
	OutcomeEmpty  = "empty"
	OutcomeFailed = "failed"
)

var (
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests processed, labeled by status code and method.",
		},
		[]string{"code", "method"},
	)
	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "http_request_duration_seconds",
			Help: "Duration of HTTP requests.",
		},
		[]string{"handler", "method"},
	)
	PlotRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "grapt_plot_requests_total",
			Help: "Total number of plot requests, labeled by output format.",
		},
		[]string{"format"},
	)
	PointsIngested = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "grapt_points_ingested_total",
			Help: "Total number of data points fed into the pipeline.",
		},
	)
	PipelineRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "grapt_pipeline_runs_total",
			Help: "Total pipeline runs, labeled by outcome.",
		},
		[]string{"outcome"},
	)
	RenderDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "grapt_render_duration_seconds",
			Help:    "Time spent rasterizing a plot.",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		},
	)
)

func init() {
	prometheus.MustRegister(HTTPRequests, HTTPDuration, PlotRequests, PointsIngested, PipelineRuns, RenderDuration)
}
