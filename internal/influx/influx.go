// Package influx reads a series out of InfluxDB with a Flux query.
package influx

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/sirupsen/logrus"

	"grapt/internal/config"
	"grapt/internal/series"
)

var (
	ErrNotConfigured = errors.New("influx: url and bucket are required")
	ErrBadSelector   = errors.New("influx: invalid selector")
)

// Selector picks the points of one field of one measurement over a time
// range, optionally averaged into fixed windows.
type Selector struct {
	Measurement string
	Field       string
	Tags        map[string]string
	Start       time.Time
	Stop        time.Time
	Every       time.Duration
}

func (s Selector) Validate() error {
	switch {
	case s.Measurement == "":
		return fmt.Errorf("%w: missing measurement", ErrBadSelector)
	case s.Field == "":
		return fmt.Errorf("%w: missing field", ErrBadSelector)
	case !s.Stop.After(s.Start):
		return fmt.Errorf("%w: stop %s is not after start %s", ErrBadSelector, s.Stop.Format(time.RFC3339), s.Start.Format(time.RFC3339))
	case s.Every < 0:
		return fmt.Errorf("%w: negative window %s", ErrBadSelector, s.Every)
	}
	return nil
}

// Name is the series name used for points read with s.
func (s Selector) Name() string {
	return s.Measurement + "." + s.Field
}

// Flux renders the query for s against bucket.
func (s Selector) Flux(bucket string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "from(bucket: %q)\n", bucket)
	fmt.Fprintf(&b, "\t|> range(start: %s, stop: %s)\n", s.Start.UTC().Format(time.RFC3339), s.Stop.UTC().Format(time.RFC3339))
	fmt.Fprintf(&b, "\t|> filter(fn: (r) => r._measurement == %q and r._field == %q", s.Measurement, s.Field)
	keys := make([]string, 0, len(s.Tags))
	for k := range s.Tags {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, " and r[%q] == %q", k, s.Tags[k])
	}
	b.WriteString(")\n")
	if s.Every > 0 {
		fmt.Fprintf(&b, "\t|> aggregateWindow(every: %s, fn: mean, createEmpty: false, timeSrc: \"_start\")\n", fluxDuration(s.Every))
	}
	b.WriteString("\t|> yield(name: \"grapt\")\n")
	return b.String()
}

func fluxDuration(d time.Duration) string {
	if d%time.Second == 0 {
		return fmt.Sprintf("%ds", d/time.Second)
	}
	if d%time.Millisecond == 0 {
		return fmt.Sprintf("%dms", d/time.Millisecond)
	}
	return fmt.Sprintf("%dns", d.Nanoseconds())
}

type Source struct {
	client influxdb2.Client
	org    string
	bucket string
}

func New(cfg config.Influx) (*Source, error) {
	if !cfg.Enabled() {
		return nil, ErrNotConfigured
	}
	logrus.Debugf("Using InfluxDB at %s, org=%q bucket=%q", cfg.URL, cfg.Org, cfg.Bucket)
	return &Source{
		client: influxdb2.NewClient(cfg.URL, cfg.Token),
		org:    cfg.Org,
		bucket: cfg.Bucket,
	}, nil
}

func (s *Source) Close() {
	s.client.Close()
}

// Series runs the query for sel and returns its points ordered by time. X is
// the record time in Unix seconds; records whose value is not numeric are
// skipped.
func (s *Source) Series(ctx context.Context, sel Selector) (*series.Series, error) {
	if err := sel.Validate(); err != nil {
		return nil, err
	}
	query := sel.Flux(s.bucket)
	logrus.Tracef("Running query=%s", query)

	result, err := s.client.QueryAPI(s.org).Query(ctx, query)
	if err != nil {
		logrus.Warnf("Failed to execute query: %v", err)
		return nil, fmt.Errorf("query error: %w", err)
	}
	defer result.Close()

	out := series.New(sel.Name())
	for result.Next() {
		record := result.Record()
		v, ok := toFloat(record.Value())
		if !ok {
			logrus.Tracef("Skipping non-numeric value %v at %s", record.Value(), record.Time())
			continue
		}
		if err := out.Append(series.Point{X: unixSeconds(record.Time()), Y: v}); err != nil {
			return nil, err
		}
	}
	if result.Err() != nil {
		logrus.Warnf("Query result error: %v", result.Err())
		return nil, fmt.Errorf("error parsing Influx result: %w", result.Err())
	}
	out.SortPoints()
	logrus.Debugf("Queried %d points for %s", out.Len(), sel.Name())
	return out, nil
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	}
	return 0, false
}

func unixSeconds(t time.Time) float64 {
	return float64(t.UnixNano()) / float64(time.Second)
}
