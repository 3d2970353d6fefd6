package config

import (
	"errors"
	"math"
	"testing"

	"grapt/internal/canvas"
	"grapt/internal/series"
)

func lookupFrom(env map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

func TestDefaults(t *testing.T) {
	c, err := Load(lookupFrom(nil))
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if c.Canvas() != canvas.Default() {
		t.Errorf("expected default canvas, got %v", c.Canvas())
	}
	if c.Output != "output.png" || c.LogLevel != "INFO" || c.HTTPPort != "8080" {
		t.Errorf("unexpected defaults: %+v", c)
	}
	if err := c.Validate(); err != nil {
		t.Errorf("expected defaults to validate, got %v", err)
	}
	f, err := c.Transform()
	if f != nil || err != nil {
		t.Errorf("expected no transform by default")
	}
}

func TestLoadOverrides(t *testing.T) {
	c, err := Load(lookupFrom(map[string]string{
		"GRAPT_WIDTH":     "800",
		"GRAPT_HEIGHT":    " 600 ",
		"GRAPT_PADDING":   "0",
		"GRAPT_LOG_BASE":  "e",
		"GRAPT_SMOOTH":    "4",
		"GRAPT_LABELS":    "true",
		"GRAPT_OUTPUT":    "",
		"LOG_LEVEL":       "debug",
		"INFLUXDB_URL":    "http://localhost:8086",
		"INFLUXDB_BUCKET": "samples",
	}))
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if c.Width != 800 || c.Height != 600 || c.Padding != 0 {
		t.Errorf("unexpected canvas %v", c.Canvas())
	}
	if c.LogBase != math.E || c.Smooth != 4 || !c.Labels {
		t.Errorf("unexpected pipeline settings: %+v", c)
	}
	if c.Output != DefaultOutput {
		t.Errorf("expected empty override to be ignored, got %q", c.Output)
	}
	if !c.Influx.Enabled() {
		t.Errorf("expected influx to be enabled")
	}
	if err := c.Validate(); err != nil {
		t.Errorf("expected valid config, got %v", err)
	}
}

func TestLoadRejectsGarbage(t *testing.T) {
	for key, value := range map[string]string{
		"GRAPT_WIDTH":    "wide",
		"GRAPT_LOG_BASE": "1",
		"GRAPT_LABELS":   "maybe",
	} {
		_, err := Load(lookupFrom(map[string]string{key: value}))
		var cerr *Error
		if !errors.As(err, &cerr) || cerr.Field != key {
			t.Errorf("%s=%s: expected config error on %s, got %v", key, value, key, err)
		}
		if !errors.Is(err, ErrInvalid) {
			t.Errorf("%s=%s: expected ErrInvalid, got %v", key, value, err)
		}
	}
}

func TestValidate(t *testing.T) {
	for _, tc := range []struct {
		name   string
		mutate func(*Config)
		target error
	}{
		{"zero width", func(c *Config) { c.Width = 0 }, canvas.ErrInvalidCanvas},
		{"negative height", func(c *Config) { c.Height = -5 }, canvas.ErrInvalidCanvas},
		{"negative padding", func(c *Config) { c.Padding = -1 }, canvas.ErrInvalidCanvas},
		{"base one", func(c *Config) { c.LogBase = 1 }, series.ErrInvalidBase},
		{"negative base", func(c *Config) { c.LogBase = -10 }, series.ErrInvalidBase},
		{"negative smoothing", func(c *Config) { c.Smooth = -2 }, series.ErrInvalidWindow},
		{"bad format", func(c *Config) { c.Format = "gif" }, ErrInvalid},
		{"bad level", func(c *Config) { c.LogLevel = "loud" }, ErrInvalid},
	} {
		c := Default()
		tc.mutate(&c)
		err := c.Validate()
		if !errors.Is(err, tc.target) {
			t.Errorf("%s: expected %v, got %v", tc.name, tc.target, err)
		}
		if !errors.Is(err, ErrInvalid) {
			t.Errorf("%s: expected ErrInvalid, got %v", tc.name, err)
		}
	}
}

func TestTransform(t *testing.T) {
	c := Default()
	c.LogBase = 10
	f, err := c.Transform()
	if err != nil {
		t.Fatalf("transform failed: %v", err)
	}
	if p := f(series.Point{X: 1, Y: 100}); math.Abs(p.Y-2) > 1e-12 {
		t.Errorf("expected log10(100) = 2, got %g", p.Y)
	}
	c.LogBase = 1
	if _, err := c.Transform(); !errors.Is(err, series.ErrInvalidBase) {
		t.Errorf("expected ErrInvalidBase, got %v", err)
	}
}
