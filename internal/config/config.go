// Package config holds the settings a plot run is built from. A Config is
// assembled once (defaults, then environment, then flags), validated, and
// passed by value to every stage.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"grapt/internal/canvas"
	"grapt/internal/series"
)

const (
	DefaultOutput   = "output.png"
	DefaultLogLevel = "INFO"
	DefaultHTTPPort = "8080"
	DefaultFontSize = 12
	DefaultFormat   = "png"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// Error names the setting that failed validation.
type Error struct {
	Field string
	Value string
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("invalid %s %q: %v", e.Field, e.Value, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func invalid(field string, value any, err error) *Error {
	if err == nil {
		err = ErrInvalid
	} else if !errors.Is(err, ErrInvalid) {
		err = fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return &Error{Field: field, Value: fmt.Sprint(value), Err: err}
}

type Influx struct {
	URL    string
	Token  string
	Org    string
	Bucket string
}

// Enabled reports whether enough is set to query a server.
func (i Influx) Enabled() bool {
	return i.URL != "" && i.Bucket != ""
}

type Config struct {
	Width   int
	Height  int
	Padding int
	// LogBase enables the logarithmic Y transform when non-zero.
	LogBase float64
	// Smooth appends a block-averaged copy of every series when non-zero.
	Smooth    int
	MaxPoints int

	Output   string
	Format   string
	Labels   bool
	FontPath string
	FontSize float64

	LogLevel string
	HTTPPort string
	Influx   Influx
}

func Default() Config {
	return Config{
		Width:    canvas.DefaultWidth,
		Height:   canvas.DefaultHeight,
		Padding:  canvas.DefaultPadding,
		Output:   DefaultOutput,
		Format:   DefaultFormat,
		FontSize: DefaultFontSize,
		LogLevel: DefaultLogLevel,
		HTTPPort: DefaultHTTPPort,
	}
}

// FromEnv returns the defaults overridden by the process environment.
func FromEnv() (Config, error) {
	return Load(os.LookupEnv)
}

// Load returns the defaults overridden by whatever lookup reports as set.
func Load(lookup func(string) (string, bool)) (Config, error) {
	c := Default()
	env := envReader{lookup: lookup}
	env.int("GRAPT_WIDTH", &c.Width)
	env.int("GRAPT_HEIGHT", &c.Height)
	env.int("GRAPT_PADDING", &c.Padding)
	env.int("GRAPT_SMOOTH", &c.Smooth)
	env.int("GRAPT_MAX_POINTS", &c.MaxPoints)
	env.base("GRAPT_LOG_BASE", &c.LogBase)
	env.bool("GRAPT_LABELS", &c.Labels)
	env.float("GRAPT_FONT_SIZE", &c.FontSize)
	env.string("GRAPT_FONT", &c.FontPath)
	env.string("GRAPT_OUTPUT", &c.Output)
	env.string("GRAPT_FORMAT", &c.Format)
	env.string("LOG_LEVEL", &c.LogLevel)
	env.string("HTTP_PORT", &c.HTTPPort)
	env.string("INFLUXDB_URL", &c.Influx.URL)
	env.string("INFLUXDB_TOKEN", &c.Influx.Token)
	env.string("INFLUXDB_ORG", &c.Influx.Org)
	env.string("INFLUXDB_BUCKET", &c.Influx.Bucket)
	if env.err != nil {
		return Config{}, env.err
	}
	return c, nil
}

// Canvas returns the pixel canvas described by the config.
func (c Config) Canvas() canvas.Canvas {
	return canvas.Canvas{Width: c.Width, Height: c.Height, Padding: c.Padding}
}

// Transform returns the value transform selected by the config, or nil if
// none is.
func (c Config) Transform() (series.TransformFunc, error) {
	if c.LogBase == 0 {
		return nil, nil
	}
	f, err := series.LogScale(c.LogBase)
	if err != nil {
		return nil, invalid("log base", c.LogBase, err)
	}
	return f, nil
}

// Validate rejects settings the pipeline cannot run with. Nothing is clamped.
func (c Config) Validate() error {
	if err := c.Canvas().Validate(); err != nil {
		return invalid("canvas", c.Canvas(), err)
	}
	if c.LogBase != 0 {
		if err := series.ValidateBase(c.LogBase); err != nil {
			return invalid("log base", c.LogBase, err)
		}
	}
	if c.Smooth < 0 {
		return invalid("smoothing window", c.Smooth, series.ErrInvalidWindow)
	}
	if c.MaxPoints < 0 {
		return invalid("max points", c.MaxPoints, nil)
	}
	if c.FontSize <= 0 {
		return invalid("font size", c.FontSize, nil)
	}
	switch c.Format {
	case "png", "csv":
	default:
		return invalid("format", c.Format, nil)
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return invalid("log level", c.LogLevel, err)
	}
	return nil
}

type envReader struct {
	lookup func(string) (string, bool)
	err    error
}

func (e *envReader) get(key string) (string, bool) {
	if e.err != nil {
		return "", false
	}
	v, ok := e.lookup(key)
	if !ok || strings.TrimSpace(v) == "" {
		return "", false
	}
	logrus.Debugf("Overriding configuration from %s", key)
	return strings.TrimSpace(v), true
}

func (e *envReader) string(key string, dst *string) {
	if v, ok := e.get(key); ok {
		*dst = v
	}
}

func (e *envReader) int(key string, dst *int) {
	if v, ok := e.get(key); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			e.err = invalid(key, v, err)
			return
		}
		*dst = n
	}
}

func (e *envReader) float(key string, dst *float64) {
	if v, ok := e.get(key); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			e.err = invalid(key, v, err)
			return
		}
		*dst = f
	}
}

func (e *envReader) bool(key string, dst *bool) {
	if v, ok := e.get(key); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			e.err = invalid(key, v, err)
			return
		}
		*dst = b
	}
}

func (e *envReader) base(key string, dst *float64) {
	if v, ok := e.get(key); ok {
		b, err := series.ParseBase(v)
		if err != nil {
			e.err = invalid(key, v, err)
			return
		}
		*dst = b
	}
}
