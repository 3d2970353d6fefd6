// Package ingest parses line-oriented sample text into series.
package ingest

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"grapt/internal/series"
)

const maxLineLength = 1024 * 1024

var (
	// ErrMalformed marks a line that does not hold one or two numbers.
	ErrMalformed = errors.New("ingest: no values found")
	// ErrColumnMismatch marks a line whose column count differs from the
	// first line of the same input.
	ErrColumnMismatch = errors.New("ingest: inconsistent column count")
)

// ParseError reports the input and line a parse failure occurred on.
type ParseError struct {
	Source string
	Line   int
	Text   string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s:%d: %v (%q)", e.Source, e.Line, e.Err, e.Text)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Options tunes ingestion.
type Options struct {
	// MaxPoints bounds the number of points read into one series. Zero means
	// unbounded.
	MaxPoints int
}

// Input is one named stream of samples. Each input becomes one series.
type Input struct {
	Name   string
	Reader io.Reader
}

// Read parses r into a new series named name. Every line holds either one or
// two numbers; the first line decides which, and every later line must
// match. With one column, X is the zero-based line index.
func Read(r io.Reader, name string, opts Options) (*series.Series, error) {
	s := series.New(name)
	s.SetLimit(opts.MaxPoints)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineLength)
	required := 0
	index := 0
	line := 0
	for scanner.Scan() {
		line++
		text := scanner.Text()
		pt, count, err := parseLine(text, index)
		if err != nil {
			return nil, &ParseError{Source: name, Line: line, Text: text, Err: err}
		}
		if required == 0 {
			required = count
			logrus.Debugf("Reading %s with %d column(s)", name, required)
		}
		if count != required {
			err := fmt.Errorf("%w: required %d values, got %d", ErrColumnMismatch, required, count)
			return nil, &ParseError{Source: name, Line: line, Text: text, Err: err}
		}
		if err := s.Append(pt); err != nil {
			return nil, fmt.Errorf("%s:%d: %w", name, line, err)
		}
		index++
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}
	logrus.Debugf("Read %d points from %s", s.Len(), name)
	return s, nil
}

// ReadChain reads every input into its own series, in order. The first
// failure aborts the whole read; no partial chain is returned.
func ReadChain(inputs []Input, opts Options) (*series.Chain, error) {
	chain := series.NewChain()
	for _, in := range inputs {
		s, err := Read(in.Reader, in.Name, opts)
		if err != nil {
			return nil, err
		}
		chain.Push(s)
	}
	return chain, nil
}

func parseLine(text string, index int) (series.Point, int, error) {
	fields := strings.Fields(text)
	if len(fields) == 0 || len(fields) > 2 {
		return series.Point{}, len(fields), ErrMalformed
	}
	values := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return series.Point{}, len(fields), fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		values[i] = v
	}
	if len(values) == 1 {
		return series.Point{X: float64(index), Y: values[0]}, 1, nil
	}
	return series.Point{X: values[0], Y: values[1]}, 2, nil
}
