// Package series holds the point store used by every stage of a plot: growable
// series, the chain of series drawn together, their extents and the value
// transforms applied to them in place.
package series

import (
	"errors"
	"fmt"
	"iter"
	"slices"
	"sort"
)

const initialCapacity = 8

var (
	// ErrEmpty is returned when an extent is requested from a series (or chain)
	// with no plottable points.
	ErrEmpty = errors.New("series: no plottable points")
	// ErrCapacity is returned by Append when growing the series would exceed
	// its point limit.
	ErrCapacity = errors.New("series: point limit exceeded")
)

// Point is a single sample in data space.
type Point struct {
	X, Y float64
}

func (p Point) String() string {
	return fmt.Sprintf("(%g, %g)", p.X, p.Y)
}

// Series is an ordered, growable set of points representing one plotted line.
// A Series owns its storage; points handed out by Points are copies.
type Series struct {
	name  string
	pts   []Point
	limit int
}

func New(name string) *Series {
	return &Series{name: name}
}

func (s *Series) Name() string {
	return s.name
}

// Len reports the number of points appended so far.
func (s *Series) Len() int {
	return len(s.pts)
}

// Cap reports the number of points the series can hold before it must grow.
func (s *Series) Cap() int {
	return cap(s.pts)
}

// SetLimit bounds the number of points the series may hold. Zero or a
// negative value removes the bound.
func (s *Series) SetLimit(n int) {
	s.limit = max(n, 0)
}

// Append adds p after the last point. Storage grows geometrically, starting at
// eight points and doubling, so a run of appends is amortized O(1).
func (s *Series) Append(p Point) error {
	if s.limit > 0 && len(s.pts) >= s.limit {
		return fmt.Errorf("%w: %d points", ErrCapacity, s.limit)
	}
	if len(s.pts) == cap(s.pts) {
		s.grow()
	}
	s.pts = append(s.pts, p)
	return nil
}

func (s *Series) grow() {
	n := max(initialCapacity, 2*cap(s.pts))
	if s.limit > 0 {
		n = min(n, s.limit)
	}
	pts := make([]Point, len(s.pts), n)
	copy(pts, s.pts)
	s.pts = pts
}

// At returns the i-th point in insertion order.
func (s *Series) At(i int) Point {
	return s.pts[i]
}

// Points returns a copy of the points in insertion order.
func (s *Series) Points() []Point {
	return slices.Clone(s.pts)
}

// All iterates over the points in insertion order.
func (s *Series) All() iter.Seq2[int, Point] {
	return func(yield func(int, Point) bool) {
		for i, p := range s.pts {
			if !yield(i, p) {
				return
			}
		}
	}
}

// Copy returns a deep copy of the series holding exactly its used points.
// The copy carries the same name and limit.
func (s *Series) Copy() *Series {
	c := &Series{name: s.name, limit: s.limit}
	if len(s.pts) > 0 {
		c.pts = make([]Point, len(s.pts), max(initialCapacity, len(s.pts)))
		copy(c.pts, s.pts)
	}
	return c
}

// Reset drops every point and releases the storage.
func (s *Series) Reset() {
	s.pts = nil
}

// SortPoints orders the points by X, keeping the relative order of points
// that share an X value.
func (s *Series) SortPoints() {
	sort.SliceStable(s.pts, func(i, j int) bool {
		return s.pts[i].X < s.pts[j].X
	})
}

// Transform rewrites every point with f, in place.
func (s *Series) Transform(f TransformFunc) {
	for i, p := range s.pts {
		s.pts[i] = f(p)
	}
}

// Window returns the bounding box of the series. Points with a NaN or
// infinite coordinate are skipped; ErrEmpty is returned if none remain.
func (s *Series) Window() (Window, error) {
	var w Window
	found := false
	for _, p := range s.pts {
		if !Finite(p) {
			continue
		}
		if !found {
			w = Window{MinX: p.X, MaxX: p.X, MinY: p.Y, MaxY: p.Y}
			found = true
			continue
		}
		if p.X < w.MinX {
			w.MinX = p.X
		}
		if p.X > w.MaxX {
			w.MaxX = p.X
		}
		if p.Y < w.MinY {
			w.MinY = p.Y
		}
		if p.Y > w.MaxY {
			w.MaxY = p.Y
		}
	}
	if !found {
		return Window{}, fmt.Errorf("%w: %q", ErrEmpty, s.name)
	}
	return w, nil
}
