package series

import (
	"errors"
	"iter"
)

// Chain is the ordered set of series drawn onto one canvas. It owns every
// series pushed onto it; the first series is the head and later ones are
// overlaid in order.
type Chain struct {
	series []*Series
}

func NewChain(s ...*Series) *Chain {
	c := &Chain{}
	for _, v := range s {
		c.Push(v)
	}
	return c
}

// Push links s after the current tail.
func (c *Chain) Push(s *Series) {
	if s == nil {
		return
	}
	c.series = append(c.series, s)
}

func (c *Chain) Len() int {
	return len(c.series)
}

func (c *Chain) At(i int) *Series {
	return c.series[i]
}

// Head returns the first series, or nil for an empty chain.
func (c *Chain) Head() *Series {
	if len(c.series) == 0 {
		return nil
	}
	return c.series[0]
}

// Tail returns the last series, or nil for an empty chain.
func (c *Chain) Tail() *Series {
	if len(c.series) == 0 {
		return nil
	}
	return c.series[len(c.series)-1]
}

func (c *Chain) All() iter.Seq2[int, *Series] {
	return func(yield func(int, *Series) bool) {
		for i, s := range c.series {
			if !yield(i, s) {
				return
			}
		}
	}
}

// Points returns the total number of points across the chain.
func (c *Chain) Points() int {
	n := 0
	for _, s := range c.series {
		n += s.Len()
	}
	return n
}

// Window returns the union of the windows of every series in the chain, so
// all of them can share one coordinate frame. Series without plottable
// points are ignored.
func (c *Chain) Window() (Window, error) {
	var w Window
	found := false
	for _, s := range c.series {
		sw, err := s.Window()
		if errors.Is(err, ErrEmpty) {
			continue
		} else if err != nil {
			return Window{}, err
		}
		if !found {
			w = sw
			found = true
		} else {
			w = w.Union(sw)
		}
	}
	if !found {
		return Window{}, ErrEmpty
	}
	return w, nil
}

// Transform applies f to every point of every series, in place.
func (c *Chain) Transform(f TransformFunc) {
	for _, s := range c.series {
		s.Transform(f)
	}
}

// Smooth derives a smoothed series from each series currently in the chain
// and pushes the results onto the tail, in the same order.
func (c *Chain) Smooth(size int) error {
	n := len(c.series)
	derived := make([]*Series, 0, n)
	for _, s := range c.series[:n] {
		d, err := Smooth(s, size)
		if err != nil {
			return err
		}
		derived = append(derived, d)
	}
	for _, d := range derived {
		c.Push(d)
	}
	return nil
}
