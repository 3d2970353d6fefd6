package series

import (
	"errors"
	"fmt"
)

// ErrInvalidWindow is returned for smoothing window sizes below one.
var ErrInvalidWindow = errors.New("series: invalid smoothing window")

// Smooth returns a new series where each block of size consecutive points of
// s is replaced by its mean point. A trailing block shorter than size is
// averaged over the points it holds, so the result has ceil(Len/size)
// points. A size of one yields a copy of s.
func Smooth(s *Series, size int) (*Series, error) {
	if size < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidWindow, size)
	}
	out := New(fmt.Sprintf("%s (smoothed %d)", s.name, size))
	if size == 1 {
		out.pts = s.Copy().pts
		return out, nil
	}
	for start := 0; start < len(s.pts); start += size {
		block := s.pts[start:min(start+size, len(s.pts))]
		var sx, sy float64
		for _, p := range block {
			sx += p.X
			sy += p.Y
		}
		n := float64(len(block))
		if err := out.Append(Point{X: sx / n, Y: sy / n}); err != nil {
			return nil, err
		}
	}
	return out, nil
}
