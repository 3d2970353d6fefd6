package ingest

import (
	"bufio"
	"errors"
	"io"
)

// lineReader only yields whole newline-terminated lines. A trailing partial
// line is held back and reported as EOF until the rest of it arrives, so a
// file that is still being written is never parsed mid-line.
type lineReader struct {
	r       *bufio.Reader
	partial []byte
	pending []byte
}

var _ io.Reader = (*lineReader)(nil)

func NewLineReader(r io.Reader) io.Reader {
	return &lineReader{
		r: bufio.NewReader(r),
	}
}

func (l *lineReader) Read(b []byte) (int, error) {
	if len(l.pending) == 0 {
		data, err := l.r.ReadBytes(byte('\n'))
		if err != nil {
			l.partial = append(l.partial, data...)
			if errors.Is(err, io.EOF) {
				return 0, io.EOF
			}
			return 0, err
		}
		l.pending = append(l.partial, data...)
		l.partial = nil
	}
	n := copy(b, l.pending)
	l.pending = l.pending[n:]
	return n, nil
}
