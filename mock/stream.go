package mock

import (
	"io"

	"github.com/fwojciec/bimrag"
)

// Interface compliance check.
var _ bimrag.Stream = (*Stream)(nil)

// Stream is a test double for bimrag.Stream.
// NextFn panics when nil to catch missing setup. CloseFn is nil-safe because
// test code commonly calls defer stream.Close() without caring about it.
type Stream struct {
	NextFn  func() (bimrag.Event, error)
	CloseFn func() error
}

// Next delegates to NextFn.
func (s *Stream) Next() (bimrag.Event, error) {
	return s.NextFn()
}

// Close delegates to CloseFn. Returns nil when CloseFn is not set.
func (s *Stream) Close() error {
	if s.CloseFn == nil {
		return nil
	}
	return s.CloseFn()
}

// Events returns a Stream that yields events in order and then io.EOF.
func Events(events ...bimrag.Event) *Stream {
	i := 0
	return &Stream{
		NextFn: func() (bimrag.Event, error) {
			if i >= len(events) {
				return nil, io.EOF
			}
			evt := events[i]
			i++
			return evt, nil
		},
	}
}
