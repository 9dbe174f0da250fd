package mock

import (
	"io"

	"github.com/fwojciec/sawchat"
)

// Interface compliance check.
var _ sawchat.Stream = (*Stream)(nil)

// Stream is a test double for sawchat.Stream.
// NextFn panics when nil to catch missing setup. CloseFn and StateFn are
// nil-safe (no-op and zero value) because callers commonly defer Close.
type Stream struct {
	NextFn  func() (sawchat.Event, error)
	StateFn func() sawchat.StreamState
	CloseFn func() error
}

// Next delegates to NextFn.
func (s *Stream) Next() (sawchat.Event, error) {
	return s.NextFn()
}

// State delegates to StateFn. Returns StreamStateNew when StateFn is nil.
func (s *Stream) State() sawchat.StreamState {
	if s.StateFn == nil {
		return sawchat.StreamStateNew
	}
	return s.StateFn()
}

// Close delegates to CloseFn. Returns nil when CloseFn is not set.
func (s *Stream) Close() error {
	if s.CloseFn == nil {
		return nil
	}
	return s.CloseFn()
}

// Events returns a Stream that yields events in order, then err. A nil err
// ends the stream with io.EOF.
func Events(err error, events ...sawchat.Event) *Stream {
	i := 0
	return &Stream{
		NextFn: func() (sawchat.Event, error) {
			if i < len(events) {
				evt := events[i]
				i++
				return evt, nil
			}
			if err != nil {
				return nil, err
			}
			return nil, io.EOF
		},
	}
}
