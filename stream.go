package sawchat

// StreamState indicates the current state of a Stream.
type StreamState int

const (
	StreamStateNew       StreamState = iota // Before Next() is ever called.
	StreamStateStreaming                    // Mid-stream, receiving events.
	StreamStateComplete                     // Next() returned io.EOF.
	StreamStateError                        // Next() returned non-EOF error.
	StreamStateClosed                       // Close() called before terminal state.
)

// Stream is a pull-based iterator over the events of one agent response.
// It is finite and cannot be restarted. Cancellation flows through the
// context passed to Agent.Stream.
//
// Next returns the next decoded event. Blank and malformed lines are skipped
// by the implementation and never surface here. Terminal results:
//   - io.EOF: the response body ended cleanly.
//   - an error wrapping ErrStreamInterrupted: the connection dropped mid-read.
//   - a context error: the request context was cancelled.
type Stream interface {
	Next() (Event, error)
	State() StreamState
	Close() error
}
