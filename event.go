package sawchat

// Event is a sealed interface representing one decoded line of the agent's
// NDJSON stream. Transport errors come from Stream.Next's error return, not
// from events. The unexported marker method prevents external implementations.
type Event interface {
	event()
}

// EventStart signals that the agent accepted the request.
type EventStart struct {
	Message string
}

func (EventStart) event() {}

// EventStep reports one unit of agent-side work. Used for progress display only.
type EventStep struct {
	Step StepInfo
}

func (EventStep) event() {}

// EventAnswerDelta carries the next fragment of the answer text.
type EventAnswerDelta struct {
	Text string
}

func (EventAnswerDelta) event() {}

// EventAnswerFinal terminates the stream. Empty fields mean the agent did not
// send them; an empty Answer means the streamed deltas are the answer.
type EventAnswerFinal struct {
	Answer      string
	SQL         string
	DownloadURL string
}

func (EventAnswerFinal) event() {}

// EventUnknown is a well-formed event whose type this client does not know.
type EventUnknown struct {
	Type string
}

func (EventUnknown) event() {}

// Interface compliance checks.
var (
	_ Event = EventStart{}
	_ Event = EventStep{}
	_ Event = EventAnswerDelta{}
	_ Event = EventAnswerFinal{}
	_ Event = EventUnknown{}
)
