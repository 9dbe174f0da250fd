package sawchat

import (
	"errors"
	"fmt"
	"strings"
)

// ReducerState is the lifecycle state of a Reducer.
type ReducerState int

const (
	ReducerIdle      ReducerState = iota // No event applied yet.
	ReducerStreaming                     // At least one event applied.
	ReducerCompleted                     // answer_final applied.
	ReducerFailed                        // Stream ended or broke before answer_final.
)

func (s ReducerState) String() string {
	switch s {
	case ReducerIdle:
		return "idle"
	case ReducerStreaming:
		return "streaming"
	case ReducerCompleted:
		return "completed"
	case ReducerFailed:
		return "failed"
	default:
		return fmt.Sprintf("ReducerState(%d)", int(s))
	}
}

// DefaultStartLabel is shown when a start event carries no message.
const DefaultStartLabel = "Starting processing."

// Reducer folds the events of one stream, in arrival order, into the state
// the UI renders. One Reducer serves exactly one request and is not safe for
// concurrent use. Once Finished reports true, nothing changes it again.
type Reducer struct {
	state    ReducerState
	buffer   strings.Builder
	progress string
	answer   Answer
	err      error
}

// NewReducer returns a Reducer in the idle state.
func NewReducer() *Reducer {
	return &Reducer{}
}

// Apply consumes one event and returns the effects to render. Events applied
// after the reducer finished are ignored and yield no effects.
func (r *Reducer) Apply(evt Event) []Effect {
	if r.Finished() {
		return nil
	}
	r.state = ReducerStreaming

	switch e := evt.(type) {
	case EventStart:
		label := e.Message
		if label == "" {
			label = DefaultStartLabel
		}
		return r.setProgress(label)
	case EventStep:
		return r.setProgress(Describe(e.Step))
	case EventAnswerDelta:
		if e.Text == "" {
			return nil
		}
		r.buffer.WriteString(e.Text)
		return []Effect{EffectAnswer{Delta: e.Text, Text: r.buffer.String()}}
	case EventAnswerFinal:
		text := e.Answer
		if text == "" {
			text = r.buffer.String()
		}
		r.answer = Answer{Text: text, SQL: e.SQL, DownloadURL: e.DownloadURL}
		r.state = ReducerCompleted
		return []Effect{EffectFinal{Answer: r.answer}}
	default:
		// EventUnknown and anything newer than this client.
		return nil
	}
}

func (r *Reducer) setProgress(label string) []Effect {
	r.progress = label
	return []Effect{EffectProgress{Label: label}}
}

// End records a clean end of the stream. Ending before answer_final fails
// the reducer with ErrNoFinalAnswer.
func (r *Reducer) End() {
	if r.Finished() {
		return
	}
	r.fail(ErrNoFinalAnswer)
}

// Fail records a transport failure. It has no effect once finished.
func (r *Reducer) Fail(err error) {
	if r.Finished() {
		return
	}
	if err == nil {
		err = errors.New("stream failed")
	}
	r.fail(err)
}

func (r *Reducer) fail(err error) {
	r.state = ReducerFailed
	r.err = err
}

// State returns the current lifecycle state.
func (r *Reducer) State() ReducerState { return r.state }

// Finished reports whether the reducer reached a terminal state.
func (r *Reducer) Finished() bool {
	return r.state == ReducerCompleted || r.state == ReducerFailed
}

// Progress returns the current progress label.
func (r *Reducer) Progress() string { return r.progress }

// Buffer returns the answer text accumulated from deltas so far.
func (r *Reducer) Buffer() string { return r.buffer.String() }

// Answer returns the finalized answer once completed. A failed reducer
// returns its failure; an unfinished one returns ErrNoFinalAnswer.
func (r *Reducer) Answer() (Answer, error) {
	switch r.state {
	case ReducerCompleted:
		return r.answer, nil
	case ReducerFailed:
		return Answer{}, r.err
	default:
		return Answer{}, ErrNoFinalAnswer
	}
}
