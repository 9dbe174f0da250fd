// Package json implements the wire format of the agent service: the request
// body, the NDJSON stream events, and the batch response document.
package json

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/fwojciec/sawchat"
)

// Wire names of the stream event types.
const (
	typeStart       = "start"
	typeStep        = "step"
	typeAnswerDelta = "answer_delta"
	typeAnswerFinal = "answer_final"
)

// eventDTO is the union of all stream event shapes, discriminated by Type.
// Nullable fields are pointers so that null and absent decode alike.
type eventDTO struct {
	Type        string   `json:"type"`
	Message     *string  `json:"message,omitempty"`
	Step        *stepDTO `json:"step,omitempty"`
	Text        *string  `json:"text,omitempty"`
	Answer      *string  `json:"answer,omitempty"`
	SQL         *string  `json:"sql,omitempty"`
	DownloadURL *string  `json:"download_url,omitempty"`
}

type stepDTO struct {
	Type    string         `json:"type"`
	Tool    *string        `json:"tool,omitempty"`
	Message *string        `json:"message,omitempty"`
	Args    map[string]any `json:"args,omitempty"`
}

// DecodeEvent decodes one line of the NDJSON stream. Blank lines decode to
// a nil event and nil error. Lines that are not a JSON object return an
// error wrapping sawchat.ErrMalformedEvent. Objects with an unrecognized or
// missing type decode to sawchat.EventUnknown.
func DecodeEvent(line []byte) (sawchat.Event, error) {
	line = bytes.TrimSpace(line)
	if len(line) == 0 {
		return nil, nil
	}
	if line[0] != '{' {
		return nil, fmt.Errorf("%w: not a JSON object", sawchat.ErrMalformedEvent)
	}
	var dto eventDTO
	if err := json.Unmarshal(line, &dto); err != nil {
		return nil, fmt.Errorf("%w: %w", sawchat.ErrMalformedEvent, err)
	}

	switch dto.Type {
	case typeStart:
		return sawchat.EventStart{Message: deref(dto.Message)}, nil
	case typeStep:
		var step sawchat.StepInfo
		if dto.Step != nil {
			step = unmarshalStep(*dto.Step)
		}
		return sawchat.EventStep{Step: step}, nil
	case typeAnswerDelta:
		return sawchat.EventAnswerDelta{Text: deref(dto.Text)}, nil
	case typeAnswerFinal:
		return sawchat.EventAnswerFinal{
			Answer:      deref(dto.Answer),
			SQL:         deref(dto.SQL),
			DownloadURL: deref(dto.DownloadURL),
		}, nil
	default:
		return sawchat.EventUnknown{Type: dto.Type}, nil
	}
}

// EncodeEvent is the inverse of DecodeEvent, without the trailing newline.
// Used by fakes of the agent service.
func EncodeEvent(evt sawchat.Event) ([]byte, error) {
	var dto eventDTO
	switch e := evt.(type) {
	case sawchat.EventStart:
		dto = eventDTO{Type: typeStart, Message: ptr(e.Message)}
	case sawchat.EventStep:
		s := marshalStep(e.Step)
		dto = eventDTO{Type: typeStep, Step: &s}
	case sawchat.EventAnswerDelta:
		dto = eventDTO{Type: typeAnswerDelta, Text: ptr(e.Text)}
	case sawchat.EventAnswerFinal:
		dto = eventDTO{
			Type:        typeAnswerFinal,
			Answer:      nonEmpty(e.Answer),
			SQL:         nonEmpty(e.SQL),
			DownloadURL: nonEmpty(e.DownloadURL),
		}
	case sawchat.EventUnknown:
		dto = eventDTO{Type: e.Type}
	default:
		return nil, fmt.Errorf("unknown event type %T", evt)
	}
	return json.Marshal(dto)
}

func unmarshalStep(dto stepDTO) sawchat.StepInfo {
	return sawchat.StepInfo{
		Type:    sawchat.StepKind(dto.Type),
		Tool:    deref(dto.Tool),
		Message: deref(dto.Message),
		Args:    dto.Args,
	}
}

func marshalStep(step sawchat.StepInfo) stepDTO {
	return stepDTO{
		Type:    string(step.Type),
		Tool:    nonEmpty(step.Tool),
		Message: nonEmpty(step.Message),
		Args:    step.Args,
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func ptr(s string) *string { return &s }

func nonEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
