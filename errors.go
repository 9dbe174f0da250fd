package sawchat

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for common failure modes.
var (
	// ErrValidation indicates a request or message failed validation.
	ErrValidation = errors.New("validation error")

	// ErrBusy indicates a turn was started while another one is in flight.
	ErrBusy = errors.New("a turn is already in progress")

	// ErrMalformedEvent indicates a stream line that is not a JSON event.
	ErrMalformedEvent = errors.New("malformed stream event")

	// ErrStreamInterrupted indicates the connection dropped mid-stream.
	ErrStreamInterrupted = errors.New("connection interrupted")

	// ErrNoFinalAnswer indicates the stream ended cleanly without an
	// answer_final event.
	ErrNoFinalAnswer = errors.New("stream ended without final answer")

	// ErrStreamClosed indicates an operation on a closed stream.
	ErrStreamClosed = errors.New("stream closed")
)

// APIError is a non-2xx response from the agent service. Body is the response
// body verbatim.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (%d): %s", e.StatusCode, strings.TrimSpace(e.Body))
}

// ErrorMessage returns the text shown to the user when a turn fails.
func ErrorMessage(err error) string {
	var apiErr *APIError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &apiErr):
		return apiErr.Error()
	case errors.Is(err, ErrStreamInterrupted):
		return "The response was interrupted before it finished. Please try again."
	case errors.Is(err, ErrNoFinalAnswer):
		return "The agent stopped without sending an answer. Please try again."
	case errors.Is(err, ErrBusy):
		return "Please wait for the current answer to finish."
	default:
		return fmt.Sprintf("An error occurred: %v", err)
	}
}
