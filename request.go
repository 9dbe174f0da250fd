package sawchat

import (
	"fmt"
	"strings"
)

// Request is what a turn sends to the agent: the new prompt and the whole
// history, which already ends with the prompt as a user message.
type Request struct {
	Prompt  string
	History []Message
}

// Validate checks universal constraints on Request.
func (r Request) Validate() error {
	if strings.TrimSpace(r.Prompt) == "" {
		return fmt.Errorf("prompt is empty: %w", ErrValidation)
	}
	for i, msg := range r.History {
		if !msg.Role.Valid() {
			return fmt.Errorf("history[%d]: unknown role %q: %w", i, msg.Role, ErrValidation)
		}
	}
	return nil
}
