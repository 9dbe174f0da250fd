package sawchat

import (
	"fmt"
	"strings"
)

// Message is one entry of the conversation history. Messages are values and
// are never modified after being appended to a Session.
type Message struct {
	Role    Role
	Content string
}

// UserMessage returns a message authored by the user.
func UserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// AssistantMessage returns a message authored by the agent.
func AssistantMessage(content string) Message {
	return Message{Role: RoleAssistant, Content: content}
}

// ValidateMessage checks that a message has a known role and some content.
func ValidateMessage(msg Message) error {
	if !msg.Role.Valid() {
		return fmt.Errorf("unknown role %q: %w", msg.Role, ErrValidation)
	}
	if strings.TrimSpace(msg.Content) == "" {
		return fmt.Errorf("%s message has no content: %w", msg.Role, ErrValidation)
	}
	return nil
}
