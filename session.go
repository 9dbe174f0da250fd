package sawchat

import (
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Session is the per-conversation context passed to every component that
// participates in a turn. History is append-only and replayed to the agent
// on every request. Only the turn boundary mutates a Session.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu         sync.Mutex
	history    []Message
	lastSQL    string
	processing bool
	updatedAt  time.Time
}

// NewSession creates an empty session with a random ID.
func NewSession() *Session {
	now := time.Now()
	return &Session{
		ID:        uuid.NewString(),
		CreatedAt: now,
		updatedAt: now,
	}
}

// Begin marks the session as processing a turn. It returns ErrBusy when a
// turn is already in flight.
func (s *Session) Begin() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.processing {
		return ErrBusy
	}
	s.processing = true
	return nil
}

// End clears the processing flag. It is safe to call when no turn is active.
func (s *Session) End() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.processing = false
}

// Processing reports whether a turn is in flight.
func (s *Session) Processing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.processing
}

// Append adds a message to the end of the history.
func (s *Session) Append(msg Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = append(s.history, msg)
	s.updatedAt = time.Now()
}

// History returns a copy of the conversation history in insertion order.
func (s *Session) History() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.history)
}

// HasUserMessage reports whether the user has asked anything yet.
func (s *Session) HasUserMessage() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.ContainsFunc(s.history, func(m Message) bool {
		return m.Role == RoleUser
	})
}

// SetLastSQL records the SQL reported with the most recent answer. An empty
// string clears it.
func (s *Session) SetLastSQL(sql string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSQL = sql
}

// LastSQL returns the SQL reported with the most recent answer, if any.
func (s *Session) LastSQL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSQL
}

// UpdatedAt returns the time of the last history change.
func (s *Session) UpdatedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updatedAt
}
