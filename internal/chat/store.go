// Package chat owns the conversation state for one session: the ordered
// message list and the lifecycle of a streaming exchange.
package chat

import (
	"github.com/diogo/gemchat/internal/models"
)

// Patch carries the replacement values applied to an in-flight assistant
// message. Sources stays nil until at least one citation has been seen.
type Patch struct {
	Content string
	Sources []models.Source
}

// Store holds the ordered message sequence. It is append/patch-only:
// no deletion, no reordering.
type Store struct {
	messages []models.Message
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{}
}

// Append adds a message to the end of the sequence
func (s *Store) Append(msg models.Message) {
	s.messages = append(s.messages, msg)
}

// UpdateByID replaces the content and sources of the message with the given
// id. Unknown ids are a no-op, which shields the store from late-arriving
// deltas for a superseded exchange.
func (s *Store) UpdateByID(id string, patch Patch) {
	for i := range s.messages {
		if s.messages[i].ID == id {
			s.messages[i].Content = patch.Content
			s.messages[i].Sources = patch.Sources
			return
		}
	}
}

// Messages returns a copy of the ordered message sequence
func (s *Store) Messages() []models.Message {
	result := make([]models.Message, len(s.messages))
	copy(result, s.messages)
	return result
}

// Len returns the number of messages
func (s *Store) Len() int {
	return len(s.messages)
}

// LastMessage returns the most recent message, or false when empty
func (s *Store) LastMessage() (models.Message, bool) {
	if len(s.messages) == 0 {
		return models.Message{}, false
	}
	return s.messages[len(s.messages)-1], true
}
