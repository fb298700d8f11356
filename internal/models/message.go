package models

import (
	"time"

	"github.com/google/uuid"
)

// Role identifies the author of a message.
type Role int

const (
	RoleUser Role = iota
	RoleAssistant
)

// String returns the wire/display name for the role
func (r Role) String() string {
	switch r {
	case RoleUser:
		return "user"
	case RoleAssistant:
		return "assistant"
	}
	return "unknown"
}

// Source is a web citation grounding part of an assistant response
type Source struct {
	URI   string
	Title string
}

// Valid reports whether the source carries both fields.
// The API may emit grounding entries with either one missing.
func (s Source) Valid() bool {
	return s.URI != "" && s.Title != ""
}

// Message represents one turn in the conversation.
// ID is assigned at creation and is the sole key for later mutation;
// Role and Timestamp never change after creation.
type Message struct {
	ID        string
	Role      Role
	Content   string
	Timestamp time.Time
	Sources   []Source
}

// NewUserMessage creates a user message with a fresh ID
func NewUserMessage(content string) Message {
	return Message{
		ID:        uuid.NewString(),
		Role:      RoleUser,
		Content:   content,
		Timestamp: time.Now(),
	}
}

// NewAssistantMessage creates an empty assistant placeholder with a fresh ID
func NewAssistantMessage() Message {
	return Message{
		ID:        uuid.NewString(),
		Role:      RoleAssistant,
		Timestamp: time.Now(),
	}
}

// StreamChunk is one unit of a streamed response. Either field may be
// empty; Sources may contain duplicates or partial entries.
type StreamChunk struct {
	Text    string
	Sources []Source
}
