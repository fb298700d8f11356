package chat

import (
	"strings"

	"github.com/diogo/gemchat/internal/models"
)

// State tracks where the current exchange is in its lifecycle
type State int

const (
	StateIdle State = iota
	StateSending
	StateStreaming
)

// String returns the state name for diagnostics
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSending:
		return "sending"
	case StateStreaming:
		return "streaming"
	}
	return "unknown"
}

// Session owns the conversation store, the pending flag, and the state of
// the in-flight exchange. It is not safe for concurrent use: all methods
// must be called from the single UI loop that owns the session.
type Session struct {
	store       *Store
	state       State
	exchange    *exchange
	assistantID string
	lastFault   error
}

// NewSession creates a session with an empty conversation
func NewSession() *Session {
	return &Session{store: NewStore()}
}

// Store exposes the conversation store for rendering
func (s *Session) Store() *Store {
	return s.store
}

// Pending reports whether an exchange is in flight. New submissions are
// rejected while it is true.
func (s *Session) Pending() bool {
	return s.state != StateIdle
}

// State returns the current exchange state
func (s *Session) State() State {
	return s.state
}

// LastFault returns the fault recorded by the most recent failed exchange
func (s *Session) LastFault() error {
	return s.lastFault
}

// Submit starts an exchange for input. Empty input (after trimming) or a
// pending exchange makes this a silent no-op. Otherwise the user message
// and an empty assistant placeholder are appended, in that order, and the
// placeholder's id is returned for later patching.
func (s *Session) Submit(input string) (assistantID string, ok bool) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" || s.Pending() {
		return "", false
	}

	s.store.Append(models.NewUserMessage(trimmed))

	placeholder := models.NewAssistantMessage()
	s.store.Append(placeholder)

	s.state = StateSending
	s.exchange = newExchange()
	s.assistantID = placeholder.ID
	s.lastFault = nil

	return placeholder.ID, true
}

// BeginStreaming marks the transition from opening the stream to consuming
// chunks. A no-op unless an exchange is being sent.
func (s *Session) BeginStreaming() {
	if s.state == StateSending {
		s.state = StateStreaming
	}
}

// ApplyChunk folds a chunk into the in-flight exchange and patches the
// placeholder with the accumulated content and sources. Chunks arriving
// with no exchange in flight are dropped, guarding against strays after a
// fault has already been reported.
func (s *Session) ApplyChunk(chunk models.StreamChunk) {
	if !s.Pending() || s.exchange == nil {
		return
	}

	patch, changed := s.exchange.apply(chunk)
	if !changed {
		return
	}
	s.store.UpdateByID(s.assistantID, patch)
}

// Complete finishes the exchange gracefully. The placeholder keeps its last
// applied content and sources; the session returns to idle.
func (s *Session) Complete() {
	if !s.Pending() {
		return
	}
	s.finish()
}

// Fail terminates the exchange with a fault: the partially-filled
// placeholder is left as-is and a fixed apology message is appended. The
// fault is retained for diagnostic display.
func (s *Session) Fail(err error) {
	if !s.Pending() {
		return
	}

	apology := models.NewAssistantMessage()
	apology.Content = models.ErrorReply
	s.store.Append(apology)

	s.lastFault = err
	s.finish()
}

func (s *Session) finish() {
	s.state = StateIdle
	s.exchange = nil
	s.assistantID = ""
}
