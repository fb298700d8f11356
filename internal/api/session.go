package api

import (
	"sync"
	"time"

	"github.com/diogo/gemchat/internal/models"
)

// ChatSession maintains conversation context across messages. The system
// instruction is rebuilt on every send so it always carries the current
// wall-clock time.
type ChatSession struct {
	client    *GeminiClient
	mu        sync.RWMutex // Protects history, model, persona
	model     models.Model
	persona   string
	webSearch bool
	history   []models.Message
}

// SessionOption configures a chat session
type SessionOption func(*ChatSession)

// WithSessionModel overrides the client's default model for this session
func WithSessionModel(model models.Model) SessionOption {
	return func(s *ChatSession) {
		s.model = model
	}
}

// WithPersona sets the persona description embedded in the system prompt
func WithPersona(persona string) SessionOption {
	return func(s *ChatSession) {
		s.persona = persona
	}
}

// WithWebSearch toggles the web-search augmentation tool
func WithWebSearch(enabled bool) SessionOption {
	return func(s *ChatSession) {
		s.webSearch = enabled
	}
}

// StreamMessage sends prompt with the accumulated conversation history and
// returns the lazy chunk sequence for the response. The user turn is recorded
// immediately; the assistant turn is recorded by the stream once it is
// exhausted, so a faulted exchange never pollutes the API-side history.
func (s *ChatSession) StreamMessage(prompt string) (Stream, error) {
	s.mu.RLock()
	req := streamRequest{
		model:     s.model,
		system:    models.SystemInstruction(s.persona, time.Now()),
		history:   cloneHistory(s.history),
		prompt:    prompt,
		webSearch: s.webSearch,
	}
	s.mu.RUnlock()

	stream, err := s.client.openStream(req)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.history = append(s.history, models.NewUserMessage(prompt))
	s.mu.Unlock()

	stream.onComplete = s.recordReply
	return stream, nil
}

// recordReply appends the fully accumulated assistant reply to the history
func (s *ChatSession) recordReply(text string) {
	if text == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	msg := models.NewAssistantMessage()
	msg.Content = text
	s.history = append(s.history, msg)
}

// Persona returns the session's persona description
func (s *ChatSession) Persona() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.persona
}

// History returns a copy of the conversation history sent with each request
func (s *ChatSession) History() []models.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneHistory(s.history)
}

func cloneHistory(h []models.Message) []models.Message {
	if h == nil {
		return nil
	}
	result := make([]models.Message, len(h))
	copy(result, h)
	return result
}
