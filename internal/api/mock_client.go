package api

import (
	"github.com/diogo/gemchat/internal/models"
)

// MockStream is a scripted Stream implementation for testing. It yields
// Chunks in order and then either exhausts gracefully or fails with
// FinalErr. FailAfter cuts the script short: a negative value disables it.
type MockStream struct {
	Chunks   []models.StreamChunk
	FinalErr error
	// FailAfter is the number of chunks delivered before FinalErr surfaces
	FailAfter int

	pos        int
	current    models.StreamChunk
	err        error
	CloseCalls int
	OnComplete func(text string)
}

// NewMockStream builds a stream that yields the given chunks then exhausts
func NewMockStream(chunks ...models.StreamChunk) *MockStream {
	return &MockStream{Chunks: chunks, FailAfter: -1}
}

var _ Stream = (*MockStream)(nil)

func (m *MockStream) Next() bool {
	if m.err != nil {
		return false
	}
	if m.FinalErr != nil && m.FailAfter >= 0 && m.pos >= m.FailAfter {
		m.err = m.FinalErr
		return false
	}
	if m.pos >= len(m.Chunks) {
		if m.FinalErr != nil {
			m.err = m.FinalErr
		} else if m.OnComplete != nil {
			var text string
			for _, c := range m.Chunks {
				text += c.Text
			}
			m.OnComplete(text)
		}
		return false
	}
	m.current = m.Chunks[m.pos]
	m.pos++
	return true
}

func (m *MockStream) Current() models.StreamChunk {
	return m.current
}

func (m *MockStream) Err() error {
	return m.err
}

func (m *MockStream) Close() error {
	m.CloseCalls++
	return nil
}

// MockChatSession is a mock implementation of ChatSessionInterface
type MockChatSession struct {
	StreamVal    Stream
	StreamErr    error
	PersonaVal   string
	HistoryVal   []models.Message
	LastPrompt   string
	StreamCalled int
}

var _ ChatSessionInterface = (*MockChatSession)(nil)

func (m *MockChatSession) StreamMessage(prompt string) (Stream, error) {
	m.StreamCalled++
	m.LastPrompt = prompt
	if m.StreamErr != nil {
		return nil, m.StreamErr
	}
	return m.StreamVal, nil
}

func (m *MockChatSession) Persona() string {
	return m.PersonaVal
}

func (m *MockChatSession) History() []models.Message {
	return m.HistoryVal
}

// MockGeminiClient is a mock implementation of GeminiClientInterface
type MockGeminiClient struct {
	Session     ChatSessionInterface
	Model       models.Model
	IsClosedVal bool
	CloseCalled bool
}

var _ GeminiClientInterface = (*MockGeminiClient)(nil)

func (m *MockGeminiClient) StartChat(opts ...SessionOption) ChatSessionInterface {
	if m.Session != nil {
		return m.Session
	}
	return &MockChatSession{StreamVal: NewMockStream()}
}

func (m *MockGeminiClient) GetModel() models.Model {
	return m.Model
}

func (m *MockGeminiClient) SetModel(model models.Model) {
	m.Model = model
}

func (m *MockGeminiClient) Close() {
	m.CloseCalled = true
}

func (m *MockGeminiClient) IsClosed() bool {
	return m.IsClosedVal
}
