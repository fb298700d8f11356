package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/diogo/gemchat/internal/api"
	"github.com/diogo/gemchat/internal/chat"
	"github.com/diogo/gemchat/internal/config"
	apierrors "github.com/diogo/gemchat/internal/errors"
	"github.com/diogo/gemchat/internal/models"
)

func newTestModel() Model {
	client := &api.MockGeminiClient{}
	session := &api.MockChatSession{}
	m := NewChatModel(client, session, "gemini-2.5-flash", config.DefaultConfig())

	// Simulate the initial window size message so the viewport exists
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return updated.(Model)
}

func TestNewChatModel(t *testing.T) {
	client := &api.MockGeminiClient{}
	session := &api.MockChatSession{}

	m := NewChatModel(client, session, "gemini-2.5-flash", config.DefaultConfig())

	if m.chat == nil {
		t.Fatal("expected chat session to be initialized")
	}
	if m.chat.Pending() {
		t.Error("new model should not be pending")
	}
	if m.modelName != "gemini-2.5-flash" {
		t.Errorf("expected model name gemini-2.5-flash, got %s", m.modelName)
	}
}

func TestWindowSizeMakesModelReady(t *testing.T) {
	m := newTestModel()

	if !m.ready {
		t.Error("expected model to be ready after window size message")
	}
	if m.viewport.Width <= 0 || m.viewport.Height <= 0 {
		t.Errorf("viewport has no dimensions: %dx%d", m.viewport.Width, m.viewport.Height)
	}
}

func TestStreamStartedTransitionsToStreaming(t *testing.T) {
	m := newTestModel()

	m.chat.Submit("hello")
	stream := api.NewMockStream(models.StreamChunk{Text: "hi"})

	updated, cmd := m.Update(streamStartedMsg{stream: stream})
	m = updated.(Model)

	if m.chat.State() != chat.StateStreaming {
		t.Errorf("expected Streaming state, got %v", m.chat.State())
	}
	if m.stream == nil {
		t.Error("expected stream to be retained")
	}
	if cmd == nil {
		t.Error("expected a read command to be issued")
	}
}

func TestStreamChunkAppliesDelta(t *testing.T) {
	m := newTestModel()

	m.chat.Submit("hello")
	m.chat.BeginStreaming()
	m.stream = api.NewMockStream()

	chunk := models.StreamChunk{
		Text:    "partial reply",
		Sources: []models.Source{{URI: "https://example.com", Title: "Example"}},
	}
	updated, cmd := m.Update(streamChunkMsg{chunk: chunk})
	m = updated.(Model)

	last, ok := m.chat.Store().LastMessage()
	if !ok {
		t.Fatal("expected messages in store")
	}
	if last.Content != "partial reply" {
		t.Errorf("expected delta applied, got %q", last.Content)
	}
	if len(last.Sources) != 1 {
		t.Errorf("expected 1 source, got %d", len(last.Sources))
	}
	if cmd == nil {
		t.Error("expected the next read command to be issued")
	}
}

func TestStreamDoneReturnsToIdle(t *testing.T) {
	m := newTestModel()

	m.chat.Submit("hello")
	m.chat.BeginStreaming()
	m.chat.ApplyChunk(models.StreamChunk{Text: "answer"})
	m.stream = api.NewMockStream()

	updated, _ := m.Update(streamDoneMsg{})
	m = updated.(Model)

	if m.chat.Pending() {
		t.Error("expected session to be idle after completion")
	}
	if m.stream != nil {
		t.Error("expected stream reference to be cleared")
	}
	last, _ := m.chat.Store().LastMessage()
	if last.Content != "answer" {
		t.Errorf("expected reply preserved, got %q", last.Content)
	}
}

func TestStreamErrAppendsApology(t *testing.T) {
	m := newTestModel()

	m.chat.Submit("hello")
	m.chat.BeginStreaming()

	updated, _ := m.Update(streamErrMsg{err: apierrors.NewStreamError("connection reset", nil)})
	m = updated.(Model)

	if m.chat.Pending() {
		t.Error("expected session to be idle after fault")
	}
	if m.chat.LastFault() == nil {
		t.Error("expected fault to be recorded")
	}
	last, _ := m.chat.Store().LastMessage()
	if last.Content != models.ErrorReply {
		t.Errorf("expected error reply message, got %q", last.Content)
	}
}

func TestStartStreamFailureFailsExchange(t *testing.T) {
	m := newTestModel()
	m.session = &api.MockChatSession{StreamErr: apierrors.ErrStreamClosed}

	m.chat.Submit("hello")
	msg := m.startStream("hello")()

	errMsg, ok := msg.(streamErrMsg)
	if !ok {
		t.Fatalf("expected streamErrMsg, got %T", msg)
	}
	if errMsg.err == nil {
		t.Error("expected error to be carried")
	}
}

func TestReadNextDeliversChunksThenDone(t *testing.T) {
	stream := api.NewMockStream(
		models.StreamChunk{Text: "a"},
		models.StreamChunk{Text: "b"},
	)

	msg := readNext(stream)()
	chunk, ok := msg.(streamChunkMsg)
	if !ok {
		t.Fatalf("expected streamChunkMsg, got %T", msg)
	}
	if chunk.chunk.Text != "a" {
		t.Errorf("expected first chunk, got %q", chunk.chunk.Text)
	}

	msg = readNext(stream)()
	if c, ok := msg.(streamChunkMsg); !ok || c.chunk.Text != "b" {
		t.Fatalf("expected second chunk, got %#v", msg)
	}

	msg = readNext(stream)()
	if _, ok := msg.(streamDoneMsg); !ok {
		t.Fatalf("expected streamDoneMsg, got %T", msg)
	}
	if stream.CloseCalls == 0 {
		t.Error("expected stream to be closed on exhaustion")
	}
}

func TestReadNextReportsMidStreamFault(t *testing.T) {
	stream := api.NewMockStream(
		models.StreamChunk{Text: "a"},
		models.StreamChunk{Text: "b"},
	)
	stream.FinalErr = apierrors.NewStreamError("connection reset", nil)
	stream.FailAfter = 1

	msg := readNext(stream)()
	if _, ok := msg.(streamChunkMsg); !ok {
		t.Fatalf("expected streamChunkMsg, got %T", msg)
	}

	msg = readNext(stream)()
	errMsg, ok := msg.(streamErrMsg)
	if !ok {
		t.Fatalf("expected streamErrMsg, got %T", msg)
	}
	if errMsg.err == nil {
		t.Error("expected error to be carried")
	}
}

func TestEnterIgnoredWhilePending(t *testing.T) {
	m := newTestModel()

	m.chat.Submit("first")
	countBefore := m.chat.Store().Len()

	m.textarea.SetValue("second")
	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(Model)

	if m.chat.Store().Len() != countBefore {
		t.Error("expected no new messages while an exchange is pending")
	}
	if m.textarea.Value() != "second" {
		t.Error("expected input to be preserved while pending")
	}
}

func TestEnterSubmitsAndClearsInput(t *testing.T) {
	m := newTestModel()
	m.session = &api.MockChatSession{StreamVal: api.NewMockStream()}

	m.textarea.SetValue("hello there")
	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(Model)

	if !m.chat.Pending() {
		t.Error("expected exchange to be pending after submit")
	}
	if m.textarea.Value() != "" {
		t.Error("expected input to be cleared after submit")
	}
	if cmd == nil {
		t.Error("expected commands to be issued after submit")
	}
	if m.chat.Store().Len() != 2 {
		t.Errorf("expected user turn and placeholder, got %d messages", m.chat.Store().Len())
	}
}

func TestEscQuitsOnlyWhileIdle(t *testing.T) {
	m := newTestModel()

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if cmd == nil {
		t.Error("expected quit command while idle")
	}

	m.chat.Submit("hello")
	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if cmd != nil {
		t.Error("expected esc to be ignored while pending")
	}
}

func TestViewShowsWelcomeWhenEmpty(t *testing.T) {
	m := newTestModel()

	view := m.View()
	if !strings.Contains(view, "Welcome to Gemini Chat") {
		t.Error("expected welcome screen in empty conversation")
	}
}

func TestViewShowsModelName(t *testing.T) {
	m := newTestModel()

	view := m.View()
	if !strings.Contains(view, "gemini-2.5-flash") {
		t.Error("expected model name in header")
	}
}

func TestUpdateViewportRendersSources(t *testing.T) {
	m := newTestModel()

	m.chat.Submit("question")
	m.chat.BeginStreaming()
	m.chat.ApplyChunk(models.StreamChunk{
		Text:    "grounded answer",
		Sources: []models.Source{{URI: "https://example.com/a", Title: "Example A"}},
	})
	m.chat.Complete()
	m.updateViewport()

	content := m.viewport.View()
	if !strings.Contains(content, "Sources:") {
		t.Error("expected sources list under assistant reply")
	}
	if !strings.Contains(content, "Example A") {
		t.Error("expected source title in rendered output")
	}
}

func TestFormatErrorAddsAuthHint(t *testing.T) {
	m := newTestModel()

	out := m.formatError(apierrors.NewAuthError("invalid key"))
	if !strings.Contains(out, config.APIKeyEnvVar) {
		t.Error("expected auth hint naming the env var")
	}
}

func TestFormatErrorAddsRateLimitHint(t *testing.T) {
	m := newTestModel()

	out := m.formatError(apierrors.NewAPIError(429, "stream", "quota exceeded"))
	if !strings.Contains(out, "limit") {
		t.Error("expected rate limit hint")
	}
	if !strings.Contains(out, "429") {
		t.Error("expected HTTP status in details")
	}
}
