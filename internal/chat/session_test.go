package chat

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/diogo/gemchat/internal/models"
)

func TestSubmitAppendsUserThenPlaceholder(t *testing.T) {
	session := NewSession()

	id, ok := session.Submit("Hello")
	if !ok {
		t.Fatal("Submit should succeed for non-empty input while idle")
	}

	msgs := session.Store().Messages()
	if len(msgs) != 2 {
		t.Fatalf("Expected exactly 2 messages, got %d", len(msgs))
	}

	if msgs[0].Role != models.RoleUser || msgs[0].Content != "Hello" {
		t.Errorf("First message = %+v, want user 'Hello'", msgs[0])
	}
	if msgs[1].Role != models.RoleAssistant || msgs[1].Content != "" {
		t.Errorf("Second message = %+v, want empty assistant placeholder", msgs[1])
	}
	if len(msgs[1].Sources) != 0 {
		t.Error("Placeholder must start with no sources")
	}
	if msgs[1].ID != id {
		t.Errorf("Submit returned id %q, placeholder has %q", id, msgs[1].ID)
	}

	if !session.Pending() {
		t.Error("Session must be pending after submit")
	}
	if session.State() != StateSending {
		t.Errorf("State = %v, want StateSending", session.State())
	}
}

func TestSubmitTrimsInput(t *testing.T) {
	session := NewSession()

	if _, ok := session.Submit("  Hello  \n"); !ok {
		t.Fatal("Submit should succeed")
	}

	msgs := session.Store().Messages()
	if msgs[0].Content != "Hello" {
		t.Errorf("Content = %q, want trimmed 'Hello'", msgs[0].Content)
	}
}

func TestSubmitRejectsBlankInput(t *testing.T) {
	tests := []string{"", "   ", "\t\n  "}

	for _, input := range tests {
		t.Run(fmt.Sprintf("%q", input), func(t *testing.T) {
			session := NewSession()

			if _, ok := session.Submit(input); ok {
				t.Error("Submit should reject blank input")
			}
			if session.Store().Len() != 0 {
				t.Error("Rejected submit must not change the message count")
			}
			if session.Pending() {
				t.Error("Rejected submit must not set pending")
			}
		})
	}
}

func TestSubmitRejectsWhilePending(t *testing.T) {
	session := NewSession()
	session.Submit("first")

	if _, ok := session.Submit("second"); ok {
		t.Error("Submit should reject while an exchange is pending")
	}
	if session.Store().Len() != 2 {
		t.Errorf("Message count = %d, want 2 (no-op submit)", session.Store().Len())
	}
}

func TestApplyChunkAccumulatesContent(t *testing.T) {
	session := NewSession()
	id, _ := session.Submit("Hello")
	session.BeginStreaming()

	deltas := []string{"Hi ", "there", "!"}
	var want string
	for _, d := range deltas {
		session.ApplyChunk(models.StreamChunk{Text: d})
		want += d

		// After each chunk the placeholder holds the ordered concatenation so far
		msgs := session.Store().Messages()
		if msgs[1].Content != want {
			t.Errorf("After delta %q: content = %q, want %q", d, msgs[1].Content, want)
		}
		if msgs[1].ID != id {
			t.Error("Patches must target the placeholder")
		}
	}

	session.Complete()

	last, _ := session.Store().LastMessage()
	if last.Content != "Hi there!" {
		t.Errorf("Final content = %q, want 'Hi there!'", last.Content)
	}
	if session.Pending() {
		t.Error("Pending must clear on completion")
	}
}

func TestApplyChunkMergesDuplicateSources(t *testing.T) {
	session := NewSession()
	session.Submit("Weather?")
	session.BeginStreaming()

	src := models.Source{URI: "https://x", Title: "X"}
	session.ApplyChunk(models.StreamChunk{
		Text:    "It's sunny.",
		Sources: []models.Source{src, src},
	})
	session.Complete()

	last, _ := session.Store().LastMessage()
	if last.Content != "It's sunny." {
		t.Errorf("Content = %q", last.Content)
	}
	if len(last.Sources) != 1 {
		t.Fatalf("Sources length = %d, want 1", len(last.Sources))
	}
	if last.Sources[0] != src {
		t.Errorf("Sources[0] = %+v", last.Sources[0])
	}
}

func TestApplyChunkSourceOrderIsFirstSeen(t *testing.T) {
	session := NewSession()
	session.Submit("Question")
	session.BeginStreaming()

	a := models.Source{URI: "https://a", Title: "A"}
	b := models.Source{URI: "https://b", Title: "B"}

	session.ApplyChunk(models.StreamChunk{Text: "x", Sources: []models.Source{a}})
	session.ApplyChunk(models.StreamChunk{Text: "y", Sources: []models.Source{b, a}})
	session.Complete()

	last, _ := session.Store().LastMessage()
	if len(last.Sources) != 2 || last.Sources[0] != a || last.Sources[1] != b {
		t.Errorf("Sources = %v, want [A B] in first-seen order", last.Sources)
	}
}

func TestApplyChunkDropsPartialSources(t *testing.T) {
	session := NewSession()
	session.Submit("Question")
	session.BeginStreaming()

	session.ApplyChunk(models.StreamChunk{
		Text: "answer",
		Sources: []models.Source{
			{URI: "https://only-uri"},
			{Title: "only title"},
		},
	})
	session.Complete()

	last, _ := session.Store().LastMessage()
	if last.Sources != nil {
		t.Errorf("Partial sources must be dropped, got %v", last.Sources)
	}
}

func TestSourcesStayUnsetWithoutCitations(t *testing.T) {
	session := NewSession()
	session.Submit("Hello")
	session.BeginStreaming()

	session.ApplyChunk(models.StreamChunk{Text: "Hi "})
	session.ApplyChunk(models.StreamChunk{Text: "there!"})
	session.Complete()

	last, _ := session.Store().LastMessage()
	if last.Sources != nil {
		t.Errorf("Sources must stay unset without citations, got %v", last.Sources)
	}
}

func TestFailAppendsApology(t *testing.T) {
	session := NewSession()
	session.Submit("Hello")
	session.BeginStreaming()
	session.ApplyChunk(models.StreamChunk{Text: "partial "})

	boom := errors.New("connection reset")
	session.Fail(boom)

	msgs := session.Store().Messages()
	if len(msgs) != 3 {
		t.Fatalf("Expected 3 messages after fault, got %d", len(msgs))
	}

	// The partially-streamed placeholder is left as-is
	if msgs[1].Content != "partial " {
		t.Errorf("Placeholder content = %q, want 'partial '", msgs[1].Content)
	}

	apology := msgs[2]
	if apology.Role != models.RoleAssistant || apology.Content != models.ErrorReply {
		t.Errorf("Apology message = %+v", apology)
	}
	if apology.Sources != nil {
		t.Error("Apology must carry no sources")
	}

	if session.Pending() {
		t.Error("Pending must clear on fault")
	}
	if !errors.Is(session.LastFault(), boom) {
		t.Errorf("LastFault = %v, want recorded fault", session.LastFault())
	}
}

func TestFailBeforeAnyChunk(t *testing.T) {
	session := NewSession()
	session.Submit("Hello")

	session.Fail(errors.New("context creation failed"))

	msgs := session.Store().Messages()
	if len(msgs) != 3 {
		t.Fatalf("Expected 3 messages, got %d", len(msgs))
	}
	if msgs[1].Content != "" {
		t.Errorf("Placeholder must remain empty, got %q", msgs[1].Content)
	}
	if msgs[2].Content != models.ErrorReply {
		t.Errorf("Last message = %q, want apology", msgs[2].Content)
	}
	if session.Pending() {
		t.Error("Pending must clear on fault")
	}
}

func TestApplyChunkAfterTerminalIsDropped(t *testing.T) {
	session := NewSession()
	session.Submit("Hello")
	session.BeginStreaming()
	session.Fail(errors.New("boom"))

	before := session.Store().Messages()
	session.ApplyChunk(models.StreamChunk{Text: "stray"})
	after := session.Store().Messages()

	if len(before) != len(after) {
		t.Fatal("Stray chunk must not change message count")
	}
	for i := range before {
		if before[i].Content != after[i].Content {
			t.Error("Stray chunk must not mutate any message")
		}
	}
}

func TestPendingLifecycle(t *testing.T) {
	session := NewSession()

	if session.Pending() {
		t.Error("New session must not be pending")
	}

	session.Submit("Hello")
	if !session.Pending() || session.State() != StateSending {
		t.Error("Pending must be set between submit and terminal state")
	}

	session.BeginStreaming()
	if session.State() != StateStreaming {
		t.Errorf("State = %v, want StateStreaming", session.State())
	}

	session.Complete()
	if session.Pending() || session.State() != StateIdle {
		t.Error("Session must return to idle after completion")
	}

	// And the next submission is permitted again
	if _, ok := session.Submit("Next"); !ok {
		t.Error("Submit must succeed after the previous exchange finished")
	}
}

func TestCompleteWhenIdleIsNoOp(t *testing.T) {
	session := NewSession()
	session.Complete()
	session.Fail(errors.New("boom"))

	if session.Store().Len() != 0 {
		t.Error("Terminal calls while idle must not append messages")
	}
}

func TestBeginStreamingOnlyFromSending(t *testing.T) {
	session := NewSession()

	session.BeginStreaming()
	if session.State() != StateIdle {
		t.Error("BeginStreaming while idle must be a no-op")
	}

	session.Submit("Hello")
	session.BeginStreaming()
	if session.State() != StateStreaming {
		t.Error("BeginStreaming from Sending must enter Streaming")
	}
}

func TestStateString(t *testing.T) {
	tests := []struct {
		state    State
		expected string
	}{
		{StateIdle, "idle"},
		{StateSending, "sending"},
		{StateStreaming, "streaming"},
		{State(42), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.state.String(); got != tt.expected {
			t.Errorf("State(%d).String() = %q, want %q", tt.state, got, tt.expected)
		}
	}
}

func TestMonotonicContentGrowth(t *testing.T) {
	session := NewSession()
	session.Submit("count")
	session.BeginStreaming()

	var want strings.Builder
	for i := 0; i < 20; i++ {
		delta := fmt.Sprintf("%d ", i)
		want.WriteString(delta)
		session.ApplyChunk(models.StreamChunk{Text: delta})
	}
	session.Complete()

	last, _ := session.Store().LastMessage()
	if last.Content != want.String() {
		t.Errorf("Final content lost or reordered deltas:\ngot  %q\nwant %q", last.Content, want.String())
	}
}
