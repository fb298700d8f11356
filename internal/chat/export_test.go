package chat

import (
	"strings"
	"testing"
	"time"

	"github.com/diogo/gemchat/internal/models"
)

func TestExportMarkdown(t *testing.T) {
	store := NewStore()
	store.Append(models.NewUserMessage("What is Go?"))

	reply := models.NewAssistantMessage()
	reply.Content = "A programming language."
	reply.Sources = []models.Source{
		{URI: "https://go.dev", Title: "The Go Programming Language"},
	}
	store.Append(reply)

	out := ExportMarkdown(store, "gemini-2.5-flash")

	for _, want := range []string{
		"# Conversation",
		"**Model:** gemini-2.5-flash",
		"## You",
		"What is Go?",
		"## Assistant",
		"A programming language.",
		"1. [The Go Programming Language](https://go.dev)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Export missing %q:\n%s", want, out)
		}
	}
}

func TestExportMarkdownNoSources(t *testing.T) {
	store := NewStore()
	reply := models.NewAssistantMessage()
	reply.Content = "Hi."
	store.Append(reply)

	out := ExportMarkdown(store, "gemini-2.5-flash")

	if strings.Contains(out, "**Sources:**") {
		t.Error("Export should omit the sources section when there are none")
	}
}

func TestTranscriptFileName(t *testing.T) {
	now := time.Date(2025, time.March, 14, 15, 9, 26, 0, time.UTC)

	got := TranscriptFileName(now)
	if got != "chat-20250314-150926.md" {
		t.Errorf("TranscriptFileName = %q", got)
	}
}
