package chat

import (
	"fmt"
	"strings"
	"time"

	"github.com/diogo/gemchat/internal/models"
)

// ExportMarkdown renders the conversation as a Markdown transcript, with
// citation sources listed under each assistant turn.
func ExportMarkdown(store *Store, model string) string {
	var sb strings.Builder

	sb.WriteString("# Conversation\n\n")
	sb.WriteString("**Model:** ")
	sb.WriteString(model)
	sb.WriteString("\n")
	sb.WriteString("**Exported:** ")
	sb.WriteString(time.Now().Format("2006-01-02 15:04:05"))
	sb.WriteString("\n\n---\n\n")

	for _, msg := range store.Messages() {
		switch msg.Role {
		case models.RoleUser:
			sb.WriteString("## You\n\n")
		case models.RoleAssistant:
			sb.WriteString("## Assistant\n\n")
		}

		sb.WriteString(msg.Content)
		sb.WriteString("\n\n")

		if len(msg.Sources) > 0 {
			sb.WriteString("**Sources:**\n\n")
			for i, src := range msg.Sources {
				sb.WriteString(fmt.Sprintf("%d. [%s](%s)\n", i+1, src.Title, src.URI))
			}
			sb.WriteString("\n")
		}
	}

	return sb.String()
}

// TranscriptFileName returns a timestamped file name for an exported
// transcript
func TranscriptFileName(now time.Time) string {
	return fmt.Sprintf("chat-%s.md", now.Format("20060102-150405"))
}
