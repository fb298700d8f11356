package render

import (
	"fmt"
	"strings"

	"github.com/diogo/gemchat/internal/models"
)

// Sources formats a citation list as numbered labeled links, one per line.
// Titles are truncated so each line fits the given width.
func Sources(sources []models.Source, width int) string {
	if len(sources) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("Sources:\n")

	for i, src := range sources {
		title := src.Title
		// "N. title (uri)" framing overhead
		maxTitle := width - len(src.URI) - 8
		if maxTitle > 10 && len(title) > maxTitle {
			title = title[:maxTitle-3] + "..."
		}
		sb.WriteString(fmt.Sprintf("%d. %s (%s)", i+1, title, src.URI))
		if i < len(sources)-1 {
			sb.WriteString("\n")
		}
	}

	return sb.String()
}
