package render

import (
	"strings"
	"testing"

	"github.com/diogo/gemchat/internal/models"
)

func TestMarkdown(t *testing.T) {
	defer ClearCache()

	out, err := Markdown("# Hello\n\nSome **bold** text.", DefaultOptions())
	if err != nil {
		t.Fatalf("Markdown failed: %v", err)
	}
	if !strings.Contains(out, "Hello") {
		t.Errorf("Rendered output missing heading text:\n%s", out)
	}
}

func TestMarkdownWithWidth(t *testing.T) {
	defer ClearCache()

	out, err := MarkdownWithWidth("plain text", 40)
	if err != nil {
		t.Fatalf("MarkdownWithWidth failed: %v", err)
	}
	if !strings.Contains(out, "plain text") {
		t.Errorf("Rendered output missing content:\n%s", out)
	}
}

func TestRendererPoolReuse(t *testing.T) {
	ClearCache()
	defer ClearCache()

	opts := DefaultOptions()
	if _, err := Markdown("one", opts); err != nil {
		t.Fatalf("Markdown failed: %v", err)
	}
	if _, err := Markdown("two", opts); err != nil {
		t.Fatalf("Markdown failed: %v", err)
	}

	if CacheSize() != 1 {
		t.Errorf("CacheSize = %d, want 1 pool for identical options", CacheSize())
	}

	if _, err := Markdown("three", opts.WithWidth(40)); err != nil {
		t.Fatalf("Markdown failed: %v", err)
	}
	if CacheSize() != 2 {
		t.Errorf("CacheSize = %d, want 2 pools for distinct options", CacheSize())
	}
}

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()

	if opts.Width != 80 {
		t.Errorf("Width = %d, want 80", opts.Width)
	}
	if opts.Style != "dark" {
		t.Errorf("Style = %q, want 'dark'", opts.Style)
	}
	if !opts.PreserveNewLines {
		t.Error("PreserveNewLines should default to true")
	}
}

func TestOptionsBuilders(t *testing.T) {
	opts := DefaultOptions().WithWidth(120).WithStyle("light")

	if opts.Width != 120 || opts.Style != "light" {
		t.Errorf("opts = %+v", opts)
	}
	// Builders return copies
	if DefaultOptions().Width != 80 {
		t.Error("WithWidth must not mutate defaults")
	}
}

func TestSources(t *testing.T) {
	srcs := []models.Source{
		{URI: "https://a.example", Title: "Article A"},
		{URI: "https://b.example", Title: "Article B"},
	}

	out := Sources(srcs, 80)

	if !strings.HasPrefix(out, "Sources:") {
		t.Errorf("Output should start with header:\n%s", out)
	}
	if !strings.Contains(out, "1. Article A (https://a.example)") {
		t.Errorf("Missing first source:\n%s", out)
	}
	if !strings.Contains(out, "2. Article B (https://b.example)") {
		t.Errorf("Missing second source:\n%s", out)
	}
}

func TestSourcesEmpty(t *testing.T) {
	if out := Sources(nil, 80); out != "" {
		t.Errorf("Empty sources should render nothing, got %q", out)
	}
}

func TestSourcesTruncatesLongTitles(t *testing.T) {
	srcs := []models.Source{
		{URI: "https://x.example", Title: strings.Repeat("long ", 40)},
	}

	out := Sources(srcs, 60)

	if !strings.Contains(out, "...") {
		t.Errorf("Long title should be truncated:\n%s", out)
	}
}

func TestTUIThemeByName(t *testing.T) {
	tests := []struct {
		name     string
		expected string
	}{
		{"tokyonight", "tokyonight"},
		{"catppuccin", "catppuccin"},
		{"nord", "nord"},
		{"unknown", "tokyonight"},
		{"", "tokyonight"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TUIThemeByName(tt.name); got.Name != tt.expected {
				t.Errorf("TUIThemeByName(%q) = %q, want %q", tt.name, got.Name, tt.expected)
			}
		})
	}
}

func TestAllTUIThemesComplete(t *testing.T) {
	for _, theme := range AllTUIThemes() {
		if theme.Name == "" || theme.Description == "" {
			t.Errorf("Theme missing metadata: %+v", theme.Name)
		}
		if theme.Primary == "" || theme.Text == "" {
			t.Errorf("Theme %s missing core colors", theme.Name)
		}
	}
}
