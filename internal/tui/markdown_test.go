package tui

import (
	"strings"
	"testing"

	"timeline-cli/internal/docs"
)

func TestMarkdownStyleRespectsTheme(t *testing.T) {
	t.Setenv("NO_COLOR", "")

	t.Setenv("TIMELINE_TUI_THEME", "light")
	if got := markdownStyle(); got != "light" {
		t.Fatalf("expected light; got %q", got)
	}
	t.Setenv("TIMELINE_TUI_THEME", "dark")
	if got := markdownStyle(); got != "dark" {
		t.Fatalf("expected dark; got %q", got)
	}
}

func TestMarkdownStyleNoColor(t *testing.T) {
	t.Setenv("TIMELINE_TUI_THEME", "dark")
	t.Setenv("NO_COLOR", "1")
	if got := markdownStyle(); got != "notty" {
		t.Fatalf("expected notty under NO_COLOR; got %q", got)
	}
}

func TestRenderMarkdownHelpTopic(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	md, ok := docs.Get(docs.DefaultTopic)
	if !ok {
		t.Fatalf("expected default help topic")
	}
	out := renderMarkdown(md, 60)
	if !strings.Contains(out, "drag") {
		t.Fatalf("expected rendered help to mention dragging; got %q", out)
	}
	if renderMarkdown("   ", 60) != "" {
		t.Fatalf("expected blank input to render empty")
	}
}
