package util

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		width int
		want  string
	}{
		{"short unchanged", "hello", 10, "hello"},
		{"exact width unchanged", "hello", 5, "hello"},
		{"long truncated", "hello world", 8, "hello w…"},
		{"width one", "hello", 1, "…"},
		{"zero width", "hello", 0, ""},
		{"empty", "", 5, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Truncate(tt.input, tt.width); got != tt.want {
				t.Errorf("Truncate(%q, %d) = %q, want %q", tt.input, tt.width, got, tt.want)
			}
		})
	}
}

func TestTruncateStyled(t *testing.T) {
	styled := lipgloss.NewStyle().Bold(true).Render("Agentic Web Factory")
	got := Truncate(styled, 10)
	if w := lipgloss.Width(got); w != 10 {
		t.Errorf("width = %d, want 10", w)
	}
	if !strings.Contains(got, "…") {
		t.Errorf("missing ellipsis: %q", got)
	}
}

func TestClamp(t *testing.T) {
	prompt := "Build a landing page for a coffee shop with a menu, opening hours and a contact form"

	lines := Clamp(prompt, 20, 2)
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2: %q", len(lines), lines)
	}
	for _, l := range lines {
		if w := lipgloss.Width(l); w > 20 {
			t.Errorf("line %q is %d wide", l, w)
		}
	}
	if !strings.HasSuffix(lines[1], "…") {
		t.Errorf("last line should end with an ellipsis: %q", lines[1])
	}

	short := Clamp("  Build   a blog ", 20, 2)
	if len(short) != 1 || short[0] != "Build a blog" {
		t.Errorf("Clamp(short) = %q", short)
	}

	if Clamp("x", 0, 2) != nil || Clamp("x", 10, 0) != nil {
		t.Error("non-positive bounds should return nil")
	}
	if got := Clamp("   ", 10, 2); len(got) != 1 || got[0] != "" {
		t.Errorf("Clamp(blank) = %q", got)
	}
}

func TestHumanize(t *testing.T) {
	if got := Humanize("in_progress"); got != "in progress" {
		t.Errorf("Humanize = %q", got)
	}
	if got := Humanize("completed"); got != "completed" {
		t.Errorf("Humanize = %q", got)
	}
}

func TestPadRight(t *testing.T) {
	if got := PadRight("ab", 4); got != "ab  " {
		t.Errorf("PadRight = %q", got)
	}
	if got := PadRight("abcdef", 4); got != "abcdef" {
		t.Errorf("PadRight should not cut: %q", got)
	}
}
