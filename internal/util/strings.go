// Package util holds small text helpers shared by the dashboard and CLI.
package util

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// Ellipsis marks truncated text.
const Ellipsis = "…"

// Truncate shortens s to at most width terminal columns, ending in an
// ellipsis when anything was cut. It is ANSI- and wide-character-aware.
func Truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if lipgloss.Width(s) <= width {
		return s
	}
	if width == 1 {
		return Ellipsis
	}
	return ansi.Truncate(s, width, Ellipsis)
}

// Clamp word-wraps s to width columns and keeps at most lines lines. The
// last kept line gets an ellipsis when text was dropped.
func Clamp(s string, width, lines int) []string {
	if width <= 0 || lines <= 0 {
		return nil
	}
	s = strings.Join(strings.Fields(s), " ")
	if s == "" {
		return []string{""}
	}
	wrapped := strings.Split(ansi.Wrap(s, width, ""), "\n")
	if len(wrapped) <= lines {
		return wrapped
	}
	kept := wrapped[:lines]
	last := kept[lines-1]
	if lipgloss.Width(last)+1 > width {
		last = ansi.Truncate(last, width-1, "")
	}
	kept[lines-1] = last + Ellipsis
	return kept
}

// Humanize turns a snake_case status such as "in_progress" into
// "in progress".
func Humanize(s string) string {
	return strings.ReplaceAll(s, "_", " ")
}

// PadRight pads s with spaces to width columns. Wider strings are returned
// unchanged.
func PadRight(s string, width int) string {
	if w := lipgloss.Width(s); w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s
}
