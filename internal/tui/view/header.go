package view

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Iron-Ham/webfactory/internal/tui/styles"
)

// Header text.
const (
	AppTitle   = "Agentic Web Factory"
	AppTagline = "Prompt → Design → Build → Deploy"
)

// HeaderView renders the top bar.
type HeaderView struct{}

// Render puts the title on the left and the tagline on the right. The
// tagline is dropped when both do not fit.
func (HeaderView) Render(width int) string {
	title := styles.Title.Render("▣ " + AppTitle)
	tagline := styles.Tagline.Render(AppTagline)

	gap := width - lipgloss.Width(title) - lipgloss.Width(tagline)
	if gap < 2 {
		return title
	}
	return title + strings.Repeat(" ", gap) + tagline
}
