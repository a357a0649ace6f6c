package view

import (
	"strings"

	"github.com/Iron-Ham/webfactory/internal/tui/styles"
	"github.com/Iron-Ham/webfactory/internal/util"
)

// FooterState is what the footer needs to render.
type FooterState struct {
	// Flash is a transient message such as "Pipeline started".
	Flash    string
	FlashErr bool
	// StoreErr is the project store's fetch error, if any.
	StoreErr string
	// APIURL is the backend the dashboard talks to.
	APIURL string
	// Help is the rendered key help.
	Help string
}

// FooterView renders the status bar and key help.
type FooterView struct{}

// Render draws the status line above the help line. The store error takes
// the left side of the status line; the flash message follows it.
func (FooterView) Render(state FooterState, width int) string {
	inner := max(width-2, 1)

	var left []string
	if state.StoreErr != "" {
		left = append(left, styles.ErrorText.Render("✗ "+state.StoreErr))
	}
	if state.Flash != "" {
		style := styles.SuccessText
		if state.FlashErr {
			style = styles.ErrorText
		}
		left = append(left, style.Render(state.Flash))
	}
	status := strings.Join(left, styles.Muted.Render(" · "))
	if status == "" {
		status = styles.Muted.Render("backend " + state.APIURL)
	}

	lines := []string{styles.StatusBar.Width(width).Render(util.Truncate(status, inner))}
	if state.Help != "" {
		lines = append(lines, " "+state.Help)
	}
	return strings.Join(lines, "\n")
}
