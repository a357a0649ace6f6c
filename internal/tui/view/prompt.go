package view

import (
	"strings"

	"github.com/Iron-Ham/webfactory/internal/tui/styles"
	"github.com/Iron-Ham/webfactory/internal/util"
)

// Prompt text.
const (
	PromptTitle       = "What do you want to build?"
	PromptDescription = "Describe your web application idea. The agents will design, build, and deploy it for you."
	PromptPlaceholder = "Create a landing page for a SaaS product that helps teams collaborate on documents. " +
		"Include a hero section, features grid, pricing table, and a contact form..."
	SubmitHint    = "ctrl+s to build my app"
	SubmittingMsg = "Creating…"
)

// PromptState is what the prompt section needs to render.
type PromptState struct {
	// Input is the rendered textarea.
	Input      string
	Focused    bool
	Submitting bool
	// Err is the last create error, shown verbatim.
	Err string
}

// PromptView renders the idea input.
type PromptView struct{}

// Render draws the input panel.
func (PromptView) Render(state PromptState, width int) string {
	inner := max(width-4, 1)

	var b strings.Builder
	b.WriteString(styles.PanelTitle.Render(PromptTitle))
	b.WriteString("\n")
	b.WriteString(styles.Muted.Render(util.Truncate(PromptDescription, inner)))
	b.WriteString("\n\n")
	b.WriteString(state.Input)
	b.WriteString("\n")

	switch {
	case state.Submitting:
		b.WriteString(styles.WarningText.Render(SubmittingMsg))
	case state.Err != "":
		b.WriteString(styles.ErrorText.Render(state.Err))
	default:
		b.WriteString(styles.Muted.Render(SubmitHint))
	}

	panel := styles.Panel
	if state.Focused {
		panel = styles.PanelFocused
	}
	return panel.Width(max(width-2, 1)).Render(b.String())
}
