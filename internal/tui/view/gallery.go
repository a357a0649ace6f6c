package view

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Iron-Ham/webfactory/internal/api"
	"github.com/Iron-Ham/webfactory/internal/tui/styles"
	"github.com/Iron-Ham/webfactory/internal/util"
)

// Gallery text.
const (
	GalleryTitle   = "Your Projects"
	EmptyTitle     = "No projects yet"
	EmptyHint      = "Enter your idea above to create your first project"
	LiveLinkText   = "View Live"
	RepoLinkText   = "GitHub"
	skeletonCards  = 3
	cardGap        = 1
	promptLines    = 2
	cardDateLayout = "Jan 2, 2006"
)

// Column breakpoints for the responsive layout.
const (
	TwoColumnWidth   = 80
	ThreeColumnWidth = 120
)

// Columns returns how many cards fit per row. fixed > 0 overrides the
// responsive choice.
func Columns(width, fixed int) int {
	if fixed > 0 {
		return min(fixed, 3)
	}
	switch {
	case width >= ThreeColumnWidth:
		return 3
	case width >= TwoColumnWidth:
		return 2
	default:
		return 1
	}
}

// GalleryState is what the gallery needs to render.
type GalleryState struct {
	Projects []api.Project
	Loading  bool
	// Selected is the index of the highlighted card, or -1.
	Selected int
	// Active is the id of the project the tracker follows.
	Active  string
	Focused bool
	// FixedColumns pins the column count when > 0.
	FixedColumns int
	// MaxRows limits how many card rows are drawn. 0 draws all of them.
	MaxRows int
}

// CardHeight is the height of one card including its border.
const CardHeight = 6

// GalleryView renders the project grid.
type GalleryView struct{}

// Render draws the gallery panel. The skeleton is shown only until the
// first list arrives; later refreshes keep the cards visible.
func (v GalleryView) Render(state GalleryState, width int) string {
	inner := max(width-4, 1)
	cols := Columns(inner, state.FixedColumns)
	cardWidth := max((inner-(cols-1)*cardGap)/cols, 8)

	var b strings.Builder
	b.WriteString(v.header(state, inner))
	b.WriteString("\n\n")

	switch {
	case state.Loading && len(state.Projects) == 0:
		cards := make([]string, skeletonCards)
		for i := range cards {
			cards[i] = v.skeleton(cardWidth)
		}
		b.WriteString(grid(cards, cols))
	case len(state.Projects) == 0:
		b.WriteString(lipgloss.PlaceHorizontal(inner, lipgloss.Center,
			lipgloss.JoinVertical(lipgloss.Center,
				styles.Muted.Render(EmptyTitle),
				styles.Muted.Render(EmptyHint),
			)))
	default:
		first, last := visibleRange(len(state.Projects), cols, state.Selected, state.MaxRows)
		cards := make([]string, 0, last-first)
		for i := first; i < last; i++ {
			p := state.Projects[i]
			cards = append(cards, v.card(p, cardWidth, i == state.Selected, p.ID == state.Active))
		}
		b.WriteString(grid(cards, cols))
		if first > 0 || last < len(state.Projects) {
			b.WriteString("\n")
			b.WriteString(styles.Muted.Render(fmt.Sprintf("%d–%d of %d", first+1, last, len(state.Projects))))
		}
	}

	panel := styles.Panel
	if state.Focused {
		panel = styles.PanelFocused
	}
	return panel.Width(max(width-2, 1)).Render(b.String())
}

func (GalleryView) header(state GalleryState, width int) string {
	title := styles.PanelTitle.Render(GalleryTitle)
	if state.Loading && len(state.Projects) == 0 {
		return title
	}
	count := CountLabel(len(state.Projects))
	if state.Loading {
		count = "refreshing… " + count
	}
	right := styles.Muted.Render(count)
	gap := width - lipgloss.Width(title) - lipgloss.Width(right)
	if gap < 1 {
		return title
	}
	return title + strings.Repeat(" ", gap) + right
}

// CountLabel renders the project count shown in the gallery header.
func CountLabel(n int) string {
	return fmt.Sprintf("%d projects", n)
}

// card renders one project. width includes the border.
func (GalleryView) card(p api.Project, width int, selected, active bool) string {
	inner := max(width-4, 1)

	badge := styles.Badge(p.Status).Render(util.Humanize(string(p.Status)))
	name := p.Name
	if active {
		name = "● " + name
	}
	nameWidth := max(inner-lipgloss.Width(badge)-1, 1)
	top := util.PadRight(styles.Subtitle.Render(util.Truncate(name, nameWidth)), nameWidth) + " " + badge

	lines := []string{util.Truncate(top, inner)}
	prompt := util.Clamp(p.Prompt, inner, promptLines)
	for len(prompt) < promptLines {
		prompt = append(prompt, "")
	}
	for _, l := range prompt {
		lines = append(lines, styles.Muted.Render(l))
	}
	lines = append(lines, util.Truncate(Meta(p), inner))

	style := styles.Card
	if selected {
		style = styles.CardSelected
	}
	return style.Width(width - 2).Render(strings.Join(lines, "\n"))
}

// Meta renders the creation date and any links of a project.
func Meta(p api.Project) string {
	parts := []string{styles.Muted.Render(p.CreatedAt.Local().Format(cardDateLayout))}
	if p.CreatedAt.IsZero() {
		parts[0] = styles.Muted.Render("—")
	}
	if p.DeployURL != "" {
		parts = append(parts, styles.Link.Render(LiveLinkText))
	}
	if p.RepoURL != "" {
		parts = append(parts, styles.Link.Render(RepoLinkText))
	}
	return strings.Join(parts, styles.Muted.Render(" • "))
}

func (GalleryView) skeleton(width int) string {
	inner := max(width-4, 1)
	bar := styles.Skeleton.Render(strings.Repeat("░", inner))
	return styles.Card.Width(width - 2).Render(strings.Join([]string{bar, bar, bar, bar}, "\n"))
}

// visibleRange returns the half-open range of cards to draw so that the
// selected card's row is within maxRows rows.
func visibleRange(n, cols, selected, maxRows int) (int, int) {
	if maxRows <= 0 {
		return 0, n
	}
	rows := (n + cols - 1) / cols
	if rows <= maxRows {
		return 0, n
	}
	firstRow := 0
	if selected >= 0 {
		if row := selected / cols; row >= maxRows {
			firstRow = row - maxRows + 1
		}
	}
	return firstRow * cols, min((firstRow+maxRows)*cols, n)
}

// grid joins cards into rows of cols.
func grid(cards []string, cols int) string {
	var rows []string
	gap := strings.Repeat(" ", cardGap)
	for start := 0; start < len(cards); start += cols {
		end := min(start+cols, len(cards))
		row := make([]string, 0, 2*(end-start)-1)
		for i := start; i < end; i++ {
			if i > start {
				row = append(row, gap)
			}
			row = append(row, cards[i])
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, row...))
	}
	return strings.Join(rows, "\n")
}
