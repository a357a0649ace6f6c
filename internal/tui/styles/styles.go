// Package styles holds the lipgloss styles shared by the dashboard views.
// Styles are package-level so views stay stateless; Apply rebuilds them from
// a Palette when the theme changes.
package styles

import (
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/Iron-Ham/webfactory/internal/api"
)

var applyMu sync.Mutex

// Colors currently in effect.
var (
	PrimaryColor lipgloss.Color
	SuccessColor lipgloss.Color
	WarningColor lipgloss.Color
	ErrorColor   lipgloss.Color
	MutedColor   lipgloss.Color
	SurfaceColor lipgloss.Color
	TextColor    lipgloss.Color
	BorderColor  lipgloss.Color
	BlueColor    lipgloss.Color
	YellowColor  lipgloss.Color
)

// Base styles.
var (
	Title    lipgloss.Style
	Tagline  lipgloss.Style
	Subtitle lipgloss.Style
	Muted    lipgloss.Style
	Text     lipgloss.Style

	ErrorText   lipgloss.Style
	WarningText lipgloss.Style
	SuccessText lipgloss.Style
)

// Panel styles.
var (
	Panel        lipgloss.Style
	PanelFocused lipgloss.Style
	PanelTitle   lipgloss.Style

	Card         lipgloss.Style
	CardSelected lipgloss.Style
	Skeleton     lipgloss.Style
	Link         lipgloss.Style
)

// Tracker styles.
var (
	NodeIdle      lipgloss.Style
	NodeRunning   lipgloss.Style
	NodeCompleted lipgloss.Style
	NodeFailed    lipgloss.Style
	Connector     lipgloss.Style
	ConnectorDone lipgloss.Style

	ProgressFilled lipgloss.Style
	ProgressEmpty  lipgloss.Style
)

// Badge styles by project status.
var (
	BadgePending    lipgloss.Style
	BadgeInProgress lipgloss.Style
	BadgeCompleted  lipgloss.Style
	BadgeFailed     lipgloss.Style
)

// Help and status bar styles.
var (
	HelpKey   lipgloss.Style
	HelpDesc  lipgloss.Style
	StatusBar lipgloss.Style
)

func init() {
	Apply(DefaultPalette())
}

// Apply rebuilds every style from p. It must not run concurrently with
// rendering; the dashboard calls it before the program starts.
func Apply(p Palette) {
	applyMu.Lock()
	defer applyMu.Unlock()

	PrimaryColor = p.Primary
	SuccessColor = p.Success
	WarningColor = p.Warning
	ErrorColor = p.Error
	MutedColor = p.Muted
	SurfaceColor = p.Surface
	TextColor = p.Text
	BorderColor = p.Border
	BlueColor = p.Blue
	YellowColor = p.Yellow

	Title = lipgloss.NewStyle().Bold(true).Foreground(p.Primary)
	Tagline = lipgloss.NewStyle().Foreground(p.Muted).Italic(true)
	Subtitle = lipgloss.NewStyle().Bold(true).Foreground(p.Text)
	Muted = lipgloss.NewStyle().Foreground(p.Muted)
	Text = lipgloss.NewStyle().Foreground(p.Text)
	ErrorText = lipgloss.NewStyle().Foreground(p.Error)
	WarningText = lipgloss.NewStyle().Foreground(p.Warning)
	SuccessText = lipgloss.NewStyle().Foreground(p.Success)

	Panel = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(p.Border).
		Padding(0, 1)
	PanelFocused = Panel.BorderForeground(p.Primary)
	PanelTitle = lipgloss.NewStyle().Bold(true).Foreground(p.Text)

	Card = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(p.Border).
		Padding(0, 1)
	CardSelected = Card.BorderForeground(p.Primary)
	Skeleton = lipgloss.NewStyle().Foreground(p.Border)
	Link = lipgloss.NewStyle().Foreground(p.Blue).Underline(true)

	NodeIdle = lipgloss.NewStyle().Foreground(p.Muted)
	NodeRunning = lipgloss.NewStyle().Foreground(p.Primary).Bold(true)
	NodeCompleted = lipgloss.NewStyle().Foreground(p.Success)
	NodeFailed = lipgloss.NewStyle().Foreground(p.Error).Bold(true)
	Connector = lipgloss.NewStyle().Foreground(p.Border)
	ConnectorDone = lipgloss.NewStyle().Foreground(p.Success)
	ProgressFilled = lipgloss.NewStyle().Foreground(p.Primary)
	ProgressEmpty = lipgloss.NewStyle().Foreground(p.Border)

	badge := lipgloss.NewStyle().Padding(0, 1).Bold(true).Foreground(p.Surface)
	BadgePending = badge.Background(p.Yellow)
	BadgeInProgress = badge.Background(p.Blue)
	BadgeCompleted = badge.Background(p.Success)
	BadgeFailed = badge.Background(p.Error)

	HelpKey = lipgloss.NewStyle().Foreground(p.Primary).Bold(true)
	HelpDesc = lipgloss.NewStyle().Foreground(p.Muted)
	StatusBar = lipgloss.NewStyle().Background(p.Surface).Foreground(p.Text).Padding(0, 1)
}

// ApplyTheme applies a named theme. Unknown names fall back to the default.
func ApplyTheme(name string) {
	Apply(GetPalette(ThemeName(name)))
}

// Badge returns the badge style for a project status. Unknown statuses use
// the muted style.
func Badge(status api.ProjectStatus) lipgloss.Style {
	switch status {
	case api.ProjectPending:
		return BadgePending
	case api.ProjectInProgress:
		return BadgeInProgress
	case api.ProjectCompleted:
		return BadgeCompleted
	case api.ProjectFailed:
		return BadgeFailed
	default:
		return Muted.Padding(0, 1)
	}
}
