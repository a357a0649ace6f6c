package styles

import (
	"slices"

	"github.com/charmbracelet/lipgloss"
)

// ThemeName names a color theme.
type ThemeName string

// Built-in themes.
const (
	ThemeDefault ThemeName = "default" // Violet/green on dark
	ThemeDracula ThemeName = "dracula"
	ThemeNord    ThemeName = "nord"
	ThemeMonokai ThemeName = "monokai"
)

// BuiltinThemes returns the built-in theme names.
func BuiltinThemes() []string {
	return []string{
		string(ThemeDefault),
		string(ThemeDracula),
		string(ThemeNord),
		string(ThemeMonokai),
	}
}

// IsBuiltinTheme reports whether name is a built-in theme.
func IsBuiltinTheme(name string) bool {
	return slices.Contains(BuiltinThemes(), name)
}

// Palette is the set of colors every style is derived from.
type Palette struct {
	Primary lipgloss.Color // active elements, running agent
	Success lipgloss.Color // completed
	Warning lipgloss.Color
	Error   lipgloss.Color // failed, error text
	Muted   lipgloss.Color // idle, secondary text
	Surface lipgloss.Color // status bar background
	Text    lipgloss.Color
	Border  lipgloss.Color

	Blue   lipgloss.Color // in_progress badge
	Yellow lipgloss.Color // pending badge
}

// DefaultPalette returns the default dark palette.
func DefaultPalette() Palette {
	return Palette{
		Primary: lipgloss.Color("#A78BFA"),
		Success: lipgloss.Color("#10B981"),
		Warning: lipgloss.Color("#F59E0B"),
		Error:   lipgloss.Color("#F87171"),
		Muted:   lipgloss.Color("#9CA3AF"),
		Surface: lipgloss.Color("#1F2937"),
		Text:    lipgloss.Color("#F9FAFB"),
		Border:  lipgloss.Color("#6B7280"),
		Blue:    lipgloss.Color("#60A5FA"),
		Yellow:  lipgloss.Color("#FBBF24"),
	}
}

// DraculaPalette returns the Dracula palette.
func DraculaPalette() Palette {
	return Palette{
		Primary: lipgloss.Color("#BD93F9"),
		Success: lipgloss.Color("#50FA7B"),
		Warning: lipgloss.Color("#FFB86C"),
		Error:   lipgloss.Color("#FF5555"),
		Muted:   lipgloss.Color("#6272A4"),
		Surface: lipgloss.Color("#282A36"),
		Text:    lipgloss.Color("#F8F8F2"),
		Border:  lipgloss.Color("#44475A"),
		Blue:    lipgloss.Color("#8BE9FD"),
		Yellow:  lipgloss.Color("#F1FA8C"),
	}
}

// NordPalette returns the Nord palette.
func NordPalette() Palette {
	return Palette{
		Primary: lipgloss.Color("#88C0D0"),
		Success: lipgloss.Color("#A3BE8C"),
		Warning: lipgloss.Color("#D08770"),
		Error:   lipgloss.Color("#BF616A"),
		Muted:   lipgloss.Color("#7B88A1"),
		Surface: lipgloss.Color("#3B4252"),
		Text:    lipgloss.Color("#ECEFF4"),
		Border:  lipgloss.Color("#4C566A"),
		Blue:    lipgloss.Color("#81A1C1"),
		Yellow:  lipgloss.Color("#EBCB8B"),
	}
}

// MonokaiPalette returns the Monokai palette.
func MonokaiPalette() Palette {
	return Palette{
		Primary: lipgloss.Color("#AE81FF"),
		Success: lipgloss.Color("#A6E22E"),
		Warning: lipgloss.Color("#FD971F"),
		Error:   lipgloss.Color("#F92672"),
		Muted:   lipgloss.Color("#75715E"),
		Surface: lipgloss.Color("#272822"),
		Text:    lipgloss.Color("#F8F8F2"),
		Border:  lipgloss.Color("#49483E"),
		Blue:    lipgloss.Color("#66D9EF"),
		Yellow:  lipgloss.Color("#E6DB74"),
	}
}

// GetPalette returns the palette for a built-in or registered custom theme,
// falling back to the default palette for unknown names.
func GetPalette(name ThemeName) Palette {
	switch name {
	case ThemeDracula:
		return DraculaPalette()
	case ThemeNord:
		return NordPalette()
	case ThemeMonokai:
		return MonokaiPalette()
	case ThemeDefault:
		return DefaultPalette()
	}
	if custom := GetCustomTheme(name); custom != nil {
		return custom.ToPalette()
	}
	return DefaultPalette()
}
