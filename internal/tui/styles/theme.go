package styles

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"
)

// ThemeFile is a custom theme loaded from {config dir}/themes/NAME.yaml.
type ThemeFile struct {
	Name        string      `yaml:"name"`
	Description string      `yaml:"description,omitempty"`
	Version     string      `yaml:"version"`
	Colors      ThemeColors `yaml:"colors"`
}

// ThemeColors holds hex colors (#RGB or #RRGGBB). Blue and Yellow are
// optional and default to Primary and Warning.
type ThemeColors struct {
	Primary string `yaml:"primary"`
	Success string `yaml:"success"`
	Warning string `yaml:"warning"`
	Error   string `yaml:"error"`
	Muted   string `yaml:"muted"`
	Surface string `yaml:"surface"`
	Text    string `yaml:"text"`
	Border  string `yaml:"border"`
	Blue    string `yaml:"blue,omitempty"`
	Yellow  string `yaml:"yellow,omitempty"`
}

var hexColorRegex = regexp.MustCompile(`^#([0-9A-Fa-f]{3}|[0-9A-Fa-f]{6})$`)

// LoadThemeFile reads and validates a theme file.
func LoadThemeFile(path string) (*ThemeFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading theme file: %w", err)
	}

	var theme ThemeFile
	if err := yaml.Unmarshal(data, &theme); err != nil {
		return nil, fmt.Errorf("parsing theme file: %w", err)
	}
	if err := theme.Validate(); err != nil {
		return nil, fmt.Errorf("invalid theme: %w", err)
	}
	return &theme, nil
}

// Validate checks the version and every color.
func (t *ThemeFile) Validate() error {
	if t.Name == "" {
		return errors.New("theme name is required")
	}
	if t.Version != "1" {
		return fmt.Errorf("unsupported theme version: %q (supported: 1)", t.Version)
	}

	required := []struct{ name, value string }{
		{"primary", t.Colors.Primary},
		{"success", t.Colors.Success},
		{"warning", t.Colors.Warning},
		{"error", t.Colors.Error},
		{"muted", t.Colors.Muted},
		{"surface", t.Colors.Surface},
		{"text", t.Colors.Text},
		{"border", t.Colors.Border},
	}
	for _, c := range required {
		if c.value == "" {
			return fmt.Errorf("color '%s' is required", c.name)
		}
		if !hexColorRegex.MatchString(c.value) {
			return fmt.Errorf("color '%s' has invalid format: %s (expected #RGB or #RRGGBB)", c.name, c.value)
		}
	}
	for name, value := range map[string]string{"blue": t.Colors.Blue, "yellow": t.Colors.Yellow} {
		if value != "" && !hexColorRegex.MatchString(value) {
			return fmt.Errorf("color '%s' has invalid format: %s (expected #RGB or #RRGGBB)", name, value)
		}
	}
	return nil
}

// ToPalette converts the file into a Palette.
func (t *ThemeFile) ToPalette() Palette {
	c := t.Colors
	return Palette{
		Primary: lipgloss.Color(c.Primary),
		Success: lipgloss.Color(c.Success),
		Warning: lipgloss.Color(c.Warning),
		Error:   lipgloss.Color(c.Error),
		Muted:   lipgloss.Color(c.Muted),
		Surface: lipgloss.Color(c.Surface),
		Text:    lipgloss.Color(c.Text),
		Border:  lipgloss.Color(c.Border),
		Blue:    lipgloss.Color(orDefault(c.Blue, c.Primary)),
		Yellow:  lipgloss.Color(orDefault(c.Yellow, c.Warning)),
	}
}

func orDefault(v, def string) string {
	if v != "" {
		return v
	}
	return def
}

var (
	customMu     sync.RWMutex
	customThemes = map[ThemeName]*ThemeFile{}
)

// RegisterCustomTheme makes a custom theme available to GetPalette.
func RegisterCustomTheme(name ThemeName, theme *ThemeFile) {
	customMu.Lock()
	defer customMu.Unlock()
	customThemes[name] = theme
}

// GetCustomTheme returns a registered custom theme, or nil.
func GetCustomTheme(name ThemeName) *ThemeFile {
	customMu.RLock()
	defer customMu.RUnlock()
	return customThemes[name]
}

// CustomThemeNames returns the registered custom theme names, sorted.
func CustomThemeNames() []string {
	customMu.RLock()
	defer customMu.RUnlock()
	names := make([]string, 0, len(customThemes))
	for name := range customThemes {
		names = append(names, string(name))
	}
	sort.Strings(names)
	return names
}

// ClearCustomThemes forgets every registered custom theme.
func ClearCustomThemes() {
	customMu.Lock()
	defer customMu.Unlock()
	customThemes = map[ThemeName]*ThemeFile{}
}

// IsValidTheme reports whether name is built in or registered.
func IsValidTheme(name string) bool {
	return IsBuiltinTheme(name) || GetCustomTheme(ThemeName(name)) != nil
}

// DiscoverCustomThemes registers every *.yaml/*.yml theme in dir. A missing
// directory is not an error. Files that fail to load, or that would shadow
// a built-in theme, are reported and skipped.
func DiscoverCustomThemes(dir string) ([]string, []error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, []error{fmt.Errorf("reading themes directory: %w", err)}
	}

	var loaded []string
	var errs []error
	for _, entry := range entries {
		name := entry.Name()
		ext := filepath.Ext(name)
		if entry.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}
		themeName := strings.TrimSuffix(name, ext)
		if IsBuiltinTheme(themeName) {
			errs = append(errs, fmt.Errorf("%s: cannot override built-in theme '%s'", name, themeName))
			continue
		}
		theme, err := LoadThemeFile(filepath.Join(dir, name))
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
			continue
		}
		RegisterCustomTheme(ThemeName(themeName), theme)
		loaded = append(loaded, themeName)
	}
	return loaded, errs
}

// SaveTheme validates theme and writes it to {dir}/{name}.yaml, creating
// dir if needed.
func SaveTheme(dir, name string, theme *ThemeFile) (string, error) {
	if err := theme.Validate(); err != nil {
		return "", fmt.Errorf("invalid theme: %w", err)
	}
	data, err := yaml.Marshal(theme)
	if err != nil {
		return "", fmt.Errorf("encoding theme: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating themes directory: %w", err)
	}
	path := filepath.Join(dir, name+".yaml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing theme file: %w", err)
	}
	return path, nil
}

// ExportTheme renders a theme as YAML, ready to be edited and saved as a
// custom theme.
func ExportTheme(name ThemeName) ([]byte, error) {
	if custom := GetCustomTheme(name); custom != nil {
		return yaml.Marshal(custom)
	}
	if !IsBuiltinTheme(string(name)) {
		return nil, fmt.Errorf("unknown theme %q", name)
	}
	p := GetPalette(name)
	return yaml.Marshal(&ThemeFile{
		Name:    string(name),
		Version: "1",
		Colors: ThemeColors{
			Primary: string(p.Primary),
			Success: string(p.Success),
			Warning: string(p.Warning),
			Error:   string(p.Error),
			Muted:   string(p.Muted),
			Surface: string(p.Surface),
			Text:    string(p.Text),
			Border:  string(p.Border),
			Blue:    string(p.Blue),
			Yellow:  string(p.Yellow),
		},
	})
}
