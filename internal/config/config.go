package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. WEBFACTORY_API_URL.
const EnvPrefix = "WEBFACTORY"

// Config represents the complete webfactory configuration
type Config struct {
	API     APIConfig     `mapstructure:"api"`
	Poll    PollConfig    `mapstructure:"poll"`
	TUI     TUIConfig     `mapstructure:"tui"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// APIConfig controls how the backend is reached
type APIConfig struct {
	// URL is the backend base URL (default: http://localhost:8000)
	URL string `mapstructure:"url"`
	// Timeout bounds each request. 0 disables the client-side timeout.
	Timeout time.Duration `mapstructure:"timeout"`
}

// PollConfig controls pipeline status polling
type PollConfig struct {
	// Interval between status fetches for the selected project (default: 3s, min: 100ms)
	Interval time.Duration `mapstructure:"interval"`
}

// TUIConfig controls the dashboard
type TUIConfig struct {
	// GalleryColumns fixes the number of project columns (1-3). 0 picks
	// the count from the terminal width.
	GalleryColumns int `mapstructure:"gallery_columns"`
	// AltScreen runs the dashboard in the terminal's alternate screen
	AltScreen bool `mapstructure:"alt_screen"`
	// Theme is the color theme: a built-in name or a custom theme file in
	// {config dir}/themes (default: "default")
	Theme string `mapstructure:"theme"`
}

// LoggingConfig controls debug logging
type LoggingConfig struct {
	// Enabled turns on writing debug.log
	Enabled bool `mapstructure:"enabled"`
	// Level is the minimum level written: debug, info, warn or error
	Level string `mapstructure:"level"`
	// Dir is where debug.log is written. Empty means the config directory.
	Dir string `mapstructure:"dir"`
}

// ResolveDir returns the directory logs are written to.
func (l *LoggingConfig) ResolveDir() string {
	if l.Dir != "" {
		return l.Dir
	}
	return ConfigDir()
}

// Default returns a Config with sensible default values
func Default() *Config {
	return &Config{
		API: APIConfig{
			URL:     "http://localhost:8000",
			Timeout: 0,
		},
		Poll: PollConfig{
			Interval: 3 * time.Second,
		},
		TUI: TUIConfig{
			GalleryColumns: 0,
			AltScreen:      true,
			Theme:          "default",
		},
		Logging: LoggingConfig{
			Enabled: true,
			Level:   "info",
			Dir:     "",
		},
	}
}

// SetDefaults registers default values with viper
func SetDefaults() {
	defaults := Default()

	viper.SetDefault("api.url", defaults.API.URL)
	viper.SetDefault("api.timeout", defaults.API.Timeout)

	viper.SetDefault("poll.interval", defaults.Poll.Interval)

	viper.SetDefault("tui.gallery_columns", defaults.TUI.GalleryColumns)
	viper.SetDefault("tui.alt_screen", defaults.TUI.AltScreen)
	viper.SetDefault("tui.theme", defaults.TUI.Theme)

	viper.SetDefault("logging.enabled", defaults.Logging.Enabled)
	viper.SetDefault("logging.level", defaults.Logging.Level)
	viper.SetDefault("logging.dir", defaults.Logging.Dir)
}

// Keys returns every configuration key in a stable order.
func Keys() []string {
	return []string{
		"api.url",
		"api.timeout",
		"poll.interval",
		"tui.gallery_columns",
		"tui.alt_screen",
		"tui.theme",
		"logging.enabled",
		"logging.level",
		"logging.dir",
	}
}

// DefaultValues maps every key in Keys to its default value. The value's
// type is the type the key accepts.
func DefaultValues() map[string]any {
	d := Default()
	return map[string]any{
		"api.url":             d.API.URL,
		"api.timeout":         d.API.Timeout,
		"poll.interval":       d.Poll.Interval,
		"tui.gallery_columns": d.TUI.GalleryColumns,
		"tui.alt_screen":      d.TUI.AltScreen,
		"tui.theme":           d.TUI.Theme,
		"logging.enabled":     d.Logging.Enabled,
		"logging.level":       d.Logging.Level,
		"logging.dir":         d.Logging.Dir,
	}
}

// IsKnownKey reports whether key is one of Keys.
func IsKnownKey(key string) bool {
	for _, k := range Keys() {
		if k == key {
			return true
		}
	}
	return false
}

// Load reads the configuration from viper into a Config struct and validates it
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}

	return &cfg, nil
}

// Get returns the current configuration, falling back to defaults when it
// cannot be loaded
func Get() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// ConfigDir returns the path to the user's config directory
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "webfactory")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".webfactory"
	}
	return filepath.Join(home, ".config", "webfactory")
}

// ThemesDir returns the directory custom theme files are read from
func ThemesDir() string {
	return filepath.Join(ConfigDir(), "themes")
}

// ConfigFile returns the path to the config file
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}
