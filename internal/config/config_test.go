package config

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.API.URL != "http://localhost:8000" {
		t.Errorf("API.URL = %q", cfg.API.URL)
	}
	if cfg.API.Timeout != 0 {
		t.Errorf("API.Timeout = %v, want 0", cfg.API.Timeout)
	}
	if cfg.Poll.Interval != 3*time.Second {
		t.Errorf("Poll.Interval = %v, want 3s", cfg.Poll.Interval)
	}
	if cfg.TUI.GalleryColumns != 0 || !cfg.TUI.AltScreen || cfg.TUI.Theme != "default" {
		t.Errorf("TUI = %+v", cfg.TUI)
	}
	if !cfg.Logging.Enabled || cfg.Logging.Level != "info" {
		t.Errorf("Logging = %+v", cfg.Logging)
	}
	if errs := cfg.Validate(); len(errs) != 0 {
		t.Errorf("default config is invalid: %v", ValidationErrors(errs))
	}
}

func TestConfigDir(t *testing.T) {
	t.Run("with XDG_CONFIG_HOME", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", "/custom/config")
		if got := ConfigDir(); got != "/custom/config/webfactory" {
			t.Errorf("ConfigDir() = %q", got)
		}
		if got := ConfigFile(); got != "/custom/config/webfactory/config.yaml" {
			t.Errorf("ConfigFile() = %q", got)
		}
		if got := ThemesDir(); got != "/custom/config/webfactory/themes" {
			t.Errorf("ThemesDir() = %q", got)
		}
	})

	t.Run("without XDG_CONFIG_HOME", func(t *testing.T) {
		home := t.TempDir()
		t.Setenv("XDG_CONFIG_HOME", "")
		t.Setenv("HOME", home)
		if got, want := ConfigDir(), filepath.Join(home, ".config", "webfactory"); got != want {
			t.Errorf("ConfigDir() = %q, want %q", got, want)
		}
	})
}

func TestLoggingResolveDir(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/xdg")
	l := LoggingConfig{}
	if got := l.ResolveDir(); got != "/xdg/webfactory" {
		t.Errorf("ResolveDir() = %q", got)
	}
	l.Dir = "/var/log/webfactory"
	if got := l.ResolveDir(); got != "/var/log/webfactory" {
		t.Errorf("ResolveDir() = %q", got)
	}
}

func TestLoad(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		viper.Reset()
		t.Cleanup(viper.Reset)
		SetDefaults()

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if cfg.Poll.Interval != 3*time.Second {
			t.Errorf("Poll.Interval = %v", cfg.Poll.Interval)
		}
	})

	t.Run("duration strings and overrides", func(t *testing.T) {
		viper.Reset()
		t.Cleanup(viper.Reset)
		SetDefaults()
		viper.Set("poll.interval", "750ms")
		viper.Set("api.timeout", "10s")
		viper.Set("api.url", "https://factory.example.com")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if cfg.Poll.Interval != 750*time.Millisecond {
			t.Errorf("Poll.Interval = %v", cfg.Poll.Interval)
		}
		if cfg.API.Timeout != 10*time.Second {
			t.Errorf("API.Timeout = %v", cfg.API.Timeout)
		}
		if cfg.API.URL != "https://factory.example.com" {
			t.Errorf("API.URL = %q", cfg.API.URL)
		}
	})

	t.Run("invalid values are aggregated", func(t *testing.T) {
		viper.Reset()
		t.Cleanup(viper.Reset)
		SetDefaults()
		viper.Set("poll.interval", "10ms")
		viper.Set("tui.gallery_columns", 7)

		_, err := Load()
		var verrs ValidationErrors
		if !errors.As(err, &verrs) {
			t.Fatalf("Load error = %v, want ValidationErrors", err)
		}
		if len(verrs) != 2 {
			t.Errorf("got %d errors, want 2: %v", len(verrs), verrs)
		}

		if Get().Poll.Interval != 3*time.Second {
			t.Error("Get() should fall back to defaults on invalid config")
		}
	})
}

func TestKeys(t *testing.T) {
	for _, k := range Keys() {
		if !IsKnownKey(k) {
			t.Errorf("IsKnownKey(%q) = false", k)
		}
	}
	if IsKnownKey("api.token") {
		t.Error("api.token should be unknown")
	}

	viper.Reset()
	t.Cleanup(viper.Reset)
	SetDefaults()
	for _, k := range Keys() {
		if !viper.IsSet(k) {
			t.Errorf("no default registered for %q", k)
		}
	}
}

func TestDefaultValues(t *testing.T) {
	values := DefaultValues()
	if len(values) != len(Keys()) {
		t.Errorf("DefaultValues has %d keys, Keys has %d", len(values), len(Keys()))
	}

	viper.Reset()
	t.Cleanup(viper.Reset)
	SetDefaults()
	for _, k := range Keys() {
		v, ok := values[k]
		if !ok {
			t.Errorf("no default value for %q", k)
			continue
		}
		if viper.Get(k) != v {
			t.Errorf("%s: DefaultValues = %v, viper default = %v", k, v, viper.Get(k))
		}
	}
	if _, ok := values["poll.interval"].(time.Duration); !ok {
		t.Error("poll.interval default should be a time.Duration")
	}
}
