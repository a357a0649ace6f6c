package cmd

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	appconfig "github.com/Iron-Ham/webfactory/internal/config"
	"github.com/Iron-Ham/webfactory/internal/logging"
	"github.com/Iron-Ham/webfactory/internal/poller"
	"github.com/Iron-Ham/webfactory/internal/testutil"
)

func writeConfig(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := viper.ReadInConfig(); err != nil {
		t.Fatalf("ReadInConfig: %v", err)
	}
}

func TestApplyConfigChange(t *testing.T) {
	b := testutil.NewBackend(t)
	viper.Reset()
	t.Cleanup(viper.Reset)
	appconfig.SetDefaults()
	path := filepath.Join(t.TempDir(), "config.yaml")
	viper.SetConfigFile(path)

	p := poller.New(b.Client(), poller.WithInterval(3*time.Second))
	t.Cleanup(func() { _ = p.Close() })
	logger := logging.NopLogger()

	writeConfig(t, path, "poll:\n  interval: 5s\n")
	applyConfigChange(p, logger, fsnotify.Event{Name: path, Op: fsnotify.Write})
	if got := p.Interval(); got != 5*time.Second {
		t.Fatalf("interval = %v, want 5s", got)
	}

	// Invalid files are ignored.
	writeConfig(t, path, "poll:\n  interval: 10ms\n")
	applyConfigChange(p, logger, fsnotify.Event{Name: path, Op: fsnotify.Write})
	if got := p.Interval(); got != 5*time.Second {
		t.Errorf("interval = %v after an invalid change, want 5s", got)
	}

	// Only writes and creates count.
	writeConfig(t, path, "poll:\n  interval: 2s\n")
	applyConfigChange(p, logger, fsnotify.Event{Name: path, Op: fsnotify.Chmod})
	if got := p.Interval(); got != 5*time.Second {
		t.Errorf("interval = %v after chmod, want 5s", got)
	}
	applyConfigChange(p, logger, fsnotify.Event{Name: path, Op: fsnotify.Create})
	if got := p.Interval(); got != 2*time.Second {
		t.Errorf("interval = %v after create, want 2s", got)
	}
}
