package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"

	"github.com/Iron-Ham/webfactory/internal/tui/styles"
)

const oceanTheme = `name: "Ocean"
description: "Deep blue"
version: "1"
colors:
  primary: "#38BDF8"
  success: "#34D399"
  warning: "#FBBF24"
  error: "#F87171"
  muted: "#94A3B8"
  surface: "#0F172A"
  text: "#F8FAFC"
  border: "#475569"
`

func writeTheme(t *testing.T, dir, file, content string) {
	t.Helper()
	themes := filepath.Join(dir, "themes")
	if err := os.MkdirAll(themes, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(themes, file), []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write test theme: %v", err)
	}
}

func TestRunThemeList(t *testing.T) {
	dir := setupConfig(t)
	writeTheme(t, dir, "ocean.yaml", oceanTheme)
	writeTheme(t, dir, "broken.yaml", "name: broken\nversion: \"2\"\n")
	viper.Set("tui.theme", "nord")

	cmd, out, errOut := newTestCmd()
	if err := runThemeList(cmd, nil); err != nil {
		t.Fatalf("runThemeList() error = %v", err)
	}

	got := out.String()
	for _, want := range []string{"- default", "* nord", "Custom themes:", "- ocean - Deep blue"} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
	if !strings.Contains(errOut.String(), "broken.yaml") {
		t.Errorf("expected a load warning for broken.yaml, got %q", errOut.String())
	}
}

func TestRunThemeExport(t *testing.T) {
	setupConfig(t)
	outputPath := filepath.Join(t.TempDir(), "exported.yaml")

	cmd, out, _ := newTestCmd()
	if err := runThemeExport(cmd, []string{"dracula", outputPath}); err != nil {
		t.Fatalf("runThemeExport() error = %v", err)
	}
	if !strings.Contains(out.String(), outputPath) {
		t.Errorf("output = %q", out.String())
	}

	theme, err := styles.LoadThemeFile(outputPath)
	if err != nil {
		t.Fatalf("exported theme does not load: %v", err)
	}
	if theme.Colors.Primary != string(styles.DraculaPalette().Primary) {
		t.Errorf("primary = %s", theme.Colors.Primary)
	}
}

func TestRunThemeExportStdout(t *testing.T) {
	setupConfig(t)
	cmd, out, _ := newTestCmd()
	if err := runThemeExport(cmd, []string{"default"}); err != nil {
		t.Fatalf("runThemeExport() error = %v", err)
	}
	if !bytes.Contains(out.Bytes(), []byte("primary:")) {
		t.Errorf("stdout export missing primary color:\n%s", out.String())
	}
}

func TestRunThemeExportInvalidTheme(t *testing.T) {
	dir := setupConfig(t)
	writeTheme(t, dir, "broken.yaml", "name: broken\nversion: \"2\"\n")

	cmd, _, _ := newTestCmd()
	err := runThemeExport(cmd, []string{"nonexistent"})
	if err == nil || !strings.Contains(err.Error(), "unknown theme") {
		t.Errorf("err = %v, want unknown theme", err)
	}

	err = runThemeExport(cmd, []string{"broken"})
	if err == nil || !strings.Contains(err.Error(), "failed to load") {
		t.Errorf("err = %v, want a load failure", err)
	}
}

func TestRunThemeCreate(t *testing.T) {
	dir := setupConfig(t)
	cmd, out, _ := newTestCmd()

	if err := runThemeCreate(cmd, []string{"solarized"}); err != nil {
		t.Fatalf("runThemeCreate() error = %v", err)
	}
	path := filepath.Join(dir, "themes", "solarized.yaml")
	if _, err := styles.LoadThemeFile(path); err != nil {
		t.Fatalf("created theme does not load: %v", err)
	}
	if !strings.Contains(out.String(), "config set tui.theme solarized") {
		t.Errorf("output = %q", out.String())
	}

	tests := []struct {
		name string
		arg  string
	}{
		{"duplicate", "solarized"},
		{"built-in name", "nord"},
		{"path separator", "a/b"},
		{"empty", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := runThemeCreate(cmd, []string{tt.arg}); err == nil {
				t.Errorf("runThemeCreate(%q) should fail", tt.arg)
			}
		})
	}
}

func TestRunThemePath(t *testing.T) {
	dir := setupConfig(t)
	cmd, out, _ := newTestCmd()
	if err := runThemePath(cmd, nil); err != nil {
		t.Fatalf("runThemePath() error = %v", err)
	}
	if !strings.HasPrefix(out.String(), filepath.Join(dir, "themes")) {
		t.Errorf("output = %q", out.String())
	}
}
