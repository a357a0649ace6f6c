package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Iron-Ham/webfactory/internal/api"
	appconfig "github.com/Iron-Ham/webfactory/internal/config"
	"github.com/Iron-Ham/webfactory/internal/testutil"
)

// setupCLI points the configuration at a fake backend and resets every
// flag variable.
func setupCLI(t *testing.T) *testutil.Backend {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	b := testutil.NewBackend(t)
	viper.Reset()
	appconfig.SetDefaults()
	viper.Set("api.url", b.URL())
	viper.Set("logging.enabled", false)
	resetFlags()
	t.Cleanup(func() {
		viper.Reset()
		resetFlags()
	})
	return b
}

func resetFlags() {
	listJSON, listFilter, listStatus = false, "", ""
	showJSON = false
	createName, createStart, createJSON = "", false, false
	statusJSON = false
	watchInterval, watchTimeout = 0, 0
	logsJSON, logsTail, logsAgent, logsGrep = false, 50, "", ""
	healthJSON = false
}

// newTestCmd returns a command with captured output and a background
// context, standing in for the real subcommand.
func newTestCmd(ctx context.Context) (*cobra.Command, *bytes.Buffer) {
	out := new(bytes.Buffer)
	cmd := &cobra.Command{}
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetContext(ctx)
	return cmd, out
}

func seedProjects(b *testutil.Backend) {
	created := api.Time{Time: time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC)}
	b.AddProject(api.Project{ID: "p-2", Name: "Landing Page", Prompt: "Build a landing page", Status: api.ProjectInProgress, CreatedAt: created})
	b.AddProject(api.Project{ID: "p-1", Name: "Todo App", Prompt: "Build a todo app", Status: api.ProjectCompleted, CreatedAt: created})
}

func TestRootCommand(t *testing.T) {
	if rootCmd.Use != "webfactory" {
		t.Errorf("rootCmd.Use = %q, want %q", rootCmd.Use, "webfactory")
	}

	expected := []string{"dashboard", "projects", "pipeline", "health", "config"}
	cmdMap := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		cmdMap[c.Name()] = true
	}
	for _, name := range expected {
		if !cmdMap[name] {
			t.Errorf("expected subcommand %q not found", name)
		}
	}

	for _, flag := range []string{"config", "api-url"} {
		if rootCmd.PersistentFlags().Lookup(flag) == nil {
			t.Errorf("missing persistent flag --%s", flag)
		}
	}
}

func TestInitConfigReadsEnvironment(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("WEBFACTORY_POLL_INTERVAL", "7s")
	viper.Reset()
	t.Cleanup(viper.Reset)

	initConfig()

	cfg, err := appconfig.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Poll.Interval != 7*time.Second {
		t.Errorf("poll.interval = %v, want 7s from the environment", cfg.Poll.Interval)
	}
	if cfg.API.URL != "http://localhost:8000" {
		t.Errorf("api.url = %q, want the default", cfg.API.URL)
	}
}

func TestNewSessionRejectsInvalidConfig(t *testing.T) {
	setupCLI(t)
	viper.Set("api.url", "localhost")

	_, err := newSession()
	if err == nil || !strings.Contains(err.Error(), "invalid configuration") {
		t.Fatalf("err = %v, want invalid configuration", err)
	}
}

func TestProjectsList(t *testing.T) {
	b := setupCLI(t)
	seedProjects(b)
	cmd, out := newTestCmd(context.Background())

	if err := runProjectsList(cmd, nil); err != nil {
		t.Fatalf("runProjectsList() error = %v", err)
	}

	got := out.String()
	for _, want := range []string{"NAME", "Landing Page", "Todo App", "in progress", "2 projects"} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
	if strings.Index(got, "Landing Page") > strings.Index(got, "Todo App") {
		t.Error("projects should keep the backend's newest-first order")
	}
}

func TestProjectsListFilters(t *testing.T) {
	tests := []struct {
		name    string
		filter  string
		status  string
		want    []string
		notWant []string
		summary string
	}{
		{"glob ignores case", "*landing*", "", []string{"Landing Page"}, []string{"Todo App"}, "1 of 2 projects"},
		{"status", "", "completed", []string{"Todo App"}, []string{"Landing Page"}, "1 of 2 projects"},
		{"glob and status", "todo*", "in_progress", nil, nil, "No projects found."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := setupCLI(t)
			seedProjects(b)
			listFilter, listStatus = tt.filter, tt.status
			cmd, out := newTestCmd(context.Background())

			if err := runProjectsList(cmd, nil); err != nil {
				t.Fatalf("runProjectsList() error = %v", err)
			}
			got := out.String()
			for _, want := range tt.want {
				if !strings.Contains(got, want) {
					t.Errorf("output missing %q:\n%s", want, got)
				}
			}
			for _, notWant := range tt.notWant {
				if strings.Contains(got, notWant) {
					t.Errorf("output should not contain %q:\n%s", notWant, got)
				}
			}
			if !strings.Contains(got, tt.summary) {
				t.Errorf("output missing %q:\n%s", tt.summary, got)
			}
		})
	}
}

func TestNewProjectFilterErrors(t *testing.T) {
	if _, err := newProjectFilter("", "archived"); err == nil || !strings.Contains(err.Error(), "in_progress") {
		t.Errorf("invalid status err = %v, want the valid list", err)
	}
	if _, err := newProjectFilter("[", ""); err == nil {
		t.Error("expected an error for a malformed glob")
	}
}

func TestProjectsListJSON(t *testing.T) {
	b := setupCLI(t)
	seedProjects(b)
	listJSON = true
	cmd, out := newTestCmd(context.Background())

	if err := runProjectsList(cmd, nil); err != nil {
		t.Fatalf("runProjectsList() error = %v", err)
	}
	var projects []api.Project
	if err := json.Unmarshal(out.Bytes(), &projects); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out.String())
	}
	if len(projects) != 2 || projects[0].ID != "p-2" {
		t.Errorf("projects = %+v", projects)
	}
}

func TestProjectsListBackendError(t *testing.T) {
	b := setupCLI(t)
	b.Fail("GET /api/projects/", testutil.Failure{Status: 500, Detail: "database unavailable"})
	cmd, _ := newTestCmd(context.Background())

	err := runProjectsList(cmd, nil)
	if err == nil || !strings.Contains(err.Error(), "database unavailable") {
		t.Errorf("err = %v, want the backend detail", err)
	}
}

func TestProjectsShow(t *testing.T) {
	b := setupCLI(t)
	seedProjects(b)
	cmd, out := newTestCmd(context.Background())

	if err := runProjectsShow(cmd, []string{"p-1"}); err != nil {
		t.Fatalf("runProjectsShow() error = %v", err)
	}
	for _, want := range []string{"Todo App", "completed", "Build a todo app"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q:\n%s", want, out.String())
		}
	}

	err := runProjectsShow(cmd, []string{"missing"})
	if !api.IsNotFound(err) {
		t.Errorf("err = %v, want a 404", err)
	}
}

func TestProjectsCreate(t *testing.T) {
	b := setupCLI(t)
	createName = "Coffee"
	createStart = true
	cmd, out := newTestCmd(context.Background())

	if err := runProjectsCreate(cmd, []string{"Build", "a", "landing", "page"}); err != nil {
		t.Fatalf("runProjectsCreate() error = %v", err)
	}

	projects := b.Projects()
	if len(projects) != 1 {
		t.Fatalf("backend has %d projects, want 1", len(projects))
	}
	p := projects[0]
	if p.Prompt != "Build a landing page" || p.Name != "Coffee" {
		t.Errorf("created %+v", p)
	}
	if p.Status != api.ProjectInProgress {
		t.Errorf("--start should start the pipeline, status = %s", p.Status)
	}
	if !strings.Contains(out.String(), "Pipeline started") {
		t.Errorf("output = %q", out.String())
	}
}

func TestProjectsCreateRejected(t *testing.T) {
	b := setupCLI(t)
	b.Fail("POST /api/projects/", testutil.Failure{Status: 400, Detail: "prompt too short"})
	cmd, _ := newTestCmd(context.Background())

	err := runProjectsCreate(cmd, []string{"hi"})
	if err == nil || !strings.Contains(err.Error(), "prompt too short") {
		t.Errorf("err = %v, want the backend detail", err)
	}
	if api.StatusCode(err) != 400 {
		t.Errorf("StatusCode = %d, want 400", api.StatusCode(err))
	}
}

func TestProjectsCreateJSON(t *testing.T) {
	setupCLI(t)
	createJSON = true
	cmd, out := newTestCmd(context.Background())

	if err := runProjectsCreate(cmd, []string{"Build a blog"}); err != nil {
		t.Fatalf("runProjectsCreate() error = %v", err)
	}
	var p api.Project
	if err := json.Unmarshal(out.Bytes(), &p); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if p.Status != api.ProjectPending || p.Prompt != "Build a blog" {
		t.Errorf("project = %+v", p)
	}
}

func TestProjectsDelete(t *testing.T) {
	b := setupCLI(t)
	seedProjects(b)
	cmd, out := newTestCmd(context.Background())

	if err := runProjectsDelete(cmd, []string{"p-2"}); err != nil {
		t.Fatalf("runProjectsDelete() error = %v", err)
	}
	if got := b.Projects(); len(got) != 1 || got[0].ID != "p-1" {
		t.Errorf("backend projects = %+v", got)
	}
	if !strings.Contains(out.String(), "Deleted project p-2") {
		t.Errorf("output = %q", out.String())
	}
}

func TestHealth(t *testing.T) {
	setupCLI(t)
	cmd, out := newTestCmd(context.Background())

	if err := runHealth(cmd, nil); err != nil {
		t.Fatalf("runHealth() error = %v", err)
	}
	if !strings.Contains(out.String(), "healthy (version 1.0.0)") {
		t.Errorf("output = %q", out.String())
	}
}

func TestHealthUnreachable(t *testing.T) {
	b := setupCLI(t)
	b.Fail("GET /health", testutil.Failure{Status: 503, Detail: "starting up"})
	cmd, _ := newTestCmd(context.Background())

	err := runHealth(cmd, nil)
	if err == nil || !strings.Contains(err.Error(), "unreachable") || !strings.Contains(err.Error(), "starting up") {
		t.Errorf("err = %v", err)
	}
	if !errors.As(err, new(*api.RequestError)) {
		t.Error("the RequestError should stay in the chain")
	}
}
