// Package testutil provides test helpers shared across webfactory packages,
// most importantly an in-memory stand-in for the factory backend.
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Iron-Ham/webfactory/internal/api"
)

// Failure is a canned error response.
type Failure struct {
	Status int
	// Body is written verbatim. When empty, {"detail": Detail} is sent.
	Body   string
	Detail string
}

// Backend is a fake factory backend served over httptest. Projects are kept
// newest first, matching the real list endpoint. All methods are safe for
// concurrent use.
type Backend struct {
	Server *httptest.Server

	mu        sync.Mutex
	projects  []api.Project
	pipelines map[string]*api.PipelineStatus
	logs      map[string][]api.AgentLogEntry
	failures  map[string]Failure
	calls     map[string]int
	nextID    int
	now       time.Time
}

// NewBackend starts a fake backend and closes it when t completes.
func NewBackend(t *testing.T) *Backend {
	t.Helper()
	b := &Backend{
		pipelines: make(map[string]*api.PipelineStatus),
		logs:      make(map[string][]api.AgentLogEntry),
		failures:  make(map[string]Failure),
		calls:     make(map[string]int),
		nextID:    1,
		now:       time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC),
	}
	b.Server = httptest.NewServer(http.HandlerFunc(b.serve))
	t.Cleanup(b.Server.Close)
	return b
}

// URL returns the base URL of the fake.
func (b *Backend) URL() string {
	return b.Server.URL
}

// Client returns an api.Client pointed at the fake.
func (b *Backend) Client() *api.Client {
	return api.New(b.Server.URL)
}

// AddProject seeds a project at the end of the list (i.e. as the oldest).
func (b *Backend) AddProject(p api.Project) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if p.Status == "" {
		p.Status = api.ProjectPending
	}
	b.projects = append(b.projects, p)
}

// SetProjectStatus changes the status of a stored project. Unknown ids are
// ignored.
func (b *Backend) SetProjectStatus(id string, status api.ProjectStatus) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.projects {
		if b.projects[i].ID == id {
			b.projects[i].Status = status
		}
	}
}

// SetPipeline sets the status returned for a project's pipeline.
func (b *Backend) SetPipeline(status api.PipelineStatus) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pipelines[status.ProjectID] = status.Clone()
}

// AddLog appends an entry to a project's agent log. Like the real backend,
// the logs endpoint answers for any id, known project or not.
func (b *Backend) AddLog(projectID string, entry api.AgentLogEntry) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.logs[projectID] = append(b.logs[projectID], entry)
}

// Fail makes the route identified by key ("METHOD /path") return f until
// Recover is called.
func (b *Backend) Fail(key string, f Failure) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures[key] = f
}

// Recover clears a failure set with Fail.
func (b *Backend) Recover(key string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.failures, key)
}

// Calls returns how many requests hit the route ("METHOD /path").
func (b *Backend) Calls(key string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[key]
}

// Projects returns a copy of the stored projects.
func (b *Backend) Projects() []api.Project {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]api.Project, len(b.projects))
	copy(out, b.projects)
	return out
}

// PipelineKey returns the Calls/Fail key of a project's pipeline endpoint.
func PipelineKey(projectID string) string {
	return "GET /api/projects/" + projectID + "/pipeline"
}

func (b *Backend) serve(w http.ResponseWriter, r *http.Request) {
	key := r.Method + " " + r.URL.Path

	b.mu.Lock()
	b.calls[key]++
	failure, failing := b.failures[key]
	b.mu.Unlock()

	if failing {
		body := failure.Body
		if body == "" {
			data, _ := json.Marshal(map[string]string{"detail": failure.Detail})
			body = string(data)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(failure.Status)
		_, _ = w.Write([]byte(body))
		return
	}

	path := r.URL.Path
	switch {
	case path == "/health" && r.Method == http.MethodGet:
		writeJSON(w, http.StatusOK, api.Health{Status: "healthy", Version: "1.0.0", Timestamp: api.Time{Time: b.now}})
	case path == "/api/projects/" && r.Method == http.MethodGet:
		b.listProjects(w)
	case path == "/api/projects/" && r.Method == http.MethodPost:
		b.createProject(w, r)
	case strings.HasPrefix(path, "/api/agents/logs/") && r.Method == http.MethodGet:
		b.agentLogs(w, strings.TrimPrefix(path, "/api/agents/logs/"))
	case strings.HasPrefix(path, "/api/projects/"):
		b.projectRoute(w, r, strings.TrimPrefix(path, "/api/projects/"))
	default:
		writeDetail(w, http.StatusNotFound, "Not Found")
	}
}

func (b *Backend) agentLogs(w http.ResponseWriter, id string) {
	b.mu.Lock()
	logs := api.AgentLogs{ProjectID: id, Logs: append([]api.AgentLogEntry{}, b.logs[id]...)}
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, logs)
}

func (b *Backend) listProjects(w http.ResponseWriter) {
	b.mu.Lock()
	list := api.ProjectList{Projects: make([]api.Project, len(b.projects)), Total: len(b.projects)}
	copy(list.Projects, b.projects)
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, list)
}

func (b *Backend) createProject(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Prompt string `json:"prompt"`
		Name   string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "invalid body")
		return
	}
	if strings.TrimSpace(req.Prompt) == "" {
		writeDetail(w, http.StatusBadRequest, "prompt is required")
		return
	}

	b.mu.Lock()
	id := fmt.Sprintf("proj-%d", b.nextID)
	b.nextID++
	name := req.Name
	if name == "" {
		name = "project-" + id
	}
	p := api.Project{
		ID:        id,
		Name:      name,
		Prompt:    req.Prompt,
		Status:    api.ProjectPending,
		CreatedAt: api.Time{Time: b.now},
		UpdatedAt: api.Time{Time: b.now},
	}
	b.projects = append([]api.Project{p}, b.projects...)
	b.mu.Unlock()

	writeJSON(w, http.StatusCreated, p)
}

func (b *Backend) projectRoute(w http.ResponseWriter, r *http.Request, rest string) {
	parts := strings.Split(rest, "/")
	id := parts[0]

	b.mu.Lock()
	idx := -1
	for i, p := range b.projects {
		if p.ID == id {
			idx = i
			break
		}
	}
	b.mu.Unlock()
	if idx < 0 {
		writeDetail(w, http.StatusNotFound, "Project not found")
		return
	}

	switch {
	case len(parts) == 1 && r.Method == http.MethodGet:
		b.mu.Lock()
		p := b.projects[idx]
		b.mu.Unlock()
		writeJSON(w, http.StatusOK, p)
	case len(parts) == 1 && r.Method == http.MethodDelete:
		b.mu.Lock()
		b.projects = append(b.projects[:idx], b.projects[idx+1:]...)
		delete(b.pipelines, id)
		b.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	case len(parts) == 2 && parts[1] == "pipeline" && r.Method == http.MethodGet:
		writeJSON(w, http.StatusOK, b.pipeline(id))
	case len(parts) == 3 && parts[1] == "pipeline" && parts[2] == "start" && r.Method == http.MethodPost:
		b.startPipeline(w, id, idx)
	default:
		writeDetail(w, http.StatusMethodNotAllowed, "Method Not Allowed")
	}
}

func (b *Backend) pipeline(id string) *api.PipelineStatus {
	b.mu.Lock()
	defer b.mu.Unlock()
	if status, ok := b.pipelines[id]; ok {
		return status.Clone()
	}
	return &api.PipelineStatus{ProjectID: id, Status: api.PipelinePending, Agents: []api.AgentStatus{}}
}

func (b *Backend) startPipeline(w http.ResponseWriter, id string, idx int) {
	b.mu.Lock()
	if b.projects[idx].Status != api.ProjectPending {
		b.mu.Unlock()
		writeDetail(w, http.StatusBadRequest, "Pipeline already started")
		return
	}
	b.projects[idx].Status = api.ProjectInProgress
	b.pipelines[id] = &api.PipelineStatus{
		ProjectID:    id,
		Status:       api.PipelineRunning,
		CurrentAgent: "orchestrator-agent",
		Agents: []api.AgentStatus{
			{Agent: "orchestrator-agent", Status: api.AgentRunning},
		},
	}
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, api.StartResponse{Message: "Pipeline started"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
