package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
)

type recorded struct {
	method string
	path   string
	header http.Header
	body   string
}

// newTestServer returns a client whose requests are recorded and answered
// with the given status and body.
func newTestServer(t *testing.T, status int, body string) (*Client, func() []recorded) {
	t.Helper()
	var (
		mu   sync.Mutex
		reqs []recorded
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		mu.Lock()
		reqs = append(reqs, recorded{
			method: r.Method,
			path:   r.URL.EscapedPath(),
			header: r.Header.Clone(),
			body:   string(data),
		})
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return New(srv.URL + "/"), func() []recorded {
		mu.Lock()
		defer mu.Unlock()
		return append([]recorded(nil), reqs...)
	}
}

func TestClientRoutes(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		status     int
		body       string
		call       func(c *Client) error
		wantMethod string
		wantPath   string
	}{
		{
			name:   "list projects",
			status: http.StatusOK,
			body:   `{"projects":[],"total":0}`,
			call: func(c *Client) error {
				_, err := c.ListProjects(ctx)
				return err
			},
			wantMethod: http.MethodGet,
			wantPath:   "/api/projects/",
		},
		{
			name:   "get project",
			status: http.StatusOK,
			body:   `{"id":"p1"}`,
			call: func(c *Client) error {
				_, err := c.GetProject(ctx, "p1")
				return err
			},
			wantMethod: http.MethodGet,
			wantPath:   "/api/projects/p1",
		},
		{
			name:   "create project",
			status: http.StatusCreated,
			body:   `{"id":"p1"}`,
			call: func(c *Client) error {
				_, err := c.CreateProject(ctx, "Build a landing page", "")
				return err
			},
			wantMethod: http.MethodPost,
			wantPath:   "/api/projects/",
		},
		{
			name:   "delete project",
			status: http.StatusNoContent,
			call: func(c *Client) error {
				return c.DeleteProject(ctx, "p1")
			},
			wantMethod: http.MethodDelete,
			wantPath:   "/api/projects/p1",
		},
		{
			name:   "pipeline status",
			status: http.StatusOK,
			body:   `{"project_id":"p1","status":"pending","agents":[],"progress":0}`,
			call: func(c *Client) error {
				_, err := c.GetPipelineStatus(ctx, "p1")
				return err
			},
			wantMethod: http.MethodGet,
			wantPath:   "/api/projects/p1/pipeline",
		},
		{
			name:   "start pipeline",
			status: http.StatusOK,
			body:   `{"message":"Pipeline started"}`,
			call: func(c *Client) error {
				_, err := c.StartPipeline(ctx, "p1")
				return err
			},
			wantMethod: http.MethodPost,
			wantPath:   "/api/projects/p1/pipeline/start",
		},
		{
			name:   "agent logs",
			status: http.StatusOK,
			body:   `{"project_id":"p1","logs":[]}`,
			call: func(c *Client) error {
				_, err := c.GetAgentLogs(ctx, "p1")
				return err
			},
			wantMethod: http.MethodGet,
			wantPath:   "/api/agents/logs/p1",
		},
		{
			name:   "health",
			status: http.StatusOK,
			body:   `{"status":"healthy","version":"1.0.0","timestamp":"2026-01-02T15:04:05"}`,
			call: func(c *Client) error {
				_, err := c.Health(ctx)
				return err
			},
			wantMethod: http.MethodGet,
			wantPath:   "/health",
		},
		{
			name:   "escapes ids",
			status: http.StatusOK,
			body:   `{"id":"a/b"}`,
			call: func(c *Client) error {
				_, err := c.GetProject(ctx, "a/b")
				return err
			},
			wantMethod: http.MethodGet,
			wantPath:   "/api/projects/a%2Fb",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, reqs := newTestServer(t, tt.status, tt.body)
			if err := tt.call(c); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			got := reqs()
			if len(got) != 1 {
				t.Fatalf("got %d requests, want 1", len(got))
			}
			req := got[0]
			if req.method != tt.wantMethod || req.path != tt.wantPath {
				t.Errorf("request = %s %s, want %s %s", req.method, req.path, tt.wantMethod, tt.wantPath)
			}
			if ct := req.header.Get("Content-Type"); ct != "application/json" {
				t.Errorf("Content-Type = %q", ct)
			}
			if _, err := uuid.Parse(req.header.Get(requestIDHeader)); err != nil {
				t.Errorf("X-Request-Id is not a uuid: %q", req.header.Get(requestIDHeader))
			}
		})
	}
}

func TestCreateProjectBody(t *testing.T) {
	tests := []struct {
		name     string
		prompt   string
		projName string
		want     map[string]string
	}{
		{"name omitted when empty", "Build a landing page", "", map[string]string{"prompt": "Build a landing page"}},
		{"name included", "Build a blog", "blog", map[string]string{"prompt": "Build a blog", "name": "blog"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, reqs := newTestServer(t, http.StatusCreated,
				`{"id":"p1","name":"project-p1","prompt":"Build a landing page","status":"pending","created_at":"2026-01-02T15:04:05.123456","updated_at":"2026-01-02T15:04:05.123456"}`)

			p, err := c.CreateProject(context.Background(), tt.prompt, tt.projName)
			if err != nil {
				t.Fatalf("CreateProject: %v", err)
			}
			if p.ID != "p1" || p.Status != ProjectPending {
				t.Errorf("project = %+v", p)
			}

			var body map[string]string
			if err := json.Unmarshal([]byte(reqs()[0].body), &body); err != nil {
				t.Fatalf("request body: %v", err)
			}
			if len(body) != len(tt.want) {
				t.Errorf("body = %v, want %v", body, tt.want)
			}
			for k, v := range tt.want {
				if body[k] != v {
					t.Errorf("body[%s] = %q, want %q", k, body[k], v)
				}
			}
		})
	}
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantMsg string
	}{
		{"detail string", http.StatusBadRequest, `{"detail":"prompt too short"}`, "prompt too short"},
		{"not found", http.StatusNotFound, `{"detail":"Project not found"}`, "Project not found"},
		{"validation list", http.StatusUnprocessableEntity,
			`{"detail":[{"loc":["body","prompt"],"msg":"field required","type":"value_error.missing"}]}`, "field required"},
		{"empty detail", http.StatusBadRequest, `{"detail":""}`, GenericErrorMessage},
		{"no detail", http.StatusInternalServerError, `{"error":"boom"}`, GenericErrorMessage},
		{"not json", http.StatusBadGateway, `<html>bad gateway</html>`, GenericErrorMessage},
		{"empty body", http.StatusServiceUnavailable, ``, GenericErrorMessage},
		{"detail object", http.StatusBadRequest, `{"detail":{"code":1}}`, GenericErrorMessage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestServer(t, tt.status, tt.body)
			_, err := c.CreateProject(context.Background(), "x", "")
			if err == nil {
				t.Fatal("expected error")
			}
			if err.Error() != tt.wantMsg {
				t.Errorf("Error() = %q, want %q", err.Error(), tt.wantMsg)
			}
			var reqErr *RequestError
			if !errors.As(err, &reqErr) {
				t.Fatalf("error %T is not *RequestError", err)
			}
			if reqErr.StatusCode != tt.status {
				t.Errorf("StatusCode = %d, want %d", reqErr.StatusCode, tt.status)
			}
			if StatusCode(err) != tt.status {
				t.Errorf("StatusCode(err) = %d", StatusCode(err))
			}
			if reqErr.RequestID == "" {
				t.Error("RequestID not recorded")
			}
		})
	}
}

func TestIsNotFound(t *testing.T) {
	c, _ := newTestServer(t, http.StatusNotFound, `{"detail":"Project not found"}`)
	_, err := c.GetProject(context.Background(), "missing")
	if !IsNotFound(err) {
		t.Errorf("IsNotFound(%v) = false", err)
	}
	if IsNotFound(errors.New("other")) {
		t.Error("IsNotFound(plain error) = true")
	}
	if StatusCode(nil) != 0 {
		t.Error("StatusCode(nil) != 0")
	}
}

func TestDecodeFailureIsGenericRequestError(t *testing.T) {
	c, _ := newTestServer(t, http.StatusOK, `{"projects": "not-a-list"}`)
	_, err := c.ListProjects(context.Background())
	if err == nil {
		t.Fatal("expected decode error")
	}
	if err.Error() != GenericErrorMessage {
		t.Errorf("Error() = %q, want %q", err.Error(), GenericErrorMessage)
	}
}

func TestTransportErrorIsWrapped(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := New(url).ListProjects(context.Background())
	if err == nil {
		t.Fatal("expected transport error")
	}
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		t.Errorf("transport failure should not be a RequestError: %v", err)
	}
	if !strings.Contains(err.Error(), "/api/projects/") {
		t.Errorf("error should name the path: %v", err)
	}
}

func TestContextCancellation(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(func() {
		close(release)
		srv.Close()
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(srv.URL).GetPipelineStatus(ctx, "p1")
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(func() {
		close(release)
		srv.Close()
	})

	_, err := New(srv.URL, WithTimeout(20*time.Millisecond)).Health(context.Background())
	if err == nil {
		t.Fatal("expected timeout error")
	}
}

func TestTimeoutDoesNotChangeSharedClient(t *testing.T) {
	shared := &http.Client{Timeout: time.Minute}
	c := New("http://localhost", WithHTTPClient(shared), WithTimeout(20*time.Millisecond))

	if shared.Timeout != time.Minute {
		t.Errorf("shared client timeout = %v, want 1m", shared.Timeout)
	}
	if c.httpClient == shared {
		t.Fatal("client should hold a copy of the shared client")
	}
	if c.httpClient.Timeout != 20*time.Millisecond {
		t.Errorf("client timeout = %v, want 20ms", c.httpClient.Timeout)
	}

	before := http.DefaultClient.Timeout
	New("http://localhost", WithHTTPClient(http.DefaultClient), WithTimeout(time.Second))
	if http.DefaultClient.Timeout != before {
		t.Errorf("http.DefaultClient timeout changed to %v", http.DefaultClient.Timeout)
	}
}

func TestAgentLogsDecoding(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantLen   int
		wantExit  int
		wantError string
	}{
		{
			name: "started and completed",
			body: `{"project_id":"p1","logs":[
				{"timestamp":"2026-01-02T15:04:05.123456","project_id":"p1","agent":"orchestrator-agent","prompt":"Analyze","status":"started"},
				{"timestamp":"2026-01-02T15:05:00","project_id":"p1","agent":"orchestrator-agent","prompt":"Analyze","status":"completed","exit_code":0}
			]}`,
			wantLen:  2,
			wantExit: 0,
		},
		{
			name: "failed invocation",
			body: `{"project_id":"p1","logs":[
				{"timestamp":"2026-01-02T15:04:05","agent":"devops-agent","status":"failed","error":"claude not found"}
			]}`,
			wantLen:   1,
			wantExit:  -1,
			wantError: "claude not found",
		},
		{
			name:     "null logs",
			body:     `{"project_id":"p1","logs":null}`,
			wantExit: -1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestServer(t, http.StatusOK, tt.body)
			logs, err := c.GetAgentLogs(context.Background(), "p1")
			if err != nil {
				t.Fatalf("GetAgentLogs: %v", err)
			}
			if logs.Logs == nil || len(logs.Logs) != tt.wantLen {
				t.Fatalf("got %d entries (nil=%v), want %d", len(logs.Logs), logs.Logs == nil, tt.wantLen)
			}
			if tt.wantLen == 0 {
				return
			}
			last := logs.Logs[len(logs.Logs)-1]
			exit := -1
			if last.ExitCode != nil {
				exit = *last.ExitCode
			}
			if exit != tt.wantExit {
				t.Errorf("exit code = %d, want %d", exit, tt.wantExit)
			}
			if last.Error != tt.wantError {
				t.Errorf("error = %q, want %q", last.Error, tt.wantError)
			}
			if last.Timestamp.IsZero() || last.Timestamp.Location() != time.UTC {
				t.Errorf("timestamp = %v, want a UTC time", last.Timestamp.Time)
			}
		})
	}
}

func TestListProjectsNilBecomesEmpty(t *testing.T) {
	c, _ := newTestServer(t, http.StatusOK, `{"total":0}`)
	list, err := c.ListProjects(context.Background())
	if err != nil {
		t.Fatalf("ListProjects: %v", err)
	}
	if list.Projects == nil {
		t.Error("Projects should be an empty slice, not nil")
	}
}

func TestPipelineStatusDecoding(t *testing.T) {
	body := `{
		"project_id": "p1",
		"status": "running",
		"current_agent": "design-architect-agent",
		"progress": 0.2,
		"agents": [
			{"agent": "orchestrator-agent", "status": "completed", "started_at": "2026-01-02T15:04:05", "completed_at": "2026-01-02T15:05:05Z"},
			{"agent": "design-architect-agent", "status": "running", "started_at": "2026-01-02T15:05:06.5"}
		]
	}`
	c, _ := newTestServer(t, http.StatusOK, body)

	status, err := c.GetPipelineStatus(context.Background(), "p1")
	if err != nil {
		t.Fatalf("GetPipelineStatus: %v", err)
	}
	if status.Status != PipelineRunning || status.CurrentAgent != "design-architect-agent" {
		t.Errorf("status = %+v", status)
	}
	orch, ok := status.Agent("orchestrator-agent")
	if !ok || orch.Status != AgentCompleted {
		t.Fatalf("orchestrator = %+v, %v", orch, ok)
	}
	want := time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC)
	if !orch.StartedAt.Equal(want) {
		t.Errorf("StartedAt = %v, want %v", orch.StartedAt.Time, want)
	}
	if orch.StartedAt.Location() != time.UTC {
		t.Errorf("zone-less timestamp should be UTC, got %v", orch.StartedAt.Location())
	}
	if status.Percent() != 20 {
		t.Errorf("Percent() = %v, want 20", status.Percent())
	}
}
