package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// ProjectStatus is the lifecycle status of a project.
type ProjectStatus string

const (
	ProjectPending    ProjectStatus = "pending"
	ProjectInProgress ProjectStatus = "in_progress"
	ProjectCompleted  ProjectStatus = "completed"
	ProjectFailed     ProjectStatus = "failed"
)

// ProjectStatuses returns every project status in lifecycle order.
func ProjectStatuses() []ProjectStatus {
	return []ProjectStatus{ProjectPending, ProjectInProgress, ProjectCompleted, ProjectFailed}
}

// Valid reports whether s is one of the known project statuses.
func (s ProjectStatus) Valid() bool {
	switch s {
	case ProjectPending, ProjectInProgress, ProjectCompleted, ProjectFailed:
		return true
	}
	return false
}

// AgentState is the lifecycle status of a single pipeline stage.
type AgentState string

const (
	AgentIdle      AgentState = "idle"
	AgentPending   AgentState = "pending"
	AgentRunning   AgentState = "running"
	AgentCompleted AgentState = "completed"
	AgentFailed    AgentState = "failed"
)

// PipelineState is the overall status of a project's pipeline.
type PipelineState string

const (
	PipelinePending   PipelineState = "pending"
	PipelineRunning   PipelineState = "running"
	PipelineCompleted PipelineState = "completed"
	PipelineFailed    PipelineState = "failed"
)

// IsTerminal reports whether the pipeline will not change state again.
func (s PipelineState) IsTerminal() bool {
	return s == PipelineCompleted || s == PipelineFailed
}

// Time is a timestamp that accepts both RFC 3339 and the zone-less ISO 8601
// form the backend emits. Zone-less values are interpreted as UTC.
type Time struct {
	time.Time
}

// zonelessLayouts are tried in order when RFC 3339 parsing fails.
var zonelessLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Time) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		t.Time = time.Time{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("timestamp must be a string: %w", err)
	}
	if s == "" {
		t.Time = time.Time{}
		return nil
	}
	if parsed, err := time.Parse(time.RFC3339Nano, s); err == nil {
		t.Time = parsed
		return nil
	}
	for _, layout := range zonelessLayouts {
		if parsed, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("unrecognized timestamp %q", s)
}

// MarshalJSON implements json.Marshaler.
func (t Time) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.UTC().Format(time.RFC3339Nano))
}

// Project is a single prompt-to-app build request tracked end to end.
type Project struct {
	ID         string        `json:"id"`
	Name       string        `json:"name"`
	Prompt     string        `json:"prompt"`
	Status     ProjectStatus `json:"status"`
	CreatedAt  Time          `json:"created_at"`
	UpdatedAt  Time          `json:"updated_at"`
	RepoURL    string        `json:"repo_url,omitempty"`
	PreviewURL string        `json:"preview_url,omitempty"`
	DeployURL  string        `json:"deploy_url,omitempty"`
}

// ProjectList is the response body of the list endpoint.
type ProjectList struct {
	Projects []Project `json:"projects"`
	Total    int       `json:"total"`
}

// AgentStatus is the status of one pipeline stage.
type AgentStatus struct {
	Agent       string     `json:"agent"`
	Status      AgentState `json:"status"`
	StartedAt   *Time      `json:"started_at,omitempty"`
	CompletedAt *Time      `json:"completed_at,omitempty"`
	Output      string     `json:"output,omitempty"`
	Error       string     `json:"error,omitempty"`
}

// PipelineStatus aggregates the agent statuses of one project.
type PipelineStatus struct {
	ProjectID    string        `json:"project_id"`
	Status       PipelineState `json:"status"`
	CurrentAgent string        `json:"current_agent,omitempty"`
	Agents       []AgentStatus `json:"agents"`
	Progress     float64       `json:"progress"`
}

// Percent returns progress normalized to 0-100. The backend reports either
// a fraction (0-1) or a percentage.
func (p *PipelineStatus) Percent() float64 {
	if p == nil {
		return 0
	}
	v := p.Progress
	if v <= 1 {
		v *= 100
	}
	switch {
	case v < 0:
		return 0
	case v > 100:
		return 100
	}
	return v
}

// Agent returns the status entry for the named agent. When the agent is
// listed more than once the last entry wins.
func (p *PipelineStatus) Agent(name string) (AgentStatus, bool) {
	if p == nil {
		return AgentStatus{}, false
	}
	for i := len(p.Agents) - 1; i >= 0; i-- {
		if p.Agents[i].Agent == name {
			return p.Agents[i], true
		}
	}
	return AgentStatus{}, false
}

// Clone returns a deep copy so callers can hold a snapshot safely.
func (p *PipelineStatus) Clone() *PipelineStatus {
	if p == nil {
		return nil
	}
	c := *p
	c.Agents = make([]AgentStatus, len(p.Agents))
	copy(c.Agents, p.Agents)
	return &c
}

// Agent log statuses. An invocation logs "started" and then one of the
// other two.
const (
	LogStarted   = "started"
	LogCompleted = "completed"
	LogFailed    = "failed"
)

// AgentLogEntry is one record of a project's agent invocation log.
type AgentLogEntry struct {
	Timestamp Time   `json:"timestamp"`
	ProjectID string `json:"project_id,omitempty"`
	Agent     string `json:"agent"`
	Prompt    string `json:"prompt,omitempty"`
	Status    string `json:"status"`
	ExitCode  *int   `json:"exit_code,omitempty"`
	Error     string `json:"error,omitempty"`
}

// AgentLogs is the response body of the agent logs endpoint.
type AgentLogs struct {
	ProjectID string          `json:"project_id"`
	Logs      []AgentLogEntry `json:"logs"`
}

// StartResponse is returned when a pipeline is started.
type StartResponse struct {
	Message string `json:"message"`
}

// Health is the backend's health check payload.
type Health struct {
	Status    string `json:"status"`
	Version   string `json:"version"`
	Timestamp Time   `json:"timestamp"`
}

// createProjectRequest is the body of the create endpoint.
type createProjectRequest struct {
	Prompt string `json:"prompt"`
	Name   string `json:"name,omitempty"`
}
