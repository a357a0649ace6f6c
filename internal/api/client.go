// Package api provides a typed client for the Agentic Web Factory backend.
//
// The client performs one HTTP request per call and never retries; callers
// decide retry policy. Non-2xx responses are returned as *RequestError
// carrying the server's detail message.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Iron-Ham/webfactory/internal/logging"
	"github.com/google/uuid"
)

const (
	projectsPath  = "/api/projects/"
	agentLogsPath = "/api/agents/logs/"
	healthPath    = "/health"

	// requestIDHeader correlates client log lines with backend logs.
	requestIDHeader = "X-Request-Id"

	defaultUserAgent = "webfactory"
)

// Client talks to the backend's REST API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *logging.Logger
	userAgent  string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout sets a per-request timeout. Zero disables it. The timeout is
// set on a copy, so an HTTP client passed to WithHTTPClient is not changed.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		hc := *c.httpClient
		hc.Timeout = timeout
		c.httpClient = &hc
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(logger *logging.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// New creates a client for the backend at baseURL. A trailing slash on
// baseURL is ignored.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
		logger:     logging.NopLogger(),
		userAgent:  defaultUserAgent,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the backend base URL the client was created with.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// ListProjects returns every project known to the backend.
func (c *Client) ListProjects(ctx context.Context) (*ProjectList, error) {
	var out ProjectList
	if err := c.do(ctx, http.MethodGet, projectsPath, nil, &out); err != nil {
		return nil, err
	}
	if out.Projects == nil {
		out.Projects = []Project{}
	}
	return &out, nil
}

// GetProject returns a single project.
func (c *Client) GetProject(ctx context.Context, id string) (*Project, error) {
	var out Project
	if err := c.do(ctx, http.MethodGet, projectPath(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateProject submits a new prompt. name is optional and omitted when empty.
func (c *Client) CreateProject(ctx context.Context, prompt, name string) (*Project, error) {
	body := createProjectRequest{Prompt: prompt, Name: name}
	var out Project
	if err := c.do(ctx, http.MethodPost, projectsPath, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteProject removes a project.
func (c *Client) DeleteProject(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, projectPath(id), nil, nil)
}

// GetPipelineStatus returns the current agent pipeline status for a project.
func (c *Client) GetPipelineStatus(ctx context.Context, projectID string) (*PipelineStatus, error) {
	var out PipelineStatus
	if err := c.do(ctx, http.MethodGet, projectPath(projectID)+"/pipeline", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// StartPipeline asks the backend to start the agent pipeline for a project.
func (c *Client) StartPipeline(ctx context.Context, projectID string) (*StartResponse, error) {
	var out StartResponse
	if err := c.do(ctx, http.MethodPost, projectPath(projectID)+"/pipeline/start", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetAgentLogs returns the agent invocation log of a project, oldest entry
// first. A project that has not run any agent has an empty log.
func (c *Client) GetAgentLogs(ctx context.Context, projectID string) (*AgentLogs, error) {
	var out AgentLogs
	if err := c.do(ctx, http.MethodGet, agentLogsPath+url.PathEscape(projectID), nil, &out); err != nil {
		return nil, err
	}
	if out.Logs == nil {
		out.Logs = []AgentLogEntry{}
	}
	return &out, nil
}

// Health queries the backend health endpoint.
func (c *Client) Health(ctx context.Context) (*Health, error) {
	var out Health
	if err := c.do(ctx, http.MethodGet, healthPath, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func projectPath(id string) string {
	return projectsPath + url.PathEscape(id)
}

// do performs a JSON request. in is marshaled as the body when non-nil; out
// receives the decoded response when non-nil.
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set(requestIDHeader, requestID)

	log := c.logger.With("method", method, "path", path, "request_id", requestID)
	start := time.Now()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Warn("request failed", "error", err.Error())
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Warn("read response failed", "status", resp.StatusCode, "error", err.Error())
		return fmt.Errorf("read response: %w", err)
	}

	log.Debug("request completed",
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds())

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		reqErr := &RequestError{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Message:    decodeErrorMessage(data),
			RequestID:  requestID,
		}
		log.Info("request rejected", "status", resp.StatusCode, "detail", reqErr.Message)
		return reqErr
	}

	if out == nil || (resp.StatusCode == http.StatusNoContent && len(bytes.TrimSpace(data)) == 0) {
		return nil
	}

	if err := json.Unmarshal(data, out); err != nil {
		log.Warn("decode response failed", "error", err.Error())
		return &RequestError{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Message:    GenericErrorMessage,
			RequestID:  requestID,
		}
	}
	return nil
}
