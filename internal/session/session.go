// Package session bundles the objects one webfactory run shares: the API
// client, project store, pipeline poller, event bus and logger. A Session
// is created once per command and closed when the command exits.
package session

import (
	"context"
	"errors"
	"net/http"

	"github.com/Iron-Ham/webfactory/internal/api"
	"github.com/Iron-Ham/webfactory/internal/clock"
	"github.com/Iron-Ham/webfactory/internal/config"
	"github.com/Iron-Ham/webfactory/internal/event"
	"github.com/Iron-Ham/webfactory/internal/logging"
	"github.com/Iron-Ham/webfactory/internal/poller"
	"github.com/Iron-Ham/webfactory/internal/store"
	"github.com/google/uuid"
)

// Session owns the per-run view models and their collaborators.
type Session struct {
	ID     string
	Config *config.Config

	Client *api.Client
	Store  *store.Store
	Poller *poller.Poller
	Bus    *event.Bus
	Logger *logging.Logger
	// Clock drives the poller and timestamps CLI output.
	Clock clock.Clock
}

type options struct {
	logger     *logging.Logger
	clock      clock.Clock
	httpClient *http.Client
}

// Option configures New.
type Option func(*options)

// WithLogger hands the session a logger. The session closes it on Close.
func WithLogger(logger *logging.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithClock sets the clock the session and its poller run on.
func WithClock(c clock.Clock) Option {
	return func(o *options) { o.clock = c }
}

// WithHTTPClient sets the HTTP client used to reach the backend.
func WithHTTPClient(hc *http.Client) Option {
	return func(o *options) { o.httpClient = hc }
}

// New wires a session from cfg. A nil cfg uses config.Default.
func New(cfg *config.Config, opts ...Option) *Session {
	if cfg == nil {
		cfg = config.Default()
	}
	o := options{
		logger: logging.NopLogger(),
		clock:  clock.Real(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	id := uuid.NewString()
	logger := o.logger.With("session_id", id)
	bus := event.NewBus(logger)

	clientOpts := []api.Option{
		api.WithTimeout(cfg.API.Timeout),
		api.WithLogger(logger.WithComponent("api")),
	}
	if o.httpClient != nil {
		clientOpts = append([]api.Option{api.WithHTTPClient(o.httpClient)}, clientOpts...)
	}
	client := api.New(cfg.API.URL, clientOpts...)

	s := &Session{
		ID:     id,
		Config: cfg,
		Client: client,
		Bus:    bus,
		Logger: logger,
		Clock:  o.clock,
		Store:  store.New(client, store.WithBus(bus), store.WithLogger(logger)),
		Poller: poller.New(client,
			poller.WithInterval(cfg.Poll.Interval),
			poller.WithClock(o.clock),
			poller.WithBus(bus),
			poller.WithLogger(logger)),
	}
	bus.SubscribeAll(eventLogger(logger.WithComponent("event")))
	logger.Info("session started", "api_url", client.BaseURL())
	return s
}

// eventLogger returns a bus handler that records every event at debug
// level, leaving a trail of what the session saw.
func eventLogger(logger *logging.Logger) event.Handler {
	return func(e event.Event) {
		args := []any{"event", e.EventType()}
		switch ev := e.(type) {
		case event.ProjectsLoadedEvent:
			args = append(args, "count", ev.Count)
		case event.ProjectsLoadFailedEvent:
			args = append(args, "error", ev.Err)
		case event.ProjectCreatedEvent:
			args = append(args, "project_id", ev.Project.ID)
		case event.ProjectDeletedEvent:
			args = append(args, "project_id", ev.ProjectID)
		case event.PipelineStartedEvent:
			args = append(args, "project_id", ev.ProjectID, "message", ev.Message)
		case event.PipelineUpdatedEvent:
			args = append(args, "project_id", ev.ProjectID)
			if ev.Status != nil {
				args = append(args, "status", string(ev.Status.Status))
			}
		case event.PipelineFetchFailedEvent:
			args = append(args, "project_id", ev.ProjectID, "error", ev.Err)
		}
		logger.Debug("event published", args...)
	}
}

// StartPipeline starts a project's pipeline and announces it on the bus.
func (s *Session) StartPipeline(ctx context.Context, projectID string) (*api.StartResponse, error) {
	resp, err := s.Client.StartPipeline(ctx, projectID)
	if err != nil {
		s.Logger.Warn("pipeline start failed", "project_id", projectID, "error", err.Error())
		return nil, err
	}
	s.Logger.Info("pipeline started", "project_id", projectID)
	s.Bus.Publish(event.NewPipelineStartedEvent(projectID, resp.Message))
	return resp, nil
}

// Close stops polling, drops every bus subscription and closes the logger.
// It is safe to call more than once.
func (s *Session) Close() error {
	var errs []error
	if err := s.Poller.Close(); err != nil {
		errs = append(errs, err)
	}
	s.Bus.Clear()
	s.Logger.Info("session closed")
	if err := s.Logger.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
