// Package store caches the project list and tracks its loading and error
// state. It is safe for concurrent use; the dashboard calls it from
// bubbletea command goroutines.
package store

import (
	"context"
	"sync"

	"github.com/Iron-Ham/webfactory/internal/api"
	"github.com/Iron-Ham/webfactory/internal/event"
	"github.com/Iron-Ham/webfactory/internal/logging"
)

// Fallback messages used when an error has no text of its own.
const (
	ErrFetchProjects = "Failed to fetch projects"
	ErrCreateProject = "Failed to create project"
)

// ProjectSource is the part of the API client the store uses.
type ProjectSource interface {
	ListProjects(ctx context.Context) (*api.ProjectList, error)
	CreateProject(ctx context.Context, prompt, name string) (*api.Project, error)
	DeleteProject(ctx context.Context, id string) error
}

// Store holds the cached project collection, newest first.
type Store struct {
	source ProjectSource
	bus    *event.Bus
	logger *logging.Logger

	mu       sync.RWMutex
	projects []api.Project
	// inflight counts List calls in progress; Loading is inflight > 0.
	inflight int
	err      string

	initOnce sync.Once
	initErr  error
}

// Option configures a Store.
type Option func(*Store)

// WithBus publishes store events on bus.
func WithBus(bus *event.Bus) Option {
	return func(s *Store) { s.bus = bus }
}

// WithLogger sets the store's logger.
func WithLogger(logger *logging.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New creates an empty store backed by source.
func New(source ProjectSource, opts ...Option) *Store {
	s := &Store{
		source:   source,
		logger:   logging.NopLogger(),
		projects: []api.Project{},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.WithComponent("store")
	return s
}

// List fetches all projects and replaces the collection. On failure the
// previous collection is kept and Err reports the message.
func (s *Store) List(ctx context.Context) error {
	s.mu.Lock()
	s.inflight++
	s.mu.Unlock()

	list, err := s.source.ListProjects(ctx)

	s.mu.Lock()
	s.inflight--
	if err != nil {
		s.err = message(err, ErrFetchProjects)
		msg := s.err
		s.mu.Unlock()

		s.logger.Warn("list projects failed", "error", msg)
		s.publish(event.NewProjectsLoadFailedEvent(msg))
		return err
	}
	s.projects = append([]api.Project(nil), list.Projects...)
	s.err = ""
	count := len(s.projects)
	s.mu.Unlock()

	s.logger.Debug("projects loaded", "count", count)
	s.publish(event.NewProjectsLoadedEvent(count))
	return nil
}

// Refetch reloads the collection. It is equivalent to List.
func (s *Store) Refetch(ctx context.Context) error {
	return s.List(ctx)
}

// EnsureLoaded performs the initial List the first time it is called and
// returns that call's error on every call.
func (s *Store) EnsureLoaded(ctx context.Context) error {
	s.initOnce.Do(func() {
		s.initErr = s.List(ctx)
	})
	return s.initErr
}

// Create submits a prompt and, on success, prepends the new project. The
// backend error is returned unchanged and the collection is not touched.
func (s *Store) Create(ctx context.Context, prompt, name string) (*api.Project, error) {
	p, err := s.source.CreateProject(ctx, prompt, name)
	if err != nil {
		s.logger.Info("create project rejected", "error", message(err, ErrCreateProject))
		return nil, err
	}

	s.mu.Lock()
	next := make([]api.Project, 0, len(s.projects)+1)
	next = append(next, *p)
	next = append(next, s.projects...)
	s.projects = next
	s.mu.Unlock()

	s.logger.Info("project created", "project_id", p.ID)
	s.publish(event.NewProjectCreatedEvent(*p))
	return p, nil
}

// Delete removes a project on the backend and then from the collection.
func (s *Store) Delete(ctx context.Context, id string) error {
	if err := s.source.DeleteProject(ctx, id); err != nil {
		s.logger.Warn("delete project failed", "project_id", id, "error", err.Error())
		return err
	}

	s.mu.Lock()
	kept := make([]api.Project, 0, len(s.projects))
	for _, p := range s.projects {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	s.projects = kept
	s.mu.Unlock()

	s.publish(event.NewProjectDeletedEvent(id))
	return nil
}

// Replace swaps the project with p.ID in place. It reports whether the
// project was present.
func (s *Store) Replace(p api.Project) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.projects {
		if s.projects[i].ID == p.ID {
			s.projects[i] = p
			return true
		}
	}
	return false
}

// Projects returns a copy of the collection.
func (s *Store) Projects() []api.Project {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]api.Project, len(s.projects))
	copy(out, s.projects)
	return out
}

// Get returns the project with id.
func (s *Store) Get(id string) (api.Project, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.projects {
		if p.ID == id {
			return p, true
		}
	}
	return api.Project{}, false
}

// Len returns the number of cached projects.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.projects)
}

// Loading reports whether any List call is in flight.
func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.inflight > 0
}

// Err returns the message of the last failed List, or "".
func (s *Store) Err() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

func (s *Store) publish(e event.Event) {
	if s.bus != nil {
		s.bus.Publish(e)
	}
}

func message(err error, fallback string) string {
	if err == nil || err.Error() == "" {
		return fallback
	}
	return err.Error()
}
