package event

import (
	"time"

	"github.com/Iron-Ham/webfactory/internal/api"
)

// Event types, named "category.action".
const (
	TypeProjectsLoaded      = "projects.loaded"
	TypeProjectsLoadFailed  = "projects.load_failed"
	TypeProjectCreated      = "project.created"
	TypeProjectDeleted      = "project.deleted"
	TypePipelineStarted     = "pipeline.started"
	TypePipelineUpdated     = "pipeline.updated"
	TypePipelineFetchFailed = "pipeline.fetch_failed"
)

// Event is implemented by everything published on a Bus.
type Event interface {
	EventType() string
	Timestamp() time.Time
}

type baseEvent struct {
	eventType string
	timestamp time.Time
}

func (e baseEvent) EventType() string    { return e.eventType }
func (e baseEvent) Timestamp() time.Time { return e.timestamp }

func newBaseEvent(eventType string) baseEvent {
	return baseEvent{eventType: eventType, timestamp: time.Now()}
}

// ProjectsLoadedEvent is published after the project list is replaced.
type ProjectsLoadedEvent struct {
	baseEvent
	Count int
}

// NewProjectsLoadedEvent creates a ProjectsLoadedEvent.
func NewProjectsLoadedEvent(count int) ProjectsLoadedEvent {
	return ProjectsLoadedEvent{baseEvent: newBaseEvent(TypeProjectsLoaded), Count: count}
}

// ProjectsLoadFailedEvent is published when listing projects fails. The
// previously loaded projects are still available.
type ProjectsLoadFailedEvent struct {
	baseEvent
	Err string
}

// NewProjectsLoadFailedEvent creates a ProjectsLoadFailedEvent.
func NewProjectsLoadFailedEvent(err string) ProjectsLoadFailedEvent {
	return ProjectsLoadFailedEvent{baseEvent: newBaseEvent(TypeProjectsLoadFailed), Err: err}
}

// ProjectCreatedEvent is published once a new project has been prepended
// to the store.
type ProjectCreatedEvent struct {
	baseEvent
	Project api.Project
}

// NewProjectCreatedEvent creates a ProjectCreatedEvent.
func NewProjectCreatedEvent(p api.Project) ProjectCreatedEvent {
	return ProjectCreatedEvent{baseEvent: newBaseEvent(TypeProjectCreated), Project: p}
}

// ProjectDeletedEvent is published after the backend confirms a delete.
type ProjectDeletedEvent struct {
	baseEvent
	ProjectID string
}

// NewProjectDeletedEvent creates a ProjectDeletedEvent.
func NewProjectDeletedEvent(id string) ProjectDeletedEvent {
	return ProjectDeletedEvent{baseEvent: newBaseEvent(TypeProjectDeleted), ProjectID: id}
}

// PipelineStartedEvent is published when the backend accepts a start request.
type PipelineStartedEvent struct {
	baseEvent
	ProjectID string
	Message   string
}

// NewPipelineStartedEvent creates a PipelineStartedEvent.
func NewPipelineStartedEvent(id, message string) PipelineStartedEvent {
	return PipelineStartedEvent{baseEvent: newBaseEvent(TypePipelineStarted), ProjectID: id, Message: message}
}

// PipelineUpdatedEvent carries a fresh status snapshot for the selected
// project. Status is owned by the receiver.
type PipelineUpdatedEvent struct {
	baseEvent
	ProjectID string
	Status    *api.PipelineStatus
}

// NewPipelineUpdatedEvent creates a PipelineUpdatedEvent.
func NewPipelineUpdatedEvent(id string, status *api.PipelineStatus) PipelineUpdatedEvent {
	return PipelineUpdatedEvent{baseEvent: newBaseEvent(TypePipelineUpdated), ProjectID: id, Status: status}
}

// PipelineFetchFailedEvent is published when a status poll fails.
type PipelineFetchFailedEvent struct {
	baseEvent
	ProjectID string
	Err       string
}

// NewPipelineFetchFailedEvent creates a PipelineFetchFailedEvent.
func NewPipelineFetchFailedEvent(id, err string) PipelineFetchFailedEvent {
	return PipelineFetchFailedEvent{baseEvent: newBaseEvent(TypePipelineFetchFailed), ProjectID: id, Err: err}
}
