package msg

import (
	"github.com/Iron-Ham/webfactory/internal/api"
)

// ProjectsLoadedMsg is returned when a project list fetch finishes. Err is
// the store's human-readable message; the store keeps the previous list on
// failure.
type ProjectsLoadedMsg struct {
	Err string
}

// ProjectsChangedMsg is forwarded from the bus whenever the store's
// collection changes, whoever changed it.
type ProjectsChangedMsg struct {
	Type string
}

// ProjectRefreshedMsg is returned when a single project was refetched.
// Missing reports a project the store does not hold, so the whole list
// should be reloaded instead.
type ProjectRefreshedMsg struct {
	ProjectID string
	Missing   bool
	Err       error
}

// ProjectCreatedMsg is returned when a create request finishes.
type ProjectCreatedMsg struct {
	Project *api.Project
	Err     error
}

// ProjectDeletedMsg is returned when a delete request finishes.
type ProjectDeletedMsg struct {
	ProjectID string
	Err       error
}

// PipelineStartedMsg is returned when a start request finishes.
type PipelineStartedMsg struct {
	ProjectID string
	Message   string
	Err       error
}

// PipelineUpdatedMsg is forwarded from the bus after the poller stores a
// new snapshot for ProjectID.
type PipelineUpdatedMsg struct {
	ProjectID string
}

// PipelineFetchFailedMsg is forwarded from the bus when a status fetch
// fails. The previous snapshot is kept.
type PipelineFetchFailedMsg struct {
	ProjectID string
	Err       string
}

// FlashClearMsg clears a transient status line if it is still the one
// identified by Seq.
type FlashClearMsg struct {
	Seq int
}
