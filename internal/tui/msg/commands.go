package msg

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Iron-Ham/webfactory/internal/api"
)

// FlashDuration is how long a transient status line stays visible.
const FlashDuration = 4 * time.Second

// ProjectLister is the part of the store the load commands need.
type ProjectLister interface {
	EnsureLoaded(ctx context.Context) error
	Refetch(ctx context.Context) error
	Err() string
}

// ProjectGetter fetches a single project from the backend.
type ProjectGetter interface {
	GetProject(ctx context.Context, id string) (*api.Project, error)
}

// ProjectReplacer is the part of the store the refresh command needs.
type ProjectReplacer interface {
	Replace(p api.Project) bool
}

// ProjectCreator is the part of the store the create command needs.
type ProjectCreator interface {
	Create(ctx context.Context, prompt, name string) (*api.Project, error)
}

// ProjectDeleter is the part of the store the delete command needs.
type ProjectDeleter interface {
	Delete(ctx context.Context, id string) error
}

// PipelineStarter starts a project's pipeline.
type PipelineStarter interface {
	StartPipeline(ctx context.Context, projectID string) (*api.StartResponse, error)
}

// LoadInitialProjects runs the store's one-time initial load.
func LoadInitialProjects(ctx context.Context, s ProjectLister) tea.Cmd {
	return func() tea.Msg {
		if err := s.EnsureLoaded(ctx); err != nil {
			return ProjectsLoadedMsg{Err: s.Err()}
		}
		return ProjectsLoadedMsg{}
	}
}

// LoadProjects refetches the project list.
func LoadProjects(ctx context.Context, s ProjectLister) tea.Cmd {
	return func() tea.Msg {
		if err := s.Refetch(ctx); err != nil {
			return ProjectsLoadedMsg{Err: s.Err()}
		}
		return ProjectsLoadedMsg{}
	}
}

// RefreshProject refetches one project and swaps it into the store.
func RefreshProject(ctx context.Context, g ProjectGetter, s ProjectReplacer, id string) tea.Cmd {
	return func() tea.Msg {
		p, err := g.GetProject(ctx, id)
		if err != nil {
			return ProjectRefreshedMsg{ProjectID: id, Err: err}
		}
		return ProjectRefreshedMsg{ProjectID: id, Missing: !s.Replace(*p)}
	}
}

// CreateProject submits a prompt. The store prepends the project on success.
func CreateProject(ctx context.Context, s ProjectCreator, prompt string) tea.Cmd {
	return func() tea.Msg {
		p, err := s.Create(ctx, prompt, "")
		return ProjectCreatedMsg{Project: p, Err: err}
	}
}

// DeleteProject deletes a project.
func DeleteProject(ctx context.Context, s ProjectDeleter, id string) tea.Cmd {
	return func() tea.Msg {
		return ProjectDeletedMsg{ProjectID: id, Err: s.Delete(ctx, id)}
	}
}

// StartPipeline starts the pipeline of a project.
func StartPipeline(ctx context.Context, s PipelineStarter, id string) tea.Cmd {
	return func() tea.Msg {
		resp, err := s.StartPipeline(ctx, id)
		out := PipelineStartedMsg{ProjectID: id, Err: err}
		if resp != nil {
			out.Message = resp.Message
		}
		return out
	}
}

// ClearFlashAfter schedules a FlashClearMsg for seq.
func ClearFlashAfter(seq int) tea.Cmd {
	return tea.Tick(FlashDuration, func(time.Time) tea.Msg {
		return FlashClearMsg{Seq: seq}
	})
}
