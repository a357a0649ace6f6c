// Package tui runs the interactive dashboard: the prompt input, the
// pipeline tracker of the selected project and the project gallery.
package tui

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Iron-Ham/webfactory/internal/event"
	"github.com/Iron-Ham/webfactory/internal/session"
	"github.com/Iron-Ham/webfactory/internal/tui/msg"
)

// App wraps the Bubbletea program
type App struct {
	program *tea.Program
	model   Model
	session *session.Session
}

// New creates the dashboard for a session
func New(ctx context.Context, s *session.Session) *App {
	model := NewModel(ctx, Deps{
		Store:          s.Store,
		Poller:         s.Poller,
		Starter:        s,
		Projects:       s.Client,
		Logger:         s.Logger,
		APIURL:         s.Client.BaseURL(),
		GalleryColumns: s.Config.TUI.GalleryColumns,
	})
	return &App{model: model, session: s}
}

// Run starts the dashboard and blocks until the user quits or ctx ends.
func (a *App) Run(ctx context.Context) error {
	opts := []tea.ProgramOption{tea.WithContext(ctx)}
	if a.session.Config.TUI.AltScreen {
		opts = append(opts, tea.WithAltScreen())
	}
	a.program = tea.NewProgram(a.model, opts...)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigChan)
	go func() {
		if _, ok := <-sigChan; ok {
			a.program.Send(tea.Quit())
		}
	}()

	// Send blocks until the program reads the message, and Update may be
	// waiting on the poller, so every send runs on its own goroutine.
	send := func(m tea.Msg) { go a.program.Send(m) }
	for _, id := range a.forwardEvents(send) {
		defer a.session.Bus.Unsubscribe(id)
	}

	_, err := a.program.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

// storeEvents are relayed to the program as msg.ProjectsChangedMsg.
var storeEvents = []string{
	event.TypeProjectsLoaded,
	event.TypeProjectsLoadFailed,
	event.TypeProjectCreated,
	event.TypeProjectDeleted,
}

// forwardEvents relays store and poller events to send and returns the
// subscription ids.
func (a *App) forwardEvents(send func(tea.Msg)) []string {
	bus := a.session.Bus
	ids := make([]string, 0, len(storeEvents)+2)
	for _, t := range storeEvents {
		ids = append(ids, bus.Subscribe(t, func(e event.Event) {
			send(msg.ProjectsChangedMsg{Type: e.EventType()})
		}))
	}
	return append(ids,
		bus.Subscribe(event.TypePipelineUpdated, func(e event.Event) {
			if ev, ok := e.(event.PipelineUpdatedEvent); ok {
				send(msg.PipelineUpdatedMsg{ProjectID: ev.ProjectID})
			}
		}),
		bus.Subscribe(event.TypePipelineFetchFailed, func(e event.Event) {
			if ev, ok := e.(event.PipelineFetchFailedEvent); ok {
				send(msg.PipelineFetchFailedMsg{ProjectID: ev.ProjectID, Err: ev.Err})
			}
		}),
	)
}
