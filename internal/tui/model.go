package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Iron-Ham/webfactory/internal/api"
	"github.com/Iron-Ham/webfactory/internal/logging"
	"github.com/Iron-Ham/webfactory/internal/poller"
	"github.com/Iron-Ham/webfactory/internal/store"
	"github.com/Iron-Ham/webfactory/internal/tui/msg"
	"github.com/Iron-Ham/webfactory/internal/tui/view"
)

// focusArea is the section receiving key presses.
type focusArea int

const (
	focusInput focusArea = iota
	focusGallery
)

const (
	inputHeight = 4
	charLimit   = 4000
)

// Deps are the collaborators the dashboard drives.
type Deps struct {
	Store   *store.Store
	Poller  *poller.Poller
	Starter msg.PipelineStarter
	// Projects refetches single projects. When nil, the whole list is
	// reloaded instead.
	Projects msg.ProjectGetter
	Logger   *logging.Logger
	APIURL   string
	// GalleryColumns pins the gallery layout when > 0.
	GalleryColumns int
}

// Model is the Bubbletea model of the dashboard.
type Model struct {
	ctx    context.Context
	store  *store.Store
	poller *poller.Poller
	start  msg.PipelineStarter
	getter msg.ProjectGetter
	logger *logging.Logger
	apiURL string

	fixedColumns int

	keys    keyMap
	help    help.Model
	input   textarea.Model
	spinner spinner.Model

	focus  focusArea
	cursor int
	loaded bool

	submitting bool
	submitErr  string

	// pendingDelete is the id armed by the first x press.
	pendingDelete string

	flash    string
	flashErr bool
	flashSeq int

	// refreshedOnFinish records projects whose card was refetched after
	// their pipeline reached a terminal state. An entry is dropped when the
	// pipeline is started again or reported running.
	refreshedOnFinish map[string]bool

	width    int
	height   int
	quitting bool
}

// NewModel creates the dashboard model with the prompt focused.
func NewModel(ctx context.Context, deps Deps) Model {
	logger := deps.Logger
	if logger == nil {
		logger = logging.NopLogger()
	}

	input := textarea.New()
	input.Placeholder = view.PromptPlaceholder
	input.ShowLineNumbers = false
	input.CharLimit = charLimit
	input.SetHeight(inputHeight)
	input.Focus()

	sp := spinner.New(spinner.WithSpinner(spinner.Dot))

	return Model{
		ctx:               ctx,
		store:             deps.Store,
		poller:            deps.Poller,
		start:             deps.Starter,
		getter:            deps.Projects,
		logger:            logger.WithComponent("tui"),
		apiURL:            deps.APIURL,
		fixedColumns:      deps.GalleryColumns,
		keys:              defaultKeyMap(),
		help:              help.New(),
		input:             input,
		spinner:           sp,
		focus:             focusInput,
		refreshedOnFinish: make(map[string]bool),
	}
}

// Init starts the cursor blink, the spinner and the initial project load.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		textarea.Blink,
		m.spinner.Tick,
		msg.LoadInitialProjects(m.ctx, m.store),
	)
}

// Update handles messages and updates the model.
func (m Model) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	switch message := message.(type) {
	case tea.WindowSizeMsg:
		m.width = message.Width
		m.height = message.Height
		m.input.SetWidth(max(message.Width-6, 10))
		m.help.Width = message.Width
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(message)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(message)
		return m, cmd

	case msg.ProjectsLoadedMsg:
		m.loaded = true
		m.clampCursor()
		return m, nil

	case msg.ProjectsChangedMsg:
		m.clampCursor()
		return m, nil

	case msg.ProjectRefreshedMsg:
		if message.Err != nil {
			m.logger.Debug("project refresh failed", "project_id", message.ProjectID, "error", message.Err.Error())
			return m, nil
		}
		if message.Missing {
			return m, msg.LoadProjects(m.ctx, m.store)
		}
		return m, nil

	case msg.ProjectCreatedMsg:
		return m.handleCreated(message)

	case msg.ProjectDeletedMsg:
		if message.Err != nil {
			return m.setFlash("Delete failed: "+message.Err.Error(), true)
		}
		if id, ok := m.poller.Selected(); ok && id == message.ProjectID {
			m.poller.Clear()
		}
		m.clampCursor()
		return m.setFlash("Project deleted", false)

	case msg.PipelineStartedMsg:
		if message.Err != nil {
			return m.setFlash("Start failed: "+message.Err.Error(), true)
		}
		delete(m.refreshedOnFinish, message.ProjectID)
		m.track(message.ProjectID)
		text := message.Message
		if text == "" {
			text = "Pipeline started"
		}
		next, cmd := m.setFlash(text, false)
		return next, tea.Batch(cmd, m.refreshProject(message.ProjectID))

	case msg.PipelineUpdatedMsg:
		return m, m.refreshOnFinish(message.ProjectID)

	case msg.PipelineFetchFailedMsg:
		m.logger.Debug("pipeline fetch failed", "project_id", message.ProjectID, "error", message.Err)
		return m, nil

	case msg.FlashClearMsg:
		if message.Seq == m.flashSeq {
			m.flash = ""
			m.flashErr = false
		}
		return m, nil
	}

	if m.focus == focusInput && !m.submitting {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(message)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleKey(k tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(k, m.keys.ForceQuit) {
		m.quitting = true
		return m, tea.Quit
	}
	if m.focus == focusInput {
		return m.handleInputKey(k)
	}
	return m.handleGalleryKey(k)
}

func (m Model) handleInputKey(k tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(k, m.keys.Submit):
		return m.submit()
	case key.Matches(k, m.keys.Focus), key.Matches(k, m.keys.Blur):
		m.setFocus(focusGallery)
		return m, nil
	}
	if m.submitting {
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(k)
	return m, cmd
}

// submit sends the trimmed prompt. Blank prompts and presses while a
// request is in flight are ignored.
func (m Model) submit() (tea.Model, tea.Cmd) {
	if m.submitting {
		return m, nil
	}
	prompt := strings.TrimSpace(m.input.Value())
	if prompt == "" {
		return m, nil
	}
	m.submitting = true
	m.submitErr = ""
	m.logger.Info("creating project", "prompt_len", len(prompt))
	return m, msg.CreateProject(m.ctx, m.store, prompt)
}

func (m Model) handleCreated(created msg.ProjectCreatedMsg) (tea.Model, tea.Cmd) {
	m.submitting = false
	if created.Err != nil {
		m.submitErr = created.Err.Error()
		m.logger.Warn("create failed", "error", m.submitErr)
		return m, nil
	}
	m.submitErr = ""
	m.input.Reset()
	m.cursor = 0
	m.track(created.Project.ID)
	return m.setFlash(fmt.Sprintf("Created %s", created.Project.Name), false)
}

func (m Model) handleGalleryKey(k tea.KeyMsg) (tea.Model, tea.Cmd) {
	armed := m.pendingDelete
	m.pendingDelete = ""

	cols := view.Columns(m.galleryInnerWidth(), m.fixedColumns)
	switch {
	case key.Matches(k, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(k, m.keys.Focus):
		m.setFocus(focusInput)
		return m, textarea.Blink
	case key.Matches(k, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(k, m.keys.Up):
		m.moveCursor(-cols)
	case key.Matches(k, m.keys.Down):
		m.moveCursor(cols)
	case key.Matches(k, m.keys.Left):
		m.moveCursor(-1)
	case key.Matches(k, m.keys.Right):
		m.moveCursor(1)
	case key.Matches(k, m.keys.Select):
		if p, ok := m.cursorProject(); ok {
			m.track(p.ID)
		}
	case key.Matches(k, m.keys.Clear):
		m.poller.Clear()
	case key.Matches(k, m.keys.Refresh):
		return m, msg.LoadProjects(m.ctx, m.store)
	case key.Matches(k, m.keys.Start):
		id := m.selectedID()
		if id == "" {
			return m, nil
		}
		return m, msg.StartPipeline(m.ctx, m.start, id)
	case key.Matches(k, m.keys.Delete):
		p, ok := m.cursorProject()
		if !ok {
			return m, nil
		}
		if armed != p.ID {
			m.pendingDelete = p.ID
			return m.setFlash(fmt.Sprintf("Press x again to delete %s", p.Name), true)
		}
		return m, msg.DeleteProject(m.ctx, m.store, p.ID)
	}
	return m, nil
}

// track points the poller at id.
func (m Model) track(id string) {
	if err := m.poller.Select(id); err != nil {
		m.logger.Warn("select failed", "project_id", id, "error", err.Error())
	}
}

// selectedID is the tracked project, falling back to the card under the
// cursor.
func (m Model) selectedID() string {
	if id, ok := m.poller.Selected(); ok {
		return id
	}
	if p, ok := m.cursorProject(); ok {
		return p.ID
	}
	return ""
}

// refreshOnFinish refetches a project's card once each time its pipeline
// finishes so the badge catches up.
func (m Model) refreshOnFinish(projectID string) tea.Cmd {
	if id, ok := m.poller.Selected(); !ok || id != projectID {
		return nil
	}
	status := m.poller.Status()
	if status == nil {
		return nil
	}
	if !status.Status.IsTerminal() {
		delete(m.refreshedOnFinish, projectID)
		return nil
	}
	if m.refreshedOnFinish[projectID] {
		return nil
	}
	m.refreshedOnFinish[projectID] = true
	return m.refreshProject(projectID)
}

// refreshProject refetches one project's card, or the whole list when no
// getter was provided.
func (m Model) refreshProject(projectID string) tea.Cmd {
	if m.getter == nil {
		return msg.LoadProjects(m.ctx, m.store)
	}
	return msg.RefreshProject(m.ctx, m.getter, m.store, projectID)
}

func (m *Model) setFocus(f focusArea) {
	m.focus = f
	if f == focusInput {
		m.input.Focus()
		return
	}
	m.input.Blur()
}

func (m Model) setFlash(text string, isErr bool) (tea.Model, tea.Cmd) {
	m.flashSeq++
	m.flash = text
	m.flashErr = isErr
	return m, msg.ClearFlashAfter(m.flashSeq)
}

func (m *Model) moveCursor(delta int) {
	n := m.store.Len()
	if n == 0 {
		m.cursor = 0
		return
	}
	next := m.cursor + delta
	if next < 0 || next >= n {
		return
	}
	m.cursor = next
}

func (m *Model) clampCursor() {
	n := m.store.Len()
	m.cursor = min(max(m.cursor, 0), max(n-1, 0))
}

func (m Model) cursorProject() (api.Project, bool) {
	projects := m.store.Projects()
	if m.cursor < 0 || m.cursor >= len(projects) {
		return api.Project{}, false
	}
	return projects[m.cursor], true
}

func (m Model) galleryInnerWidth() int {
	return max(m.width-4, 1)
}

// View renders the dashboard.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	width := m.width
	if width <= 0 {
		width = 80
	}

	sections := []string{
		view.HeaderView{}.Render(width),
		view.PromptView{}.Render(view.PromptState{
			Input:      m.input.View(),
			Focused:    m.focus == focusInput,
			Submitting: m.submitting,
			Err:        m.submitErr,
		}, width),
	}

	activeID, tracking := m.poller.Selected()
	if tracking {
		name := activeID
		if p, ok := m.store.Get(activeID); ok {
			name = p.Name
		}
		sections = append(sections, view.TrackerView{}.Render(view.TrackerState{
			ProjectName: name,
			Status:      m.poller.Status(),
			Loading:     m.poller.Loading(),
			Err:         m.poller.Err(),
			Spinner:     m.spinner.View(),
		}, width))
	}

	var helpView string
	if m.focus == focusInput {
		helpView = m.help.View(inputHelp{keys: m.keys})
	} else {
		helpView = m.help.View(m.keys)
	}
	footer := view.FooterView{}.Render(view.FooterState{
		Flash:    m.flash,
		FlashErr: m.flashErr,
		StoreErr: m.store.Err(),
		APIURL:   m.apiURL,
		Help:     helpView,
	}, width)

	maxRows := 0
	if m.height > 0 {
		used := lipgloss.Height(strings.Join(sections, "\n")) + lipgloss.Height(footer)
		// Gallery chrome: border, title, blank line and position line.
		remaining := m.height - used - 5
		maxRows = max(remaining/view.CardHeight, 1)
	}

	cursor := -1
	if m.focus == focusGallery {
		cursor = m.cursor
	}
	sections = append(sections, view.GalleryView{}.Render(view.GalleryState{
		Projects:     m.store.Projects(),
		Loading:      !m.loaded || m.store.Loading(),
		Selected:     cursor,
		Active:       activeID,
		Focused:      m.focus == focusGallery,
		FixedColumns: m.fixedColumns,
		MaxRows:      maxRows,
	}, width))
	sections = append(sections, footer)

	return strings.Join(sections, "\n")
}
