package view

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Iron-Ham/webfactory/internal/agent"
	"github.com/Iron-Ham/webfactory/internal/api"
	"github.com/Iron-Ham/webfactory/internal/tui/styles"
	"github.com/Iron-Ham/webfactory/internal/util"
)

// Tracker text.
const (
	TrackerTitle   = "Agent Pipeline"
	LoadingStatus  = "Loading pipeline status..."
	WaitingToStart = "Waiting for project to start"
	// UnknownState is shown for a stage the response does not mention.
	UnknownState = "unknown"
)

const (
	nodeWidth      = 14
	connectorWidth = 3
)

// Node is one stage as the tracker draws it.
type Node struct {
	Stage agent.Stage
	// State is the reported status, or UnknownState.
	State  string
	Active bool
}

// Nodes maps a status onto the fixed stage order. It always returns one
// node per stage, whatever the response contains or its order.
func Nodes(status *api.PipelineStatus) []Node {
	stages := agent.Order()
	nodes := make([]Node, len(stages))
	for i, stage := range stages {
		nodes[i] = Node{Stage: stage, State: UnknownState}
		if a, ok := status.Agent(stage.ID); ok {
			nodes[i].State = string(a.Status)
		}
		if status != nil && status.CurrentAgent == stage.ID {
			nodes[i].Active = true
		}
	}
	return nodes
}

// Description is the line under the tracker title.
func Description(status *api.PipelineStatus, loading bool) string {
	switch {
	case status != nil && status.CurrentAgent != "":
		return "Currently running: " + agent.Label(status.CurrentAgent)
	case loading:
		return LoadingStatus
	default:
		return WaitingToStart
	}
}

// TrackerState is what the tracker needs to render.
type TrackerState struct {
	ProjectName string
	Status      *api.PipelineStatus
	Loading     bool
	// Err is the last fetch error. The previous snapshot stays on screen.
	Err string
	// Spinner is the current spinner frame, drawn on the running stage.
	Spinner string
}

// TrackerView renders the pipeline of the selected project.
type TrackerView struct{}

// Render lays the stages out in a row when they fit and in a column
// otherwise.
func (v TrackerView) Render(state TrackerState, width int) string {
	inner := max(width-4, 1)

	var b strings.Builder
	title := TrackerTitle
	if state.ProjectName != "" {
		title += " · " + state.ProjectName
	}
	b.WriteString(styles.PanelTitle.Render(util.Truncate(title, inner)))
	b.WriteString("\n")
	b.WriteString(styles.Muted.Render(util.Truncate(Description(state.Status, state.Loading), inner)))
	b.WriteString("\n\n")

	nodes := Nodes(state.Status)
	if inner >= len(nodes)*nodeWidth+(len(nodes)-1)*connectorWidth {
		b.WriteString(v.renderRow(nodes, state.Spinner))
	} else {
		b.WriteString(v.renderColumn(nodes, state.Spinner))
	}
	b.WriteString("\n\n")
	b.WriteString(ProgressBar(state.Status.Percent(), min(inner, 40)))

	if problems := agent.Validate(state.Status); len(problems) > 0 {
		b.WriteString("\n")
		b.WriteString(styles.WarningText.Render(util.Truncate("⚠ "+agent.Summary(problems), inner)))
	}
	if state.Err != "" {
		b.WriteString("\n")
		b.WriteString(styles.ErrorText.Render(util.Truncate(state.Err, inner)))
	}

	return styles.Panel.Width(max(width-2, 1)).Render(b.String())
}

func (v TrackerView) renderRow(nodes []Node, spinner string) string {
	cells := make([]string, 0, len(nodes)*2-1)
	for i, n := range nodes {
		if i > 0 {
			conn := styles.Connector
			if nodes[i-1].State == string(api.AgentCompleted) {
				conn = styles.ConnectorDone
			}
			cells = append(cells, conn.Render(strings.Repeat("─", connectorWidth)))
		}
		cell := lipgloss.JoinVertical(lipgloss.Center,
			v.glyph(n, spinner),
			v.label(n),
			nodeStyle(n.State).Render(n.State),
		)
		cells = append(cells, lipgloss.PlaceHorizontal(nodeWidth, lipgloss.Center, cell))
	}
	return lipgloss.JoinHorizontal(lipgloss.Center, cells...)
}

func (v TrackerView) renderColumn(nodes []Node, spinner string) string {
	lines := make([]string, len(nodes))
	for i, n := range nodes {
		lines[i] = fmt.Sprintf("%s %s %s", v.glyph(n, spinner), v.label(n), nodeStyle(n.State).Render(n.State))
	}
	return strings.Join(lines, "\n")
}

func (TrackerView) glyph(n Node, spinner string) string {
	glyph := n.Stage.Glyph
	if n.State == string(api.AgentRunning) && spinner != "" {
		glyph = spinner
	}
	style := nodeStyle(n.State)
	if n.Active {
		return style.Render("[" + glyph + "]")
	}
	return style.Render(" " + glyph + " ")
}

func (TrackerView) label(n Node) string {
	if n.Active {
		return styles.NodeRunning.Render(n.Stage.Label)
	}
	return styles.Text.Render(n.Stage.Label)
}

// nodeStyle picks a stage's style. UnknownState is left unstyled.
func nodeStyle(state string) lipgloss.Style {
	switch api.AgentState(state) {
	case api.AgentRunning:
		return styles.NodeRunning
	case api.AgentCompleted:
		return styles.NodeCompleted
	case api.AgentFailed:
		return styles.NodeFailed
	case api.AgentIdle, api.AgentPending:
		return styles.NodeIdle
	default:
		return lipgloss.NewStyle()
	}
}

// ProgressBar renders percent (0-100) as a bar width columns wide followed
// by the rounded percentage.
func ProgressBar(percent float64, width int) string {
	label := fmt.Sprintf(" %3.0f%%", percent)
	barWidth := max(width-len(label), 1)
	filled := int(percent / 100 * float64(barWidth))
	filled = min(max(filled, 0), barWidth)
	return styles.ProgressFilled.Render(strings.Repeat("█", filled)) +
		styles.ProgressEmpty.Render(strings.Repeat("░", barWidth-filled)) +
		styles.Muted.Render(label)
}
