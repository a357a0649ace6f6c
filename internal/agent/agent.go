// Package agent names the fixed stages of the factory pipeline. The backend
// runs them in this order; every view that lays out the pipeline uses Order
// rather than the order of a status response.
package agent

import (
	"fmt"
	"strings"

	"github.com/Iron-Ham/webfactory/internal/api"
)

// Stage ids as reported in AgentStatus.Agent.
const (
	Orchestrator = "orchestrator-agent"
	Design       = "design-architect-agent"
	Frontend     = "frontend-developer-agent"
	Backend      = "backend-developer-agent"
	Deploy       = "devops-agent"
)

// Stage is one pipeline stage.
type Stage struct {
	ID    string
	Label string
	Glyph string
}

var order = []Stage{
	{ID: Orchestrator, Label: "Orchestrator", Glyph: "◎"},
	{ID: Design, Label: "Design", Glyph: "✎"},
	{ID: Frontend, Label: "Frontend", Glyph: "◧"},
	{ID: Backend, Label: "Backend", Glyph: "⚙"},
	{ID: Deploy, Label: "Deploy", Glyph: "⇪"},
}

// Order returns the five stages in execution order. The slice is a copy.
func Order() []Stage {
	out := make([]Stage, len(order))
	copy(out, order)
	return out
}

// Lookup finds a stage by id.
func Lookup(id string) (Stage, bool) {
	for _, s := range order {
		if s.ID == id {
			return s, true
		}
	}
	return Stage{}, false
}

// Label returns the display label for id, or id itself for unknown stages.
func Label(id string) string {
	if s, ok := Lookup(id); ok {
		return s.Label
	}
	return id
}

// Index returns the position of id in Order, or -1.
func Index(id string) int {
	for i, s := range order {
		if s.ID == id {
			return i
		}
	}
	return -1
}

// Problem describes a way a status response disagrees with the known stages.
type Problem struct {
	Agent   string
	Message string
}

func (p Problem) String() string {
	return fmt.Sprintf("%s: %s", p.Agent, p.Message)
}

// Validate reports agents the client does not know about, duplicate
// entries (of which the last one is displayed), a current agent outside the known stages, and more than one
// running stage. A nil status has no problems.
func Validate(status *api.PipelineStatus) []Problem {
	if status == nil {
		return nil
	}
	var problems []Problem
	seen := make(map[string]bool, len(status.Agents))
	running := 0
	for _, a := range status.Agents {
		if _, ok := Lookup(a.Agent); !ok {
			problems = append(problems, Problem{Agent: a.Agent, Message: "unknown agent"})
		}
		if seen[a.Agent] {
			problems = append(problems, Problem{Agent: a.Agent, Message: "reported more than once"})
		}
		seen[a.Agent] = true
		if a.Status == api.AgentRunning {
			running++
		}
	}
	if status.CurrentAgent != "" {
		if _, ok := Lookup(status.CurrentAgent); !ok {
			problems = append(problems, Problem{Agent: status.CurrentAgent, Message: "unknown current agent"})
		}
	}
	if running > 1 {
		problems = append(problems, Problem{Agent: status.CurrentAgent, Message: fmt.Sprintf("%d agents running at once", running)})
	}
	return problems
}

// Summary joins problems into one line for display.
func Summary(problems []Problem) string {
	parts := make([]string, len(problems))
	for i, p := range problems {
		parts[i] = p.String()
	}
	return strings.Join(parts, "; ")
}
