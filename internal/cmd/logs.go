package cmd

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Iron-Ham/webfactory/internal/agent"
	"github.com/Iron-Ham/webfactory/internal/api"
	"github.com/Iron-Ham/webfactory/internal/util"
)

var pipelineLogsCmd = &cobra.Command{
	Use:   "logs <project-id>",
	Short: "Show the agent invocation log of a project",
	Long: `Show the backend's log of agent invocations for a project. Each
invocation logs a "started" entry followed by "completed" (with the exit
code) or "failed" (with the error).

Examples:
  # Last 50 entries
  webfactory pipeline logs proj-1

  # Every entry of the design stage
  webfactory pipeline logs proj-1 -n 0 --agent design

  # Entries mentioning a failure, as JSON
  webfactory pipeline logs proj-1 --grep "fail|error" --json`,
	Args: cobra.ExactArgs(1),
	RunE: runPipelineLogs,
}

var (
	logsJSON  bool
	logsTail  int
	logsAgent string
	logsGrep  string
)

func init() {
	pipelineLogsCmd.Flags().BoolVar(&logsJSON, "json", false, "print JSON")
	pipelineLogsCmd.Flags().IntVarP(&logsTail, "tail", "n", 50, "number of entries to show (0 for all)")
	pipelineLogsCmd.Flags().StringVar(&logsAgent, "agent", "", "only entries of this agent (id or stage label)")
	pipelineLogsCmd.Flags().StringVar(&logsGrep, "grep", "", "only entries matching this pattern (regex)")

	pipelineCmd.AddCommand(pipelineLogsCmd)
}

func runPipelineLogs(cmd *cobra.Command, args []string) error {
	var grepRegex *regexp.Regexp
	if logsGrep != "" {
		var err error
		grepRegex, err = regexp.Compile(logsGrep)
		if err != nil {
			return fmt.Errorf("invalid grep pattern: %w", err)
		}
	}

	s, err := newSession()
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	logs, err := s.Client.GetAgentLogs(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("fetching logs of %s: %w", args[0], err)
	}

	entries := make([]api.AgentLogEntry, 0, len(logs.Logs))
	for _, e := range logs.Logs {
		if matchesAgent(e.Agent, logsAgent) && matchesGrep(e, grepRegex) {
			entries = append(entries, e)
		}
	}
	if logsTail > 0 && len(entries) > logsTail {
		entries = entries[len(entries)-logsTail:]
	}

	out := cmd.OutOrStdout()
	if logsJSON {
		return writeJSON(out, api.AgentLogs{ProjectID: logs.ProjectID, Logs: entries})
	}
	if len(entries) == 0 {
		fmt.Fprintln(out, "No matching log entries found.")
		return nil
	}
	width := outputWidth(out)
	for _, e := range entries {
		fmt.Fprintln(out, formatLogEntry(e, width))
	}
	return nil
}

// matchesAgent accepts an agent id or its stage label, ignoring case.
func matchesAgent(id, want string) bool {
	if want == "" {
		return true
	}
	return strings.EqualFold(id, want) || strings.EqualFold(agent.Label(id), want)
}

func matchesGrep(e api.AgentLogEntry, re *regexp.Regexp) bool {
	if re == nil {
		return true
	}
	return re.MatchString(e.Agent) || re.MatchString(e.Status) ||
		re.MatchString(e.Prompt) || re.MatchString(e.Error)
}

// formatLogEntry renders one entry on a single line, clipped to width.
func formatLogEntry(e api.AgentLogEntry, width int) string {
	var sb strings.Builder
	sb.WriteString("[")
	if e.Timestamp.IsZero() {
		sb.WriteString("--:--:--")
	} else {
		sb.WriteString(e.Timestamp.Local().Format("15:04:05"))
	}
	sb.WriteString("] ")
	sb.WriteString(util.PadRight(agent.Label(e.Agent), 12))
	sb.WriteString(" ")
	sb.WriteString(util.PadRight(e.Status, 9))

	if e.ExitCode != nil {
		sb.WriteString(" exit=" + strconv.Itoa(*e.ExitCode))
	}
	detail := e.Error
	if detail == "" {
		detail = e.Prompt
	}
	if detail != "" {
		sb.WriteString(" ")
		sb.WriteString(strings.Join(strings.Fields(detail), " "))
	}
	return util.Truncate(sb.String(), width)
}
