package cmd

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Iron-Ham/webfactory/internal/agent"
	"github.com/Iron-Ham/webfactory/internal/api"
	"github.com/Iron-Ham/webfactory/internal/clock"
	"github.com/Iron-Ham/webfactory/internal/poller"
	"github.com/Iron-Ham/webfactory/internal/tui/view"
	"github.com/Iron-Ham/webfactory/internal/util"
)

var pipelineCmd = &cobra.Command{
	Use:   "pipeline",
	Short: "Start and follow a project's agent pipeline",
}

var pipelineStatusCmd = &cobra.Command{
	Use:   "status <project-id>",
	Short: "Show the pipeline status of a project",
	Args:  cobra.ExactArgs(1),
	RunE:  runPipelineStatus,
}

var pipelineStartCmd = &cobra.Command{
	Use:   "start <project-id>",
	Short: "Start a pending project's pipeline",
	Args:  cobra.ExactArgs(1),
	RunE:  runPipelineStart,
}

var pipelineWatchCmd = &cobra.Command{
	Use:   "watch <project-id>",
	Short: "Follow a pipeline until it completes or fails",
	Long: `Poll a project's pipeline and print a line whenever it changes.

Stops when the pipeline completes or fails, when --timeout elapses, or on
ctrl+c. Exits non-zero when the pipeline fails, the project does not exist
or the timeout elapses.`,
	Args: cobra.ExactArgs(1),
	RunE: runPipelineWatch,
}

var (
	statusJSON    bool
	watchInterval time.Duration
	watchTimeout  time.Duration
)

var (
	// errPipelineFailed is returned by watch when the pipeline ends in failure.
	errPipelineFailed = errors.New("pipeline failed")
	// errWatchTimeout is returned by watch when --timeout elapses first.
	errWatchTimeout = errors.New("timed out waiting for the pipeline")
)

func init() {
	pipelineStatusCmd.Flags().BoolVar(&statusJSON, "json", false, "print JSON")
	pipelineWatchCmd.Flags().DurationVar(&watchInterval, "interval", 0, "poll interval (default poll.interval)")
	pipelineWatchCmd.Flags().DurationVar(&watchTimeout, "timeout", 0, "give up after this long (0 waits forever)")

	pipelineCmd.AddCommand(pipelineStatusCmd)
	pipelineCmd.AddCommand(pipelineStartCmd)
	pipelineCmd.AddCommand(pipelineWatchCmd)
	rootCmd.AddCommand(pipelineCmd)
}

func runPipelineStatus(cmd *cobra.Command, args []string) error {
	s, err := newSession()
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	status, err := s.Client.GetPipelineStatus(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("fetching pipeline of %s: %w", args[0], err)
	}

	out := cmd.OutOrStdout()
	if statusJSON {
		return writeJSON(out, status)
	}
	printPipeline(out, status)
	return nil
}

func printPipeline(w io.Writer, status *api.PipelineStatus) {
	field(w, "Project", status.ProjectID)
	field(w, "Pipeline", fmt.Sprintf("%s (%.0f%%)", util.Humanize(string(status.Status)), status.Percent()))
	fmt.Fprintln(w, view.Description(status, false))

	detailWidth := max(outputWidth(w)-60, 16)
	rows := make([][]string, 0, len(agent.Order()))
	for _, n := range view.Nodes(status) {
		a, _ := status.Agent(n.Stage.ID)
		label := n.Stage.Label
		if n.Active {
			label = "▶ " + label
		}
		detail := a.Error
		if detail == "" {
			detail = a.Output
		}
		rows = append(rows, []string{
			label,
			n.State,
			clockTime(a.StartedAt),
			clockTime(a.CompletedAt),
			util.Truncate(strings.Join(strings.Fields(detail), " "), detailWidth),
		})
	}
	fmt.Fprintln(w, renderTable([]string{"STAGE", "STATUS", "STARTED", "FINISHED", "DETAIL"}, rows))

	if problems := agent.Validate(status); len(problems) > 0 {
		fmt.Fprintln(w, "Warning: "+agent.Summary(problems))
	}
}

func clockTime(t *api.Time) string {
	if t == nil || t.IsZero() {
		return "-"
	}
	return t.Local().Format("15:04:05")
}

func runPipelineStart(cmd *cobra.Command, args []string) error {
	s, err := newSession()
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	resp, err := s.StartPipeline(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("starting pipeline of %s: %w", args[0], err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), resp.Message)
	return nil
}

func runPipelineWatch(cmd *cobra.Command, args []string) error {
	s, err := newSession()
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	if watchInterval > 0 {
		s.Poller.SetInterval(watchInterval)
	}
	done, err := watchPipeline(cmd, s.Clock, s.Poller, args[0], watchTimeout)
	if err != nil || !done {
		return err
	}

	// Print where the finished app lives.
	p, err := s.Client.GetProject(cmd.Context(), args[0])
	if err != nil {
		s.Logger.Warn("fetching finished project failed", "project_id", args[0], "error", err.Error())
		return nil
	}
	out := cmd.OutOrStdout()
	field(out, "Live", p.DeployURL)
	field(out, "Preview", p.PreviewURL)
	field(out, "Repo", p.RepoURL)
	return nil
}

// watchPipeline prints each distinct update for projectID until the
// pipeline reaches a terminal state, the project turns out not to exist,
// timeout elapses or the command's context ends. A zero timeout never
// elapses. done reports a completed pipeline.
func watchPipeline(cmd *cobra.Command, clk clock.Clock, p *poller.Poller, projectID string, timeout time.Duration) (done bool, err error) {
	if err := p.Select(projectID); err != nil {
		return false, err
	}
	defer p.Clear()

	var expired <-chan time.Time
	if timeout > 0 {
		expired = clk.After(timeout)
	}

	out := cmd.OutOrStdout()
	ctx := cmd.Context()
	var last string
	for {
		select {
		case <-ctx.Done():
			return false, nil
		case <-expired:
			return false, fmt.Errorf("%w after %s", errWatchTimeout, timeout)
		case u, ok := <-p.Updates():
			if !ok {
				return false, nil
			}
			if u.ProjectID != projectID {
				continue
			}
			line := watchLine(u)
			if line != last {
				fmt.Fprintf(out, "[%s] %s\n", clk.Now().Format("15:04:05"), line)
				last = line
			}
			if api.IsNotFound(u.Cause) {
				return false, fmt.Errorf("watching %s: %w", projectID, u.Cause)
			}
			if u.Status == nil || !u.Status.Status.IsTerminal() {
				continue
			}
			if u.Status.Status == api.PipelineFailed {
				return false, errPipelineFailed
			}
			return true, nil
		}
	}
}

// watchLine summarizes an update on one line: pipeline state, progress and
// every stage's state.
func watchLine(u poller.Update) string {
	if u.Err != "" {
		return "error: " + u.Err
	}
	parts := make([]string, 0, len(agent.Order()))
	for _, n := range view.Nodes(u.Status) {
		part := n.Stage.Label + "=" + n.State
		if n.Active {
			part = "*" + part
		}
		parts = append(parts, part)
	}
	return fmt.Sprintf("%s %3.0f%% %s", u.Status.Status, u.Status.Percent(), strings.Join(parts, " "))
}
