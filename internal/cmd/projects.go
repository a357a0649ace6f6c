package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/gobwas/glob"
	"github.com/spf13/cobra"

	"github.com/Iron-Ham/webfactory/internal/api"
	"github.com/Iron-Ham/webfactory/internal/util"
)

var projectsCmd = &cobra.Command{
	Use:     "projects",
	Aliases: []string{"project"},
	Short:   "Manage projects",
}

var projectsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List projects, newest first",
	Long: `List projects, newest first.

--filter matches project names against a glob, ignoring case:
  webfactory projects list --filter '*landing*'
  webfactory projects list --status in_progress`,
	Args: cobra.NoArgs,
	RunE: runProjectsList,
}

var projectsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one project",
	Args:  cobra.ExactArgs(1),
	RunE:  runProjectsShow,
}

var projectsCreateCmd = &cobra.Command{
	Use:   "create <prompt>...",
	Short: "Create a project from a prompt",
	Long: `Create a project from a prompt. All arguments are joined into one prompt.

Example:
  webfactory projects create Build a landing page for a coffee shop --start`,
	Args: cobra.MinimumNArgs(1),
	RunE: runProjectsCreate,
}

var projectsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a project",
	Args:  cobra.ExactArgs(1),
	RunE:  runProjectsDelete,
}

var (
	listJSON    bool
	listFilter  string
	listStatus  string
	showJSON    bool
	createName  string
	createStart bool
	createJSON  bool
)

func init() {
	projectsListCmd.Flags().BoolVar(&listJSON, "json", false, "print JSON")
	projectsListCmd.Flags().StringVar(&listFilter, "filter", "", "only projects whose name matches this glob")
	projectsListCmd.Flags().StringVar(&listStatus, "status", "", "only projects with this status (pending, in_progress, completed, failed)")
	projectsShowCmd.Flags().BoolVar(&showJSON, "json", false, "print JSON")
	projectsCreateCmd.Flags().StringVar(&createName, "name", "", "project name (the backend picks one when empty)")
	projectsCreateCmd.Flags().BoolVar(&createStart, "start", false, "start the pipeline right away")
	projectsCreateCmd.Flags().BoolVar(&createJSON, "json", false, "print JSON")

	projectsCmd.AddCommand(projectsListCmd)
	projectsCmd.AddCommand(projectsShowCmd)
	projectsCmd.AddCommand(projectsCreateCmd)
	projectsCmd.AddCommand(projectsDeleteCmd)
	rootCmd.AddCommand(projectsCmd)
}

// projectFilter selects projects by name glob and status.
type projectFilter struct {
	name   glob.Glob
	status api.ProjectStatus
}

func newProjectFilter(pattern, status string) (*projectFilter, error) {
	f := &projectFilter{status: api.ProjectStatus(status)}
	if status != "" && !f.status.Valid() {
		valid := make([]string, 0, len(api.ProjectStatuses()))
		for _, s := range api.ProjectStatuses() {
			valid = append(valid, string(s))
		}
		return nil, fmt.Errorf("invalid status %q (valid: %s)", status, strings.Join(valid, ", "))
	}
	if pattern != "" {
		g, err := glob.Compile(strings.ToLower(pattern))
		if err != nil {
			return nil, fmt.Errorf("invalid filter %q: %w", pattern, err)
		}
		f.name = g
	}
	return f, nil
}

func (f *projectFilter) apply(projects []api.Project) []api.Project {
	out := make([]api.Project, 0, len(projects))
	for _, p := range projects {
		if f.status != "" && p.Status != f.status {
			continue
		}
		if f.name != nil && !f.name.Match(strings.ToLower(p.Name)) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func runProjectsList(cmd *cobra.Command, args []string) error {
	filter, err := newProjectFilter(listFilter, listStatus)
	if err != nil {
		return err
	}

	s, err := newSession()
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	if err := s.Store.List(cmd.Context()); err != nil {
		return fmt.Errorf("listing projects: %w", err)
	}
	projects := filter.apply(s.Store.Projects())

	out := cmd.OutOrStdout()
	if listJSON {
		return writeJSON(out, projects)
	}
	if len(projects) == 0 {
		fmt.Fprintln(out, "No projects found.")
		return nil
	}
	printProjectTable(out, projects, s.Store.Len())
	return nil
}

func printProjectTable(w io.Writer, projects []api.Project, total int) {
	// id, name, status and created take roughly 70 columns with borders
	promptWidth := max(outputWidth(w)-70, 16)

	rows := make([][]string, 0, len(projects))
	for _, p := range projects {
		rows = append(rows, []string{
			p.ID,
			util.Truncate(p.Name, 24),
			util.Humanize(string(p.Status)),
			formatTime(p.CreatedAt),
			util.Truncate(strings.Join(strings.Fields(p.Prompt), " "), promptWidth),
		})
	}
	fmt.Fprintln(w, renderTable([]string{"ID", "NAME", "STATUS", "CREATED", "PROMPT"}, rows))
	if len(projects) == total {
		fmt.Fprintln(w, countLabel(total))
	} else {
		fmt.Fprintf(w, "%d of %s\n", len(projects), countLabel(total))
	}
}

func countLabel(n int) string {
	if n == 1 {
		return "1 project"
	}
	return fmt.Sprintf("%d projects", n)
}

func formatTime(t api.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}

func runProjectsShow(cmd *cobra.Command, args []string) error {
	s, err := newSession()
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	p, err := s.Client.GetProject(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("fetching project %s: %w", args[0], err)
	}

	out := cmd.OutOrStdout()
	if showJSON {
		return writeJSON(out, p)
	}
	printProject(out, p)
	return nil
}

func printProject(w io.Writer, p *api.Project) {
	field(w, "ID", p.ID)
	field(w, "Name", p.Name)
	field(w, "Status", util.Humanize(string(p.Status)))
	field(w, "Created", formatTime(p.CreatedAt))
	field(w, "Updated", formatTime(p.UpdatedAt))
	field(w, "Repo", p.RepoURL)
	field(w, "Preview", p.PreviewURL)
	field(w, "Deploy", p.DeployURL)
	fmt.Fprintln(w)
	fmt.Fprintln(w, p.Prompt)
}

func runProjectsCreate(cmd *cobra.Command, args []string) error {
	prompt := strings.TrimSpace(strings.Join(args, " "))
	if prompt == "" {
		return fmt.Errorf("prompt cannot be empty")
	}

	s, err := newSession()
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	p, err := s.Store.Create(cmd.Context(), prompt, strings.TrimSpace(createName))
	if err != nil {
		return fmt.Errorf("creating project: %w", err)
	}

	var started *api.StartResponse
	if createStart {
		started, err = s.StartPipeline(cmd.Context(), p.ID)
		if err != nil {
			return fmt.Errorf("project %s created, but starting its pipeline failed: %w", p.ID, err)
		}
	}

	out := cmd.OutOrStdout()
	if createJSON {
		return writeJSON(out, p)
	}
	fmt.Fprintf(out, "Created project %s (%s)\n", p.ID, p.Name)
	if started != nil {
		fmt.Fprintln(out, started.Message)
		fmt.Fprintf(out, "Follow it with: webfactory pipeline watch %s\n", p.ID)
	} else {
		fmt.Fprintf(out, "Start it with: webfactory pipeline start %s\n", p.ID)
	}
	return nil
}

func runProjectsDelete(cmd *cobra.Command, args []string) error {
	s, err := newSession()
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	if err := s.Store.Delete(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("deleting project %s: %w", args[0], err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted project %s\n", args[0])
	return nil
}
