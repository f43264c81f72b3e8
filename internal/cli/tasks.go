package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/runoshun/autocrew/internal/app"
	"github.com/runoshun/autocrew/internal/domain"
	"github.com/runoshun/autocrew/internal/usecase"
)

// newTasksCommand creates the tasks command.
func newTasksCommand(c *app.Container) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "Inspect the task catalogue",
		Long: `Inspect the task catalogue.

Task definitions are JSON or YAML files in the tasks directory. Each file holds
a single task, a list of tasks or a mapping with a "tasks" list.`,
		// No RunE: shows subcommand list when called without arguments
	}

	cmd.AddCommand(
		newTasksListCommand(c),
		newTasksShowCommand(c),
		newTasksNextCommand(c),
		newTasksPromptCommand(c),
		newTasksCheckCommand(c),
	)

	return cmd
}

// jsonTaskView is the JSON shape of one listed task.
type jsonTaskView struct {
	Task    *domain.TaskSpec   `json:"task"`
	Source  string             `json:"source"`
	Status  usecase.TaskStatus `json:"status"`
	Missing []string           `json:"missing_dependencies,omitempty"`
}

func toJSONTaskView(v usecase.TaskView) jsonTaskView {
	return jsonTaskView{Task: v.Spec, Source: v.Source, Status: v.Status, Missing: v.Missing}
}

// newTasksListCommand creates the tasks list subcommand.
func newTasksListCommand(c *app.Container) *cobra.Command {
	var opts struct {
		Status string
		JSON   bool
	}

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List tasks with their readiness",
		Long: `List every task in the catalogue.

Ready tasks come first in selection order, then blocked tasks, then
completed ones.

Examples:
  # List all tasks
  autocrew tasks list

  # List only ready tasks
  autocrew tasks list --status ready

  # Machine readable output
  autocrew tasks list --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			status, err := parseTaskStatus(opts.Status)
			if err != nil {
				return err
			}

			out, err := c.ListTasksUseCase().Execute(cmd.Context(), usecase.ListTasksInput{Status: status})
			if err != nil {
				return err
			}

			if opts.JSON {
				views := make([]jsonTaskView, 0, len(out.Tasks))
				for _, v := range out.Tasks {
					views = append(views, toJSONTaskView(v))
				}
				return writeJSON(cmd.OutOrStdout(), views)
			}

			if len(out.Tasks) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No tasks found.")
				return nil
			}
			printTaskList(cmd.OutOrStdout(), out.Tasks)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.Status, "status", "", "Only list tasks with this status (ready, blocked, done)")
	cmd.Flags().BoolVar(&opts.JSON, "json", false, "Output in JSON format")

	return cmd
}

func parseTaskStatus(s string) (usecase.TaskStatus, error) {
	status := usecase.TaskStatus(strings.ToLower(strings.TrimSpace(s)))
	switch status {
	case "", usecase.TaskStatusReady, usecase.TaskStatusBlocked, usecase.TaskStatusDone:
		return status, nil
	default:
		return "", fmt.Errorf("invalid status %q: must be ready, blocked or done", s)
	}
}

// printTaskList prints tasks in a table format.
func printTaskList(w io.Writer, tasks []usecase.TaskView) {
	tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
	defer func() { _ = tw.Flush() }()

	// Header
	_, _ = fmt.Fprintln(tw, "ID\tSTATUS\tPRIORITY\tDEPENDS ON\tSUMMARY")

	// Rows
	for _, v := range tasks {
		deps := "-"
		if v.Spec.HasDependencies() {
			deps = strings.Join(v.Spec.Dependencies(), ",")
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			v.Spec.ID(),
			v.Status,
			v.Spec.Priority().Label(),
			deps,
			shorten(v.Spec.Summary()),
		)
	}
}

// newTasksShowCommand creates the tasks show subcommand.
func newTasksShowCommand(c *app.Container) *cobra.Command {
	var opts struct {
		JSON bool
	}

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show task details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := c.ShowTaskUseCase().Execute(cmd.Context(), usecase.ShowTaskInput{TaskID: args[0]})
			if err != nil {
				return err
			}

			if opts.JSON {
				return writeJSON(cmd.OutOrStdout(), toJSONTaskView(out.Task))
			}

			printTaskDetails(cmd.OutOrStdout(), out.Task)
			return nil
		},
	}

	cmd.Flags().BoolVar(&opts.JSON, "json", false, "Output in JSON format")

	return cmd
}

// printTaskDetails prints a task with its readiness.
func printTaskDetails(w io.Writer, v usecase.TaskView) {
	s := newStyles(w)
	spec := v.Spec

	_, _ = fmt.Fprintf(w, "%s %s %s\n", s.Title.Render(spec.ID()), s.priority(spec.Priority()), spec.Title())
	_, _ = fmt.Fprintf(w, "\n%s %s\n", s.Label.Render("Status:"), s.status(v.Status))
	if len(v.Missing) > 0 {
		_, _ = fmt.Fprintf(w, "%s %s\n", s.Label.Render("Waiting on:"), strings.Join(v.Missing, ", "))
	}
	_, _ = fmt.Fprintf(w, "%s %s\n", s.Label.Render("Source:"), v.Source)
	_, _ = fmt.Fprintf(w, "\n%s\n", spec.Summary())

	if spec.Details() != "" {
		_, _ = fmt.Fprintf(w, "\n%s\n", spec.Details())
	}
	printSection(w, s, "Context", spec.Context())
	if spec.HasAcceptanceCriteria() {
		printSection(w, s, "Acceptance criteria", spec.AcceptanceCriteria())
	} else {
		_, _ = fmt.Fprintf(w, "\n%s\n", s.Warning.Render("No acceptance criteria defined."))
	}
	printSection(w, s, "Dependencies", spec.Dependencies())
	printSection(w, s, "Tags", spec.Tags())
}

func printSection(w io.Writer, s styles, title string, items []string) {
	if len(items) == 0 {
		return
	}
	_, _ = fmt.Fprintf(w, "\n%s\n", s.Label.Render(title+":"))
	for _, item := range items {
		_, _ = fmt.Fprintf(w, "  - %s\n", item)
	}
}

// newTasksNextCommand creates the tasks next subcommand.
func newTasksNextCommand(c *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "next",
		Short: "Show the task the next run would select",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out, err := c.NextTaskUseCase().Execute(cmd.Context(), usecase.NextTaskInput{})
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			s := newStyles(w)
			_, _ = fmt.Fprintf(w, "%s %s %s\n", s.Title.Render(out.Task.ID()), s.priority(out.Task.Priority()), out.Task.Title())
			_, _ = fmt.Fprintf(w, "%s\n", out.Task.Summary())
			_, _ = fmt.Fprintf(w, "\n%s\n", s.Muted.Render(fmt.Sprintf("%d ready, %d blocked, %d done",
				len(out.Batch.Ready), len(out.Batch.Blocked), len(out.Batch.Done))))
			return nil
		},
	}
}

// newTasksPromptCommand creates the tasks prompt subcommand.
func newTasksPromptCommand(c *app.Container) *cobra.Command {
	var opts struct {
		ReadyLimit   int
		BlockedLimit int
	}

	cmd := &cobra.Command{
		Use:   "prompt",
		Short: "Print the prompt the next run would send",
		Long: `Print the prompt the next run would send to the code generator.

The prompt starts with the configured system prompt, followed by the backlog
digest and the selected task.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			limits := c.AppConfig.PromptLimits()
			if cmd.Flags().Changed("ready-limit") {
				limits.Ready = opts.ReadyLimit
			}
			if cmd.Flags().Changed("blocked-limit") {
				limits.Blocked = opts.BlockedLimit
			}

			systemPrompt, err := c.SystemPrompt()
			if err != nil {
				return err
			}

			out, err := c.RenderPromptUseCase().Execute(cmd.Context(), usecase.RenderPromptInput{
				SystemPrompt: systemPrompt,
				Limits:       limits,
			})
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), out.Prompt)
			return nil
		},
	}

	cmd.Flags().IntVar(&opts.ReadyLimit, "ready-limit", 0, "Maximum number of ready tasks listed (default from config)")
	cmd.Flags().IntVar(&opts.BlockedLimit, "blocked-limit", 0, "Maximum number of blocked tasks listed (default from config)")

	return cmd
}

// newTasksCheckCommand creates the tasks check subcommand.
func newTasksCheckCommand(c *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Validate task definitions and dependencies",
		Long: `Validate every task definition file.

Malformed files and duplicate ids fail the check. Dependencies on unknown ids
and dependency cycles are reported; such tasks can never become ready.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out, err := c.CheckCatalogueUseCase().Execute(cmd.Context(), usecase.CheckCatalogueInput{})
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			s := newStyles(w)

			files := make([]string, 0, len(out.FileSpread))
			for f := range out.FileSpread {
				files = append(files, f)
			}
			slices.Sort(files)

			_, _ = fmt.Fprintf(w, "%d tasks in %d files\n", out.TaskCount, len(files))
			for _, f := range files {
				_, _ = fmt.Fprintf(w, "  %s (%d)\n", f, out.FileSpread[f])
			}

			if !out.Report.HasIssues() {
				_, _ = fmt.Fprintf(w, "\n%s\n", s.OK.Render("No dependency problems found."))
				return nil
			}
			if len(out.Report.Unknown) > 0 {
				_, _ = fmt.Fprintf(w, "\n%s\n", s.Warning.Render("Unknown dependencies:"))
				for _, m := range out.Report.Unknown {
					_, _ = fmt.Fprintf(w, "  %s -> %s\n", m.TaskID, m.DependsOn)
				}
			}
			if len(out.Report.Deadlocked) > 0 {
				_, _ = fmt.Fprintf(w, "\n%s\n", s.Warning.Render("Deadlocked by a dependency cycle:"))
				for _, id := range out.Report.Deadlocked {
					_, _ = fmt.Fprintf(w, "  %s\n", id)
				}
			}
			return nil
		},
	}
}

// writeJSON writes v as indented JSON.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
