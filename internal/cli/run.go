package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/runoshun/autocrew/internal/app"
	"github.com/runoshun/autocrew/internal/domain"
	"github.com/runoshun/autocrew/internal/usecase"
)

// newRunCommand creates the run command.
func newRunCommand(c *app.Container) *cobra.Command {
	var opts struct {
		NoMarkCompleted bool
		NoPublish       bool
	}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the next ready task",
		Long: `Select the next ready task and hand it to the code generator.

A run loads the catalogue, selects the highest priority ready task and sends
the backlog prompt to the configured [codegen] command. The returned change
set is committed on a new branch, checked by the quality gates and, when
publishing is enabled, pushed as a pull request.

Every run records exactly one event. When no task is ready the run is skipped.
A failed run exits non-zero after recording why it failed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out, runErr := c.RunBacklogUseCase().Execute(cmd.Context(), usecase.RunBacklogInput{
				MarkCompleted: c.AppConfig.Run.MarkCompleted && !opts.NoMarkCompleted,
				Publish:       c.AppConfig.Publish.Enabled && !opts.NoPublish,
			})
			if out != nil {
				printRunOutcome(cmd.OutOrStdout(), out)
			}
			return runErr
		},
	}

	cmd.Flags().BoolVar(&opts.NoMarkCompleted, "no-mark-completed", false, "Do not record the selected task as completed")
	cmd.Flags().BoolVar(&opts.NoPublish, "no-publish", false, "Do not push the branch or open a pull request")

	return cmd
}

// printRunOutcome prints the result of one run.
func printRunOutcome(w io.Writer, out *usecase.RunBacklogOutput) {
	s := newStyles(w)

	_, _ = fmt.Fprintf(w, "Run %s %s: %s\n", out.RunID, s.runState(out.State), out.Event.Reason)
	if out.Event.Message != "" && out.Event.Message != out.Event.Reason {
		_, _ = fmt.Fprintf(w, "  %s\n", out.Event.Message)
	}
	if out.Task != nil {
		_, _ = fmt.Fprintf(w, "%s %s %s\n", s.Label.Render("Task:"), out.Task.ID(), out.Task.Title())
	}
	if out.Branch != "" {
		_, _ = fmt.Fprintf(w, "%s %s\n", s.Label.Render("Branch:"), out.Branch)
	}
	if len(out.Written) > 0 {
		_, _ = fmt.Fprintf(w, "%s\n", s.Label.Render("Files:"))
		for _, f := range out.Written {
			_, _ = fmt.Fprintf(w, "  %s\n", f)
		}
	}
	for _, g := range out.Gates {
		mark := s.OK.Render("pass")
		if !g.Passed {
			mark = s.Error.Render("fail")
		}
		_, _ = fmt.Fprintf(w, "%s %s %s\n", s.Label.Render("Gate:"), g.Name, mark)
	}
	if out.PR != nil {
		_, _ = fmt.Fprintf(w, "%s %s\n", s.Label.Render("Pull request:"), out.PR.URL)
	}
	if out.State == domain.RunStateFailed {
		_, _ = fmt.Fprintf(w, "%s\n", s.Muted.Render("See 'autocrew events' for details."))
	}
}
