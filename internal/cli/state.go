package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/runoshun/autocrew/internal/app"
	"github.com/runoshun/autocrew/internal/usecase"
)

// newStateCommand creates the state command.
func newStateCommand(c *app.Container) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "state",
		Short: "Manage completed tasks",
		Long: `Manage the set of completed task ids.

Completed tasks satisfy the dependencies of other tasks and are never selected
again. Runs record completions automatically; these commands are for manual
corrections.`,
		// No RunE: shows subcommand list when called without arguments
	}

	cmd.AddCommand(
		newStateListCommand(c),
		newStateMarkCommand(c, true),
		newStateMarkCommand(c, false),
		newStateClearCommand(c),
	)

	return cmd
}

// newStateListCommand creates the state list subcommand.
func newStateListCommand(c *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List completed task ids",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out, err := c.ListCompletedUseCase().Execute(cmd.Context(), usecase.ListCompletedInput{})
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if len(out.TaskIDs) == 0 {
				_, _ = fmt.Fprintln(w, "No completed tasks.")
				return nil
			}
			for _, id := range out.TaskIDs {
				_, _ = fmt.Fprintln(w, id)
			}
			return nil
		},
	}
}

// newStateMarkCommand creates the state done and state undone subcommands.
func newStateMarkCommand(c *app.Container, done bool) *cobra.Command {
	var force bool

	use, short, verb := "undone <id>...", "Mark tasks as not completed", "incomplete"
	if done {
		use, short, verb = "done <id>...", "Mark tasks as completed", "completed"
	}

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := c.MarkTasksUseCase().Execute(cmd.Context(), usecase.MarkTasksInput{
				TaskIDs: args,
				Done:    done,
				Force:   force,
			})
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if len(out.Changed) > 0 {
				_, _ = fmt.Fprintf(w, "Marked %s: %s\n", verb, strings.Join(out.Changed, ", "))
			}
			if len(out.Unchanged) > 0 {
				_, _ = fmt.Fprintf(w, "Already %s: %s\n", verb, strings.Join(out.Unchanged, ", "))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Accept ids that are not in the catalogue")

	return cmd
}

// newStateClearCommand creates the state clear subcommand.
func newStateClearCommand(c *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Forget every completed task",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out, err := c.ClearCompletedUseCase().Execute(cmd.Context(), usecase.ClearCompletedInput{})
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d completed tasks\n", len(out.Removed))
			return nil
		},
	}
}
