package cli

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/runoshun/autocrew/internal/app"
	"github.com/runoshun/autocrew/internal/domain"
	"github.com/runoshun/autocrew/internal/usecase"
)

// newEventsCommand creates the events command.
func newEventsCommand(c *app.Container) *cobra.Command {
	var opts struct {
		Limit       int
		NewestFirst bool
		JSON        bool
	}

	cmd := &cobra.Command{
		Use:   "events",
		Short: "Show recorded run events",
		Long: `Show the run-event log.

Each run records one event describing its outcome. Only the most recent
events are kept.

Examples:
  # Show the last five runs, newest first
  autocrew events -n 5 --newest-first`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if opts.Limit < 0 {
				return fmt.Errorf("invalid limit %d: must not be negative", opts.Limit)
			}

			out, err := c.ShowEventsUseCase().Execute(cmd.Context(), usecase.ShowEventsInput{
				Limit:       opts.Limit,
				NewestFirst: opts.NewestFirst,
			})
			if err != nil {
				return err
			}

			if opts.JSON {
				events := out.Events
				if events == nil {
					events = []domain.RunEvent{}
				}
				return writeJSON(cmd.OutOrStdout(), events)
			}

			if len(out.Events) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No events recorded.")
				return nil
			}
			printEvents(cmd.OutOrStdout(), out.Events)
			return nil
		},
	}

	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", 0, "Show only the N most recent events (0 shows all)")
	cmd.Flags().BoolVar(&opts.NewestFirst, "newest-first", false, "List the newest event first")
	cmd.Flags().BoolVar(&opts.JSON, "json", false, "Output in JSON format")

	return cmd
}

// printEvents prints events in a table format.
func printEvents(w io.Writer, events []domain.RunEvent) {
	tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
	defer func() { _ = tw.Flush() }()

	_, _ = fmt.Fprintln(tw, "TIME\tLEVEL\tTASK\tREASON\tMESSAGE")
	for _, e := range events {
		task := e.TaskID
		if task == "" {
			task = "-"
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			e.Timestamp.Local().Format(time.DateTime),
			e.Level,
			task,
			e.Reason,
			shorten(e.Message),
		)
	}
}
