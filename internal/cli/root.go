// Package cli provides the command-line interface for autocrew.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/runoshun/autocrew/internal/app"
)

// Command group IDs.
const (
	groupSetup   = "setup"
	groupBacklog = "backlog"
)

// VerboseFlag mirrors log entries to stderr. It is read by main before the
// container is built; cobra only declares it.
const VerboseFlag = "verbose"

// NewRootCommand creates the root command for autocrew.
// It receives the container for dependency injection and version for display.
func NewRootCommand(c *app.Container, version string) *cobra.Command {
	root := &cobra.Command{
		Use:   "autocrew",
		Short: "Backlog-driven automation agent",
		Long: `autocrew picks the next ready task from a backlog of task definition
files, hands it to a code generation command and records what happened.

Tasks become ready once every task they depend on is completed. Among ready
tasks the highest priority wins; ties keep catalogue order.`,
		Version: version,
		// SilenceUsage prevents usage from being printed on errors
		SilenceUsage: true,
		// SilenceErrors prevents Cobra from printing errors (we handle it in main)
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Skip if container is nil (e.g. help without a repository)
			if c == nil || c.AppConfig == nil {
				return nil
			}
			for _, w := range c.AppConfig.Warnings {
				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %s\n", w)
			}
			return nil
		},
	}

	root.PersistentFlags().Bool(VerboseFlag, false, "Mirror log entries to stderr")

	// Define command groups
	root.AddGroup(
		&cobra.Group{ID: groupSetup, Title: "Setup Commands:"},
		&cobra.Group{ID: groupBacklog, Title: "Backlog Commands:"},
	)

	// Setup commands
	initCmd := newInitCommand(c)
	initCmd.GroupID = groupSetup

	configCmd := newConfigCommand(c)
	configCmd.GroupID = groupSetup

	// Backlog commands
	runCmd := newRunCommand(c)
	runCmd.GroupID = groupBacklog

	tasksCmd := newTasksCommand(c)
	tasksCmd.GroupID = groupBacklog

	stateCmd := newStateCommand(c)
	stateCmd.GroupID = groupBacklog

	eventsCmd := newEventsCommand(c)
	eventsCmd.GroupID = groupBacklog

	root.AddCommand(
		initCmd,
		configCmd,
		runCmd,
		tasksCmd,
		stateCmd,
		eventsCmd,
	)

	return root
}
