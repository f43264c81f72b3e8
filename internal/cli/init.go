package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/runoshun/autocrew/internal/app"
	"github.com/runoshun/autocrew/internal/usecase"
)

// newInitCommand creates the init command.
func newInitCommand(c *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize autocrew for this repository",
		Long: `Initialize autocrew for this repository.

Writes a commented config file to .autocrew/config.toml and creates the
tasks directory. An existing config file is never overwritten.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out, err := c.InitConfigUseCase().Execute(cmd.Context(), usecase.InitConfigInput{})
			if err != nil {
				return err
			}
			if err := os.MkdirAll(c.Config.TasksDir, 0o750); err != nil {
				return fmt.Errorf("create tasks directory: %w", err)
			}

			w := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(w, "Initialized autocrew config at %s\n", out.Path)
			_, _ = fmt.Fprintf(w, "Add task definition files to %s\n", c.Config.TasksDir)
			return nil
		},
	}
}
