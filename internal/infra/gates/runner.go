// Package gates runs the configured quality gate commands.
package gates

import (
	"context"
	"errors"
	"os/exec"
	"strings"

	"github.com/runoshun/autocrew/internal/domain"
)

// Ensure Runner implements domain.QualityGate.
var _ domain.QualityGate = (*Runner)(nil)

// Runner runs each check through the shell in the repository root.
type Runner struct {
	executor domain.CommandExecutor
	dir      string
	checks   []domain.GateCheck
}

// NewRunner creates a Runner.
func NewRunner(executor domain.CommandExecutor, dir string, checks []domain.GateCheck) *Runner {
	return &Runner{executor: executor, dir: dir, checks: checks}
}

// Check runs every check in order, including those after a failure.
// A non-zero exit marks the check failed; any other error aborts.
func (r *Runner) Check(ctx context.Context) ([]domain.GateResult, error) {
	results := make([]domain.GateResult, 0, len(r.checks))
	for _, check := range r.checks {
		out, err := r.executor.Execute(ctx, domain.NewShellCommand(check.Command, r.dir))
		result := domain.GateResult{
			Name:   check.Name,
			Output: strings.TrimSpace(string(out)),
			Passed: err == nil,
		}
		if err != nil && !isExitError(err) {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return results, ctxErr
			}
			if result.Output == "" {
				result.Output = err.Error()
			}
		}
		results = append(results, result)
	}
	return results, nil
}

func isExitError(err error) bool {
	var exitErr *exec.ExitError
	return errors.As(err, &exitErr)
}
