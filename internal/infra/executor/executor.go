// Package executor provides command execution functionality.
package executor

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/runoshun/autocrew/internal/domain"
)

// Client implements domain.CommandExecutor interface.
type Client struct{}

// NewClient creates a new command executor client.
func NewClient() *Client {
	return &Client{}
}

// Ensure Client implements domain.CommandExecutor interface.
var _ domain.CommandExecutor = (*Client)(nil)

// Execute runs the command and returns its combined output.
func (c *Client) Execute(ctx context.Context, cmd *domain.ExecCommand) ([]byte, error) {
	return build(ctx, cmd).CombinedOutput()
}

// Output runs the command and returns its standard output.
// Standard error is folded into the returned error on failure.
func (c *Client) Output(ctx context.Context, cmd *domain.ExecCommand) ([]byte, error) {
	execCmd := build(ctx, cmd)
	var stderr bytes.Buffer
	execCmd.Stderr = &stderr
	out, err := execCmd.Output()
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return out, fmt.Errorf("%w: %s", err, msg)
		}
		return out, err
	}
	return out, nil
}

func build(ctx context.Context, cmd *domain.ExecCommand) *exec.Cmd {
	// #nosec G204 - cmd.Program and cmd.Args come from trusted UseCase code or repo config
	execCmd := exec.CommandContext(ctx, cmd.Program, cmd.Args...)
	if cmd.Dir != "" {
		execCmd.Dir = cmd.Dir
	}
	if len(cmd.Env) > 0 {
		execCmd.Env = append(os.Environ(), cmd.Env...)
	}
	if cmd.Stdin != "" {
		execCmd.Stdin = strings.NewReader(cmd.Stdin)
	}
	return execCmd
}
