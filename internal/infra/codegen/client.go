// Package codegen adapts an external code generation command to domain.CodeGenerator.
package codegen

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/runoshun/autocrew/internal/domain"
)

// Ensure Client implements domain.CodeGenerator.
var _ domain.CodeGenerator = (*Client)(nil)

// Client runs a shell command that reads the prompt on stdin and prints
// a JSON change set on stdout.
type Client struct {
	executor domain.CommandExecutor
	command  string
	dir      string
}

// NewClient creates a Client running command in dir.
func NewClient(executor domain.CommandExecutor, command, dir string) *Client {
	return &Client{executor: executor, command: strings.TrimSpace(command), dir: dir}
}

// Generate sends req.Prompt to the command and decodes its answer.
func (c *Client) Generate(ctx context.Context, req domain.GenerationRequest) (*domain.ChangeSet, error) {
	if c.command == "" {
		return nil, domain.ErrGeneratorUnavailable
	}

	cmd := domain.NewShellCommand(c.command, c.dir)
	cmd.Stdin = req.Prompt
	if req.Task != nil {
		cmd.Env = []string{"AUTOCREW_TASK_ID=" + req.Task.ID()}
	}

	out, err := c.executor.Output(ctx, cmd)
	if err != nil {
		return nil, fmt.Errorf("run code generator: %w", err)
	}

	cs, err := DecodeChangeSet(out)
	if err != nil {
		return nil, err
	}
	return cs, nil
}

// DecodeChangeSet extracts the JSON object from generator output. Text around
// the outermost braces (a model's preamble, a markdown fence) is ignored.
func DecodeChangeSet(out []byte) (*domain.ChangeSet, error) {
	start := bytes.IndexByte(out, '{')
	end := bytes.LastIndexByte(out, '}')
	if start < 0 || end < start {
		return nil, errors.New("code generator output contains no JSON object")
	}

	var cs domain.ChangeSet
	if err := json.Unmarshal(out[start:end+1], &cs); err != nil {
		return nil, fmt.Errorf("decode change set: %w", err)
	}
	return &cs, nil
}
