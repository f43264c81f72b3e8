// Package github publishes branches as pull requests through the gh CLI.
package github

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/runoshun/autocrew/internal/domain"
)

// Ensure Client implements domain.Publisher.
var _ domain.Publisher = (*Client)(nil)

var prURLPattern = regexp.MustCompile(`https?://\S+/pull/(\d+)`)

// Client pushes with git and opens pull requests with gh.
type Client struct {
	executor domain.CommandExecutor
	repoRoot string
	remote   string
}

// NewClient creates a Client pushing to remote.
func NewClient(executor domain.CommandExecutor, repoRoot, remote string) *Client {
	return &Client{executor: executor, repoRoot: repoRoot, remote: remote}
}

// Publish pushes req.Branch and opens a pull request for it.
func (c *Client) Publish(ctx context.Context, req domain.PublishRequest) (*domain.PublishResult, error) {
	push := domain.NewCommand("git", []string{"push", "-u", c.remote, req.Branch}, c.repoRoot)
	if out, err := c.executor.Execute(ctx, push); err != nil {
		return nil, fmt.Errorf("push %s: %w: %s", req.Branch, err, strings.TrimSpace(string(out)))
	}

	args := []string{
		"pr", "create",
		"--title", req.Title,
		"--body", req.Body,
		"--head", req.Branch,
	}
	if req.Base != "" {
		args = append(args, "--base", req.Base)
	}
	for _, label := range req.Labels {
		args = append(args, "--label", label)
	}

	out, err := c.executor.Output(ctx, domain.NewCommand("gh", args, c.repoRoot))
	if err != nil {
		return nil, fmt.Errorf("create pull request: %w", err)
	}
	return parseResult(string(out)), nil
}

// parseResult reads the pull request URL printed by gh pr create.
func parseResult(out string) *domain.PublishResult {
	m := prURLPattern.FindStringSubmatch(out)
	if m == nil {
		return &domain.PublishResult{URL: strings.TrimSpace(out)}
	}
	n, _ := strconv.Atoi(m[1])
	return &domain.PublishResult{URL: m[0], Number: n}
}
