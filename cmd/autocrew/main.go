// Package main is the entry point for the autocrew CLI.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"slices"
	"syscall"

	"github.com/runoshun/autocrew/internal/app"
	"github.com/runoshun/autocrew/internal/cli"
	"github.com/runoshun/autocrew/internal/domain"
)

// version is set at build time using -ldflags.
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	// Get current working directory
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get current directory: %w", err)
	}

	// Cancel running collaborators on interrupt
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Create dependency injection container
	container, err := app.New(cwd, app.Options{Verbose: hasVerbose(os.Args[1:])})
	if err != nil {
		// Allow running without git repo for help/version
		if errors.Is(err, domain.ErrNotGitRepository) {
			return runWithoutContainer(ctx, err)
		}
		return fmt.Errorf("failed to initialize: %w", err)
	}
	defer func() { _ = container.Close() }()

	// Create and execute root command
	rootCmd := cli.NewRootCommand(container, version)
	return rootCmd.ExecuteContext(ctx)
}

// runWithoutContainer handles cases where git repo is not found.
// This allows help and version to work without a git repository.
func runWithoutContainer(ctx context.Context, gitErr error) error {
	rootCmd := cli.NewRootCommand(nil, version)

	// Commands that can run without a git repository
	if canRunWithoutGit(os.Args[1:]) {
		return rootCmd.ExecuteContext(ctx)
	}
	// For other commands, return the git error
	return gitErr
}

func canRunWithoutGit(args []string) bool {
	if len(args) == 0 {
		return true
	}
	if args[0] == "help" {
		return true
	}
	if len(args) >= 2 && args[0] == "config" && args[1] == "template" {
		return true
	}
	for _, arg := range args {
		if arg == "--version" || arg == "--help" || arg == "-h" {
			return true
		}
	}
	return false
}

// hasVerbose reports whether the verbose flag is set. The container is built
// before cobra parses flags, so the flag is looked up directly.
func hasVerbose(args []string) bool {
	return slices.Contains(args, "--"+cli.VerboseFlag) || slices.Contains(args, "--"+cli.VerboseFlag+"=true")
}
