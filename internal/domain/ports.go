package domain

import (
	"context"
	"time"
)

// TaskSpecLoader produces the task catalogue.
type TaskSpecLoader interface {
	// Load reads every task definition and returns the catalogue.
	// Any error means no catalogue.
	Load() (*Catalogue, error)
}

// CompletedTaskStore persists the ids of completed tasks.
type CompletedTaskStore interface {
	// Completed returns the completed ids in lexical order.
	Completed() ([]string, error)

	// IsCompleted reports whether id is recorded as done.
	IsCompleted(id string) (bool, error)

	// MarkCompleted records id as done. Marking twice is a no-op.
	MarkCompleted(id string) error

	// MarkIncomplete removes id. Unknown ids are a no-op.
	MarkIncomplete(id string) error

	// Clear removes every record.
	Clear() error

	// Reload discards any cached state and reads the store again.
	Reload() (CompletedSet, error)
}

// RunEventLog is the bounded history of run outcomes.
type RunEventLog interface {
	// Append stores e and returns it with ID and Timestamp filled in.
	Append(e RunEvent) (RunEvent, error)

	// List returns copies of the stored events.
	List(q EventQuery) ([]RunEvent, error)
}

// CodeGenerator turns a prompt into a proposed change set.
type CodeGenerator interface {
	Generate(ctx context.Context, req GenerationRequest) (*ChangeSet, error)
}

// QualityGate runs the configured checks against the working tree.
type QualityGate interface {
	// Check runs every check. The error is non-nil only if a check could not be run.
	Check(ctx context.Context) ([]GateResult, error)
}

// VersionControl applies a change set on a fresh branch.
type VersionControl interface {
	// CreateBranch creates and checks out name from the current HEAD.
	CreateBranch(name string) error

	// Apply writes the patches of cs into the working tree and returns the written paths.
	Apply(cs *ChangeSet) ([]string, error)

	// Commit stages the files written by Apply and commits them.
	Commit(message string) error

	// Abandon returns to the branch that was checked out before CreateBranch.
	Abandon() error
}

// Publisher pushes a branch and opens a pull request.
type Publisher interface {
	Publish(ctx context.Context, req PublishRequest) (*PublishResult, error)
}

// CommandExecutor runs external commands.
type CommandExecutor interface {
	// Execute runs cmd and returns its combined output.
	Execute(ctx context.Context, cmd *ExecCommand) ([]byte, error)

	// Output runs cmd and returns its standard output only.
	Output(ctx context.Context, cmd *ExecCommand) ([]byte, error)
}

// ConfigLoader loads configuration from files.
type ConfigLoader interface {
	// Load returns the merged configuration (default ← global ← repo).
	Load() (*Config, error)

	// LoadGlobal returns only the global configuration merged over defaults.
	LoadGlobal() (*Config, error)
}

// ConfigManager creates configuration files.
type ConfigManager interface {
	// InitRepoConfig writes the default repo config. Fails with ErrConfigExists.
	InitRepoConfig(cfg *Config) error

	// RepoConfigPath returns the repo config location.
	RepoConfigPath() string

	// GetRepoConfigInfo returns information about the repo config file.
	GetRepoConfigInfo() ConfigInfo

	// GetGlobalConfigInfo returns information about the global config file.
	GetGlobalConfigInfo() ConfigInfo
}

// Logger writes operational logs.
type Logger interface {
	Debug(taskID, category, msg string)
	Info(taskID, category, msg string)
	Warn(taskID, category, msg string)
	Error(taskID, category, msg string)
}

// Clock provides time operations for testability.
type Clock interface {
	// Now returns the current time.
	Now() time.Time
}

// RealClock implements Clock using the system clock.
type RealClock struct{}

// Now returns the current time.
func (RealClock) Now() time.Time {
	return time.Now()
}

// NopLogger discards every message.
type NopLogger struct{}

func (NopLogger) Debug(string, string, string) {}
func (NopLogger) Info(string, string, string)  {}
func (NopLogger) Warn(string, string, string)  {}
func (NopLogger) Error(string, string, string) {}
