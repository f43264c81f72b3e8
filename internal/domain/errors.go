package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Every typed error below unwraps to exactly one of these, so callers
// can classify failures with errors.Is.
var (
	ErrValidation      = errors.New("invalid task specification")
	ErrDuplicateTask   = errors.New("duplicate task id")
	ErrCatalogueParse  = errors.New("task catalogue unreadable")
	ErrStateCorruption = errors.New("state file corrupted")
	ErrDelegation      = errors.New("delegation failed")
)

// Domain errors.
var (
	ErrNothingActionable    = errors.New("no ready tasks")
	ErrGeneratorUnavailable = errors.New("code generator not configured")
	ErrNoActionableChange   = errors.New("code generator produced no actionable change")
	ErrGateFailed           = errors.New("quality gate failed")
	ErrInvalidRunTransition = errors.New("invalid run state transition")
	ErrTaskNotFound         = errors.New("task not found")
	ErrConfigExists         = errors.New("config file already exists")
	ErrNotInitialized       = errors.New("autocrew not initialized: run 'autocrew init' first")
	ErrUnsafePatchPath      = errors.New("patch path escapes the repository")
	ErrInvalidPromptLimit   = errors.New("prompt limit must be positive")
	ErrNotGitRepository     = errors.New("not a git repository (or any of the parent directories)")
)

// ValidationError reports a malformed TaskSpec field.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Msg
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Msg)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

func invalidField(field, format string, args ...any) error {
	return &ValidationError{Field: field, Msg: fmt.Sprintf(format, args...)}
}

// DuplicateTaskError reports a task_id declared by two sources.
type DuplicateTaskError struct {
	TaskID string
	First  string // source location of the first declaration
	Second string // source location of the conflicting declaration
}

func (e *DuplicateTaskError) Error() string {
	return fmt.Sprintf("duplicate task_id %q: declared in %s and %s", e.TaskID, e.First, e.Second)
}

func (e *DuplicateTaskError) Unwrap() error { return ErrDuplicateTask }

// CatalogueError reports a task definition file that cannot be read, parsed or validated.
// Err carries the underlying cause (for example a *ValidationError).
type CatalogueError struct {
	Err  error
	Path string
	Msg  string
}

func (e *CatalogueError) Error() string {
	msg := e.Msg
	if e.Err != nil {
		if msg == "" {
			msg = e.Err.Error()
		} else {
			msg = msg + ": " + e.Err.Error()
		}
	}
	return fmt.Sprintf("%s: %s", e.Path, msg)
}

func (e *CatalogueError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrCatalogueParse}
	}
	return []error{ErrCatalogueParse, e.Err}
}

// StateCorruptionError reports a completed-task or run-event file that exists
// but cannot be trusted.
type StateCorruptionError struct {
	Err  error
	Path string
	Msg  string
}

func (e *StateCorruptionError) Error() string {
	msg := e.Msg
	if e.Err != nil {
		if msg == "" {
			msg = e.Err.Error()
		} else {
			msg = msg + ": " + e.Err.Error()
		}
	}
	return fmt.Sprintf("%s: %s", e.Path, msg)
}

func (e *StateCorruptionError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrStateCorruption}
	}
	return []error{ErrStateCorruption, e.Err}
}

// DelegationError reports a failure of an external collaborator
// (code generator, version control, quality gates, publisher).
type DelegationError struct {
	Err   error
	Stage string
}

func (e *DelegationError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("delegation failed at %s", e.Stage)
	}
	return fmt.Sprintf("delegation failed at %s: %v", e.Stage, e.Err)
}

func (e *DelegationError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrDelegation}
	}
	return []error{ErrDelegation, e.Err}
}

// ErrorKind returns a short label for the error kind of err, or "error" when
// err does not carry one of the known kinds. A validation failure inside a
// catalogue file reports as "validation".
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, ErrDuplicateTask):
		return "duplicate_task"
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrCatalogueParse):
		return "catalogue_parse"
	case errors.Is(err, ErrStateCorruption):
		return "state_corruption"
	case errors.Is(err, ErrDelegation):
		return "delegation"
	default:
		return "error"
	}
}
