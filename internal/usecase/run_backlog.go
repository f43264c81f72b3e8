package usecase

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"

	"github.com/runoshun/autocrew/internal/domain"
)

// Log category for run controller messages.
const runLogCategory = "run"

// RunBacklogDeps holds the collaborators of a run.
// Gates, Publisher and Logger may be nil.
type RunBacklogDeps struct {
	Loader    domain.TaskSpecLoader
	Store     domain.CompletedTaskStore
	Events    domain.RunEventLog
	Generator domain.CodeGenerator
	Gates     domain.QualityGate
	VCS       domain.VersionControl
	Publisher domain.Publisher
	Logger    domain.Logger
}

// RunBacklogSettings holds the configured behaviour of a run.
// Fields are ordered to minimize memory padding.
type RunBacklogSettings struct {
	SystemPrompt     string
	SystemPromptFile string // read on every run after selection; overrides SystemPrompt
	BranchPrefix     string
	Base             string
	Labels           []string
	Limits           domain.PromptLimits
	ProceedOnFailure bool
}

// RunBacklogInput contains the parameters of one run.
type RunBacklogInput struct {
	MarkCompleted bool // Record the selected task as completed on success
	Publish       bool // Push the branch and open a pull request
}

// RunBacklogOutput describes the outcome of one run.
// Fields are ordered to minimize memory padding.
type RunBacklogOutput struct {
	Event   domain.RunEvent       // The event written for the run
	Task    *domain.TaskSpec      // Selected task, nil when skipped or failed before selection
	PR      *domain.PublishResult // Opened pull request, if any
	RunID   string
	State   domain.RunState // done or failed
	Branch  string
	Written []string
	Gates   []domain.GateResult
	History []domain.RunState
}

// RunBacklog selects the next ready task, delegates it to the code generator
// and records the outcome. Each run writes exactly one RunEvent.
type RunBacklog struct {
	loader    domain.TaskSpecLoader
	store     domain.CompletedTaskStore
	events    domain.RunEventLog
	generator domain.CodeGenerator
	gates     domain.QualityGate
	vcs       domain.VersionControl
	publisher domain.Publisher
	logger    domain.Logger
	newRunID  func() string
	settings  RunBacklogSettings
}

// NewRunBacklog creates a new RunBacklog use case.
func NewRunBacklog(deps RunBacklogDeps, settings RunBacklogSettings) *RunBacklog {
	logger := deps.Logger
	if logger == nil {
		logger = domain.NopLogger{}
	}
	if settings.Limits == (domain.PromptLimits{}) {
		settings.Limits = domain.DefaultPromptLimits
	}
	return &RunBacklog{
		loader:    deps.Loader,
		store:     deps.Store,
		events:    deps.Events,
		generator: deps.Generator,
		gates:     deps.Gates,
		vcs:       deps.VCS,
		publisher: deps.Publisher,
		logger:    logger,
		newRunID:  uuid.NewString,
		settings:  settings,
	}
}

// WithRunIDs replaces the run id generator.
func (uc *RunBacklog) WithRunIDs(newRunID func() string) *RunBacklog {
	uc.newRunID = newRunID
	return uc
}

// Execute performs one run. A failed run returns its output together with the error.
func (uc *RunBacklog) Execute(ctx context.Context, in RunBacklogInput) (*RunBacklogOutput, error) {
	r := &backlogRun{
		uc:      uc,
		machine: domain.NewRunMachine(),
		out:     &RunBacklogOutput{RunID: uc.newRunID()},
	}

	// idle → catalogue_loaded
	cat, err := uc.loader.Load()
	if err != nil {
		return r.fail(domain.ReasonCatalogueInvalid, fmt.Errorf("load catalogue: %w", err), nil)
	}
	if err := r.to(domain.RunStateCatalogueLoaded); err != nil {
		return r.out, err
	}

	completed, err := uc.store.Reload()
	if err != nil {
		return r.fail(domain.ReasonStateCorrupted, fmt.Errorf("load completed tasks: %w", err), nil)
	}

	batch := domain.Partition(cat, completed)
	task, err := batch.Next()
	if errors.Is(err, domain.ErrNothingActionable) {
		return r.skip(cat, batch)
	}
	if err != nil {
		return r.fail(domain.ReasonCatalogueInvalid, err, nil)
	}

	// catalogue_loaded → selected
	r.out.Task = task
	if err := r.to(domain.RunStateSelected); err != nil {
		return r.out, err
	}
	uc.logger.Info(task.ID(), runLogCategory, fmt.Sprintf("run %s started: selected task %s", r.out.RunID, task.ID()))

	systemPrompt, err := uc.systemPrompt()
	if err != nil {
		return r.fail(domain.ReasonDelegationFailed, &domain.DelegationError{Stage: "prompt", Err: err}, nil)
	}
	digest, err := domain.BuildDigest(batch, uc.settings.Limits)
	if err != nil {
		return r.fail(domain.ReasonDelegationFailed, &domain.DelegationError{Stage: "prompt", Err: err}, nil)
	}
	req := domain.GenerationRequest{
		Task:         task,
		Digest:       digest,
		SystemPrompt: systemPrompt,
		Prompt:       domain.ComposePrompt(systemPrompt, digest.Prompt, domain.RenderSelectedTask(task)),
	}

	cs, err := uc.generator.Generate(ctx, req)
	if err != nil {
		return r.fail(domain.ReasonDelegationFailed, &domain.DelegationError{Stage: "generate", Err: err}, nil)
	}

	// selected → delegated
	if err := r.to(domain.RunStateDelegated); err != nil {
		return r.out, err
	}
	if !cs.HasChanges() {
		return r.fail(domain.ReasonNoActionableChange,
			&domain.DelegationError{Stage: "generate", Err: domain.ErrNoActionableChange},
			changeSetDetails(cs))
	}

	if err := r.commit(task, cs); err != nil {
		return r.fail(domain.ReasonVCSFailed, err, r.abandon(changeSetDetails(cs)))
	}

	if details, err := r.checkGates(ctx); err != nil {
		return r.fail(domain.ReasonGateFailed, err, r.abandon(merge(changeSetDetails(cs), details)))
	}

	if in.Publish && uc.publisher != nil {
		pr, err := uc.publisher.Publish(ctx, domain.PublishRequest{
			Branch: r.out.Branch,
			Title:  domain.PRTitle(task),
			Body:   domain.PRBody(task),
			Base:   uc.settings.Base,
			Labels: uc.settings.Labels,
		})
		if err != nil {
			return r.fail(domain.ReasonPublishFailed,
				&domain.DelegationError{Stage: "publish", Err: err},
				r.resultDetails(cs))
		}
		r.out.PR = pr
		uc.logger.Info(task.ID(), runLogCategory, "opened pull request "+pr.URL)
	}

	if in.MarkCompleted {
		if err := uc.store.MarkCompleted(task.ID()); err != nil {
			return r.fail(domain.ReasonCompletionNotStored,
				fmt.Errorf("mark %s completed: %w", task.ID(), err),
				r.resultDetails(cs))
		}
	}

	// delegated → recorded → done
	details := r.resultDetails(cs)
	details["marked_completed"] = in.MarkCompleted
	return r.finish(domain.RunStateRecorded, domain.RunEvent{
		Level:   domain.EventLevelInfo,
		Reason:  domain.ReasonSelectedTaskExecuted,
		Message: fmt.Sprintf("task %s executed on branch %s", task.ID(), r.out.Branch),
		Details: details,
	})
}

// systemPrompt returns the configured system prompt, reading SystemPromptFile when set.
func (uc *RunBacklog) systemPrompt() (string, error) {
	if uc.settings.SystemPromptFile == "" {
		return uc.settings.SystemPrompt, nil
	}
	content, err := os.ReadFile(uc.settings.SystemPromptFile) // #nosec G304 - path comes from repo config
	if err != nil {
		return "", fmt.Errorf("read system prompt: %w", err)
	}
	return strings.TrimSpace(string(content)), nil
}

// backlogRun carries the state of one Execute call.
type backlogRun struct {
	uc      *RunBacklog
	machine *domain.RunMachine
	out     *RunBacklogOutput
}

func (r *backlogRun) to(state domain.RunState) error {
	if err := r.machine.Transition(state); err != nil {
		return err
	}
	r.out.State = state
	r.out.History = r.machine.History()
	return nil
}

func (r *backlogRun) taskID() string {
	if r.out.Task == nil {
		return ""
	}
	return r.out.Task.ID()
}

// skip ends a run that found nothing to do. Only the event log is written;
// the operational log stays untouched.
func (r *backlogRun) skip(cat *domain.Catalogue, batch *domain.Batch) (*RunBacklogOutput, error) {
	message := "no ready tasks"
	if cat.Len() == 0 {
		message = "task catalogue is empty"
	} else if len(batch.Blocked) > 0 {
		message = fmt.Sprintf("no ready tasks: %d blocked", len(batch.Blocked))
	}
	return r.finish(domain.RunStateSkipped, domain.RunEvent{
		Level:   domain.EventLevelInfo,
		Reason:  domain.ReasonNoReadyTasks,
		Message: message,
		Details: map[string]any{
			"blocked_task_ids":   batch.BlockedIDs(),
			"completed_task_ids": batch.Completed,
		},
	})
}

// finish moves to the terminal state, writes its event and ends the run.
func (r *backlogRun) finish(terminal domain.RunState, e domain.RunEvent) (*RunBacklogOutput, error) {
	if err := r.to(terminal); err != nil {
		return r.out, err
	}
	if err := r.record(e); err != nil {
		return r.out, err
	}
	if err := r.to(domain.RunStateDone); err != nil {
		return r.out, err
	}
	if terminal != domain.RunStateSkipped {
		r.uc.logger.Info(r.taskID(), runLogCategory, fmt.Sprintf("run %s finished: %s", r.out.RunID, e.Reason))
	}
	return r.out, nil
}

// fail moves to the failed state and writes the failure event.
func (r *backlogRun) fail(reason string, cause error, details map[string]any) (*RunBacklogOutput, error) {
	if err := r.to(domain.RunStateFailed); err != nil {
		return r.out, errors.Join(cause, err)
	}
	if details == nil {
		details = map[string]any{}
	}
	details["error_kind"] = domain.ErrorKind(cause)

	r.uc.logger.Error(r.taskID(), runLogCategory, fmt.Sprintf("run %s failed: %s: %v", r.out.RunID, reason, cause))
	if err := r.record(domain.RunEvent{
		Level:   domain.EventLevelError,
		Reason:  reason,
		Message: cause.Error(),
		Details: details,
	}); err != nil {
		return r.out, errors.Join(cause, err)
	}
	return r.out, cause
}

func (r *backlogRun) record(e domain.RunEvent) error {
	e.RunID = r.out.RunID
	e.TaskID = r.taskID()
	e.State = r.machine.State()
	e.Source = domain.EventSourceOrchestrator
	stored, err := r.uc.events.Append(e)
	if err != nil {
		return fmt.Errorf("record run event: %w", err)
	}
	r.out.Event = stored
	return nil
}

// commit creates the task branch, applies the change set and commits it.
func (r *backlogRun) commit(task *domain.TaskSpec, cs *domain.ChangeSet) error {
	vcs := r.uc.vcs
	branch := domain.BranchName(r.uc.settings.BranchPrefix, task.ID())
	if err := vcs.CreateBranch(branch); err != nil {
		return &domain.DelegationError{Stage: "branch", Err: err}
	}
	r.out.Branch = branch

	written, err := vcs.Apply(cs)
	r.out.Written = written
	if err != nil {
		return &domain.DelegationError{Stage: "apply", Err: err}
	}
	if err := vcs.Commit(domain.CommitMessage(task)); err != nil {
		return &domain.DelegationError{Stage: "commit", Err: err}
	}
	r.uc.logger.Info(task.ID(), runLogCategory, fmt.Sprintf("committed %d files on %s", len(written), branch))
	return nil
}

// abandon drops the run branch, if one was created, and adds the outcome to details.
func (r *backlogRun) abandon(details map[string]any) map[string]any {
	if r.out.Branch == "" {
		return details
	}
	if err := r.uc.vcs.Abandon(); err != nil {
		r.uc.logger.Warn(r.taskID(), runLogCategory, "abandon branch: "+err.Error())
		details["abandon_error"] = err.Error()
	}
	details["abandoned_branch"] = r.out.Branch
	return details
}

// checkGates runs the quality gates. Failed checks abort the run unless
// the run is configured to proceed on failure.
func (r *backlogRun) checkGates(ctx context.Context) (map[string]any, error) {
	if r.uc.gates == nil {
		return nil, nil
	}
	results, err := r.uc.gates.Check(ctx)
	r.out.Gates = results
	if err != nil {
		return nil, &domain.DelegationError{Stage: "gates", Err: err}
	}

	failed := domain.FailedGates(results)
	if len(failed) == 0 {
		return nil, nil
	}
	details := map[string]any{"failed_gates": failed}
	if r.uc.settings.ProceedOnFailure {
		r.uc.logger.Warn(r.taskID(), runLogCategory, "proceeding despite failed gates: "+strings.Join(failed, ", "))
		return details, nil
	}
	return details, &domain.DelegationError{
		Stage: "gates",
		Err:   fmt.Errorf("%w: %s", domain.ErrGateFailed, strings.Join(failed, ", ")),
	}
}

// resultDetails summarises a delegated run for its event.
func (r *backlogRun) resultDetails(cs *domain.ChangeSet) map[string]any {
	details := changeSetDetails(cs)
	details["branch"] = r.out.Branch
	details["files"] = r.out.Written
	if failed := domain.FailedGates(r.out.Gates); len(failed) > 0 {
		details["failed_gates"] = failed
	}
	if r.out.PR != nil {
		details["pull_request"] = r.out.PR.URL
	}
	return details
}

func changeSetDetails(cs *domain.ChangeSet) map[string]any {
	details := map[string]any{}
	if cs == nil {
		return details
	}
	if cs.Rationale != "" {
		details["rationale"] = cs.Rationale
	}
	if len(cs.AdminRequests) > 0 {
		details["admin_requests"] = cs.AdminRequests
	}
	return details
}

func merge(dst, src map[string]any) map[string]any {
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
