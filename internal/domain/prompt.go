package domain

import (
	"fmt"
	"strings"
)

// PromptLimits caps how many ready and blocked tasks a backlog digest lists.
type PromptLimits struct {
	Ready   int
	Blocked int
}

// DefaultPromptLimits lists three tasks per section.
var DefaultPromptLimits = PromptLimits{Ready: 3, Blocked: 3}

// Validate rejects non-positive limits.
func (l PromptLimits) Validate() error {
	if l.Ready <= 0 {
		return fmt.Errorf("ready limit %d: %w", l.Ready, ErrInvalidPromptLimit)
	}
	if l.Blocked <= 0 {
		return fmt.Errorf("blocked limit %d: %w", l.Blocked, ErrInvalidPromptLimit)
	}
	return nil
}

// BacklogDigest is a rendered backlog together with the ids it was built from.
type BacklogDigest struct {
	Prompt           string   `json:"prompt"`
	ReadyTaskIDs     []string `json:"ready_task_ids"`
	BlockedTaskIDs   []string `json:"blocked_task_ids"`
	CompletedTaskIDs []string `json:"completed_task_ids"`
}

// BuildDigest renders the batch and records its ids.
func BuildDigest(b *Batch, limits PromptLimits) (*BacklogDigest, error) {
	prompt, err := RenderBacklog(b, limits)
	if err != nil {
		return nil, err
	}
	return &BacklogDigest{
		Prompt:           prompt,
		ReadyTaskIDs:     b.ReadyIDs(),
		BlockedTaskIDs:   b.BlockedIDs(),
		CompletedTaskIDs: append([]string{}, b.Completed...),
	}, nil
}

// RenderBacklog renders a markdown digest of the batch. The output depends only
// on the batch and the limits.
func RenderBacklog(b *Batch, limits PromptLimits) (string, error) {
	if err := limits.Validate(); err != nil {
		return "", err
	}

	sections := []string{"## Ready Tasks", renderReady(b.Ready, limits.Ready)}
	sections = append(sections, "## Blocked Tasks", renderBlocked(b, limits.Blocked))
	if len(b.Completed) > 0 {
		sections = append(sections, "## Completed Task References", strings.Join(b.Completed, ", "))
	}
	return strings.Join(sections, "\n\n"), nil
}

func renderReady(specs []*TaskSpec, limit int) string {
	if len(specs) == 0 {
		return "No pending tasks."
	}
	var lines []string
	for _, spec := range head(OrderByPriority(specs), limit) {
		lines = append(lines, taskHeadline(spec))
		if spec.HasAcceptanceCriteria() {
			for _, c := range spec.acceptanceCriteria {
				lines = append(lines, "  * "+c)
			}
		} else {
			lines = append(lines, "  * No acceptance criteria recorded.")
		}
		if spec.HasDependencies() {
			lines = append(lines, "  * Dependencies: "+strings.Join(spec.dependencies, ", "))
		}
	}
	return strings.Join(lines, "\n")
}

func renderBlocked(b *Batch, limit int) string {
	if len(b.Blocked) == 0 {
		return "No blocked tasks."
	}
	var lines []string
	for _, spec := range head(b.Blocked, limit) {
		lines = append(lines, taskHeadline(spec))
		if missing := b.MissingDependencies(spec); len(missing) > 0 {
			lines = append(lines, "  * Blocked by: "+strings.Join(missing, ", "))
		} else {
			lines = append(lines, "  * Blocked by: dependencies satisfied; awaiting scheduling.")
		}
		for _, c := range spec.acceptanceCriteria {
			lines = append(lines, "  * Acceptance: "+c)
		}
	}
	return strings.Join(lines, "\n")
}

func taskHeadline(spec *TaskSpec) string {
	return fmt.Sprintf("- [%s] %s: %s", spec.Priority().Label(), spec.ID(), spec.Summary())
}

func head(specs []*TaskSpec, n int) []*TaskSpec {
	if len(specs) > n {
		return specs[:n]
	}
	return specs
}

// RenderSelectedTask renders the full description of the task chosen for a run.
func RenderSelectedTask(spec *TaskSpec) string {
	lines := []string{
		"### Task ID: " + spec.ID(),
		"**Title:** " + spec.Title(),
		"**Summary:** " + spec.Summary(),
		"**Priority:** " + spec.Priority().Label(),
	}
	if spec.details != "" {
		lines = append(lines, "", spec.details)
	}
	if len(spec.context) > 0 {
		lines = append(lines, "", "**Context references:**")
		for _, c := range spec.context {
			lines = append(lines, "- "+c)
		}
	}
	if len(spec.acceptanceCriteria) > 0 {
		lines = append(lines, "", "**Acceptance criteria:**")
		for _, c := range spec.acceptanceCriteria {
			lines = append(lines, "- "+c)
		}
	}
	if len(spec.dependencies) > 0 {
		lines = append(lines, "", "**Dependencies:** "+strings.Join(spec.dependencies, ", "))
	}
	if len(spec.tags) > 0 {
		lines = append(lines, "", "**Tags:** "+strings.Join(spec.tags, ", "))
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// ComposePrompt joins the non-empty prompt parts with blank lines.
func ComposePrompt(parts ...string) string {
	var kept []string
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			kept = append(kept, t)
		}
	}
	return strings.Join(kept, "\n\n")
}
