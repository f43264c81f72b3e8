package domain

import "strings"

// FilePatch replaces the full content of one repository file.
type FilePatch struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

// ChangeSet is the code generator's proposal for a task.
// Fields are ordered to minimize memory padding.
type ChangeSet struct {
	Rationale     string           `json:"rationale"`
	Notes         string           `json:"notes,omitempty"`
	Plan          []string         `json:"plan,omitempty"`
	CodePatches   []FilePatch      `json:"code_patches,omitempty"`
	NewTests      []FilePatch      `json:"new_tests,omitempty"`
	AdminRequests []map[string]any `json:"admin_requests,omitempty"`
}

// HasChanges reports whether the change set touches any file.
func (cs *ChangeSet) HasChanges() bool {
	if cs == nil {
		return false
	}
	for _, p := range cs.Patches() {
		if strings.TrimSpace(p.Path) != "" {
			return true
		}
	}
	return false
}

// Patches returns code patches followed by test patches.
func (cs *ChangeSet) Patches() []FilePatch {
	out := make([]FilePatch, 0, len(cs.CodePatches)+len(cs.NewTests))
	out = append(out, cs.CodePatches...)
	return append(out, cs.NewTests...)
}

// GenerationRequest is the input handed to the code generator.
type GenerationRequest struct {
	Task         *TaskSpec
	Digest       *BacklogDigest
	SystemPrompt string
	Prompt       string // full prompt: system prompt, backlog digest, selected task
}

// GateResult is the outcome of one quality gate check.
type GateResult struct {
	Name   string `json:"name"`
	Output string `json:"output,omitempty"`
	Passed bool   `json:"passed"`
}

// FailedGates returns the names of failed checks.
func FailedGates(results []GateResult) []string {
	var failed []string
	for _, r := range results {
		if !r.Passed {
			failed = append(failed, r.Name)
		}
	}
	return failed
}

// PublishRequest describes a pull request to open.
type PublishRequest struct {
	Branch string
	Title  string
	Body   string
	Base   string
	Labels []string
}

// PublishResult identifies the opened pull request.
type PublishResult struct {
	URL    string `json:"url"`
	Number int    `json:"number,omitempty"`
}
