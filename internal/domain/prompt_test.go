package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderBacklog(t *testing.T) {
	withCriteria, err := NewTaskSpec(TaskSpecFields{
		TaskID:             "b",
		Title:              "B",
		Summary:            "second",
		Priority:           "high",
		AcceptanceCriteria: []string{"b works"},
		Dependencies:       []string{"a"},
	})
	require.NoError(t, err)
	blocked, err := NewTaskSpec(TaskSpecFields{
		TaskID:             "c",
		Title:              "C",
		Summary:            "third",
		AcceptanceCriteria: []string{"c works"},
		Dependencies:       []string{"a", "x"},
	})
	require.NoError(t, err)

	cat := mustCatalogue(t, mustSpec(t, "a", "low"), withCriteria, blocked, mustSpec(t, "d", ""))
	batch := Partition(cat, mustCompleted(t, "a"))

	got, err := RenderBacklog(batch, DefaultPromptLimits)
	require.NoError(t, err)

	want := "## Ready Tasks\n\n" +
		"- [high] b: second\n" +
		"  * b works\n" +
		"  * Dependencies: a\n" +
		"- [unspecified] d: Summary d\n" +
		"  * No acceptance criteria recorded.\n\n" +
		"## Blocked Tasks\n\n" +
		"- [unspecified] c: third\n" +
		"  * Blocked by: x\n" +
		"  * Acceptance: c works\n\n" +
		"## Completed Task References\n\n" +
		"a"
	assert.Equal(t, want, got)
}

func TestRenderBacklog_EmptyAndLimits(t *testing.T) {
	batch := Partition(NewCatalogue(), nil)

	got, err := RenderBacklog(batch, DefaultPromptLimits)
	require.NoError(t, err)
	assert.Equal(t, "## Ready Tasks\n\nNo pending tasks.\n\n## Blocked Tasks\n\nNo blocked tasks.", got)

	_, err = RenderBacklog(batch, PromptLimits{Ready: 0, Blocked: 3})
	assert.ErrorIs(t, err, ErrInvalidPromptLimit)
	_, err = RenderBacklog(batch, PromptLimits{Ready: 1, Blocked: -1})
	assert.ErrorIs(t, err, ErrInvalidPromptLimit)
}

func TestRenderBacklog_RespectsReadyLimit(t *testing.T) {
	cat := mustCatalogue(t, mustSpec(t, "a", "low"), mustSpec(t, "b", "critical"), mustSpec(t, "c", ""))
	batch := Partition(cat, nil)

	got, err := RenderBacklog(batch, PromptLimits{Ready: 1, Blocked: 1})
	require.NoError(t, err)
	assert.Contains(t, got, "- [critical] b:")
	assert.NotContains(t, got, "- [low] a:")
}

func TestBuildDigest(t *testing.T) {
	cat := mustCatalogue(t, mustSpec(t, "a", ""), mustSpec(t, "b", "", "a"))
	digest, err := BuildDigest(Partition(cat, nil), DefaultPromptLimits)
	require.NoError(t, err)

	assert.Equal(t, []string{"a"}, digest.ReadyTaskIDs)
	assert.Equal(t, []string{"b"}, digest.BlockedTaskIDs)
	assert.Empty(t, digest.CompletedTaskIDs)
	assert.Contains(t, digest.Prompt, "## Ready Tasks")
}

func TestRenderSelectedTask(t *testing.T) {
	spec, err := NewTaskSpec(TaskSpecFields{
		TaskID:             "b",
		Title:              "B",
		Summary:            "second",
		Details:            "Do the thing.",
		Context:            []string{"docs/b.md"},
		AcceptanceCriteria: []string{"works"},
		Tags:               []string{"core", "api"},
		Dependencies:       []string{"a"},
	})
	require.NoError(t, err)

	want := "### Task ID: b\n" +
		"**Title:** B\n" +
		"**Summary:** second\n" +
		"**Priority:** unspecified\n\n" +
		"Do the thing.\n\n" +
		"**Context references:**\n- docs/b.md\n\n" +
		"**Acceptance criteria:**\n- works\n\n" +
		"**Dependencies:** a\n\n" +
		"**Tags:** core, api"
	assert.Equal(t, want, RenderSelectedTask(spec))
}

func TestComposePrompt(t *testing.T) {
	assert.Equal(t, "a\n\nb", ComposePrompt(" a ", "", "\n", "b"))
}
