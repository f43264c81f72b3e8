package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustSpec(t *testing.T, id, priority string, deps ...string) *TaskSpec {
	t.Helper()
	spec, err := NewTaskSpec(TaskSpecFields{
		TaskID:       id,
		Title:        "Title " + id,
		Summary:      "Summary " + id,
		Priority:     priority,
		Dependencies: deps,
	})
	require.NoError(t, err)
	return spec
}

func mustCatalogue(t *testing.T, specs ...*TaskSpec) *Catalogue {
	t.Helper()
	cat := NewCatalogue()
	for i, s := range specs {
		require.NoError(t, cat.Add(s, SourceRef("tasks.json", i)))
	}
	return cat
}

func mustCompleted(t *testing.T, ids ...string) CompletedSet {
	t.Helper()
	set, err := NewCompletedSet(ids)
	require.NoError(t, err)
	return set
}

func TestPartition_DependencyProgression(t *testing.T) {
	cat := mustCatalogue(t, mustSpec(t, "A", ""), mustSpec(t, "B", "", "A"))

	batch := Partition(cat, mustCompleted(t))
	assert.Equal(t, []string{"A"}, batch.ReadyIDs())
	assert.Equal(t, []string{"B"}, batch.BlockedIDs())

	batch = Partition(cat, mustCompleted(t, "A"))
	assert.Equal(t, []string{"B"}, batch.ReadyIDs())
	assert.Empty(t, batch.BlockedIDs())
	assert.Equal(t, []string{"A"}, specIDs(batch.Done))
	assert.Equal(t, []string{"A"}, batch.Completed)

	batch = Partition(cat, mustCompleted(t, "A", "B"))
	assert.True(t, batch.IsEmpty())
	_, err := batch.Next()
	assert.ErrorIs(t, err, ErrNothingActionable)
}

func TestPartition_UnknownDependencyBlocks(t *testing.T) {
	cat := mustCatalogue(t, mustSpec(t, "A", "high", "ghost"))

	batch := Partition(cat, nil)
	assert.False(t, batch.HasReadyTasks())
	assert.Equal(t, []string{"ghost"}, batch.MissingDependencies(cat.Specs()[0]))
}

func TestPartition_CompletedIDsOutsideCatalogue(t *testing.T) {
	cat := mustCatalogue(t, mustSpec(t, "A", ""))

	batch := Partition(cat, mustCompleted(t, "zeta", "alpha"))
	assert.Equal(t, []string{"alpha", "zeta"}, batch.Completed)
	assert.Equal(t, []string{"A"}, batch.ReadyIDs())
}

func TestPartition_Deterministic(t *testing.T) {
	cat := mustCatalogue(t,
		mustSpec(t, "low", "low"),
		mustSpec(t, "unset", ""),
		mustSpec(t, "high-1", "high"),
		mustSpec(t, "critical", "critical"),
		mustSpec(t, "high-2", "high"),
		mustSpec(t, "medium", "medium"),
	)

	first := Partition(cat, nil)
	second := Partition(cat, nil)
	assert.Equal(t, first.ReadyIDs(), second.ReadyIDs())
	assert.Equal(t, []string{"critical", "high-1", "high-2", "medium", "low", "unset"}, first.ReadyIDs())

	next, err := first.Next()
	require.NoError(t, err)
	assert.Equal(t, "critical", next.ID())
}

func TestOrderByPriority_DoesNotMutateInput(t *testing.T) {
	in := []*TaskSpec{mustSpec(t, "a", "low"), mustSpec(t, "b", "critical")}

	out := OrderByPriority(in)
	assert.Equal(t, "b", out[0].ID())
	assert.Equal(t, "a", in[0].ID())
}
