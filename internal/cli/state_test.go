package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runoshun/autocrew/internal/domain"
)

func TestStateList(t *testing.T) {
	f := newFixture(t)
	f.store.Set.Add("T-2")
	f.store.Set.Add("T-1")

	out, _, err := f.execute("state", "list")

	require.NoError(t, err)
	assert.Equal(t, "T-1\nT-2\n", out)
}

func TestStateList_Empty(t *testing.T) {
	f := newFixture(t)

	out, _, err := f.execute("state", "list")

	require.NoError(t, err)
	assert.Equal(t, "No completed tasks.\n", out)
}

func TestStateDone(t *testing.T) {
	f := newFixture(t, newSpec(t, "T-1", ""), newSpec(t, "T-2", ""))
	f.store.Set.Add("T-2")

	out, _, err := f.execute("state", "done", "T-1", "T-2")

	require.NoError(t, err)
	assert.Contains(t, out, "Marked completed: T-1")
	assert.Contains(t, out, "Already completed: T-2")
	assert.True(t, f.store.Set.Has("T-1"))
}

func TestStateDone_UnknownTask(t *testing.T) {
	f := newFixture(t, newSpec(t, "T-1", ""))

	_, _, err := f.execute("state", "done", "T-9")

	assert.ErrorIs(t, err, domain.ErrTaskNotFound)
	assert.False(t, f.store.Set.Has("T-9"))
}

func TestStateDone_Force(t *testing.T) {
	f := newFixture(t)

	_, _, err := f.execute("state", "done", "--force", "T-9")

	require.NoError(t, err)
	assert.True(t, f.store.Set.Has("T-9"))
}

func TestStateDone_RequiresID(t *testing.T) {
	f := newFixture(t)

	_, _, err := f.execute("state", "done")

	assert.Error(t, err)
}

func TestStateUndone(t *testing.T) {
	f := newFixture(t, newSpec(t, "T-1", ""))
	f.store.Set.Add("T-1")

	out, _, err := f.execute("state", "undone", "T-1")

	require.NoError(t, err)
	assert.Contains(t, out, "Marked incomplete: T-1")
	assert.False(t, f.store.Set.Has("T-1"))
}

func TestStateClear(t *testing.T) {
	f := newFixture(t)
	f.store.Set.Add("T-1")
	f.store.Set.Add("T-2")

	out, _, err := f.execute("state", "clear")

	require.NoError(t, err)
	assert.Equal(t, "Cleared 2 completed tasks\n", out)
	assert.Zero(t, f.store.Set.Len())
}
