package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runoshun/autocrew/internal/domain"
	"github.com/runoshun/autocrew/internal/testutil"
)

func TestMarkTasks_Execute_Done(t *testing.T) {
	loader := &testutil.MockLoader{Catalogue: newCatalogue(t, newSpec(t, "A", ""), newSpec(t, "B", ""))}
	store := testutil.NewMockCompletedStore("B")
	logger := &testutil.MockLogger{}

	out, err := NewMarkTasks(loader, store, logger).Execute(context.Background(), MarkTasksInput{
		TaskIDs: []string{" A ", "B"},
		Done:    true,
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, out.Changed)
	assert.Equal(t, []string{"B"}, out.Unchanged)
	assert.Equal(t, []string{"A", "B"}, store.Set.Sorted())
	assert.Equal(t, 1, store.Writes)
	require.Len(t, logger.Entries, 1)
	assert.Equal(t, "A", logger.Entries[0].TaskID)
}

func TestMarkTasks_Execute_Undone(t *testing.T) {
	loader := &testutil.MockLoader{Catalogue: newCatalogue(t, newSpec(t, "A", ""))}
	store := testutil.NewMockCompletedStore("A")

	out, err := NewMarkTasks(loader, store, nil).Execute(context.Background(), MarkTasksInput{TaskIDs: []string{"A"}})

	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, out.Changed)
	assert.Zero(t, store.Set.Len())
}

func TestMarkTasks_Execute_UnknownID(t *testing.T) {
	loader := &testutil.MockLoader{Catalogue: newCatalogue(t, newSpec(t, "A", ""))}
	store := testutil.NewMockCompletedStore()

	_, err := NewMarkTasks(loader, store, nil).Execute(context.Background(), MarkTasksInput{
		TaskIDs: []string{"A", "ghost"},
		Done:    true,
	})

	assert.ErrorIs(t, err, domain.ErrTaskNotFound)
	assert.Zero(t, store.Set.Len(), "nothing is marked when any id is unknown")
}

func TestMarkTasks_Execute_Force(t *testing.T) {
	loader := &testutil.MockLoader{Err: errors.New("unreadable")}
	store := testutil.NewMockCompletedStore()

	out, err := NewMarkTasks(loader, store, nil).Execute(context.Background(), MarkTasksInput{
		TaskIDs: []string{"legacy-task"},
		Done:    true,
		Force:   true,
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"legacy-task"}, out.Changed)
	assert.Zero(t, loader.Calls)
}

func TestMarkTasks_Execute_BlankID(t *testing.T) {
	_, err := NewMarkTasks(&testutil.MockLoader{}, testutil.NewMockCompletedStore(), nil).
		Execute(context.Background(), MarkTasksInput{TaskIDs: []string{""}, Done: true})

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "task_id", verr.Field)
}

func TestMarkTasks_Execute_StoreError(t *testing.T) {
	loader := &testutil.MockLoader{Catalogue: newCatalogue(t, newSpec(t, "A", ""))}
	store := testutil.NewMockCompletedStore()
	store.MarkErr = errors.New("disk full")

	_, err := NewMarkTasks(loader, store, nil).Execute(context.Background(), MarkTasksInput{TaskIDs: []string{"A"}, Done: true})

	assert.EqualError(t, err, "disk full")
}

func TestClearCompleted_Execute(t *testing.T) {
	store := testutil.NewMockCompletedStore("B", "A")

	out, err := NewClearCompleted(store, nil).Execute(context.Background(), ClearCompletedInput{})

	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, out.Removed)
	assert.Zero(t, store.Set.Len())
}

func TestClearCompleted_Execute_Error(t *testing.T) {
	store := testutil.NewMockCompletedStore("A")
	store.ClearErr = errors.New("read-only")

	_, err := NewClearCompleted(store, nil).Execute(context.Background(), ClearCompletedInput{})

	assert.EqualError(t, err, "read-only")
}

func TestListCompleted_Execute(t *testing.T) {
	out, err := NewListCompleted(testutil.NewMockCompletedStore("b", "a")).
		Execute(context.Background(), ListCompletedInput{})

	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, out.TaskIDs)
}
