package statestore

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/runoshun/autocrew/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "state", "completed.json")
	return New(path), path
}

func TestStore_MissingFileIsEmpty(t *testing.T) {
	store, path := newStore(t)

	ids, err := store.Completed()
	require.NoError(t, err)
	assert.Empty(t, ids)

	set, err := store.Reload()
	require.NoError(t, err)
	assert.Equal(t, 0, set.Len())

	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestStore_MarkCompleted(t *testing.T) {
	store, path := newStore(t)

	require.NoError(t, store.MarkCompleted(" b "))
	require.NoError(t, store.MarkCompleted("a"))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"completed\": [\n    \"a\",\n    \"b\"\n  ]\n}\n", string(content))

	done, err := store.IsCompleted("b")
	require.NoError(t, err)
	assert.True(t, done)

	// Survives a fresh instance.
	reopened := New(path)
	ids, err := reopened.Completed()
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ids)
}

func TestStore_MarkCompletedIsIdempotent(t *testing.T) {
	store, path := newStore(t)

	require.NoError(t, store.MarkCompleted("a"))
	first, err := os.ReadFile(path)
	require.NoError(t, err)

	require.NoError(t, store.MarkCompleted("a"))
	second, err := os.ReadFile(path)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	ids, err := store.Completed()
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, ids)
}

func TestStore_MarkIncomplete(t *testing.T) {
	store, _ := newStore(t)
	require.NoError(t, store.MarkCompleted("a"))
	require.NoError(t, store.MarkCompleted("b"))

	require.NoError(t, store.MarkIncomplete("a"))
	require.NoError(t, store.MarkIncomplete("unknown"))

	ids, err := store.Completed()
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, ids)
}

func TestStore_RejectsBlankIDs(t *testing.T) {
	store, path := newStore(t)

	err := store.MarkCompleted("   ")
	require.Error(t, err)
	var vErr *domain.ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, "task_id", vErr.Field)

	assert.ErrorIs(t, store.MarkIncomplete(""), domain.ErrValidation)

	done, err := store.IsCompleted(" ")
	require.NoError(t, err)
	assert.False(t, done)

	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestStore_Clear(t *testing.T) {
	t.Run("no file and empty set writes nothing", func(t *testing.T) {
		store, path := newStore(t)
		require.NoError(t, store.Clear())
		_, err := os.Stat(path)
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("clears existing records", func(t *testing.T) {
		store, path := newStore(t)
		require.NoError(t, store.MarkCompleted("a"))
		require.NoError(t, store.Clear())

		content, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "{\n  \"completed\": []\n}\n", string(content))
	})
}

func TestStore_AcceptedShapes(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []string
	}{
		{"null", "null", []string{}},
		{"list", `["b", "a"]`, []string{"a", "b"}},
		{"object", `{"completed": ["x"]}`, []string{"x"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, path := newStore(t)
			require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o600))

			ids, err := store.Completed()
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestStore_Corruption(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"invalid json", "{not json"},
		{"scalar", `"a"`},
		{"non-list completed", `{"completed": "a"}`},
		{"non-string entry", `["a", 1]`},
		{"blank entry", `["a", " "]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, path := newStore(t)
			require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o600))

			_, err := store.Reload()
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrStateCorruption)

			var sErr *domain.StateCorruptionError
			require.True(t, errors.As(err, &sErr))
			assert.Equal(t, path, sErr.Path)
		})
	}
}

func TestStore_ReloadPicksUpExternalChanges(t *testing.T) {
	store, path := newStore(t)
	require.NoError(t, store.MarkCompleted("a"))

	require.NoError(t, os.WriteFile(path, []byte(`{"completed": ["a", "z"]}`), 0o600))

	set, err := store.Reload()
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "z"}, set.Sorted())
}

func TestStore_FailedWriteLeavesCacheUntouched(t *testing.T) {
	store, path := newStore(t)
	require.NoError(t, store.MarkCompleted("a"))

	// Replace the state directory with a plain file so every write fails.
	dir := filepath.Dir(path)
	require.NoError(t, os.RemoveAll(dir))
	require.NoError(t, os.WriteFile(dir, []byte("blocked"), 0o644))

	assert.Error(t, store.MarkCompleted("b"))
	assert.Error(t, store.MarkCompleted("b"), "a retry must write again")
	assert.Error(t, store.MarkIncomplete("a"))
	assert.Error(t, store.Clear())

	done, err := store.IsCompleted("b")
	require.NoError(t, err)
	assert.False(t, done)
	done, err = store.IsCompleted("a")
	require.NoError(t, err)
	assert.True(t, done)

	require.NoError(t, os.Remove(dir))
	require.NoError(t, store.MarkCompleted("b"))

	ids, err := New(path).Completed()
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ids)
}
