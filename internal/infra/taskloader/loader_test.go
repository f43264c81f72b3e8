package taskloader

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runoshun/autocrew/internal/domain"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoader_Layouts(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a_single.json", `{"task_id": "single", "title": "S", "summary": "s"}`)
	writeFile(t, dir, "b_array.json", `[{"task_id": "arr-1", "title": "A", "summary": "a"}, {"task_id": "arr-2", "title": "B", "summary": "b"}]`)
	writeFile(t, dir, "c_wrapped.json", `{"tasks": [{"task_id": "wrapped", "title": "W", "summary": "w"}]}`)
	writeFile(t, dir, "d/nested.yaml", "tasks:\n  - task_id: yaml-task\n    title: Y\n    summary: y\n    priority: High\n")

	cat, err := New(dir).Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"single", "arr-1", "arr-2", "wrapped", "yaml-task"}, cat.IDs())
	assert.Equal(t, filepath.Join(dir, "b_array.json")+"#1", cat.Source("arr-2"))

	spec, ok := cat.Get("yaml-task")
	require.True(t, ok)
	assert.Equal(t, domain.PriorityHigh, spec.Priority())
}

func TestLoader_SkipsHiddenAndUnsupported(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "visible.json", `{"task_id": "visible", "title": "V", "summary": "v"}`)
	writeFile(t, dir, ".hidden.json", `{"task_id": "hidden-file", "title": "H", "summary": "h"}`)
	writeFile(t, dir, ".drafts/draft.json", `{"task_id": "hidden-dir", "title": "H", "summary": "h"}`)
	writeFile(t, dir, "notes.txt", `not a task`)

	cat, err := New(dir).Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"visible"}, cat.IDs())
}

func TestLoader_EmptyDirectory(t *testing.T) {
	cat, err := New(t.TempDir()).Load()
	require.NoError(t, err)
	assert.Equal(t, 0, cat.Len())
}

func TestLoader_NumericIDs(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "n.json", `{"task_id": 42, "title": "N", "summary": "n", "dependencies": [7]}`)

	cat, err := New(dir).Load()
	require.NoError(t, err)
	spec, ok := cat.Get("42")
	require.True(t, ok)
	assert.Equal(t, []string{"7"}, spec.Dependencies())
}

func TestLoader_DuplicateAcrossFiles(t *testing.T) {
	dir := t.TempDir()
	first := writeFile(t, dir, "one.json", `{"task_id": "dup", "title": "1", "summary": "1"}`)
	second := writeFile(t, dir, "two.json", `[{"task_id": "other", "title": "o", "summary": "o"}, {"task_id": "dup", "title": "2", "summary": "2"}]`)

	cat, err := New(dir).Load()
	require.Error(t, err)
	assert.Nil(t, cat)
	assert.ErrorIs(t, err, domain.ErrDuplicateTask)

	var dup *domain.DuplicateTaskError
	require.True(t, errors.As(err, &dup))
	assert.Equal(t, first+"#0", dup.First)
	assert.Equal(t, second+"#1", dup.Second)
}

func TestLoader_Errors(t *testing.T) {
	tests := []struct {
		name       string
		file       string
		content    string
		validation bool
	}{
		{"invalid json", "bad.json", `{"task_id": `, false},
		{"trailing data", "bad.json", `{} {}`, false},
		{"invalid yaml", "bad.yaml", "task_id: [unclosed", false},
		{"scalar document", "bad.json", `"just text"`, false},
		{"non-array tasks", "bad.json", `{"tasks": {"task_id": "x"}}`, false},
		{"non-object entry", "bad.json", `[{"task_id": "a", "title": "A", "summary": "a"}, 3]`, false},
		{"invalid entry", "bad.json", `[{"task_id": "a", "title": "A", "summary": ""}]`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			path := writeFile(t, dir, tt.file, tt.content)

			cat, err := New(dir).Load()
			require.Error(t, err)
			assert.Nil(t, cat)
			assert.ErrorIs(t, err, domain.ErrCatalogueParse)
			assert.Contains(t, err.Error(), path)

			var cErr *domain.CatalogueError
			require.True(t, errors.As(err, &cErr))
			assert.Equal(t, path, cErr.Path)
			assert.Equal(t, tt.validation, errors.Is(err, domain.ErrValidation))
		})
	}
}

func TestLoader_MissingRoot(t *testing.T) {
	root := filepath.Join(t.TempDir(), "missing")
	_, err := New(root).Load()
	assert.ErrorIs(t, err, domain.ErrCatalogueParse)

	file := writeFile(t, t.TempDir(), "file.json", `{}`)
	_, err = New(file).Load()
	assert.ErrorIs(t, err, domain.ErrCatalogueParse)
}

func TestLoader_EntryIndexInMessage(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "tasks.json", `[{"task_id": "a", "title": "A", "summary": "a"}, {"task_id": "b", "title": "B"}]`)

	_, err := New(dir).Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "task entry #1 is invalid")
	assert.Contains(t, err.Error(), "summary")
}
