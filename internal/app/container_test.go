package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runoshun/autocrew/internal/domain"
	"github.com/runoshun/autocrew/internal/infra/gitstore"
	"github.com/runoshun/autocrew/internal/infra/statestore"
	"github.com/runoshun/autocrew/internal/testutil"
	"github.com/runoshun/autocrew/internal/usecase"
)

func setupRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)
	wt, err := repo.Worktree()
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("# Test\n"), 0o644))
	_, err = wt.Add("README.md")
	require.NoError(t, err)
	_, err = wt.Commit("Initial commit", &git.CommitOptions{
		Author: &object.Signature{Name: "Test", Email: "test@example.com", When: time.Now()},
	})
	require.NoError(t, err)
	return dir
}

func writeRepoConfig(t *testing.T, repoRoot, content string) {
	t.Helper()
	dir := domain.RepoConfigDir(repoRoot)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, domain.ConfigFileName), []byte(content), 0o644))
}

func TestNew_Defaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	repoRoot := setupRepo(t)

	c, err := New(repoRoot, Options{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	assert.Equal(t, repoRoot, c.Config.RepoRoot)
	assert.Equal(t, filepath.Join(repoRoot, ".autocrew"), c.Config.ConfigDir)
	assert.Equal(t, filepath.Join(repoRoot, "tasks"), c.Config.TasksDir)
	assert.Equal(t, filepath.Join(repoRoot, ".autocrew", "completed_tasks.json"), c.Config.StateFile)
	assert.Equal(t, filepath.Join(repoRoot, ".autocrew", "run_events.json"), c.Config.EventLog)
	assert.IsType(t, &statestore.Store{}, c.Store)
}

func TestNew_GitBackend(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	repoRoot := setupRepo(t)
	writeRepoConfig(t, repoRoot, "[state]\nbackend = \"git\"\n")

	c, err := New(repoRoot, Options{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	assert.IsType(t, &gitstore.Store{}, c.Store)
}

func TestNew_NotGitRepository(t *testing.T) {
	_, err := New(t.TempDir(), Options{})

	assert.ErrorIs(t, err, domain.ErrNotGitRepository)
}

func TestNew_InvalidConfig(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	repoRoot := setupRepo(t)
	writeRepoConfig(t, repoRoot, "[state]\nbackend = \"sqlite\"\n")

	_, err := New(repoRoot, Options{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
}

func TestContainer_RunBacklogUseCase_SystemPrompt(t *testing.T) {
	repoRoot := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(repoRoot, "prompt.md"), []byte("Be careful.\n"), 0o644))
	appConfig := domain.NewDefaultConfig()
	appConfig.Paths.SystemPrompt = "prompt.md"

	gen := &testutil.MockCodeGenerator{ChangeSet: &domain.ChangeSet{
		CodePatches: []domain.FilePatch{{Path: "a.txt", Content: "a"}},
	}}
	spec, err := domain.NewTaskSpec(domain.TaskSpecFields{TaskID: "A", Title: "A", Summary: "a"})
	require.NoError(t, err)
	cat := domain.NewCatalogue()
	require.NoError(t, cat.Add(spec, "tasks/a.json#0"))

	c := NewWithDeps(Config{RepoRoot: repoRoot}, appConfig, Deps{
		Loader:    &testutil.MockLoader{Catalogue: cat},
		Store:     testutil.NewMockCompletedStore(),
		Events:    &testutil.MockEventLog{},
		Generator: gen,
		VCS:       &testutil.MockVersionControl{},
	})

	_, err = c.RunBacklogUseCase().Execute(t.Context(), usecase.RunBacklogInput{})
	require.NoError(t, err)

	require.Len(t, gen.Requests, 1)
	assert.Equal(t, "Be careful.", gen.Requests[0].SystemPrompt)
}

func TestContainer_RunBacklogUseCase_MissingSystemPrompt(t *testing.T) {
	appConfig := domain.NewDefaultConfig()
	appConfig.Paths.SystemPrompt = "missing.md"
	events := &testutil.MockEventLog{}
	spec, err := domain.NewTaskSpec(domain.TaskSpecFields{TaskID: "A", Title: "A", Summary: "a"})
	require.NoError(t, err)
	cat := domain.NewCatalogue()
	require.NoError(t, cat.Add(spec, "tasks/a.json#0"))
	c := NewWithDeps(Config{RepoRoot: t.TempDir()}, appConfig, Deps{
		Loader:    &testutil.MockLoader{Catalogue: cat},
		Store:     testutil.NewMockCompletedStore(),
		Events:    events,
		Generator: &testutil.MockCodeGenerator{},
		VCS:       &testutil.MockVersionControl{},
	})

	_, err = c.RunBacklogUseCase().Execute(t.Context(), usecase.RunBacklogInput{})

	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.ErrorIs(t, err, domain.ErrDelegation)
	require.Len(t, events.Events, 1)
	assert.Equal(t, domain.ReasonDelegationFailed, events.Events[0].Reason)

	_, err = c.SystemPrompt()
	assert.ErrorIs(t, err, os.ErrNotExist)
}
