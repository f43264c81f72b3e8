package cli

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/runoshun/autocrew/internal/app"
	"github.com/runoshun/autocrew/internal/domain"
	"github.com/runoshun/autocrew/internal/testutil"
)

// fixture wires a container from test doubles.
type fixture struct {
	loader    *testutil.MockLoader
	store     *testutil.MockCompletedStore
	events    *testutil.MockEventLog
	generator *testutil.MockCodeGenerator
	vcs       *testutil.MockVersionControl
	publisher *testutil.MockPublisher
	manager   *testutil.MockConfigManager
	appConfig *domain.Config
	container *app.Container
}

func newFixture(t *testing.T, specs ...*domain.TaskSpec) *fixture {
	t.Helper()

	cat := domain.NewCatalogue()
	for i, spec := range specs {
		require.NoError(t, cat.Add(spec, domain.SourceRef("tasks/backlog.json", i)))
	}

	root := t.TempDir()
	f := &fixture{
		loader: &testutil.MockLoader{Catalogue: cat},
		store:  testutil.NewMockCompletedStore(),
		events: &testutil.MockEventLog{},
		generator: &testutil.MockCodeGenerator{ChangeSet: &domain.ChangeSet{
			Rationale:   "implement it",
			CodePatches: []domain.FilePatch{{Path: "main.go", Content: "package main\n"}},
		}},
		vcs:       &testutil.MockVersionControl{},
		publisher: &testutil.MockPublisher{},
		manager: &testutil.MockConfigManager{
			Path: filepath.Join(root, ".autocrew", "config.toml"),
			Repo: domain.ConfigInfo{Path: filepath.Join(root, ".autocrew", "config.toml")},
		},
		appConfig: domain.NewDefaultConfig(),
	}
	f.container = app.NewWithDeps(app.Config{
		RepoRoot:  root,
		ConfigDir: filepath.Join(root, ".autocrew"),
		TasksDir:  filepath.Join(root, "tasks"),
	}, f.appConfig, app.Deps{
		Loader:        f.loader,
		Store:         f.store,
		Events:        f.events,
		Generator:     f.generator,
		VCS:           f.vcs,
		Publisher:     f.publisher,
		Clock:         &testutil.MockClock{},
		ConfigLoader:  &testutil.MockConfigLoader{Config: f.appConfig},
		ConfigManager: f.manager,
	})
	return f
}

// execute runs the root command with args and returns stdout and stderr.
func (f *fixture) execute(args ...string) (string, string, error) {
	var stdout, stderr bytes.Buffer
	root := NewRootCommand(f.container, "test-version")
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func newSpec(t *testing.T, id, priority string, deps ...string) *domain.TaskSpec {
	t.Helper()
	spec, err := domain.NewTaskSpec(domain.TaskSpecFields{
		TaskID:             id,
		Title:              "Title " + id,
		Summary:            "Summary " + id,
		Priority:           priority,
		AcceptanceCriteria: []string{"works"},
		Dependencies:       deps,
	})
	require.NoError(t, err)
	return spec
}
