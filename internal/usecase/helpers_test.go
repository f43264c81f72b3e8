package usecase

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/runoshun/autocrew/internal/domain"
)

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

func newCatalogue(t *testing.T, specs ...*domain.TaskSpec) *domain.Catalogue {
	t.Helper()
	cat := domain.NewCatalogue()
	for i, spec := range specs {
		require.NoError(t, cat.Add(spec, domain.SourceRef("tasks/backlog.json", i)))
	}
	return cat
}
