package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnalyzeDependencies(t *testing.T) {
	t.Run("clean graph", func(t *testing.T) {
		cat := mustCatalogue(t, mustSpec(t, "a", ""), mustSpec(t, "b", "", "a"))
		report := AnalyzeDependencies(cat)
		assert.False(t, report.HasIssues())
	})

	t.Run("unknown dependency", func(t *testing.T) {
		cat := mustCatalogue(t, mustSpec(t, "a", "", "ghost"))
		report := AnalyzeDependencies(cat)
		assert.Equal(t, []MissingDependency{{TaskID: "a", DependsOn: "ghost"}}, report.Unknown)
		assert.Empty(t, report.Deadlocked)
	})

	t.Run("cycle and dependents", func(t *testing.T) {
		cat := mustCatalogue(t,
			mustSpec(t, "a", "", "b"),
			mustSpec(t, "b", "", "a"),
			mustSpec(t, "c", "", "b"),
			mustSpec(t, "d", ""),
		)
		report := AnalyzeDependencies(cat)
		assert.Equal(t, []string{"a", "b", "c"}, report.Deadlocked)
		assert.True(t, report.HasIssues())
	})

	t.Run("self dependency", func(t *testing.T) {
		cat := mustCatalogue(t, mustSpec(t, "a", "", "a"))
		assert.Equal(t, []string{"a"}, AnalyzeDependencies(cat).Deadlocked)
	})
}
