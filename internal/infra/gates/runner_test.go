package gates

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runoshun/autocrew/internal/domain"
	"github.com/runoshun/autocrew/internal/infra/executor"
	"github.com/runoshun/autocrew/internal/testutil"
)

func TestRunner_Check_AllPass(t *testing.T) {
	exec := &testutil.MockExecutor{Out: []byte("ok\n")}
	checks := []domain.GateCheck{
		{Name: "test", Command: "go test ./..."},
		{Name: "vet", Command: "go vet ./..."},
	}

	results, err := NewRunner(exec, "/repo", checks).Check(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []domain.GateResult{
		{Name: "test", Output: "ok", Passed: true},
		{Name: "vet", Output: "ok", Passed: true},
	}, results)
	require.Len(t, exec.Commands, 2)
	assert.Equal(t, []string{"-c", "go vet ./..."}, exec.Commands[1].Args)
	assert.Equal(t, "/repo", exec.Commands[1].Dir)
}

func TestRunner_Check_RealCommands(t *testing.T) {
	checks := []domain.GateCheck{
		{Name: "pass", Command: "echo fine"},
		{Name: "fail", Command: "echo broken; exit 3"},
		{Name: "after", Command: "true"},
	}

	results, err := NewRunner(executor.NewClient(), t.TempDir(), checks).Check(context.Background())

	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.True(t, results[0].Passed)
	assert.False(t, results[1].Passed)
	assert.Equal(t, "broken", results[1].Output)
	assert.True(t, results[2].Passed)
	assert.Equal(t, []string{"fail"}, domain.FailedGates(results))
}

func TestRunner_Check_StartFailureIsReported(t *testing.T) {
	exec := &testutil.MockExecutor{Err: errors.New("sh: not found")}

	results, err := NewRunner(exec, "", []domain.GateCheck{{Name: "x", Command: "x"}}).Check(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []domain.GateResult{{Name: "x", Output: "sh: not found", Passed: false}}, results)
}

func TestRunner_Check_NoChecks(t *testing.T) {
	results, err := NewRunner(&testutil.MockExecutor{}, "", nil).Check(context.Background())

	require.NoError(t, err)
	assert.Empty(t, results)
}
