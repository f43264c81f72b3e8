package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompletedSet(t *testing.T) {
	set, err := NewCompletedSet([]string{" b ", "a", "b"})
	require.NoError(t, err)

	assert.Equal(t, 2, set.Len())
	assert.Equal(t, []string{"a", "b"}, set.Sorted())
	assert.True(t, set.Has(" a"))

	assert.True(t, set.Add("c"))
	assert.False(t, set.Add("c"))
	assert.True(t, set.Remove("a"))
	assert.False(t, set.Remove("a"))

	clone := set.Clone()
	clone.Add("z")
	assert.False(t, set.Has("z"))
}

func TestNewCompletedSet_RejectsBlank(t *testing.T) {
	_, err := NewCompletedSet([]string{"a", "  "})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCompletedSetFromPayload(t *testing.T) {
	tests := []struct {
		name    string
		raw     any
		want    []string
		wantErr bool
	}{
		{"null", nil, []string{}, false},
		{"list", []any{"b", " a "}, []string{"a", "b"}, false},
		{"mapping", map[string]any{"completed": []any{"x"}}, []string{"x"}, false},
		{"mapping without key", map[string]any{"other": 1}, []string{}, false},
		{"scalar", "a", nil, true},
		{"non-list completed", map[string]any{"completed": "a"}, nil, true},
		{"non-string entry", []any{"a", 3.0}, nil, true},
		{"blank entry", []any{" "}, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set, err := CompletedSetFromPayload(tt.raw)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, set.Sorted())
		})
	}
}

func TestCompletedSet_Payload(t *testing.T) {
	set, err := NewCompletedSet([]string{"b", "a"})
	require.NoError(t, err)
	assert.Equal(t, CompletedPayload{Completed: []string{"a", "b"}}, set.Payload())
	assert.Equal(t, []string{}, CompletedSet{}.Payload().Completed)
}
