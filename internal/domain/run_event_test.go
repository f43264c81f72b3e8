package domain

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func numberedEvents(n int) []RunEvent {
	events := make([]RunEvent, 0, n)
	for i := 0; i < n; i++ {
		events = append(events, RunEvent{Reason: fmt.Sprintf("event-%d", i)})
	}
	return events
}

func TestTrimRunEvents(t *testing.T) {
	trimmed := TrimRunEvents(numberedEvents(205))
	require.Len(t, trimmed, MaxRunEvents)
	assert.Equal(t, "event-5", trimmed[0].Reason)
	assert.Equal(t, "event-204", trimmed[len(trimmed)-1].Reason)

	assert.Len(t, TrimRunEvents(numberedEvents(3)), 3)
}

func TestSelectRunEvents(t *testing.T) {
	events := numberedEvents(5)
	events[4].Details = map[string]any{"k": "v"}

	tests := []struct {
		name  string
		query EventQuery
		want  []string
	}{
		{"all oldest first", EventQuery{}, []string{"event-0", "event-1", "event-2", "event-3", "event-4"}},
		{"all newest first", EventQuery{Order: NewestFirst}, []string{"event-4", "event-3", "event-2", "event-1", "event-0"}},
		{"limit oldest first", EventQuery{Limit: 2}, []string{"event-3", "event-4"}},
		{"limit newest first", EventQuery{Order: NewestFirst, Limit: 2}, []string{"event-4", "event-3"}},
		{"limit above size", EventQuery{Limit: 10}, []string{"event-0", "event-1", "event-2", "event-3", "event-4"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SelectRunEvents(events, tt.query)
			reasons := make([]string, 0, len(got))
			for _, e := range got {
				reasons = append(reasons, e.Reason)
			}
			assert.Equal(t, tt.want, reasons)
		})
	}

	got := SelectRunEvents(events, EventQuery{Limit: 1})
	got[0].Details["k"] = "changed"
	assert.Equal(t, "v", events[4].Details["k"])
	assert.Equal(t, "event-0", events[0].Reason)
}
