package eventlog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runoshun/autocrew/internal/domain"
	"github.com/runoshun/autocrew/internal/testutil"
)

func newLog(t *testing.T) (*Log, string, *testutil.MockClock) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "events", "run_events.json")
	clock := &testutil.MockClock{NowTime: time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)}
	return New(path, clock), path, clock
}

func TestLog_MissingFileIsEmpty(t *testing.T) {
	log, path, _ := newLog(t)

	events, err := log.List(domain.EventQuery{})
	require.NoError(t, err)
	assert.Empty(t, events)

	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestLog_AppendFillsDefaults(t *testing.T) {
	log, path, clock := newLog(t)

	stored, err := log.Append(domain.RunEvent{Reason: domain.ReasonNoReadyTasks, State: domain.RunStateSkipped})
	require.NoError(t, err)

	assert.NotEmpty(t, stored.ID)
	assert.Equal(t, clock.NowTime, stored.Timestamp)
	assert.Equal(t, domain.EventLevelInfo, stored.Level)
	assert.Equal(t, domain.EventSourceOrchestrator, stored.Source)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	var raw []map[string]any
	require.NoError(t, json.Unmarshal(content, &raw))
	require.Len(t, raw, 1)
	assert.Equal(t, "no ready tasks", raw[0]["reason"])
	assert.Equal(t, "skipped", raw[0]["state"])
	assert.Equal(t, "2025-01-02T03:04:05Z", raw[0]["timestamp"])
}

func TestLog_KeepsNewest200(t *testing.T) {
	log, path, _ := newLog(t)

	for i := 0; i < 205; i++ {
		_, err := log.Append(domain.RunEvent{Reason: fmt.Sprintf("event-%d", i)})
		require.NoError(t, err)
	}

	events, err := log.List(domain.EventQuery{})
	require.NoError(t, err)
	require.Len(t, events, domain.MaxRunEvents)
	assert.Equal(t, "event-5", events[0].Reason)
	assert.Equal(t, "event-204", events[len(events)-1].Reason)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	var raw []json.RawMessage
	require.NoError(t, json.Unmarshal(content, &raw))
	assert.Len(t, raw, domain.MaxRunEvents)
}

func TestLog_ListOrderAndLimit(t *testing.T) {
	log, _, _ := newLog(t)
	for i := 0; i < 3; i++ {
		_, err := log.Append(domain.RunEvent{Reason: fmt.Sprintf("event-%d", i)})
		require.NoError(t, err)
	}

	newest, err := log.List(domain.EventQuery{Order: domain.NewestFirst, Limit: 2})
	require.NoError(t, err)
	require.Len(t, newest, 2)
	assert.Equal(t, "event-2", newest[0].Reason)
	assert.Equal(t, "event-1", newest[1].Reason)
}

func TestLog_DetailsRoundTrip(t *testing.T) {
	log, _, _ := newLog(t)
	_, err := log.Append(domain.RunEvent{
		Reason:  domain.ReasonNoReadyTasks,
		TaskID:  "a",
		Details: map[string]any{"blocked": []string{"b"}},
	})
	require.NoError(t, err)

	events, err := log.List(domain.EventQuery{})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "a", events[0].TaskID)
	assert.Equal(t, []any{"b"}, events[0].Details["blocked"])
}

func TestLog_CorruptFile(t *testing.T) {
	log, path, _ := newLog(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(`{"not": "an array"}`), 0o600))

	_, err := log.List(domain.EventQuery{})
	assert.ErrorIs(t, err, domain.ErrStateCorruption)

	_, err = log.Append(domain.RunEvent{Reason: "x"})
	assert.ErrorIs(t, err, domain.ErrStateCorruption)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, `{"not": "an array"}`, string(content))
}
