package domain

import (
	"maps"
	"slices"
	"time"
)

// MaxRunEvents is the capacity of the run-event log. Older events are dropped.
const MaxRunEvents = 200

// EventLevel is the severity of a RunEvent.
type EventLevel string

const (
	EventLevelInfo    EventLevel = "info"
	EventLevelWarning EventLevel = "warning"
	EventLevelError   EventLevel = "error"
)

// Reasons recorded by the run controller.
const (
	ReasonCatalogueInvalid     = "catalogue invalid"
	ReasonStateCorrupted       = "state corrupted"
	ReasonNoReadyTasks         = "no ready tasks"
	ReasonDelegationFailed     = "delegation failed"
	ReasonNoActionableChange   = "no actionable change"
	ReasonVCSFailed            = "version control failed"
	ReasonGateFailed           = "quality gate failed"
	ReasonPublishFailed        = "publish failed"
	ReasonCompletionNotStored  = "completion not recorded"
	ReasonSelectedTaskExecuted = "selected task executed"
)

// EventSourceOrchestrator is the source of events written by a run.
const EventSourceOrchestrator = "orchestrator"

// RunEvent is one record of what happened during a run.
// Fields are ordered to minimize memory padding.
type RunEvent struct {
	Timestamp time.Time      `json:"timestamp"`
	Details   map[string]any `json:"details,omitempty"`
	ID        string         `json:"id,omitempty"`
	RunID     string         `json:"run_id,omitempty"`
	Level     EventLevel     `json:"level"`
	Source    string         `json:"source"`
	Reason    string         `json:"reason"`
	Message   string         `json:"message,omitempty"`
	TaskID    string         `json:"task_id,omitempty"`
	State     RunState       `json:"state,omitempty"`
}

// Clone returns a copy whose details map is independent of e.
func (e RunEvent) Clone() RunEvent {
	if e.Details != nil {
		e.Details = maps.Clone(e.Details)
	}
	return e
}

// EventOrder selects the order of listed events.
type EventOrder int

const (
	OldestFirst EventOrder = iota
	NewestFirst
)

// EventQuery selects events to list. Limit <= 0 means no limit; otherwise the
// Limit most recent events are selected before ordering.
type EventQuery struct {
	Order EventOrder
	Limit int
}

// TrimRunEvents keeps the newest MaxRunEvents of events (stored oldest first).
func TrimRunEvents(events []RunEvent) []RunEvent {
	if len(events) <= MaxRunEvents {
		return events
	}
	return events[len(events)-MaxRunEvents:]
}

// SelectRunEvents applies q to events stored oldest first and returns copies.
func SelectRunEvents(events []RunEvent, q EventQuery) []RunEvent {
	selected := events
	if q.Limit > 0 && len(selected) > q.Limit {
		selected = selected[len(selected)-q.Limit:]
	}
	out := make([]RunEvent, 0, len(selected))
	for _, e := range selected {
		out = append(out, e.Clone())
	}
	if q.Order == NewestFirst {
		slices.Reverse(out)
	}
	return out
}
