package domain

import "strings"

// Priority ranks a TaskSpec for selection. The zero value means "unset".
type Priority string

const (
	PriorityUnset    Priority = ""
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

// priorityRanks maps each priority to its selection rank. Unset ranks below low.
var priorityRanks = map[Priority]int{
	PriorityUnset:    0,
	PriorityLow:      1,
	PriorityMedium:   2,
	PriorityHigh:     3,
	PriorityCritical: 4,
}

// AllPriorities returns the valid priority values from lowest to highest.
func AllPriorities() []Priority {
	return []Priority{PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical}
}

// ParsePriority normalises s (trimmed, case-insensitive).
// A blank value yields PriorityUnset.
func ParsePriority(s string) (Priority, error) {
	text := strings.ToLower(strings.TrimSpace(s))
	if text == "" {
		return PriorityUnset, nil
	}
	p := Priority(text)
	if _, ok := priorityRanks[p]; !ok {
		return PriorityUnset, invalidField("priority", "must be one of low, medium, high, critical, got %q", s)
	}
	return p, nil
}

// Rank returns the selection rank; higher ranks are selected first.
func (p Priority) Rank() int {
	return priorityRanks[p]
}

// IsSet reports whether a priority was declared.
func (p Priority) IsSet() bool {
	return p != PriorityUnset
}

// Label returns the display label used in rendered summaries.
func (p Priority) Label() string {
	if p == PriorityUnset {
		return "unspecified"
	}
	return string(p)
}
