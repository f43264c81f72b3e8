package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// CompletedSet is the set of task ids recorded as done.
type CompletedSet map[string]struct{}

// NormalizeTaskID trims id and rejects blank values.
func NormalizeTaskID(id string) (string, error) {
	trimmed := strings.TrimSpace(id)
	if trimmed == "" {
		return "", invalidField("task_id", "must not be empty")
	}
	return trimmed, nil
}

// NewCompletedSet builds a set from ids, normalising each one.
func NewCompletedSet(ids []string) (CompletedSet, error) {
	set := make(CompletedSet, len(ids))
	for _, id := range ids {
		normalized, err := NormalizeTaskID(id)
		if err != nil {
			return nil, err
		}
		set[normalized] = struct{}{}
	}
	return set, nil
}

// Has reports whether id is recorded as done.
func (s CompletedSet) Has(id string) bool {
	_, ok := s[strings.TrimSpace(id)]
	return ok
}

// Add records id. It reports whether the set changed.
func (s CompletedSet) Add(id string) bool {
	if s.Has(id) {
		return false
	}
	s[strings.TrimSpace(id)] = struct{}{}
	return true
}

// Remove forgets id. It reports whether the set changed.
func (s CompletedSet) Remove(id string) bool {
	if !s.Has(id) {
		return false
	}
	delete(s, strings.TrimSpace(id))
	return true
}

// Sorted returns the ids in lexical order.
func (s CompletedSet) Sorted() []string {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Len returns the number of recorded ids.
func (s CompletedSet) Len() int {
	return len(s)
}

// Clone returns an independent copy.
func (s CompletedSet) Clone() CompletedSet {
	out := make(CompletedSet, len(s))
	for id := range s {
		out[id] = struct{}{}
	}
	return out
}

// CompletedSetFromPayload interprets a decoded completed-task document.
// Accepted shapes are null, a list of ids and a mapping with a "completed" list.
// The returned error describes the problem without a location; stores wrap it
// in a *StateCorruptionError.
func CompletedSetFromPayload(raw any) (CompletedSet, error) {
	var entries any
	switch v := raw.(type) {
	case nil:
		return CompletedSet{}, nil
	case []any:
		entries = v
	case map[string]any:
		entries = v["completed"]
		if entries == nil {
			return CompletedSet{}, nil
		}
	default:
		return nil, errors.New("task state must be a list or an object with a 'completed' field")
	}

	list, ok := entries.([]any)
	if !ok {
		return nil, errors.New("'completed' must be a list of task identifiers")
	}
	set := make(CompletedSet, len(list))
	for i, entry := range list {
		text, ok := entry.(string)
		if !ok {
			return nil, fmt.Errorf("entry #%d is invalid: task identifier must be a string", i)
		}
		id, err := NormalizeTaskID(text)
		if err != nil {
			return nil, fmt.Errorf("entry #%d is invalid: task identifier must not be blank", i)
		}
		set[id] = struct{}{}
	}
	return set, nil
}

// CompletedPayload is the canonical stored form of a completed set.
type CompletedPayload struct {
	Completed []string `json:"completed" yaml:"completed"`
}

// Payload returns the canonical stored form of s.
func (s CompletedSet) Payload() CompletedPayload {
	return CompletedPayload{Completed: s.Sorted()}
}
