// Package statestore persists completed task ids in a JSON file.
package statestore

import (
	"encoding/json"
	"fmt"

	"github.com/runoshun/autocrew/internal/domain"
	"github.com/runoshun/autocrew/internal/infra/jsonstore"
)

// Ensure Store implements domain.CompletedTaskStore.
var _ domain.CompletedTaskStore = (*Store)(nil)

// Store implements domain.CompletedTaskStore on a single JSON file.
// The file is read on first use and rewritten in full on every change.
type Store struct {
	file      *jsonstore.File
	completed domain.CompletedSet
}

// New creates a Store for the given path.
// A missing file is treated as an empty set.
func New(path string) *Store {
	return &Store{file: jsonstore.New(path)}
}

// Path returns the location of the state file.
func (s *Store) Path() string {
	return s.file.Path()
}

// Reload discards the cached set and reads the file again.
func (s *Store) Reload() (domain.CompletedSet, error) {
	set, err := s.read()
	if err != nil {
		return nil, err
	}
	s.completed = set
	return set.Clone(), nil
}

// Completed returns the completed ids in lexical order.
func (s *Store) Completed() ([]string, error) {
	if err := s.ensureLoaded(); err != nil {
		return nil, err
	}
	return s.completed.Sorted(), nil
}

// IsCompleted reports whether id is recorded. Blank ids are never completed.
func (s *Store) IsCompleted(id string) (bool, error) {
	if err := s.ensureLoaded(); err != nil {
		return false, err
	}
	return s.completed.Has(id), nil
}

// MarkCompleted records id and persists the set. Marking twice is a no-op.
func (s *Store) MarkCompleted(id string) error {
	normalized, err := domain.NormalizeTaskID(id)
	if err != nil {
		return err
	}
	if err := s.ensureLoaded(); err != nil {
		return err
	}
	next := s.completed.Clone()
	if !next.Add(normalized) {
		return nil
	}
	return s.persist(next)
}

// MarkIncomplete removes id and persists the set. Unknown ids are a no-op.
func (s *Store) MarkIncomplete(id string) error {
	normalized, err := domain.NormalizeTaskID(id)
	if err != nil {
		return err
	}
	if err := s.ensureLoaded(); err != nil {
		return err
	}
	next := s.completed.Clone()
	if !next.Remove(normalized) {
		return nil
	}
	return s.persist(next)
}

// Clear empties the set. Nothing is written when the set is already empty
// and no file exists.
func (s *Store) Clear() error {
	if err := s.ensureLoaded(); err != nil {
		return err
	}
	exists, err := s.file.Exists()
	if err != nil {
		return err
	}
	if s.completed.Len() == 0 && !exists {
		return nil
	}
	return s.persist(domain.CompletedSet{})
}

func (s *Store) ensureLoaded() error {
	if s.completed != nil {
		return nil
	}
	set, err := s.read()
	if err != nil {
		return err
	}
	s.completed = set
	return nil
}

func (s *Store) read() (domain.CompletedSet, error) {
	content, ok, err := s.file.ReadRaw()
	if err != nil {
		return nil, err
	}
	if !ok {
		return domain.CompletedSet{}, nil
	}

	var raw any
	if err := json.Unmarshal(content, &raw); err != nil {
		return nil, &domain.StateCorruptionError{Path: s.file.Path(), Msg: "invalid JSON payload", Err: err}
	}
	set, err := domain.CompletedSetFromPayload(raw)
	if err != nil {
		return nil, &domain.StateCorruptionError{Path: s.file.Path(), Msg: err.Error()}
	}
	return set, nil
}

// persist writes set and caches it only once the write succeeded.
func (s *Store) persist(set domain.CompletedSet) error {
	if err := s.file.WriteJSON(set.Payload()); err != nil {
		return fmt.Errorf("persist completed tasks: %w", err)
	}
	s.completed = set
	return nil
}
