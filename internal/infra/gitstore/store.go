// Package gitstore keeps the completed task set inside the repository's object
// database, so it travels with the repository rather than the working tree.
package gitstore

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"gopkg.in/yaml.v3"

	"github.com/runoshun/autocrew/internal/domain"
)

// Ensure Store implements domain.CompletedTaskStore.
var _ domain.CompletedTaskStore = (*Store)(nil)

// Store implements domain.CompletedTaskStore using Git plumbing.
//
// Data structure:
//
//	refs/<namespace>/
//	  completed → blob (YAML: completed: [ids...])
//
// Each change writes a new blob and moves the ref, which is the atomic replace.
type Store struct {
	repo      *git.Repository
	completed domain.CompletedSet
	namespace string // e.g., "autocrew"
	mu        sync.Mutex
}

// New opens the repository at repoPath.
func New(repoPath, namespace string) (*Store, error) {
	repo, err := git.PlainOpenWithOptions(repoPath, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return nil, domain.ErrNotGitRepository
		}
		return nil, fmt.Errorf("open git repository: %w", err)
	}
	return NewWithRepo(repo, namespace), nil
}

// NewWithRepo creates a Store with an existing repository instance.
func NewWithRepo(repo *git.Repository, namespace string) *Store {
	return &Store{repo: repo, namespace: namespace}
}

// completedRef returns the ref holding the completed set.
func (s *Store) completedRef() plumbing.ReferenceName {
	return plumbing.ReferenceName("refs/" + s.namespace + "/completed")
}

// Location returns a human-readable location used in error messages.
func (s *Store) Location() string {
	return s.completedRef().String()
}

// Reload discards the cached set and reads the ref again.
func (s *Store) Reload() (domain.CompletedSet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	set, err := s.read()
	if err != nil {
		return nil, err
	}
	s.completed = set
	return set.Clone(), nil
}

// Completed returns the completed ids in lexical order.
func (s *Store) Completed() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(); err != nil {
		return nil, err
	}
	return s.completed.Sorted(), nil
}

// IsCompleted reports whether id is recorded.
func (s *Store) IsCompleted(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(); err != nil {
		return false, err
	}
	return s.completed.Has(id), nil
}

// MarkCompleted records id. Marking twice is a no-op.
func (s *Store) MarkCompleted(id string) error {
	return s.update(id, domain.CompletedSet.Add)
}

// MarkIncomplete removes id. Unknown ids are a no-op.
func (s *Store) MarkIncomplete(id string) error {
	return s.update(id, domain.CompletedSet.Remove)
}

// Clear empties the set. Nothing is written when the ref does not exist.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(); err != nil {
		return err
	}
	_, err := s.repo.Reference(s.completedRef(), true)
	if errors.Is(err, plumbing.ErrReferenceNotFound) && s.completed.Len() == 0 {
		return nil
	}
	return s.write(domain.CompletedSet{})
}

func (s *Store) update(id string, apply func(domain.CompletedSet, string) bool) error {
	normalized, err := domain.NormalizeTaskID(id)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(); err != nil {
		return err
	}
	next := s.completed.Clone()
	if !apply(next, normalized) {
		return nil
	}
	return s.write(next)
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
	ref, err := s.repo.Reference(s.completedRef(), true)
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return domain.CompletedSet{}, nil
		}
		return nil, fmt.Errorf("get completed ref: %w", err)
	}

	data, err := s.readBlob(ref.Hash())
	if err != nil {
		return nil, &domain.StateCorruptionError{Path: s.Location(), Msg: "unreadable blob", Err: err}
	}

	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, &domain.StateCorruptionError{Path: s.Location(), Msg: "invalid YAML payload", Err: err}
	}
	set, err := domain.CompletedSetFromPayload(raw)
	if err != nil {
		return nil, &domain.StateCorruptionError{Path: s.Location(), Msg: err.Error()}
	}
	return set, nil
}

// write stores set under the ref and caches it only once the ref is updated.
func (s *Store) write(set domain.CompletedSet) error {
	data, err := yaml.Marshal(set.Payload())
	if err != nil {
		return fmt.Errorf("marshal completed tasks: %w", err)
	}

	hash, err := s.writeBlob(data)
	if err != nil {
		return err
	}

	ref := plumbing.NewHashReference(s.completedRef(), hash)
	if err := s.repo.Storer.SetReference(ref); err != nil {
		return fmt.Errorf("set completed ref: %w", err)
	}
	s.completed = set
	return nil
}

// writeBlob writes data to a blob and returns the hash.
func (s *Store) writeBlob(data []byte) (plumbing.Hash, error) {
	obj := s.repo.Storer.NewEncodedObject()
	obj.SetType(plumbing.BlobObject)
	obj.SetSize(int64(len(data)))

	writer, err := obj.Writer()
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("create blob writer: %w", err)
	}
	if _, writeErr := writer.Write(data); writeErr != nil {
		_ = writer.Close()
		return plumbing.ZeroHash, fmt.Errorf("write blob: %w", writeErr)
	}
	_ = writer.Close()

	hash, err := s.repo.Storer.SetEncodedObject(obj)
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("store blob: %w", err)
	}
	return hash, nil
}

// readBlob reads the content of a blob.
func (s *Store) readBlob(hash plumbing.Hash) ([]byte, error) {
	blob, err := s.repo.BlobObject(hash)
	if err != nil {
		return nil, fmt.Errorf("get blob: %w", err)
	}

	reader, err := blob.Reader()
	if err != nil {
		return nil, fmt.Errorf("read blob: %w", err)
	}
	defer func() { _ = reader.Close() }()

	return io.ReadAll(reader)
}
