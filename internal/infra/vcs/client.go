// Package vcs provides the git operations of a run, on top of go-git.
package vcs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/runoshun/autocrew/internal/domain"
)

// Ensure Client implements domain.VersionControl.
var _ domain.VersionControl = (*Client)(nil)

// Client provides git operations.
type Client struct {
	clock    domain.Clock
	repo     *git.Repository
	original *plumbing.Reference // HEAD before CreateBranch
	repoRoot string
	name     string
	email    string
	branch   plumbing.ReferenceName // branch created by CreateBranch
	written  []string               // paths written by Apply, slash separated
	created  []string               // subset of written that did not exist before
}

// Open detects the repository containing dir.
func Open(dir string) (*Client, error) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return nil, domain.ErrNotGitRepository
		}
		return nil, fmt.Errorf("open git repository: %w", err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("open worktree: %w", err)
	}
	return &Client{
		repo:     repo,
		repoRoot: wt.Filesystem.Root(),
		name:     domain.DefaultAuthorName,
		email:    domain.DefaultAuthorEmail,
		clock:    domain.RealClock{},
	}, nil
}

// WithAuthor sets the commit author.
func (c *Client) WithAuthor(name, email string) *Client {
	if name != "" {
		c.name = name
	}
	if email != "" {
		c.email = email
	}
	return c
}

// WithClock sets the clock used for commit timestamps.
func (c *Client) WithClock(clock domain.Clock) *Client {
	c.clock = clock
	return c
}

// RepoRoot returns the repository root directory.
func (c *Client) RepoRoot() string {
	return c.repoRoot
}

// Repository returns the underlying go-git repository.
func (c *Client) Repository() *git.Repository {
	return c.repo
}

// CurrentBranch returns the short name of the checked out branch.
func (c *Client) CurrentBranch() (string, error) {
	head, err := c.repo.Head()
	if err != nil {
		return "", fmt.Errorf("failed to get current branch: %w", err)
	}
	return head.Name().Short(), nil
}

// CreateBranch creates name from HEAD and checks it out, keeping local changes.
func (c *Client) CreateBranch(name string) error {
	head, err := c.repo.Head()
	if err != nil {
		return fmt.Errorf("resolve HEAD: %w", err)
	}
	wt, err := c.repo.Worktree()
	if err != nil {
		return err
	}

	ref := plumbing.NewBranchReferenceName(name)
	if _, err := c.repo.Reference(ref, false); err == nil {
		return fmt.Errorf("branch %s already exists", name)
	}
	if err := wt.Checkout(&git.CheckoutOptions{Branch: ref, Create: true, Keep: true}); err != nil {
		return fmt.Errorf("failed to create branch %s: %w", name, err)
	}

	c.original = head
	c.branch = ref
	c.written = nil
	c.created = nil
	return nil
}

// Apply writes every patch of cs below the repository root.
// Paths must be relative and stay inside the working tree.
func (c *Client) Apply(cs *domain.ChangeSet) ([]string, error) {
	if cs == nil {
		return nil, nil
	}
	patches := cs.Patches()
	targets := make([]string, 0, len(patches))
	for _, p := range patches {
		rel, err := safePath(p.Path)
		if err != nil {
			return nil, err
		}
		targets = append(targets, rel)
	}

	var written []string
	for i, p := range patches {
		rel := targets[i]
		abs := filepath.Join(c.repoRoot, filepath.FromSlash(rel))
		if _, err := os.Stat(abs); errors.Is(err, os.ErrNotExist) {
			c.created = append(c.created, rel)
		}
		if err := os.MkdirAll(filepath.Dir(abs), 0o750); err != nil {
			return written, fmt.Errorf("create directory for %s: %w", rel, err)
		}
		if err := os.WriteFile(abs, []byte(p.Content), 0o644); err != nil { // #nosec G306 - source files are world readable
			return written, fmt.Errorf("write %s: %w", rel, err)
		}
		written = append(written, rel)
	}
	c.written = append(c.written, written...)
	return written, nil
}

// Commit stages the applied files and commits them on the current branch.
func (c *Client) Commit(message string) error {
	wt, err := c.repo.Worktree()
	if err != nil {
		return err
	}
	for _, rel := range c.written {
		if _, err := wt.Add(rel); err != nil {
			return fmt.Errorf("stage %s: %w", rel, err)
		}
	}
	_, err = wt.Commit(message, &git.CommitOptions{
		Author: &object.Signature{
			Name:  c.name,
			Email: c.email,
			When:  c.clock.Now(),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

// Abandon discards the run's branch: files created by Apply are removed,
// the original branch is checked out again and the run branch is deleted.
func (c *Client) Abandon() error {
	if c.original == nil {
		return nil
	}
	for _, rel := range c.created {
		abs := filepath.Join(c.repoRoot, filepath.FromSlash(rel))
		if err := os.Remove(abs); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("remove %s: %w", rel, err)
		}
	}

	wt, err := c.repo.Worktree()
	if err != nil {
		return err
	}
	changes, err := c.localChanges(wt)
	if err != nil {
		return err
	}
	opts := &git.CheckoutOptions{Force: true}
	if c.original.Name().IsBranch() {
		opts.Branch = c.original.Name()
	} else {
		opts.Hash = c.original.Hash()
	}
	if err := wt.Checkout(opts); err != nil {
		return fmt.Errorf("checkout %s: %w", c.original.Name().Short(), err)
	}
	if err := c.restore(changes); err != nil {
		return err
	}
	if err := c.repo.Storer.RemoveReference(c.branch); err != nil {
		return fmt.Errorf("delete branch %s: %w", c.branch.Short(), err)
	}

	c.original = nil
	c.written = nil
	c.created = nil
	return nil
}

// localChange is a tracked file the operator changed outside the run.
type localChange struct {
	rel     string
	content []byte
	mode    os.FileMode
	deleted bool
}

// localChanges snapshots tracked files with uncommitted changes that Apply
// did not write. CreateBranch keeps them, so Abandon must put them back after
// its forced checkout.
func (c *Client) localChanges(wt *git.Worktree) ([]localChange, error) {
	status, err := wt.Status()
	if err != nil {
		return nil, fmt.Errorf("read worktree status: %w", err)
	}
	written := make(map[string]bool, len(c.written))
	for _, rel := range c.written {
		written[rel] = true
	}

	var changes []localChange
	for rel, fs := range status {
		if written[rel] {
			continue
		}
		if fs.Worktree == git.Untracked && fs.Staging == git.Untracked {
			continue
		}
		if fs.Worktree == git.Unmodified && fs.Staging == git.Unmodified {
			continue
		}
		abs := filepath.Join(c.repoRoot, filepath.FromSlash(rel))
		info, err := os.Lstat(abs)
		if errors.Is(err, os.ErrNotExist) {
			changes = append(changes, localChange{rel: rel, deleted: true})
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", rel, err)
		}
		if !info.Mode().IsRegular() {
			continue
		}
		content, err := os.ReadFile(abs) // #nosec G304 - path comes from the worktree status
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", rel, err)
		}
		changes = append(changes, localChange{rel: rel, content: content, mode: info.Mode().Perm()})
	}
	return changes, nil
}

// restore writes back the snapshot taken by localChanges.
func (c *Client) restore(changes []localChange) error {
	for _, ch := range changes {
		abs := filepath.Join(c.repoRoot, filepath.FromSlash(ch.rel))
		if ch.deleted {
			if err := os.Remove(abs); err != nil && !errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("restore %s: %w", ch.rel, err)
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(abs), 0o750); err != nil {
			return fmt.Errorf("restore %s: %w", ch.rel, err)
		}
		if err := os.WriteFile(abs, ch.content, ch.mode); err != nil {
			return fmt.Errorf("restore %s: %w", ch.rel, err)
		}
	}
	return nil
}

// safePath validates a patch path and returns it in slash form.
func safePath(p string) (string, error) {
	p = strings.TrimSpace(p)
	native := filepath.FromSlash(p)
	if p == "" || !filepath.IsLocal(native) {
		return "", fmt.Errorf("%w: %q", domain.ErrUnsafePatchPath, p)
	}
	rel := filepath.ToSlash(filepath.Clean(native))
	if rel == ".git" || strings.HasPrefix(rel, ".git/") {
		return "", fmt.Errorf("%w: %q", domain.ErrUnsafePatchPath, p)
	}
	return rel, nil
}
