// Package jsonstore provides durable, whole-file JSON persistence shared by the
// completed-task store and the run-event log.
package jsonstore

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// File is one JSON document on disk. Every write replaces the whole file
// through a temporary sibling and a rename, so readers never see a partial write.
type File struct {
	path string
	perm os.FileMode
}

// New creates a File for the given path.
// The file does not need to exist; it will be created on first write.
func New(path string) *File {
	return &File{path: path, perm: 0o600}
}

// Path returns the location of the file.
func (f *File) Path() string {
	return f.path
}

// Exists reports whether the file is present.
func (f *File) Exists() (bool, error) {
	_, err := os.Stat(f.path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("stat %s: %w", f.path, err)
}

// ReadRaw returns the file content. A missing file yields (nil, false, nil).
func (f *File) ReadRaw() ([]byte, bool, error) {
	content, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("read %s: %w", f.path, err)
	}
	return content, true, nil
}

// Encode renders v the way it is stored: two-space indentation and a
// trailing newline, so equal values always produce identical bytes.
func Encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteJSON encodes v and atomically replaces the file with it.
func (f *File) WriteJSON(v any) error {
	content, err := Encode(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", f.path, err)
	}
	if err := WriteFileAtomic(f.path, content, f.perm); err != nil {
		return fmt.Errorf("write %s: %w", f.path, err)
	}
	return nil
}

// WriteFileAtomic writes data to a temporary file in the target directory,
// syncs it, renames it over path and syncs the directory.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp.*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		_ = tmp.Close()
		if !committed {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := io.Copy(tmp, bytes.NewReader(data)); err != nil {
		return err
	}
	if err := tmp.Chmod(perm); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		return err
	}
	committed = true
	return syncDir(dir)
}

func syncDir(dir string) error {
	d, err := os.Open(dir) // #nosec G304 - dir is derived from a configured state path
	if err != nil {
		return err
	}
	defer func() { _ = d.Close() }()
	// Some filesystems reject fsync on directories.
	if err := d.Sync(); err != nil && !errors.Is(err, os.ErrInvalid) {
		return err
	}
	return nil
}
