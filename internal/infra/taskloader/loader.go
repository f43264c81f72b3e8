// Package taskloader reads TaskSpec definitions from a directory tree.
package taskloader

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/runoshun/autocrew/internal/domain"
)

// Ensure Loader implements domain.TaskSpecLoader.
var _ domain.TaskSpecLoader = (*Loader)(nil)

// Loader discovers task files under a root directory.
//
// Eligible files end in .json, .yaml or .yml. Any file or directory whose name
// starts with "." below the root is skipped. Files are read in lexical path
// order and tasks keep their declaration order within a file.
type Loader struct {
	root string
}

// New creates a Loader for dir.
func New(dir string) *Loader {
	return &Loader{root: dir}
}

// Root returns the directory scanned by Load.
func (l *Loader) Root() string {
	return l.root
}

// Load reads every task file. Any error means no catalogue is returned.
func (l *Loader) Load() (*domain.Catalogue, error) {
	info, err := os.Stat(l.root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &domain.CatalogueError{Path: l.root, Msg: "task specification directory not found"}
		}
		return nil, &domain.CatalogueError{Path: l.root, Err: err}
	}
	if !info.IsDir() {
		return nil, &domain.CatalogueError{Path: l.root, Msg: "task specification path is not a directory"}
	}

	files, err := l.discover()
	if err != nil {
		return nil, err
	}

	cat := domain.NewCatalogue()
	for _, path := range files {
		specs, err := loadFile(path)
		if err != nil {
			return nil, err
		}
		for i, spec := range specs {
			if err := cat.Add(spec, domain.SourceRef(path, i)); err != nil {
				return nil, err
			}
		}
	}
	return cat, nil
}

func (l *Loader) discover() ([]string, error) {
	var files []string
	err := filepath.WalkDir(l.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return &domain.CatalogueError{Path: path, Err: err}
		}
		if path == l.root {
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if isTaskFile(path) {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

func isTaskFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		return true
	default:
		return false
	}
}

func loadFile(path string) ([]*domain.TaskSpec, error) {
	content, err := os.ReadFile(path) // #nosec G304 - path comes from walking the configured tasks directory
	if err != nil {
		return nil, &domain.CatalogueError{Path: path, Err: err}
	}

	raw, err := decode(path, content)
	if err != nil {
		return nil, err
	}

	entries, err := taskEntries(path, raw)
	if err != nil {
		return nil, err
	}

	specs := make([]*domain.TaskSpec, 0, len(entries))
	for i, entry := range entries {
		spec, err := domain.ParseTaskSpec(entry)
		if err != nil {
			return nil, &domain.CatalogueError{Path: path, Msg: fmt.Sprintf("task entry #%d is invalid", i), Err: err}
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

func decode(path string, content []byte) (any, error) {
	var raw any
	if strings.EqualFold(filepath.Ext(path), ".json") {
		dec := json.NewDecoder(bytes.NewReader(content))
		dec.UseNumber()
		if err := dec.Decode(&raw); err != nil {
			return nil, &domain.CatalogueError{Path: path, Msg: "invalid JSON payload", Err: err}
		}
		if dec.More() {
			return nil, &domain.CatalogueError{Path: path, Msg: "invalid JSON payload: trailing data"}
		}
		return raw, nil
	}
	if err := yaml.Unmarshal(content, &raw); err != nil {
		return nil, &domain.CatalogueError{Path: path, Msg: "invalid YAML payload", Err: err}
	}
	return raw, nil
}

// taskEntries accepts a single task object, an array of task objects or an
// object with a top-level "tasks" array.
func taskEntries(path string, raw any) ([]map[string]any, error) {
	var entries []any
	switch v := raw.(type) {
	case map[string]any:
		if tasks, ok := v["tasks"]; ok {
			list, ok := tasks.([]any)
			if !ok {
				return nil, &domain.CatalogueError{Path: path, Msg: "'tasks' must be a list of task definitions"}
			}
			entries = list
		} else {
			entries = []any{v}
		}
	case []any:
		entries = v
	default:
		return nil, &domain.CatalogueError{
			Path: path,
			Msg:  "task file must contain an object, an array of tasks, or an object with a 'tasks' array",
		}
	}

	out := make([]map[string]any, 0, len(entries))
	for i, entry := range entries {
		m, ok := entry.(map[string]any)
		if !ok {
			return nil, &domain.CatalogueError{Path: path, Msg: fmt.Sprintf("task entry #%d is not an object", i)}
		}
		out = append(out, m)
	}
	return out, nil
}
