// Package config provides configuration loading functionality.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/pelletier/go-toml/v2"

	"github.com/runoshun/autocrew/internal/domain"
)

// Ensure Loader implements domain.ConfigLoader.
var _ domain.ConfigLoader = (*Loader)(nil)

// Loader loads configuration from TOML files.
type Loader struct {
	getenv        func(string) string
	configDir     string // Path to the repository's .autocrew directory
	globalConfDir string // Path to global config directory (e.g., ~/.config/autocrew)
}

// NewLoader creates a new Loader.
func NewLoader(configDir string) *Loader {
	return &Loader{
		configDir:     configDir,
		globalConfDir: defaultGlobalConfigDir(),
		getenv:        os.Getenv,
	}
}

// NewLoaderWithGlobalDir creates a new Loader with a custom global config directory.
// This is useful for testing.
func NewLoaderWithGlobalDir(configDir, globalConfDir string) *Loader {
	return &Loader{
		configDir:     configDir,
		globalConfDir: globalConfDir,
		getenv:        func(string) string { return "" },
	}
}

// WithEnv replaces the environment lookup used for overrides.
func (l *Loader) WithEnv(getenv func(string) string) *Loader {
	l.getenv = getenv
	return l
}

// defaultGlobalConfigDir returns the default global config directory.
func defaultGlobalConfigDir() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return domain.GlobalConfigDir(configHome)
}

// Load returns the merged configuration.
// Merge order: default <- global <- repo <- environment (later takes precedence).
func (l *Loader) Load() (*domain.Config, error) {
	cfg := domain.NewDefaultConfig()

	if err := l.overlay(cfg, l.globalPath()); err != nil {
		return nil, err
	}
	if err := l.overlay(cfg, filepath.Join(l.configDir, domain.ConfigFileName)); err != nil {
		return nil, err
	}

	if v := l.getenv(domain.EnvEventLogPath); v != "" {
		cfg.Paths.EventLog = v
	}
	if v := l.getenv(domain.EnvTasksDir); v != "" {
		cfg.Paths.TasksDir = v
	}

	sort.Strings(cfg.Warnings)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// LoadGlobal returns the global configuration merged over defaults.
func (l *Loader) LoadGlobal() (*domain.Config, error) {
	cfg := domain.NewDefaultConfig()
	if err := l.overlay(cfg, l.globalPath()); err != nil {
		return nil, err
	}
	sort.Strings(cfg.Warnings)
	return cfg, nil
}

func (l *Loader) globalPath() string {
	if l.globalConfDir == "" {
		return ""
	}
	return filepath.Join(l.globalConfDir, domain.ConfigFileName)
}

// overlay applies the file at path onto cfg. A missing file is not an error.
func (l *Loader) overlay(cfg *domain.Config, path string) error {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path) // #nosec G304 - config path is derived from known locations
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read config %s: %w", path, err)
	}

	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	applyRaw(cfg, raw)
	return nil
}
