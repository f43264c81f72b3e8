package config

import (
	"os"
	"path/filepath"

	"github.com/runoshun/autocrew/internal/domain"
)

// Ensure Manager implements domain.ConfigManager.
var _ domain.ConfigManager = (*Manager)(nil)

// Manager manages configuration files.
type Manager struct {
	configDir     string // Path to the repository's .autocrew directory
	globalConfDir string // Path to global config directory (e.g., ~/.config/autocrew)
}

// NewManager creates a new Manager.
func NewManager(configDir string) *Manager {
	return &Manager{
		configDir:     configDir,
		globalConfDir: defaultGlobalConfigDir(),
	}
}

// NewManagerWithGlobalDir creates a new Manager with a custom global config directory.
// This is useful for testing.
func NewManagerWithGlobalDir(configDir, globalConfDir string) *Manager {
	return &Manager{
		configDir:     configDir,
		globalConfDir: globalConfDir,
	}
}

// RepoConfigPath returns the repository config path.
func (m *Manager) RepoConfigPath() string {
	return filepath.Join(m.configDir, domain.ConfigFileName)
}

// GetRepoConfigInfo returns information about the repository config file.
func (m *Manager) GetRepoConfigInfo() domain.ConfigInfo {
	return m.getConfigInfo(m.RepoConfigPath())
}

// GetGlobalConfigInfo returns information about the global config file.
func (m *Manager) GetGlobalConfigInfo() domain.ConfigInfo {
	if m.globalConfDir == "" {
		return domain.ConfigInfo{}
	}
	return m.getConfigInfo(filepath.Join(m.globalConfDir, domain.ConfigFileName))
}

// getConfigInfo reads a config file and returns its info.
func (m *Manager) getConfigInfo(path string) domain.ConfigInfo {
	content, err := os.ReadFile(path) // #nosec G304 - path is derived from known locations
	if err != nil {
		return domain.ConfigInfo{Path: path}
	}
	return domain.ConfigInfo{
		Path:    path,
		Content: string(content),
		Exists:  true,
	}
}

// InitRepoConfig creates the repository config file from the default template.
// The .autocrew directory is created when missing.
func (m *Manager) InitRepoConfig(cfg *domain.Config) error {
	path := m.RepoConfigPath()
	if _, err := os.Stat(path); err == nil {
		return domain.ErrConfigExists
	}
	if err := os.MkdirAll(m.configDir, 0o750); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(domain.RenderConfigTemplate(cfg)), 0o600)
}
