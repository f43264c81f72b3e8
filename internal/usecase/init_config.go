package usecase

import (
	"context"

	"github.com/runoshun/autocrew/internal/domain"
)

// InitConfigInput contains the input for the InitConfig use case.
type InitConfigInput struct {
	Config *domain.Config // Values documented in the generated file; defaults when nil
}

// InitConfigOutput contains the output of the InitConfig use case.
type InitConfigOutput struct {
	Path string // Path to the created config file
}

// InitConfig generates the repository configuration file.
type InitConfig struct {
	configManager domain.ConfigManager
}

// NewInitConfig creates a new InitConfig use case.
func NewInitConfig(configManager domain.ConfigManager) *InitConfig {
	return &InitConfig{
		configManager: configManager,
	}
}

// Execute creates the configuration file. It fails with domain.ErrConfigExists
// rather than overwrite an existing file.
func (uc *InitConfig) Execute(_ context.Context, in InitConfigInput) (*InitConfigOutput, error) {
	cfg := in.Config
	if cfg == nil {
		cfg = domain.NewDefaultConfig()
	}
	if err := uc.configManager.InitRepoConfig(cfg); err != nil {
		return nil, err
	}
	return &InitConfigOutput{Path: uc.configManager.RepoConfigPath()}, nil
}
