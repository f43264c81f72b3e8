package usecase

import (
	"context"

	"github.com/runoshun/autocrew/internal/domain"
)

// ShowConfigInput contains the input for the ShowConfig use case.
type ShowConfigInput struct{}

// ShowConfigOutput contains the output of the ShowConfig use case.
type ShowConfigOutput struct {
	Effective    *domain.Config    // Merged configuration
	GlobalConfig domain.ConfigInfo // Global config file info
	RepoConfig   domain.ConfigInfo // Repository config file info
}

// ShowConfig displays the effective configuration and its source files.
type ShowConfig struct {
	configLoader  domain.ConfigLoader
	configManager domain.ConfigManager
}

// NewShowConfig creates a new ShowConfig use case.
func NewShowConfig(configLoader domain.ConfigLoader, configManager domain.ConfigManager) *ShowConfig {
	return &ShowConfig{
		configLoader:  configLoader,
		configManager: configManager,
	}
}

// Execute loads the effective configuration and file information.
func (uc *ShowConfig) Execute(_ context.Context, _ ShowConfigInput) (*ShowConfigOutput, error) {
	cfg, err := uc.configLoader.Load()
	if err != nil {
		return nil, err
	}
	return &ShowConfigOutput{
		Effective:    cfg,
		GlobalConfig: uc.configManager.GetGlobalConfigInfo(),
		RepoConfig:   uc.configManager.GetRepoConfigInfo(),
	}, nil
}
