package usecase

import (
	"context"

	"github.com/runoshun/autocrew/internal/domain"
)

// ClearCompletedInput contains the parameters for clearing the completed set.
type ClearCompletedInput struct{}

// ClearCompletedOutput contains the ids that were removed.
type ClearCompletedOutput struct {
	Removed []string
}

// ClearCompleted empties the completed set.
type ClearCompleted struct {
	store  domain.CompletedTaskStore
	logger domain.Logger
}

// NewClearCompleted creates a new ClearCompleted use case.
func NewClearCompleted(store domain.CompletedTaskStore, logger domain.Logger) *ClearCompleted {
	if logger == nil {
		logger = domain.NopLogger{}
	}
	return &ClearCompleted{store: store, logger: logger}
}

// Execute removes every completed record.
func (uc *ClearCompleted) Execute(_ context.Context, _ ClearCompletedInput) (*ClearCompletedOutput, error) {
	ids, err := uc.store.Completed()
	if err != nil {
		return nil, err
	}
	if err := uc.store.Clear(); err != nil {
		return nil, err
	}
	if len(ids) > 0 {
		uc.logger.Info("", "state", "cleared completed tasks")
	}
	return &ClearCompletedOutput{Removed: ids}, nil
}
