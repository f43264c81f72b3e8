package usecase

import (
	"context"

	"github.com/runoshun/autocrew/internal/domain"
)

// ListCompletedInput contains the parameters for listing completed tasks.
type ListCompletedInput struct{}

// ListCompletedOutput contains the completed ids.
type ListCompletedOutput struct {
	TaskIDs []string
}

// ListCompleted lists the completed set.
type ListCompleted struct {
	store domain.CompletedTaskStore
}

// NewListCompleted creates a new ListCompleted use case.
func NewListCompleted(store domain.CompletedTaskStore) *ListCompleted {
	return &ListCompleted{store: store}
}

// Execute returns the completed ids in lexical order.
func (uc *ListCompleted) Execute(_ context.Context, _ ListCompletedInput) (*ListCompletedOutput, error) {
	ids, err := uc.store.Completed()
	if err != nil {
		return nil, err
	}
	return &ListCompletedOutput{TaskIDs: ids}, nil
}
