package usecase

import (
	"context"

	"github.com/runoshun/autocrew/internal/domain"
)

// NextTaskInput contains the parameters for selecting the next task.
type NextTaskInput struct{}

// NextTaskOutput contains the task a run would select.
type NextTaskOutput struct {
	Task  *domain.TaskSpec
	Batch *domain.Batch
}

// NextTask previews the selection of a run without delegating anything.
type NextTask struct {
	loader domain.TaskSpecLoader
	store  domain.CompletedTaskStore
}

// NewNextTask creates a new NextTask use case.
func NewNextTask(loader domain.TaskSpecLoader, store domain.CompletedTaskStore) *NextTask {
	return &NextTask{loader: loader, store: store}
}

// Execute returns the next ready task or domain.ErrNothingActionable.
func (uc *NextTask) Execute(_ context.Context, _ NextTaskInput) (*NextTaskOutput, error) {
	_, batch, err := loadBatch(uc.loader, uc.store)
	if err != nil {
		return nil, err
	}
	task, err := batch.Next()
	if err != nil {
		return nil, err
	}
	return &NextTaskOutput{Task: task, Batch: batch}, nil
}
