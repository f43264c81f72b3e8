package usecase

import (
	"context"

	"github.com/runoshun/autocrew/internal/domain"
)

// ShowTaskInput contains the parameters for showing a task.
type ShowTaskInput struct {
	TaskID string // Task ID (required)
}

// ShowTaskOutput contains the result of showing a task.
type ShowTaskOutput struct {
	Task TaskView
}

// ShowTask is the use case for displaying task details.
type ShowTask struct {
	loader domain.TaskSpecLoader
	store  domain.CompletedTaskStore
}

// NewShowTask creates a new ShowTask use case.
func NewShowTask(loader domain.TaskSpecLoader, store domain.CompletedTaskStore) *ShowTask {
	return &ShowTask{loader: loader, store: store}
}

// Execute retrieves the task and its readiness.
func (uc *ShowTask) Execute(_ context.Context, in ShowTaskInput) (*ShowTaskOutput, error) {
	id, err := domain.NormalizeTaskID(in.TaskID)
	if err != nil {
		return nil, err
	}

	cat, batch, err := loadBatch(uc.loader, uc.store)
	if err != nil {
		return nil, err
	}
	if _, ok := cat.Get(id); !ok {
		return nil, domain.ErrTaskNotFound
	}

	for _, v := range taskViews(cat, batch) {
		if v.Spec.ID() == id {
			return &ShowTaskOutput{Task: v}, nil
		}
	}
	return nil, domain.ErrTaskNotFound
}
