package usecase

import (
	"context"

	"github.com/runoshun/autocrew/internal/domain"
)

// ListTasksInput contains the parameters for listing tasks.
type ListTasksInput struct {
	Status TaskStatus // Only tasks with this status; empty lists every task
}

// ListTasksOutput contains the result of listing tasks.
type ListTasksOutput struct {
	Batch *domain.Batch
	Tasks []TaskView
}

// ListTasks is the use case for listing the backlog.
type ListTasks struct {
	loader domain.TaskSpecLoader
	store  domain.CompletedTaskStore
}

// NewListTasks creates a new ListTasks use case.
func NewListTasks(loader domain.TaskSpecLoader, store domain.CompletedTaskStore) *ListTasks {
	return &ListTasks{loader: loader, store: store}
}

// Execute lists ready, blocked and done tasks in that order.
func (uc *ListTasks) Execute(_ context.Context, in ListTasksInput) (*ListTasksOutput, error) {
	cat, batch, err := loadBatch(uc.loader, uc.store)
	if err != nil {
		return nil, err
	}

	views := taskViews(cat, batch)
	if in.Status != "" {
		filtered := views[:0]
		for _, v := range views {
			if v.Status == in.Status {
				filtered = append(filtered, v)
			}
		}
		views = filtered
	}

	return &ListTasksOutput{Batch: batch, Tasks: views}, nil
}
