// Package usecase contains the application use cases.
package usecase

import (
	"fmt"

	"github.com/runoshun/autocrew/internal/domain"
)

// TaskStatus is the readiness of a task relative to the completed set.
type TaskStatus string

const (
	TaskStatusReady   TaskStatus = "ready"
	TaskStatusBlocked TaskStatus = "blocked"
	TaskStatusDone    TaskStatus = "done"
)

// TaskView is one catalogue task together with its readiness.
type TaskView struct {
	Spec    *domain.TaskSpec
	Source  string
	Status  TaskStatus
	Missing []string // unmet dependencies, for blocked tasks
}

// loadBatch loads the catalogue and the completed set and partitions them.
func loadBatch(loader domain.TaskSpecLoader, store domain.CompletedTaskStore) (*domain.Catalogue, *domain.Batch, error) {
	cat, err := loader.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load catalogue: %w", err)
	}
	completed, err := store.Reload()
	if err != nil {
		return nil, nil, fmt.Errorf("load completed tasks: %w", err)
	}
	return cat, domain.Partition(cat, completed), nil
}

// taskViews lists ready tasks first, then blocked, then done.
func taskViews(cat *domain.Catalogue, batch *domain.Batch) []TaskView {
	views := make([]TaskView, 0, cat.Len())
	for _, spec := range batch.Ready {
		views = append(views, TaskView{Spec: spec, Source: cat.Source(spec.ID()), Status: TaskStatusReady})
	}
	for _, spec := range batch.Blocked {
		views = append(views, TaskView{
			Spec:    spec,
			Source:  cat.Source(spec.ID()),
			Status:  TaskStatusBlocked,
			Missing: batch.MissingDependencies(spec),
		})
	}
	for _, spec := range batch.Done {
		views = append(views, TaskView{Spec: spec, Source: cat.Source(spec.ID()), Status: TaskStatusDone})
	}
	return views
}
