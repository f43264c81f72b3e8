package usecase

import (
	"context"
	"fmt"

	"github.com/runoshun/autocrew/internal/domain"
)

// MarkTasksInput contains the parameters for marking tasks.
type MarkTasksInput struct {
	TaskIDs []string
	Done    bool // true marks completed, false marks incomplete
	Force   bool // allow ids that are not in the catalogue
}

// MarkTasksOutput contains the result of marking tasks.
type MarkTasksOutput struct {
	Changed   []string // ids whose state changed
	Unchanged []string // ids already in the requested state
}

// MarkTasks records operator changes to the completed set outside a run.
type MarkTasks struct {
	loader domain.TaskSpecLoader
	store  domain.CompletedTaskStore
	logger domain.Logger
}

// NewMarkTasks creates a new MarkTasks use case.
func NewMarkTasks(loader domain.TaskSpecLoader, store domain.CompletedTaskStore, logger domain.Logger) *MarkTasks {
	if logger == nil {
		logger = domain.NopLogger{}
	}
	return &MarkTasks{loader: loader, store: store, logger: logger}
}

// Execute validates every id before changing anything, then applies the marks.
func (uc *MarkTasks) Execute(_ context.Context, in MarkTasksInput) (*MarkTasksOutput, error) {
	ids := make([]string, 0, len(in.TaskIDs))
	for _, raw := range in.TaskIDs {
		id, err := domain.NormalizeTaskID(raw)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	if !in.Force {
		cat, err := uc.loader.Load()
		if err != nil {
			return nil, fmt.Errorf("load catalogue: %w", err)
		}
		for _, id := range ids {
			if _, ok := cat.Get(id); !ok {
				return nil, fmt.Errorf("%w: %s", domain.ErrTaskNotFound, id)
			}
		}
	}

	out := &MarkTasksOutput{}
	for _, id := range ids {
		done, err := uc.store.IsCompleted(id)
		if err != nil {
			return nil, err
		}
		if done == in.Done {
			out.Unchanged = append(out.Unchanged, id)
			continue
		}

		if in.Done {
			err = uc.store.MarkCompleted(id)
		} else {
			err = uc.store.MarkIncomplete(id)
		}
		if err != nil {
			return nil, err
		}
		out.Changed = append(out.Changed, id)
		uc.logger.Info(id, "state", fmt.Sprintf("marked %s by operator", stateWord(in.Done)))
	}
	return out, nil
}

func stateWord(done bool) string {
	if done {
		return "completed"
	}
	return "incomplete"
}
