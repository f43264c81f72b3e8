package domain

import (
	"cmp"
	"slices"
)

// Batch is the readiness partition of a catalogue against a completed set.
// Fields are ordered to minimize memory padding.
type Batch struct {
	Ready     []*TaskSpec // dependencies satisfied, priority ordered
	Blocked   []*TaskSpec // at least one dependency not completed, priority ordered
	Done      []*TaskSpec // already completed, catalogue order
	Completed []string    // all completed ids, sorted

	completed CompletedSet
}

// OrderByPriority returns specs sorted by descending priority rank.
// The sort is stable: equal ranks keep their input order.
func OrderByPriority(specs []*TaskSpec) []*TaskSpec {
	ordered := slices.Clone(specs)
	slices.SortStableFunc(ordered, func(a, b *TaskSpec) int {
		return cmp.Compare(b.Priority().Rank(), a.Priority().Rank())
	})
	return ordered
}

// Partition splits the catalogue into ready, blocked and done tasks.
// A task is ready when it is not completed and every dependency is completed.
// Dependencies on ids absent from the catalogue keep a task blocked.
func Partition(cat *Catalogue, completed CompletedSet) *Batch {
	done := completed.Clone()
	b := &Batch{
		Completed: done.Sorted(),
		completed: done,
	}

	var ready, blocked []*TaskSpec
	for _, spec := range cat.Specs() {
		switch {
		case done.Has(spec.ID()):
			b.Done = append(b.Done, spec)
		case len(b.MissingDependencies(spec)) == 0:
			ready = append(ready, spec)
		default:
			blocked = append(blocked, spec)
		}
	}
	b.Ready = OrderByPriority(ready)
	b.Blocked = OrderByPriority(blocked)
	return b
}

// Next returns the highest-priority ready task.
func (b *Batch) Next() (*TaskSpec, error) {
	if len(b.Ready) == 0 {
		return nil, ErrNothingActionable
	}
	return b.Ready[0], nil
}

// MissingDependencies returns the dependencies of spec that are not completed,
// in declaration order.
func (b *Batch) MissingDependencies(spec *TaskSpec) []string {
	var missing []string
	for _, dep := range spec.dependencies {
		if !b.completed.Has(dep) {
			missing = append(missing, dep)
		}
	}
	return missing
}

// IsEmpty reports whether there is nothing ready and nothing blocked.
func (b *Batch) IsEmpty() bool {
	return len(b.Ready) == 0 && len(b.Blocked) == 0
}

// HasReadyTasks reports whether a task can be selected.
func (b *Batch) HasReadyTasks() bool {
	return len(b.Ready) > 0
}

// ReadyIDs returns the ids of ready tasks in selection order.
func (b *Batch) ReadyIDs() []string {
	return specIDs(b.Ready)
}

// BlockedIDs returns the ids of blocked tasks in priority order.
func (b *Batch) BlockedIDs() []string {
	return specIDs(b.Blocked)
}

func specIDs(specs []*TaskSpec) []string {
	ids := make([]string, 0, len(specs))
	for _, s := range specs {
		ids = append(ids, s.ID())
	}
	return ids
}
