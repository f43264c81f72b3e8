package domain

import "slices"

// MissingDependency is a dependency on an id that no catalogue entry declares.
type MissingDependency struct {
	TaskID    string `json:"task_id"`
	DependsOn string `json:"depends_on"`
}

// DependencyReport describes structural problems in a catalogue's dependency graph.
// Such tasks stay blocked forever; the report only explains why.
type DependencyReport struct {
	Unknown    []MissingDependency `json:"unknown,omitempty"`
	Deadlocked []string            `json:"deadlocked,omitempty"` // on or behind a cycle, catalogue order
}

// HasIssues reports whether any problem was found.
func (r DependencyReport) HasIssues() bool {
	return len(r.Unknown) > 0 || len(r.Deadlocked) > 0
}

// AnalyzeDependencies finds unknown dependency ids and cycles.
// Tasks that cannot be ordered by Kahn's algorithm are deadlocked.
func AnalyzeDependencies(cat *Catalogue) DependencyReport {
	var report DependencyReport
	specs := cat.Specs()

	inDegree := make(map[string]int, len(specs))
	dependents := make(map[string][]string, len(specs))
	for _, spec := range specs {
		inDegree[spec.ID()] = 0
	}
	for _, spec := range specs {
		for _, dep := range spec.dependencies {
			if _, ok := inDegree[dep]; !ok {
				report.Unknown = append(report.Unknown, MissingDependency{TaskID: spec.ID(), DependsOn: dep})
				continue
			}
			inDegree[spec.ID()]++
			dependents[dep] = append(dependents[dep], spec.ID())
		}
	}

	var queue []string
	for _, spec := range specs {
		if inDegree[spec.ID()] == 0 {
			queue = append(queue, spec.ID())
		}
	}
	resolved := make(map[string]bool, len(specs))
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		resolved[id] = true
		for _, next := range dependents[id] {
			inDegree[next]--
			if inDegree[next] == 0 {
				queue = append(queue, next)
			}
		}
	}

	for _, spec := range specs {
		if !resolved[spec.ID()] && !slices.Contains(report.Deadlocked, spec.ID()) {
			report.Deadlocked = append(report.Deadlocked, spec.ID())
		}
	}
	return report
}
