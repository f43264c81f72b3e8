package domain

import "fmt"

// CatalogueEntry pairs a TaskSpec with the location it was declared at.
type CatalogueEntry struct {
	Spec   *TaskSpec
	Source string // "path#index"
}

// Catalogue is the set of all declared tasks, keyed by task id and kept in
// load order.
type Catalogue struct {
	index   map[string]int
	entries []CatalogueEntry
}

// NewCatalogue returns an empty catalogue.
func NewCatalogue() *Catalogue {
	return &Catalogue{index: make(map[string]int)}
}

// SourceRef formats the source location of the i-th task declared in path.
func SourceRef(path string, i int) string {
	return fmt.Sprintf("%s#%d", path, i)
}

// Add registers spec. Registering an id twice fails with a *DuplicateTaskError
// naming both sources, and leaves the catalogue unchanged.
func (c *Catalogue) Add(spec *TaskSpec, source string) error {
	if c.index == nil {
		c.index = make(map[string]int)
	}
	if i, ok := c.index[spec.ID()]; ok {
		return &DuplicateTaskError{
			TaskID: spec.ID(),
			First:  c.entries[i].Source,
			Second: source,
		}
	}
	c.index[spec.ID()] = len(c.entries)
	c.entries = append(c.entries, CatalogueEntry{Spec: spec, Source: source})
	return nil
}

// Len returns the number of tasks.
func (c *Catalogue) Len() int {
	if c == nil {
		return 0
	}
	return len(c.entries)
}

// Get returns the task with the given id.
func (c *Catalogue) Get(id string) (*TaskSpec, bool) {
	if c == nil {
		return nil, false
	}
	i, ok := c.index[id]
	if !ok {
		return nil, false
	}
	return c.entries[i].Spec, true
}

// Source returns where the task with the given id was declared.
func (c *Catalogue) Source(id string) string {
	if c == nil {
		return ""
	}
	if i, ok := c.index[id]; ok {
		return c.entries[i].Source
	}
	return ""
}

// Specs returns all tasks in load order.
func (c *Catalogue) Specs() []*TaskSpec {
	if c == nil {
		return nil
	}
	specs := make([]*TaskSpec, 0, len(c.entries))
	for _, e := range c.entries {
		specs = append(specs, e.Spec)
	}
	return specs
}

// Entries returns all entries in load order.
func (c *Catalogue) Entries() []CatalogueEntry {
	if c == nil {
		return nil
	}
	out := make([]CatalogueEntry, len(c.entries))
	copy(out, c.entries)
	return out
}

// IDs returns all task ids in load order.
func (c *Catalogue) IDs() []string {
	if c == nil {
		return nil
	}
	ids := make([]string, 0, len(c.entries))
	for _, e := range c.entries {
		ids = append(ids, e.Spec.ID())
	}
	return ids
}
