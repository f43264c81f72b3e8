// Package domain contains core business entities and interfaces.
package domain

import (
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// TaskSpec is a validated, immutable description of one unit of backlog work.
// All fields are checked at construction; accessors hand out copies.
type TaskSpec struct {
	id                 string
	title              string
	summary            string
	details            string
	priority           Priority
	context            []string
	acceptanceCriteria []string
	tags               []string
	dependencies       []string
}

// TaskSpecFields is the typed input for NewTaskSpec.
// Fields are ordered to minimize memory padding.
type TaskSpecFields struct {
	TaskID             string
	Title              string
	Summary            string
	Details            string
	Priority           string
	Context            []string
	AcceptanceCriteria []string
	Tags               []string
	Dependencies       []string
}

// Keys used in the mapping form of a TaskSpec.
const (
	keyTaskID             = "task_id"
	keyTitle              = "title"
	keySummary            = "summary"
	keyDetails            = "details"
	keyContext            = "context"
	keyAcceptanceCriteria = "acceptance_criteria"
	keyPriority           = "priority"
	keyTags               = "tags"
	keyDependencies       = "dependencies"
)

// NewTaskSpec validates fields and returns an immutable TaskSpec.
func NewTaskSpec(f TaskSpecFields) (*TaskSpec, error) {
	raw := map[string]any{
		keyTaskID:             f.TaskID,
		keyTitle:              f.Title,
		keySummary:            f.Summary,
		keyDetails:            f.Details,
		keyPriority:           f.Priority,
		keyContext:            stringsToAny(f.Context),
		keyAcceptanceCriteria: stringsToAny(f.AcceptanceCriteria),
		keyTags:               stringsToAny(f.Tags),
		keyDependencies:       stringsToAny(f.Dependencies),
	}
	return ParseTaskSpec(raw)
}

// ParseTaskSpec builds a TaskSpec from a loosely typed mapping such as decoded JSON
// or YAML. It fails with a *ValidationError naming the offending field.
// Unknown keys are ignored.
func ParseTaskSpec(data map[string]any) (*TaskSpec, error) {
	if data == nil {
		return nil, invalidField("", "task specification must be a mapping")
	}

	var missing []string
	for _, key := range []string{keyTaskID, keyTitle, keySummary} {
		if _, ok := data[key]; !ok {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return nil, invalidField(strings.Join(missing, ", "), "missing required field")
	}

	spec := &TaskSpec{}
	var err error

	if spec.id, err = requiredText(data[keyTaskID], keyTaskID); err != nil {
		return nil, err
	}
	if spec.title, err = requiredText(data[keyTitle], keyTitle); err != nil {
		return nil, err
	}
	if spec.summary, err = requiredText(data[keySummary], keySummary); err != nil {
		return nil, err
	}
	if spec.details, err = optionalText(data[keyDetails], keyDetails); err != nil {
		return nil, err
	}
	if spec.context, err = textSequence(data[keyContext], keyContext); err != nil {
		return nil, err
	}
	if spec.acceptanceCriteria, err = textSequence(data[keyAcceptanceCriteria], keyAcceptanceCriteria); err != nil {
		return nil, err
	}
	if spec.tags, err = textSequence(data[keyTags], keyTags); err != nil {
		return nil, err
	}
	if spec.dependencies, err = textSequence(data[keyDependencies], keyDependencies); err != nil {
		return nil, err
	}

	priorityText, err := optionalText(data[keyPriority], keyPriority)
	if err != nil {
		return nil, err
	}
	if spec.priority, err = ParsePriority(priorityText); err != nil {
		return nil, err
	}

	return spec, nil
}

// ToMap serialises the spec into primitive types. ParseTaskSpec(spec.ToMap())
// yields a spec equal to spec.
func (t *TaskSpec) ToMap() map[string]any {
	var details, priority any
	if t.details != "" {
		details = t.details
	}
	if t.priority.IsSet() {
		priority = string(t.priority)
	}
	return map[string]any{
		keyTaskID:             t.id,
		keyTitle:              t.title,
		keySummary:            t.summary,
		keyDetails:            details,
		keyContext:            stringsToAny(t.context),
		keyAcceptanceCriteria: stringsToAny(t.acceptanceCriteria),
		keyPriority:           priority,
		keyTags:               stringsToAny(t.tags),
		keyDependencies:       stringsToAny(t.dependencies),
	}
}

// MarshalJSON encodes the mapping form.
func (t *TaskSpec) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.ToMap())
}

// UnmarshalJSON decodes and validates the mapping form.
func (t *TaskSpec) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	spec, err := ParseTaskSpec(raw)
	if err != nil {
		return err
	}
	*t = *spec
	return nil
}

// UnmarshalYAML decodes and validates the mapping form.
func (t *TaskSpec) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.MappingNode {
		return invalidField("", "task specification must be a mapping")
	}
	var raw map[string]any
	if err := value.Decode(&raw); err != nil {
		return err
	}
	spec, err := ParseTaskSpec(raw)
	if err != nil {
		return err
	}
	*t = *spec
	return nil
}

// ID returns the task identifier.
func (t *TaskSpec) ID() string { return t.id }

// Title returns the task title.
func (t *TaskSpec) Title() string { return t.title }

// Summary returns the one-line summary.
func (t *TaskSpec) Summary() string { return t.summary }

// Details returns the optional long description ("" when absent).
func (t *TaskSpec) Details() string { return t.details }

// Priority returns the declared priority (PriorityUnset when absent).
func (t *TaskSpec) Priority() Priority { return t.priority }

// Context returns the context references.
func (t *TaskSpec) Context() []string { return slices.Clone(t.context) }

// AcceptanceCriteria returns the acceptance criteria.
func (t *TaskSpec) AcceptanceCriteria() []string { return slices.Clone(t.acceptanceCriteria) }

// Tags returns the tags.
func (t *TaskSpec) Tags() []string { return slices.Clone(t.tags) }

// Dependencies returns the task ids this task depends on.
func (t *TaskSpec) Dependencies() []string { return slices.Clone(t.dependencies) }

// HasAcceptanceCriteria reports whether at least one criterion is defined.
// Tasks without criteria are still selectable but rendered as under-specified.
func (t *TaskSpec) HasAcceptanceCriteria() bool {
	return len(t.acceptanceCriteria) > 0
}

// HasDependencies reports whether the task declares any dependency.
func (t *TaskSpec) HasDependencies() bool {
	return len(t.dependencies) > 0
}

// Equal reports field-for-field equality.
func (t *TaskSpec) Equal(other *TaskSpec) bool {
	if t == nil || other == nil {
		return t == other
	}
	return t.id == other.id &&
		t.title == other.title &&
		t.summary == other.summary &&
		t.details == other.details &&
		t.priority == other.priority &&
		slices.Equal(t.context, other.context) &&
		slices.Equal(t.acceptanceCriteria, other.acceptanceCriteria) &&
		slices.Equal(t.tags, other.tags) &&
		slices.Equal(t.dependencies, other.dependencies)
}

func requiredText(value any, field string) (string, error) {
	if value == nil {
		return "", invalidField(field, "must not be null")
	}
	text, err := scalarText(value, field)
	if err != nil {
		return "", err
	}
	if text == "" {
		return "", invalidField(field, "must not be empty")
	}
	return text, nil
}

func optionalText(value any, field string) (string, error) {
	if value == nil {
		return "", nil
	}
	return scalarText(value, field)
}

// scalarText stringifies scalar values the way task files tend to carry them
// (numbers for ids, for instance) and trims surrounding whitespace.
func scalarText(value any, field string) (string, error) {
	switch v := value.(type) {
	case string:
		return strings.TrimSpace(v), nil
	case json.Number:
		return v.String(), nil
	case bool:
		return strconv.FormatBool(v), nil
	case int:
		return strconv.Itoa(v), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case uint64:
		return strconv.FormatUint(v, 10), nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	default:
		return "", invalidField(field, "must be a string, got %s", describeType(value))
	}
}

func textSequence(value any, field string) ([]string, error) {
	var candidates []any
	switch v := value.(type) {
	case nil:
		return nil, nil
	case string:
		candidates = []any{v}
	case []string:
		candidates = stringsToAny(v)
	case []any:
		candidates = v
	case map[string]any:
		return nil, invalidField(field, "must be a sequence of strings, not a mapping")
	default:
		return nil, invalidField(field, "must be a sequence of strings, got %s", describeType(value))
	}

	var result []string
	for i, raw := range candidates {
		if raw == nil {
			return nil, invalidField(field, "cannot contain null entries (entry #%d)", i)
		}
		text, err := scalarText(raw, field)
		if err != nil {
			return nil, invalidField(field, "entry #%d must be a string, got %s", i, describeType(raw))
		}
		if text == "" {
			return nil, invalidField(field, "cannot contain blank entries (entry #%d)", i)
		}
		result = append(result, text)
	}
	return result, nil
}

func stringsToAny(values []string) []any {
	out := make([]any, 0, len(values))
	for _, v := range values {
		out = append(out, v)
	}
	return out
}

func describeType(value any) string {
	switch value.(type) {
	case map[string]any:
		return "mapping"
	case []any:
		return "sequence"
	default:
		return fmt.Sprintf("%T", value)
	}
}
