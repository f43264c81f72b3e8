// Package eventlog stores run events in a bounded JSON file.
package eventlog

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/runoshun/autocrew/internal/domain"
	"github.com/runoshun/autocrew/internal/infra/jsonstore"
)

// Ensure Log implements domain.RunEventLog.
var _ domain.RunEventLog = (*Log)(nil)

// Log implements domain.RunEventLog as a JSON array, oldest event first.
// Each append reads the whole file, trims it to domain.MaxRunEvents and
// replaces it, so the file never holds more than the cap.
type Log struct {
	file  *jsonstore.File
	clock domain.Clock
	newID func() string
}

// New creates a Log for the given path.
func New(path string, clock domain.Clock) *Log {
	if clock == nil {
		clock = domain.RealClock{}
	}
	return &Log{
		file:  jsonstore.New(path),
		clock: clock,
		newID: uuid.NewString,
	}
}

// Path returns the location of the event file.
func (l *Log) Path() string {
	return l.file.Path()
}

// Append stores e, filling in ID and Timestamp when they are zero.
func (l *Log) Append(e domain.RunEvent) (domain.RunEvent, error) {
	events, err := l.read()
	if err != nil {
		return domain.RunEvent{}, err
	}

	if e.ID == "" {
		e.ID = l.newID()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = l.clock.Now()
	}
	e.Timestamp = e.Timestamp.UTC()
	if e.Level == "" {
		e.Level = domain.EventLevelInfo
	}
	if e.Source == "" {
		e.Source = domain.EventSourceOrchestrator
	}

	events = domain.TrimRunEvents(append(events, e.Clone()))
	if err := l.file.WriteJSON(events); err != nil {
		return domain.RunEvent{}, fmt.Errorf("append run event: %w", err)
	}
	return e, nil
}

// List returns copies of the stored events. The file is not modified.
func (l *Log) List(q domain.EventQuery) ([]domain.RunEvent, error) {
	events, err := l.read()
	if err != nil {
		return nil, err
	}
	return domain.SelectRunEvents(events, q), nil
}

func (l *Log) read() ([]domain.RunEvent, error) {
	content, ok, err := l.file.ReadRaw()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	var events []domain.RunEvent
	if err := json.Unmarshal(content, &events); err != nil {
		return nil, &domain.StateCorruptionError{Path: l.file.Path(), Msg: "run events must be a JSON array of objects", Err: err}
	}
	return events, nil
}
