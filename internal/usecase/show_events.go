package usecase

import (
	"context"

	"github.com/runoshun/autocrew/internal/domain"
)

// ShowEventsInput contains the parameters for listing run events.
type ShowEventsInput struct {
	Limit       int // 0 lists every event
	NewestFirst bool
}

// ShowEventsOutput contains the listed events.
type ShowEventsOutput struct {
	Events []domain.RunEvent
}

// ShowEvents lists the run-event history.
type ShowEvents struct {
	events domain.RunEventLog
}

// NewShowEvents creates a new ShowEvents use case.
func NewShowEvents(events domain.RunEventLog) *ShowEvents {
	return &ShowEvents{events: events}
}

// Execute lists events without modifying the log.
func (uc *ShowEvents) Execute(_ context.Context, in ShowEventsInput) (*ShowEventsOutput, error) {
	q := domain.EventQuery{Order: domain.OldestFirst, Limit: in.Limit}
	if in.NewestFirst {
		q.Order = domain.NewestFirst
	}
	events, err := uc.events.List(q)
	if err != nil {
		return nil, err
	}
	return &ShowEventsOutput{Events: events}, nil
}
