package domain

import "fmt"

// RunState is the state of one orchestration run.
type RunState string

const (
	RunStateIdle            RunState = "idle"
	RunStateCatalogueLoaded RunState = "catalogue_loaded"
	RunStateSelected        RunState = "selected"
	RunStateDelegated       RunState = "delegated"
	RunStateSkipped         RunState = "skipped"  // nothing ready
	RunStateRecorded        RunState = "recorded" // outcome persisted
	RunStateDone            RunState = "done"
	RunStateFailed          RunState = "failed"
)

// runTransitions defines the allowed run state transitions.
// Flow: idle → catalogue_loaded → selected → delegated → recorded → done
//
//	catalogue_loaded → skipped → done
//	any non-final state → failed
var runTransitions = map[RunState][]RunState{
	RunStateIdle:            {RunStateCatalogueLoaded, RunStateFailed},
	RunStateCatalogueLoaded: {RunStateSelected, RunStateSkipped, RunStateFailed},
	RunStateSelected:        {RunStateDelegated, RunStateFailed},
	RunStateDelegated:       {RunStateRecorded, RunStateFailed},
	RunStateSkipped:         {RunStateDone},
	RunStateRecorded:        {RunStateDone},
	RunStateDone:            {},
	RunStateFailed:          {},
}

// CanTransitionTo returns true if the run can move from s to target.
func (s RunState) CanTransitionTo(target RunState) bool {
	for _, t := range runTransitions[s] {
		if t == target {
			return true
		}
	}
	return false
}

// IsTerminal reports whether reaching s writes the run's event.
func (s RunState) IsTerminal() bool {
	return s == RunStateSkipped || s == RunStateRecorded || s == RunStateFailed
}

// IsFinal reports whether the run has ended.
func (s RunState) IsFinal() bool {
	return s == RunStateDone || s == RunStateFailed
}

// RunMachine tracks the state of one run and rejects illegal transitions.
type RunMachine struct {
	state   RunState
	history []RunState
}

// NewRunMachine returns a machine in the idle state.
func NewRunMachine() *RunMachine {
	return &RunMachine{state: RunStateIdle, history: []RunState{RunStateIdle}}
}

// State returns the current state.
func (m *RunMachine) State() RunState { return m.state }

// History returns every state visited, in order.
func (m *RunMachine) History() []RunState {
	return append([]RunState(nil), m.history...)
}

// Transition moves to target or fails with ErrInvalidRunTransition.
func (m *RunMachine) Transition(target RunState) error {
	if !m.state.CanTransitionTo(target) {
		return fmt.Errorf("%s -> %s: %w", m.state, target, ErrInvalidRunTransition)
	}
	m.state = target
	m.history = append(m.history, target)
	return nil
}
