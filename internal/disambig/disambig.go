// Package disambig assigns a logical identity to ambiguous vendor side-button
// presses by arrival order.
//
// Vendor mice often report both side buttons with overlapping payloads, so
// the first ambiguous press of a cycle is taken to be the first side button
// and the next one the second. Pressing the buttons out of order, or one
// button twice, misclassifies; this is a known limitation of the heuristic.
package disambig

import "fmt"

// State of the press cycle.
type State uint8

const (
	Idle State = iota
	FirstPending
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case FirstPending:
		return "first_pending"
	}
	return fmt.Sprintf("state(%d)", uint8(s))
}

// Side is the logical identity assigned to an ambiguous press.
type Side uint8

const (
	FirstSideButton Side = iota + 1
	SecondSideButton
)

func (s Side) String() string {
	switch s {
	case FirstSideButton:
		return "FirstSideButton"
	case SecondSideButton:
		return "SecondSideButton"
	}
	return fmt.Sprintf("side(%d)", uint8(s))
}

// Machine is the cyclic Idle -> FirstPending -> Idle state machine. It is
// driven from the hook thread only and is not safe for concurrent use.
type Machine struct {
	state State
}

// New returns a machine in the Idle state.
func New() *Machine {
	return &Machine{}
}

// Next consumes one ambiguous button-down and returns its identity.
func (m *Machine) Next() Side {
	if m.state == FirstPending {
		m.state = Idle
		return SecondSideButton
	}
	m.state = FirstPending
	return FirstSideButton
}

// Reset returns the machine to Idle. Called whenever hooks are installed.
func (m *Machine) Reset() {
	m.state = Idle
}

// State reports the current state.
func (m *Machine) State() State {
	return m.state
}
