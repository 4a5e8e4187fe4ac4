package fsm

import (
	"fmt"
	"sync"
)

type State string
type Event string

// Action runs as part of a transition, before the state advances.
// A non-nil error aborts the transition and leaves the machine in its
// current state.
type Action func(event Event) error

type transition struct {
	to     State
	action Action
}

// Machine is a small guarded state machine. Actions must not call Fire on
// the machine they run in.
type Machine struct {
	mu      sync.Mutex
	current State
	table   map[State]map[Event]transition
}

func New(initial State) *Machine {
	return &Machine{
		current: initial,
		table:   make(map[State]map[Event]transition),
	}
}

func (m *Machine) Current() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// Handle registers a transition from -> to on event, running action (which
// may be nil) before the state advances.
func (m *Machine) Handle(from, to State, event Event, action Action) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.table[from]; !ok {
		m.table[from] = make(map[Event]transition)
	}
	m.table[from][event] = transition{to: to, action: action}
}

// Can reports whether event is accepted in the current state.
func (m *Machine) Can(event Event) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.table[m.current][event]
	return ok
}

// Fire triggers a state transition. It is safe for concurrent use.
func (m *Machine) Fire(event Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	tr, ok := m.table[m.current][event]
	if !ok {
		return fmt.Errorf("invalid transition from %s via %s", m.current, event)
	}

	if tr.action != nil {
		if err := tr.action(event); err != nil {
			return err
		}
	}

	m.current = tr.to
	return nil
}
