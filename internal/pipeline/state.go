package pipeline

import "fmt"

// State is a document's position in the processing lifecycle.
type State string

const (
	StateIdle       State = "idle"
	StateExtracting State = "extracting"
	StateGenerating State = "generating"
	StateChunking   State = "chunking"
	StateMerging    State = "merging"
	StateDone       State = "done"
	StateFailed     State = "failed"
)

var transitions = map[State][]State{
	StateIdle:       {StateExtracting},
	StateExtracting: {StateGenerating, StateChunking},
	StateGenerating: {StateDone},
	StateChunking:   {StateMerging, StateDone},
	StateMerging:    {StateDone},
}

// Terminal reports whether no further transition is possible.
func (s State) Terminal() bool {
	return s == StateDone || s == StateFailed
}

// CanTransition reports whether from -> to is a legal move. Failed is
// reachable from every non-terminal state.
func CanTransition(from, to State) bool {
	if from.Terminal() {
		return false
	}
	if to == StateFailed {
		return true
	}
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

type machine struct {
	state    State
	onChange func(from, to State)
}

func (m *machine) to(next State) error {
	if !CanTransition(m.state, next) {
		return fmt.Errorf("illegal pipeline transition %s -> %s", m.state, next)
	}
	prev := m.state
	m.state = next
	if m.onChange != nil {
		m.onChange(prev, next)
	}
	return nil
}
