package overlay

// State is the interaction mode of a View.
type State int

const (
	StateIdle State = iota
	StateCreating
	StateModifying
	StateDeleting
)

// States lists every state in declaration order.
var States = []State{StateIdle, StateCreating, StateModifying, StateDeleting}

func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateCreating:
		return "Creating"
	case StateModifying:
		return "Modifying"
	case StateDeleting:
		return "Deleting"
	default:
		return "Unknown"
	}
}

// ParseState is the inverse of String.
func ParseState(name string) (State, bool) {
	for _, s := range States {
		if s.String() == name {
			return s, true
		}
	}
	return StateIdle, false
}

// requires returns the permission needed to enter s. Idle needs none.
func (s State) requires() (Permission, bool) {
	switch s {
	case StateIdle:
		return 0, true
	case StateCreating:
		return AllowsCreating, true
	case StateModifying:
		return AllowsModifying, true
	case StateDeleting:
		return AllowsDeleting, true
	default:
		return 0, false
	}
}
