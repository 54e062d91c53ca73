package build

import "fmt"

// State is a pipeline state. The zero value is Clean.
type State int

const (
	Clean State = iota
	Compiling
	Linking
	Packaging
	Archiving
	StubBuilding
	Done
	Failed
)

var stateNames = [...]string{
	Clean:        "clean",
	Compiling:    "compiling",
	Linking:      "linking",
	Packaging:    "packaging",
	Archiving:    "archiving",
	StubBuilding: "stub",
	Done:         "done",
	Failed:       "failed",
}

func (s State) String() string {
	if s >= 0 && int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// IsTerminal reports whether no transition leaves s.
func (s State) IsTerminal() bool {
	return s == Done || s == Failed
}

// allowed reports whether from -> to is legal: one step forward along the
// stage order, or into Failed from any non-terminal state.
func allowed(from, to State) bool {
	if from.IsTerminal() {
		return false
	}
	if to == Failed {
		return true
	}
	return to == from+1
}
