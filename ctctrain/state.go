package ctctrain

import "strconv"

// State is the phase a Trainer is in.
type State int

const (
	Initializing State = iota
	EpochRunning
	BatchRunning
	Shuffling
	Interrupted
	Decoding
	Finished
)

var stateNames = []string{
	"Initializing",
	"EpochRunning",
	"BatchRunning",
	"Shuffling",
	"Interrupted",
	"Decoding",
	"Finished",
}

// String returns the name of the state.
func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "State(" + strconv.Itoa(int(s)) + ")"
	}
	return stateNames[s]
}
