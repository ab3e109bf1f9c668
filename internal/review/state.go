package review

import (
	"errors"
	"fmt"

	"github.com/joseph-ayodele/bol-intake/constants"
)

var (
	// ErrIllegalTransition is returned for any state change missing from the transition table.
	ErrIllegalTransition = errors.New("illegal review transition")
	// ErrNotEditable is returned when a record is edited outside Draft.
	ErrNotEditable = errors.New("job record is only editable in draft")
)

// transitions is the complete set of allowed state changes. Submitted is terminal.
var transitions = map[constants.ReviewState][]constants.ReviewState{
	constants.ReviewDraft:     {constants.ReviewValidated, constants.ReviewRejected},
	constants.ReviewValidated: {constants.ReviewSubmitted, constants.ReviewFailed, constants.ReviewRejected},
	constants.ReviewRejected:  {constants.ReviewDraft},
	constants.ReviewFailed:    {constants.ReviewDraft},
	constants.ReviewSubmitted: nil,
}

// CanTransition reports whether from -> to is in the transition table.
func CanTransition(from, to constants.ReviewState) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

func checkTransition(from, to constants.ReviewState) error {
	if !CanTransition(from, to) {
		return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, from, to)
	}
	return nil
}
