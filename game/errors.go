package game

import (
	"errors"
	"fmt"

	"github.com/lazharichir/bluff/events"
	"github.com/sanity-io/litter"
)

// ErrRejected matches every command refused by the action creator.
var ErrRejected = errors.New("action not allowed")

// ErrInvariant means the log contradicts itself. It is never caused by a
// player and the enclosing request must abort.
var ErrInvariant = errors.New("game log invariant violated")

// RejectedError is returned when a proposed command is not legal right now.
// Nothing is appended to the log.
type RejectedError struct {
	Command string
	Reason  string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("%s not allowed: %s", e.Command, e.Reason)
}

func (e *RejectedError) Is(target error) bool {
	return target == ErrRejected
}

func reject(command, format string, args ...any) error {
	return &RejectedError{Command: command, Reason: fmt.Sprintf(format, args...)}
}

var stateDumper = litter.Options{
	HidePrivateFields: true,
	Compact:           true,
}

func (s *GameState) invariant(action events.Action, format string, args ...any) error {
	return fmt.Errorf("%w: action %d (%s by %q): %s; state: %s",
		ErrInvariant, action.Seq, action.Kind, action.ActorID,
		fmt.Sprintf(format, args...), stateDumper.Sdump(s))
}
