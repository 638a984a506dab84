package game

import (
	"fmt"

	"github.com/lazharichir/bluff/events"
)

// Project replays a game's actions, oldest first, and returns where the game
// stands now. It is deterministic: the same log always yields the same state.
func Project(actions []events.Action) (*GameState, error) {
	state := NewGameState()

	// Apply all actions in order to rebuild the state
	for _, action := range actions {
		if err := state.apply(action); err != nil {
			return nil, err
		}
	}

	return state, nil
}

// MustProject is Project for logs that are known to be well formed.
func MustProject(actions []events.Action) *GameState {
	state, err := Project(actions)
	if err != nil {
		panic(err)
	}
	return state
}

// apply dispatches actions to their appropriate handlers
func (s *GameState) apply(action events.Action) error {
	if action.ActorID == "" {
		return s.invariant(action, "no actor")
	}
	if action.CreatedAt.After(s.latestActionAt) {
		s.latestActionAt = action.CreatedAt
	}

	switch action.Kind {
	case events.BuyIn:
		return s.applyBuyIn(action)
	case events.BecomeDealer:
		return s.applyBecomeDealer(action)
	case events.Ante:
		return s.applyAnte(action)
	case events.Draw:
		return s.applyDraw(action)
	case events.Bet:
		return s.applyBet(action)
	case events.Check:
		return s.applyCheck(action)
	case events.Fold:
		return s.applyFold(action)
	default:
		return s.invariant(action, "%v", fmt.Errorf("%w: %d", events.ErrUnknownKind, int(action.Kind)))
	}
}
