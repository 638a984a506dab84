package game

import (
	"fmt"

	"github.com/lazharichir/bluff/cards"
	"github.com/lazharichir/bluff/events"
)

// Namer turns a player id into something to show humans.
type Namer interface {
	Nickname(playerID string) string
}

// NamerFunc adapts a function to the Namer interface
type NamerFunc func(playerID string) string

func (f NamerFunc) Nickname(playerID string) string { return f(playerID) }

// Summarize narrates one action for the given viewer. The viewer never learns
// their own drawn card; everyone else's draws and folds are shown in full.
//
// TODO: whether opponents' cards should stay hidden until the hand resolves is
// a product decision that has not been made yet.
func Summarize(action events.Action, viewerID string, namer Namer) string {
	self := action.ActorID == viewerID
	who := "You"
	if !self {
		who = nickname(namer, action.ActorID)
	}

	switch action.Kind {
	case events.BuyIn:
		return fmt.Sprintf("%s joined with %s", who, chips(action.Amount()))
	case events.BecomeDealer:
		if self {
			return "You are the dealer"
		}
		return fmt.Sprintf("%s is the dealer", who)
	case events.Ante:
		return fmt.Sprintf("%s anted %s", who, chips(action.Amount()))
	case events.Draw:
		if self {
			return "You drew a card"
		}
		return fmt.Sprintf("%s drew the %s", who, cardName(action))
	case events.Bet:
		return fmt.Sprintf("%s bet %s", who, chips(action.Amount()))
	case events.Check:
		return fmt.Sprintf("%s checked", who)
	case events.Fold:
		if action.Value == nil {
			return fmt.Sprintf("%s folded", who)
		}
		return fmt.Sprintf("%s folded the %s", who, cardName(action))
	default:
		return fmt.Sprintf("%s did something unexpected (%s)", who, action.Kind)
	}
}

func nickname(namer Namer, playerID string) string {
	if namer == nil {
		return playerID
	}
	if name := namer.Nickname(playerID); name != "" {
		return name
	}
	return playerID
}

func chips(n int) string {
	if n == 1 {
		return "1 chip"
	}
	return fmt.Sprintf("%d chips", n)
}

func cardName(action events.Action) string {
	card, err := cards.CardFromIndex(action.Amount())
	if err != nil {
		return "unknown card"
	}
	return card.String()
}
