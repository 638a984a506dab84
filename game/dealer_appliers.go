package game

import (
	"github.com/lazharichir/bluff/cards"
	"github.com/lazharichir/bluff/events"
)

// Action handler implementations

func (s *GameState) applyBuyIn(action events.Action) error {
	amount, err := s.chipValue(action)
	if err != nil {
		return err
	}
	player := action.ActorID

	if _, seen := s.Chips[player]; !seen {
		s.Seating = append(s.Seating, player)
		s.Chips[player] = 0
	}
	s.Chips[player] += amount
	s.BoughtIn += amount

	// Seated players keep their seat; everyone else joins next hand
	if !s.Active[player] {
		delete(s.Out, player)
		s.Waiting[player] = true
	}
	return nil
}

func (s *GameState) applyBecomeDealer(action events.Action) error {
	s.admitWaiting()
	if !s.Active[action.ActorID] {
		return s.invariant(action, "dealer is not seated")
	}

	s.Dealer = action.ActorID
	s.Cards = make(map[string]cards.Card)
	s.Pot = make(map[string]int)
	s.LastAction = make(map[string]int)
	s.Owed = make(map[string]int)
	s.HandInProgress = true
	s.Hands++
	s.ActionTo = s.nextActiveAfter(s.Dealer)
	return nil
}

func (s *GameState) applyAnte(action events.Action) error {
	amount, err := s.handChipValue(action)
	if err != nil {
		return err
	}
	s.moveToPot(action.ActorID, amount)
	return nil
}

func (s *GameState) applyDraw(action events.Action) error {
	if err := s.requireInHand(action); err != nil {
		return err
	}
	if action.Value == nil {
		return s.invariant(action, "draw without a card")
	}
	card, err := cards.CardFromIndex(*action.Value)
	if err != nil {
		return s.invariant(action, "%v", err)
	}
	for holder, held := range s.Cards {
		if held == card && holder != action.ActorID {
			return s.invariant(action, "%s already dealt to %q", card, holder)
		}
	}

	s.Cards[action.ActorID] = card
	s.Status = StatusPlaying
	return nil
}

func (s *GameState) applyBet(action events.Action) error {
	if err := s.requireTurn(action); err != nil {
		return err
	}
	amount, err := s.handChipValue(action)
	if err != nil {
		return err
	}

	player := action.ActorID
	s.moveToPot(player, amount)
	s.LastAction[player] = s.Pot[player]
	s.advanceFrom(player, s.Pot[player])
	return nil
}

func (s *GameState) applyCheck(action events.Action) error {
	if err := s.requireTurn(action); err != nil {
		return err
	}

	player := action.ActorID
	s.LastAction[player] = s.Pot[player]
	s.advanceFrom(player, s.Pot[player])
	return nil
}

func (s *GameState) applyFold(action events.Action) error {
	if err := s.requireTurn(action); err != nil {
		return err
	}

	player := action.ActorID
	s.Owed[player] = max(0, s.highestContributionExcept(player)-s.Pot[player])
	delete(s.Active, player)
	delete(s.Cards, player)
	delete(s.LastAction, player)
	s.Waiting[player] = true

	if len(s.Active) == 1 {
		s.ActionTo = ""
		s.resolveHand()
		return nil
	}
	s.advanceFrom(player, s.Pot[player])
	return nil
}

// advanceFrom hands the turn to the next seated player who can still act:
// they hold chips, and they either owe chips, have not acted this round, or
// acted for less than reference. When nobody qualifies the hand resolves.
func (s *GameState) advanceFrom(actor string, reference int) {
	s.ActionTo = ""
	for _, id := range s.seatsAfter(actor) {
		if !s.Active[id] || s.Chips[id] <= 0 {
			continue
		}
		last, acted := s.LastAction[id]
		owes := s.highestContributionExcept(id) > s.Pot[id]
		if owes || !acted || last < reference {
			s.ActionTo = id
			return
		}
	}
	s.resolveHand()
}

func (s *GameState) moveToPot(player string, amount int) {
	s.Chips[player] -= amount
	s.Pot[player] += amount
}

func (s *GameState) admitWaiting() {
	for id := range s.Waiting {
		s.Active[id] = true
	}
	s.Waiting = make(map[string]bool)
}

func (s *GameState) chipValue(action events.Action) (int, error) {
	if action.Value == nil {
		return 0, s.invariant(action, "no chip amount")
	}
	if *action.Value < 0 {
		return 0, s.invariant(action, "negative chip amount %d", *action.Value)
	}
	return *action.Value, nil
}

// handChipValue validates chips a seated player moves into the pot.
func (s *GameState) handChipValue(action events.Action) (int, error) {
	if err := s.requireInHand(action); err != nil {
		return 0, err
	}
	amount, err := s.chipValue(action)
	if err != nil {
		return 0, err
	}
	if amount > s.Chips[action.ActorID] {
		return 0, s.invariant(action, "moves %d chips but holds %d", amount, s.Chips[action.ActorID])
	}
	return amount, nil
}

func (s *GameState) requireInHand(action events.Action) error {
	if !s.HandInProgress {
		return s.invariant(action, "no hand in progress")
	}
	if !s.Active[action.ActorID] {
		return s.invariant(action, "player is not seated in this hand")
	}
	return nil
}

func (s *GameState) requireTurn(action events.Action) error {
	if err := s.requireInHand(action); err != nil {
		return err
	}
	if s.ActionTo != action.ActorID {
		return s.invariant(action, "action is to %q", s.ActionTo)
	}
	return nil
}
