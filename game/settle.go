package game

import (
	"maps"

	"github.com/lazharichir/bluff/cards"
)

// resolveHand splits the pot, re-seats waiting players, eliminates busted
// players and either passes the dealer marker on or ends the game.
func (s *GameState) resolveHand() {
	result := &HandResult{
		Hand:   s.Hands,
		Awards: make(map[string]int),
		Cards:  maps.Clone(s.Cards),
	}
	s.settlePot(result)
	s.LastResult = result

	s.ActionTo = ""
	s.HandInProgress = false
	s.admitWaiting()

	for _, id := range s.Seating {
		if s.Active[id] && s.Chips[id] == 0 {
			delete(s.Active, id)
			s.Out[id] = true
		}
	}

	if len(s.Active) <= 1 {
		s.Status = StatusComplete
		s.Dealer = ""
		return
	}
	s.Dealer = s.nextActiveAfter(s.Dealer)
}

// settlePot peels the pot off in layers. Each layer is the gap between the
// largest and second largest contribution; it is contested by the live
// players at the top level and paid once per contributor at that level.
func (s *GameState) settlePot(result *HandResult) {
	for {
		largest, second := s.topContributions()
		if largest == 0 {
			break
		}
		atStake := largest - second

		var level []string
		winner := ""
		var best cards.Card
		for _, id := range s.Seating {
			if s.Pot[id] != largest {
				continue
			}
			level = append(level, id)
			card, holding := s.Cards[id]
			if !s.Active[id] || !holding {
				continue
			}
			if winner == "" || card.BetterThan(best) {
				winner, best = id, card
			}
		}

		for _, id := range level {
			s.Pot[id] -= atStake
			if winner == "" {
				// Nobody live at this level; the layer goes back to its owners
				s.Chips[id] += atStake
			}
		}
		if winner != "" {
			won := atStake * len(level)
			s.Chips[winner] += won
			result.Awards[winner] += won
		}
	}

	for id, amount := range s.Pot {
		if amount == 0 {
			delete(s.Pot, id)
		}
	}
}

// topContributions returns the largest and second largest distinct
// contribution values, 0 when there is none.
func (s *GameState) topContributions() (largest, second int) {
	for _, amount := range s.Pot {
		switch {
		case amount > largest:
			largest, second = amount, largest
		case amount < largest && amount > second:
			second = amount
		}
	}
	return largest, second
}
