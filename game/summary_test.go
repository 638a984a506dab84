package game

import (
	"testing"

	"github.com/lazharichir/bluff/cards"
	"github.com/lazharichir/bluff/events"
	"github.com/stretchr/testify/assert"
)

func TestSummarize(t *testing.T) {
	names := NamerFunc(func(id string) string {
		return map[string]string{"p1": "Gordon", "p2": "Donna"}[id]
	})
	fourOfSpades := events.Int(cards.MustParseCard("4s").Index())

	tests := []struct {
		name   string
		action events.Action
		viewer string
		want   string
	}{
		{"buy in", events.NewAction(testGame, "p1", events.BuyIn, events.Int(100)), "p2", "Gordon joined with 100 chips"},
		{"own buy in", events.NewAction(testGame, "p1", events.BuyIn, events.Int(1)), "p1", "You joined with 1 chip"},
		{"dealer", events.NewAction(testGame, "p2", events.BecomeDealer, nil), "p1", "Donna is the dealer"},
		{"own dealer", events.NewAction(testGame, "p2", events.BecomeDealer, nil), "p2", "You are the dealer"},
		{"ante", events.NewAction(testGame, "p1", events.Ante, events.Int(5)), "p2", "Gordon anted 5 chips"},
		{"draw", events.NewAction(testGame, "p1", events.Draw, fourOfSpades), "p2", "Gordon drew the Four of Spades"},
		{"own draw", events.NewAction(testGame, "p1", events.Draw, fourOfSpades), "p1", "You drew a card"},
		{"bet", events.NewAction(testGame, "p2", events.Bet, events.Int(20)), "p1", "Donna bet 20 chips"},
		{"check", events.NewAction(testGame, "p2", events.Check, nil), "p2", "You checked"},
		{"fold", events.NewAction(testGame, "p1", events.Fold, fourOfSpades), "p2", "Gordon folded the Four of Spades"},
		{"fold without card", events.NewAction(testGame, "p1", events.Fold, nil), "p2", "Gordon folded"},
		{"no nickname", events.NewAction(testGame, "p3", events.Check, nil), "p1", "p3 checked"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Summarize(tt.action, tt.viewer, names))
		})
	}
}

func TestSummarizeWithoutNamer(t *testing.T) {
	action := events.NewAction(testGame, "p1", events.Bet, events.Int(1))
	assert.Equal(t, "p1 bet 1 chip", Summarize(action, "", nil))
}
