package game

import (
	"testing"
	"time"

	"github.com/lazharichir/bluff/cards"
	"github.com/lazharichir/bluff/events"
	"github.com/stretchr/testify/require"
)

// actionLog builds hand-written logs for projector tests
type actionLog struct {
	gameID  string
	actions []events.Action
	start   time.Time
}

func newActionLog() *actionLog {
	return &actionLog{gameID: "game-1", start: time.Date(2020, 4, 24, 21, 34, 58, 0, time.UTC)}
}

func (l *actionLog) add(actor string, kind events.Kind, value *int) *actionLog {
	seq := int64(len(l.actions) + 1)
	l.actions = append(l.actions, events.Action{
		Seq:       seq,
		GameID:    l.gameID,
		ActorID:   actor,
		Kind:      kind,
		Value:     value,
		CreatedAt: l.start.Add(time.Duration(seq) * time.Second),
	})
	return l
}

func (l *actionLog) buyIn(actor string, chips int) *actionLog {
	return l.add(actor, events.BuyIn, events.Int(chips))
}

func (l *actionLog) dealer(actor string) *actionLog {
	return l.add(actor, events.BecomeDealer, nil)
}

func (l *actionLog) ante(actor string, chips int) *actionLog {
	return l.add(actor, events.Ante, events.Int(chips))
}

func (l *actionLog) draw(actor, card string) *actionLog {
	return l.add(actor, events.Draw, events.Int(cards.MustParseCard(card).Index()))
}

func (l *actionLog) bet(actor string, chips int) *actionLog {
	return l.add(actor, events.Bet, events.Int(chips))
}

func (l *actionLog) check(actor string) *actionLog {
	return l.add(actor, events.Check, nil)
}

func (l *actionLog) fold(actor, card string) *actionLog {
	return l.add(actor, events.Fold, events.Int(cards.MustParseCard(card).Index()))
}

func (l *actionLog) project(t *testing.T) *GameState {
	t.Helper()
	state, err := Project(l.actions)
	require.NoError(t, err)
	requireConserved(t, state)
	return state
}

func requireConserved(t *testing.T, state *GameState) {
	t.Helper()
	require.Equal(t, state.BoughtIn, state.TotalChips(), "chips were created or destroyed")
}
