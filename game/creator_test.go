package game

import (
	"context"
	"math/rand/v2"
	"sync"
	"testing"

	"github.com/lazharichir/bluff/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

const testGame = "game-1"

func newTestCreator(t *testing.T, seed uint64) (*ActionCreator, *events.InMemoryEventStore) {
	t.Helper()
	store := events.NewInMemoryEventStore()
	creator := NewActionCreator(store, zaptest.NewLogger(t), WithRand(rand.New(rand.NewPCG(seed, seed+1))))
	return creator, store
}

// startedGame buys in every player and deals the first hand.
func startedGame(t *testing.T, seed uint64, players ...string) *ActionCreator {
	t.Helper()
	ctx := context.Background()
	creator, _ := newTestCreator(t, seed)
	for _, p := range players {
		require.NoError(t, creator.BuyIn(ctx, testGame, p))
	}
	require.NoError(t, creator.Start(ctx, testGame, players[0]))
	return creator
}

func currentState(t *testing.T, creator *ActionCreator) *GameState {
	t.Helper()
	state, err := creator.State(context.Background(), testGame)
	require.NoError(t, err)
	requireConserved(t, state)
	return state
}

func logLength(t *testing.T, creator *ActionCreator) int {
	t.Helper()
	actions, err := creator.Actions(context.Background(), testGame)
	require.NoError(t, err)
	return len(actions)
}

func opponent(state *GameState, playerID string) string {
	for _, id := range state.ActivePlayers() {
		if id != playerID {
			return id
		}
	}
	return ""
}

func TestBuyIn(t *testing.T) {
	ctx := context.Background()
	creator, _ := newTestCreator(t, 1)

	require.NoError(t, creator.BuyIn(ctx, testGame, "alice"))
	err := creator.BuyIn(ctx, testGame, "alice")
	assert.ErrorIs(t, err, ErrRejected)

	actions, err := creator.Actions(ctx, testGame)
	require.NoError(t, err)
	require.Len(t, actions, 1)
	assert.Equal(t, events.BuyIn, actions[0].Kind)
	assert.Equal(t, "alice", actions[0].ActorID)
	assert.Equal(t, DefaultStartingChips, actions[0].Amount())
}

func TestBuyInRequiresAHuman(t *testing.T) {
	creator, _ := newTestCreator(t, 1)

	err := creator.BuyIn(context.Background(), testGame, "")
	assert.ErrorIs(t, err, ErrRejected)
	assert.Zero(t, logLength(t, creator))
}

func TestBuyInTableFull(t *testing.T) {
	ctx := context.Background()
	creator, _ := newTestCreator(t, 1)

	for i := range MaxPlayers {
		require.NoError(t, creator.BuyIn(ctx, testGame, string(rune('A'+i))))
	}
	err := creator.BuyIn(ctx, testGame, "latecomer")

	var rejected *RejectedError
	require.ErrorAs(t, err, &rejected)
	assert.Equal(t, "table is full", rejected.Reason)
	assert.Equal(t, MaxPlayers, logLength(t, creator))
}

func TestConcurrentBuyInsAppendOnce(t *testing.T) {
	ctx := context.Background()
	creator, _ := newTestCreator(t, 1)

	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- creator.BuyIn(ctx, testGame, "alice")
		}()
	}
	wg.Wait()
	close(errs)

	accepted := 0
	for err := range errs {
		if err == nil {
			accepted++
			continue
		}
		assert.ErrorIs(t, err, ErrRejected)
	}
	assert.Equal(t, 1, accepted)
	assert.Equal(t, 1, logLength(t, creator))
}

func TestStart(t *testing.T) {
	creator := startedGame(t, 7, "alice", "bob")
	state := currentState(t, creator)

	assert.Equal(t, StatusPlaying, state.Status)
	assert.Equal(t, 1, state.Hands)
	assert.True(t, state.HandInProgress)
	assert.Contains(t, []string{"alice", "bob"}, state.Dealer)
	assert.Equal(t, opponent(state, state.Dealer), state.ActionTo)
	assert.Equal(t, 10, state.PotTotal())
	assert.Equal(t, 95, state.ChipCount("alice"))
	assert.Equal(t, 95, state.ChipCount("bob"))
	assert.Len(t, state.Cards, 2)
	assert.False(t, state.Cards["alice"].Equals(state.Cards["bob"]))

	// buy_in x2, become_dealer, ante x2, draw x2
	assert.Equal(t, 7, logLength(t, creator))
}

func TestStartRejections(t *testing.T) {
	ctx := context.Background()

	t.Run("not enough players", func(t *testing.T) {
		creator, _ := newTestCreator(t, 1)
		require.NoError(t, creator.BuyIn(ctx, testGame, "alice"))

		assert.ErrorIs(t, creator.Start(ctx, testGame, "alice"), ErrRejected)
		assert.Equal(t, 1, logLength(t, creator))
	})

	t.Run("viewer", func(t *testing.T) {
		creator, _ := newTestCreator(t, 1)
		require.NoError(t, creator.BuyIn(ctx, testGame, "alice"))
		require.NoError(t, creator.BuyIn(ctx, testGame, "bob"))

		assert.ErrorIs(t, creator.Start(ctx, testGame, "carol"), ErrRejected)
		assert.Equal(t, 2, logLength(t, creator))
	})

	t.Run("already started", func(t *testing.T) {
		creator := startedGame(t, 1, "alice", "bob")
		before := logLength(t, creator)

		assert.ErrorIs(t, creator.Start(ctx, testGame, "bob"), ErrRejected)
		assert.Equal(t, before, logLength(t, creator))
	})
}

func TestIllegalBetsAreRejected(t *testing.T) {
	ctx := context.Background()
	creator := startedGame(t, 3, "alice", "bob")
	state := currentState(t, creator)
	first := state.ActionTo
	second := opponent(state, first)
	before := logLength(t, creator)

	tests := []struct {
		name   string
		player string
		amount int
	}{
		{"out of turn", second, 10},
		{"below the ante", first, 4},
		{"zero", first, 0},
		{"negative", first, -10},
		{"more than held", first, 96},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := creator.Bet(ctx, testGame, tt.player, tt.amount)
			assert.ErrorIs(t, err, ErrRejected)
			assert.Equal(t, before, logLength(t, creator), "log must not grow")
		})
	}

	t.Run("check out of turn", func(t *testing.T) {
		assert.ErrorIs(t, creator.Check(ctx, testGame, second), ErrRejected)
	})
	t.Run("fold out of turn", func(t *testing.T) {
		assert.ErrorIs(t, creator.Fold(ctx, testGame, second), ErrRejected)
	})
	t.Run("viewer bets", func(t *testing.T) {
		assert.ErrorIs(t, creator.Bet(ctx, testGame, "carol", 10), ErrRejected)
	})
	assert.Equal(t, before, logLength(t, creator))
}

func TestCheckMustMatch(t *testing.T) {
	ctx := context.Background()
	creator := startedGame(t, 3, "alice", "bob")
	state := currentState(t, creator)
	first := state.ActionTo
	second := opponent(state, first)

	require.NoError(t, creator.Bet(ctx, testGame, first, 10))
	before := logLength(t, creator)

	err := creator.Check(ctx, testGame, second)
	var rejected *RejectedError
	require.ErrorAs(t, err, &rejected)
	assert.Equal(t, "check", rejected.Command)
	assert.Equal(t, "must match 10 chips", rejected.Reason)
	assert.Equal(t, before, logLength(t, creator))

	assert.ErrorIs(t, creator.Bet(ctx, testGame, second, 9), ErrRejected, "below the call")
}

func TestTwoPlayerHandDealsTheNextOne(t *testing.T) {
	ctx := context.Background()
	creator := startedGame(t, 11, "alice", "bob")
	state := currentState(t, creator)
	first := state.ActionTo
	second := opponent(state, first)
	firstCard, secondCard := state.Cards[first], state.Cards[second]

	require.NoError(t, creator.Bet(ctx, testGame, first, 10))
	require.NoError(t, creator.Bet(ctx, testGame, second, 10))

	winner, loser := first, second
	if secondCard.BetterThan(firstCard) {
		winner, loser = second, first
	}

	state = currentState(t, creator)
	require.NotNil(t, state.LastResult)
	assert.Equal(t, 1, state.LastResult.Hand)
	assert.Equal(t, map[string]int{winner: 30}, state.LastResult.Awards)

	// the next hand is already dealt and anted
	assert.Equal(t, 2, state.Hands)
	assert.True(t, state.HandInProgress)
	assert.Equal(t, 10, state.PotTotal())
	assert.Equal(t, 115-5, state.ChipCount(winner))
	assert.Equal(t, 85-5, state.ChipCount(loser))
	assert.Equal(t, opponent(state, state.Dealer), state.ActionTo)
}

func TestFoldRecordsTheCard(t *testing.T) {
	ctx := context.Background()
	creator := startedGame(t, 5, "alice", "bob", "carol")
	state := currentState(t, creator)
	folder := state.ActionTo
	card := state.Cards[folder]

	require.NoError(t, creator.Fold(ctx, testGame, folder))

	actions, err := creator.Actions(ctx, testGame)
	require.NoError(t, err)
	last := actions[len(actions)-1]
	assert.Equal(t, events.Fold, last.Kind)
	assert.Equal(t, folder, last.ActorID)
	require.NotNil(t, last.Value)
	assert.Equal(t, card.Index(), *last.Value)

	state = currentState(t, creator)
	assert.Len(t, state.ActivePlayers(), 2)
	assert.True(t, state.Waiting[folder])
	assert.NotEqual(t, folder, state.ActionTo)
}

func TestPropose(t *testing.T) {
	ctx := context.Background()
	creator, _ := newTestCreator(t, 9)

	require.NoError(t, creator.Propose(ctx, BuyInCommand{GameID: testGame, HumanID: "alice"}))
	require.NoError(t, creator.Propose(ctx, BuyInCommand{GameID: testGame, HumanID: "bob"}))
	require.NoError(t, creator.Propose(ctx, StartCommand{GameID: testGame, HumanID: "bob"}))

	state := currentState(t, creator)
	require.NoError(t, creator.Propose(ctx, CheckCommand{GameID: testGame, HumanID: state.ActionTo}))

	state = currentState(t, creator)
	require.NoError(t, creator.Propose(ctx, BetCommand{GameID: testGame, HumanID: state.ActionTo, Amount: 20}))

	state = currentState(t, creator)
	require.NoError(t, creator.Propose(ctx, FoldCommand{GameID: testGame, HumanID: state.ActionTo}))

	state = currentState(t, creator)
	assert.Equal(t, 2, state.Hands)

	assert.Error(t, creator.Propose(ctx, nil))
}

func TestCommandsAreLogged(t *testing.T) {
	ctx := context.Background()
	core, logs := observer.New(zap.DebugLevel)
	creator := NewActionCreator(events.NewInMemoryEventStore(), zap.New(core))

	require.NoError(t, creator.BuyIn(ctx, testGame, "alice"))
	require.Error(t, creator.BuyIn(ctx, testGame, "alice"))

	accepted := logs.FilterMessage("command accepted").All()
	require.Len(t, accepted, 1)
	assert.Equal(t, "alice", accepted[0].ContextMap()["actor_id"])
	assert.Equal(t, int64(1), accepted[0].ContextMap()["appended"])
	assert.Equal(t, 1, logs.FilterMessage("command rejected").Len())
}

func TestNewActionCreatorDefaults(t *testing.T) {
	creator := NewActionCreator(events.NewInMemoryEventStore(), nil)
	assert.Equal(t, DefaultRules(), creator.Rules())

	creator = NewActionCreator(events.NewInMemoryEventStore(), nil, WithRules(Rules{StartingChips: 500, Ante: 25}))
	require.NoError(t, creator.BuyIn(context.Background(), testGame, "alice"))
	state := currentState(t, creator)
	assert.Equal(t, 500, state.ChipCount("alice"))
}

// TestRandomPlaythrough drives a seeded game with random legal moves and
// checks the log after every accepted command.
func TestRandomPlaythrough(t *testing.T) {
	ctx := context.Background()
	players := []string{"alice", "bob", "carol", "dave"}
	creator := startedGame(t, 42, players...)
	r := rand.New(rand.NewPCG(42, 42))

	for step := 0; step < 2000; step++ {
		state := currentState(t, creator)
		if state.Status == StatusComplete {
			winner, ok := state.Winner()
			require.True(t, ok)
			assert.Equal(t, state.BoughtIn, state.ChipCount(winner))
			return
		}
		actor := state.ActionTo
		require.NotEmpty(t, actor, "a dealt hand always has someone to act")

		before := logLength(t, creator)
		switch move := r.IntN(10); {
		case state.ChipCount(actor) == 0:
			require.NoError(t, creator.Check(ctx, testGame, actor))
		case move == 0:
			require.NoError(t, creator.Fold(ctx, testGame, actor))
		case move < 5 && state.CanCheck(actor):
			require.NoError(t, creator.Check(ctx, testGame, actor))
		case move == 9:
			require.NoError(t, creator.Bet(ctx, testGame, actor, state.MaximumBet(actor)))
		default:
			minBet, maxBet := state.MinimumBet(actor, DefaultAnte), state.MaximumBet(actor)
			require.NoError(t, creator.Bet(ctx, testGame, actor, minBet+r.IntN(maxBet-minBet+1)))
		}

		actions, err := creator.Actions(ctx, testGame)
		require.NoError(t, err)
		require.Greater(t, len(actions), before)

		// the turn never stays with or returns straight to the player who moved
		afterMove := MustProject(actions[:before+1])
		assert.NotEqual(t, actor, afterMove.ActionTo)
		if afterMove.ActionTo != "" {
			assert.Positive(t, afterMove.ChipCount(afterMove.ActionTo))
		}
	}
	t.Logf("game still running after 2000 moves")
}
