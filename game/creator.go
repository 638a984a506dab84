package game

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"

	"github.com/lazharichir/bluff/cards"
	"github.com/lazharichir/bluff/events"
	"go.uber.org/zap"
)

// ActionCreator validates what humans propose against the projected state
// and appends the resulting actions. Every proposal for one game runs inside
// that game's serialized unit of work, so check-then-append cannot race.
type ActionCreator struct {
	store  events.EventStore
	rules  Rules
	logger *zap.Logger

	rngMu sync.Mutex
	rng   *rand.Rand
}

// Option configures an ActionCreator
type Option func(*ActionCreator)

// WithRules overrides the default stakes
func WithRules(rules Rules) Option {
	return func(c *ActionCreator) { c.rules = rules }
}

// WithRand makes dealer choice and shuffling reproducible.
func WithRand(r *rand.Rand) Option {
	return func(c *ActionCreator) { c.rng = r }
}

// NewActionCreator creates an action creator on top of the given event store
func NewActionCreator(store events.EventStore, logger *zap.Logger, opts ...Option) *ActionCreator {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &ActionCreator{
		store:  store,
		rules:  DefaultRules(),
		logger: logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Rules returns the stakes this creator deals with
func (c *ActionCreator) Rules() Rules {
	return c.rules
}

// State projects the current state of a game. Reads take no lock.
func (c *ActionCreator) State(ctx context.Context, gameID string) (*GameState, error) {
	actions, err := c.store.LoadActions(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to load actions: %w", err)
	}
	return Project(actions)
}

// Actions returns the game's log, oldest first.
func (c *ActionCreator) Actions(ctx context.Context, gameID string) ([]events.Action, error) {
	return c.store.LoadActions(ctx, gameID)
}

// Propose routes a command to its handler
func (c *ActionCreator) Propose(ctx context.Context, cmd Command) error {
	switch cmd := cmd.(type) {
	case BuyInCommand:
		return c.BuyIn(ctx, cmd.GameID, cmd.HumanID)
	case StartCommand:
		return c.Start(ctx, cmd.GameID, cmd.HumanID)
	case BetCommand:
		return c.Bet(ctx, cmd.GameID, cmd.HumanID, cmd.Amount)
	case CheckCommand:
		return c.Check(ctx, cmd.GameID, cmd.HumanID)
	case FoldCommand:
		return c.Fold(ctx, cmd.GameID, cmd.HumanID)
	default:
		return fmt.Errorf("unknown command %T", cmd)
	}
}

// BuyIn records a player joining the game with the starting stack. There's
// no actual money involved, this is just for fun.
func (c *ActionCreator) BuyIn(ctx context.Context, gameID, humanID string) error {
	return c.transact(ctx, gameID, humanID, "buy-in", func(w *writer, state *GameState) error {
		if state.IsMember(humanID) {
			return reject("buy-in", "already bought in")
		}
		if len(state.Members()) >= MaxPlayers {
			return reject("buy-in", "table is full")
		}
		return w.append(humanID, events.BuyIn, events.Int(c.rules.StartingChips))
	})
}

// Start picks a random dealer and deals the first hand.
func (c *ActionCreator) Start(ctx context.Context, gameID, humanID string) error {
	return c.transact(ctx, gameID, humanID, "start", func(w *writer, state *GameState) error {
		members := state.Members()
		switch {
		case state.Status != StatusPending || state.Hands > 0:
			return reject("start", "game already started")
		case state.Role(humanID) != RolePlayer:
			return reject("start", "only players can start the game")
		case len(members) < MinPlayers:
			return reject("start", "need at least %d players", MinPlayers)
		}

		dealer := members[c.intN(len(members))]
		return c.dealHand(w, dealer)
	})
}

// Bet moves chips into the pot on the human's turn.
func (c *ActionCreator) Bet(ctx context.Context, gameID, humanID string, amount int) error {
	return c.transact(ctx, gameID, humanID, "bet", func(w *writer, state *GameState) error {
		if state.ActionTo != humanID {
			return reject("bet", "not your turn")
		}
		if amount <= 0 {
			return reject("bet", "bet must be positive")
		}
		if amount > state.ChipCount(humanID) {
			return reject("bet", "only %d chips left", state.ChipCount(humanID))
		}
		minBet, maxBet := state.MinimumBet(humanID, c.rules.Ante), state.MaximumBet(humanID)
		if amount < minBet || amount > maxBet {
			return reject("bet", "bet must be between %d and %d", minBet, maxBet)
		}
		return c.appendTurn(w, humanID, events.Bet, events.Int(amount))
	})
}

// Check passes the turn when nothing is owed, or when the human is all in.
func (c *ActionCreator) Check(ctx context.Context, gameID, humanID string) error {
	return c.transact(ctx, gameID, humanID, "check", func(w *writer, state *GameState) error {
		if state.ActionTo != humanID {
			return reject("check", "not your turn")
		}
		if !state.CanCheck(humanID) {
			return reject("check", "must match %d chips", state.HighestContribution()-state.Contribution(humanID))
		}
		return c.appendTurn(w, humanID, events.Check, nil)
	})
}

// Fold is allowed whenever it is the human's turn, even with nothing to call.
// The folded card is recorded so the log can narrate it.
func (c *ActionCreator) Fold(ctx context.Context, gameID, humanID string) error {
	return c.transact(ctx, gameID, humanID, "fold", func(w *writer, state *GameState) error {
		if state.ActionTo != humanID {
			return reject("fold", "not your turn")
		}
		var card *int
		if held, ok := state.Cards[humanID]; ok {
			card = events.Int(held.Index())
		}
		return c.appendTurn(w, humanID, events.Fold, card)
	})
}

// appendTurn appends a bet, check or fold and deals the next hand when that
// move finished the current one.
func (c *ActionCreator) appendTurn(w *writer, humanID string, kind events.Kind, value *int) error {
	if err := w.append(humanID, kind, value); err != nil {
		return err
	}
	state, err := w.project()
	if err != nil {
		return err
	}
	if !state.NeedsDeal() {
		return nil
	}
	return c.dealHand(w, state.Dealer)
}

// dealHand appends a whole hand start: the dealer marker, one ante per
// seated player and one card each from a fresh deck.
func (c *ActionCreator) dealHand(w *writer, dealerID string) error {
	if err := w.append(dealerID, events.BecomeDealer, nil); err != nil {
		return err
	}

	state, err := w.project()
	if err != nil {
		return err
	}
	for _, player := range state.DealingOrder() {
		if err := w.append(player, events.Ante, events.Int(c.rules.AnteFor(state, player))); err != nil {
			return err
		}
	}

	state, err = w.project()
	if err != nil {
		return err
	}
	deck := c.shuffledDeck()
	for _, player := range state.DealingOrder() {
		card, err := deck.Draw()
		if err != nil {
			return fmt.Errorf("deal to %s: %w", player, err)
		}
		if err := w.append(player, events.Draw, events.Int(card.Index())); err != nil {
			return err
		}
	}
	return nil
}

func (c *ActionCreator) intN(n int) int {
	if c.rng == nil {
		return rand.IntN(n)
	}
	c.rngMu.Lock()
	defer c.rngMu.Unlock()
	return c.rng.IntN(n)
}

func (c *ActionCreator) shuffledDeck() *cards.Deck {
	if c.rng == nil {
		return cards.NewDeck().Shuffle()
	}
	c.rngMu.Lock()
	defer c.rngMu.Unlock()
	return cards.NewDeck().ShuffleWith(c.rng)
}

// writer appends to one game's log inside a unit of work
type writer struct {
	ctx      context.Context
	tx       events.Tx
	gameID   string
	appended []events.Action
}

func (w *writer) append(actorID string, kind events.Kind, value *int) error {
	action := events.NewAction(w.gameID, actorID, kind, value)
	if err := w.tx.Append(w.ctx, action); err != nil {
		return fmt.Errorf("failed to append %s action: %w", kind, err)
	}
	w.appended = append(w.appended, action)
	return nil
}

func (w *writer) project() (*GameState, error) {
	actions, err := w.tx.LoadActions(w.ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load actions: %w", err)
	}
	return Project(actions)
}

// transact projects the game inside its unit of work and hands the state to
// fn. A rejection from fn rolls the unit back.
func (c *ActionCreator) transact(ctx context.Context, gameID, humanID, command string, fn func(w *writer, state *GameState) error) error {
	logger := c.logger.With(
		zap.String("game_id", gameID),
		zap.String("actor_id", humanID),
		zap.String("command", command),
	)
	if humanID == "" {
		return reject(command, "unknown human")
	}

	var appended int
	err := c.store.Transact(ctx, gameID, func(tx events.Tx) error {
		w := &writer{ctx: ctx, tx: tx, gameID: gameID}
		state, err := w.project()
		if err != nil {
			return err
		}
		if err := fn(w, state); err != nil {
			return err
		}
		appended = len(w.appended)
		return nil
	})

	switch {
	case err == nil:
		logger.Info("command accepted", zap.Int("appended", appended))
	case errors.Is(err, ErrRejected):
		logger.Debug("command rejected", zap.Error(err))
	default:
		logger.Error("command failed", zap.Error(err))
	}
	return err
}
