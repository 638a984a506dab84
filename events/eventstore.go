package events

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrNoGameID is returned when an action or request names no game.
var ErrNoGameID = errors.New("no game id")

// Tx is the serialized unit of work on one game's log. Actions appended
// through it become visible to readers only once the unit commits.
type Tx interface {
	// LoadActions returns the committed log followed by anything appended
	// in this unit, oldest first.
	LoadActions(ctx context.Context) ([]Action, error)
	Append(ctx context.Context, action Action) error
}

// EventStore is the interface for storing and retrieving game actions.
type EventStore interface {
	// LoadActions returns a consistent, chronological prefix of the log.
	LoadActions(ctx context.Context, gameID string) ([]Action, error)
	// Transact runs fn while holding the game's write lock. If fn returns an
	// error nothing it appended is kept.
	Transact(ctx context.Context, gameID string, fn func(tx Tx) error) error
}

type gameLog struct {
	writeMu sync.Mutex
	mu      sync.RWMutex
	actions []Action
}

// InMemoryEventStore is an in-memory implementation of the EventStore interface.
type InMemoryEventStore struct {
	games map[string]*gameLog
	mutex sync.Mutex
	seq   int64
	now   func() time.Time
}

// NewInMemoryEventStore creates a new in-memory event store.
func NewInMemoryEventStore() *InMemoryEventStore {
	return &InMemoryEventStore{
		games: make(map[string]*gameLog),
		now:   time.Now,
	}
}

func (s *InMemoryEventStore) log(gameID string) *gameLog {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	l, exists := s.games[gameID]
	if !exists {
		l = &gameLog{}
		s.games[gameID] = l
	}
	return l
}

func (s *InMemoryEventStore) nextSeq() int64 {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.seq++
	return s.seq
}

// LoadActions retrieves all actions for the given game.
func (s *InMemoryEventStore) LoadActions(ctx context.Context, gameID string) ([]Action, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if gameID == "" {
		return nil, ErrNoGameID
	}

	l := s.log(gameID)
	l.mu.RLock()
	defer l.mu.RUnlock()

	// Make a copy so callers never see later appends
	result := make([]Action, len(l.actions))
	copy(result, l.actions)
	return result, nil
}

// Transact serializes fn against every other Transact on the same game.
func (s *InMemoryEventStore) Transact(ctx context.Context, gameID string, fn func(tx Tx) error) error {
	if gameID == "" {
		return ErrNoGameID
	}

	l := s.log(gameID)
	l.writeMu.Lock()
	defer l.writeMu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	tx := &memoryTx{store: s, gameID: gameID, log: l}
	if err := fn(tx); err != nil {
		return err
	}

	l.mu.Lock()
	l.actions = append(l.actions, tx.pending...)
	l.mu.Unlock()
	return nil
}

// GameIDs returns the ids of all games with at least one action.
func (s *InMemoryEventStore) GameIDs() []string {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	ids := make([]string, 0, len(s.games))
	for id, l := range s.games {
		l.mu.RLock()
		if len(l.actions) > 0 {
			ids = append(ids, id)
		}
		l.mu.RUnlock()
	}
	return ids
}

type memoryTx struct {
	store   *InMemoryEventStore
	gameID  string
	log     *gameLog
	pending []Action
}

func (tx *memoryTx) LoadActions(ctx context.Context) ([]Action, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	tx.log.mu.RLock()
	defer tx.log.mu.RUnlock()

	result := make([]Action, 0, len(tx.log.actions)+len(tx.pending))
	result = append(result, tx.log.actions...)
	result = append(result, tx.pending...)
	return result, nil
}

func (tx *memoryTx) Append(ctx context.Context, action Action) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := Validate(action, tx.gameID); err != nil {
		return err
	}
	action.GameID = tx.gameID
	action.Seq = tx.store.nextSeq()
	action.CreatedAt = tx.store.now().UTC()
	tx.pending = append(tx.pending, action)
	return nil
}

// Validate checks the shape of an action before it is appended to gameID.
func Validate(action Action, gameID string) error {
	if action.GameID != "" && action.GameID != gameID {
		return fmt.Errorf("action for game %q appended to game %q", action.GameID, gameID)
	}
	if action.ActorID == "" {
		return fmt.Errorf("action %s has no actor", action.Kind)
	}
	if !action.Kind.Valid() {
		return fmt.Errorf("%w: %d", ErrUnknownKind, int(action.Kind))
	}
	return nil
}
