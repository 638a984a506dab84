package events

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryEventStore(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryEventStore()

	gameID := uuid.NewString()
	playerID := uuid.NewString()

	t.Run("Append and load actions", func(t *testing.T) {
		err := store.Transact(ctx, gameID, func(tx Tx) error {
			if err := tx.Append(ctx, NewAction(gameID, playerID, BuyIn, Int(100))); err != nil {
				return err
			}
			if err := tx.Append(ctx, NewAction(gameID, playerID, BecomeDealer, nil)); err != nil {
				return err
			}
			return tx.Append(ctx, NewAction(gameID, playerID, Ante, Int(5)))
		})
		require.NoError(t, err)

		actions, err := store.LoadActions(ctx, gameID)
		require.NoError(t, err)
		require.Len(t, actions, 3)

		assert.Equal(t, "buy_in", actions[0].EventName())
		assert.Equal(t, "become_dealer", actions[1].EventName())
		assert.Equal(t, "ante", actions[2].EventName())
		assert.Equal(t, 100, actions[0].Amount())
		assert.Equal(t, 0, actions[1].Amount())
		assert.Less(t, actions[0].Seq, actions[1].Seq)
		assert.Less(t, actions[1].Seq, actions[2].Seq)
		assert.False(t, actions[2].CreatedAt.IsZero())
		assert.Equal(t, []string{gameID}, store.GameIDs())
	})

	t.Run("Load actions for non-existent game", func(t *testing.T) {
		actions, err := store.LoadActions(ctx, "non-existent-game")
		require.NoError(t, err)
		assert.Empty(t, actions)
	})

	t.Run("Failed unit of work appends nothing", func(t *testing.T) {
		before, err := store.LoadActions(ctx, gameID)
		require.NoError(t, err)

		boom := errors.New("boom")
		err = store.Transact(ctx, gameID, func(tx Tx) error {
			require.NoError(t, tx.Append(ctx, NewAction(gameID, playerID, Check, nil)))
			pending, err := tx.LoadActions(ctx)
			require.NoError(t, err)
			assert.Len(t, pending, len(before)+1)
			return boom
		})
		assert.ErrorIs(t, err, boom)

		after, err := store.LoadActions(ctx, gameID)
		require.NoError(t, err)
		assert.Equal(t, before, after)
	})

	t.Run("Rejects malformed actions", func(t *testing.T) {
		err := store.Transact(ctx, gameID, func(tx Tx) error {
			return tx.Append(ctx, NewAction(gameID, "", Check, nil))
		})
		assert.Error(t, err)

		err = store.Transact(ctx, gameID, func(tx Tx) error {
			return tx.Append(ctx, NewAction("other-game", playerID, Check, nil))
		})
		assert.Error(t, err)

		err = store.Transact(ctx, gameID, func(tx Tx) error {
			return tx.Append(ctx, NewAction(gameID, playerID, Kind(99), nil))
		})
		assert.ErrorIs(t, err, ErrUnknownKind)

		assert.ErrorIs(t, store.Transact(ctx, "", func(tx Tx) error { return nil }), ErrNoGameID)
	})
}

func TestInMemoryEventStoreSerializesWriters(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryEventStore()
	gameID := uuid.NewString()

	// Every writer appends only if the log is still empty; exactly one wins.
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = store.Transact(ctx, gameID, func(tx Tx) error {
				actions, err := tx.LoadActions(ctx)
				if err != nil {
					return err
				}
				if len(actions) > 0 {
					return nil
				}
				return tx.Append(ctx, NewAction(gameID, uuid.NewString(), BuyIn, Int(100)))
			})
		}()
	}
	wg.Wait()

	actions, err := store.LoadActions(ctx, gameID)
	require.NoError(t, err)
	assert.Len(t, actions, 1)
}

func TestKindNames(t *testing.T) {
	for _, kind := range Kinds {
		parsed, err := ParseKind(kind.String())
		require.NoError(t, err)
		assert.Equal(t, kind, parsed)
	}

	_, err := ParseKind("resign")
	assert.ErrorIs(t, err, ErrUnknownKind)
}
