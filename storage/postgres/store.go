// Package postgres persists game action logs in PostgreSQL.
package postgres

import (
	"context"
	"embed"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lazharichir/bluff/events"
	"go.uber.org/zap"
)

//go:embed schema.sql
var schema embed.FS

// Store is a PostgreSQL-backed events.EventStore. Writers on one game are
// serialized with a transaction-scoped advisory lock, so several server
// processes can share the database.
type Store struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

var _ events.EventStore = (*Store)(nil)

// Open connects to the database at dsn.
func Open(ctx context.Context, dsn string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	logger.Info("opened postgres store")
	return &Store{pool: pool, logger: logger}, nil
}

func (s *Store) Close() { s.pool.Close() }

// Migrate creates the action table if it does not exist.
func (s *Store) Migrate(ctx context.Context) error {
	sqlBytes, err := schema.ReadFile("schema.sql")
	if err != nil {
		return err
	}
	if _, err := s.pool.Exec(ctx, string(sqlBytes)); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	s.logger.Info("applied postgres schema")
	return nil
}

// LoadActions returns the committed log of a game, oldest first.
func (s *Store) LoadActions(ctx context.Context, gameID string) ([]events.Action, error) {
	if gameID == "" {
		return nil, events.ErrNoGameID
	}
	return loadActions(ctx, s.pool, gameID)
}

// Transact runs fn in a transaction holding the game's advisory lock.
func (s *Store) Transact(ctx context.Context, gameID string, fn func(tx events.Tx) error) error {
	if gameID == "" {
		return events.ErrNoGameID
	}

	pgTx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer pgTx.Rollback(ctx)

	if _, err := pgTx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, gameID); err != nil {
		return fmt.Errorf("lock game %s: %w", gameID, err)
	}
	if err := fn(&tx{pgTx: pgTx, gameID: gameID}); err != nil {
		return err
	}
	if err := pgTx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

type tx struct {
	pgTx   pgx.Tx
	gameID string
}

func (t *tx) LoadActions(ctx context.Context) ([]events.Action, error) {
	return loadActions(ctx, t.pgTx, t.gameID)
}

func (t *tx) Append(ctx context.Context, action events.Action) error {
	if err := events.Validate(action, t.gameID); err != nil {
		return err
	}
	_, err := t.pgTx.Exec(ctx, `
		INSERT INTO game_actions (game_id, actor_id, kind, value)
		VALUES ($1, $2, $3, $4)
	`, t.gameID, action.ActorID, action.Kind.String(), action.Value)
	if err != nil {
		return fmt.Errorf("append action: %w", err)
	}
	return nil
}

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func loadActions(ctx context.Context, q querier, gameID string) ([]events.Action, error) {
	rows, err := q.Query(ctx, `
		SELECT seq, game_id, actor_id, kind, value, created_at
		  FROM game_actions
		 WHERE game_id = $1
		 ORDER BY seq
	`, gameID)
	if err != nil {
		return nil, fmt.Errorf("query actions: %w", err)
	}
	defer rows.Close()

	var actions []events.Action
	for rows.Next() {
		var (
			action    events.Action
			kind      string
			value     *int32
			createdAt time.Time
		)
		if err := rows.Scan(&action.Seq, &action.GameID, &action.ActorID, &kind, &value, &createdAt); err != nil {
			return nil, fmt.Errorf("scan action: %w", err)
		}
		if action.Kind, err = events.ParseKind(kind); err != nil {
			return nil, fmt.Errorf("action %d: %w", action.Seq, err)
		}
		if value != nil {
			action.Value = events.Int(int(*value))
		}
		action.CreatedAt = createdAt.UTC()
		actions = append(actions, action)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate actions: %w", err)
	}
	return actions, nil
}
