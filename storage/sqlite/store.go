// Package sqlite persists game action logs in a SQLite file.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/lazharichir/bluff/events"
	"github.com/lazharichir/bluff/storage/sqlite/migrations"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// Store is a SQLite-backed events.EventStore.
type Store struct {
	sqlDB  *sql.DB
	logger *zap.Logger
	now    func() time.Time

	locksMu sync.Mutex
	locks   map[string]*sync.Mutex
}

var _ events.EventStore = (*Store)(nil)

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens the database file at path, creating it if needed. Call Migrate
// before first use.
func Open(path string, logger *zap.Logger) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_txlock=immediate"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	logger.Info("opened sqlite store", zap.String("path", cleanPath))
	return &Store{
		sqlDB:  sqlDB,
		logger: logger,
		now:    time.Now,
		locks:  make(map[string]*sync.Mutex),
	}, nil
}

// Migrate applies the embedded migrations that have not run yet.
func (s *Store) Migrate(ctx context.Context) error {
	if err := applyMigrations(ctx, s.sqlDB, migrations.FS, s.logger); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// LoadActions returns the committed log of a game, oldest first.
func (s *Store) LoadActions(ctx context.Context, gameID string) ([]events.Action, error) {
	if gameID == "" {
		return nil, events.ErrNoGameID
	}
	return loadActions(ctx, s.sqlDB, gameID)
}

// Transact runs fn inside a database transaction. Writers on the same game
// are also serialized in process so they never contend for the write lock.
func (s *Store) Transact(ctx context.Context, gameID string, fn func(tx events.Tx) error) error {
	if gameID == "" {
		return events.ErrNoGameID
	}

	mu := s.gameLock(gameID)
	mu.Lock()
	defer mu.Unlock()

	sqlTx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer sqlTx.Rollback()

	if err := fn(&tx{store: s, sqlTx: sqlTx, gameID: gameID}); err != nil {
		return err
	}
	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func (s *Store) gameLock(gameID string) *sync.Mutex {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()

	mu, ok := s.locks[gameID]
	if !ok {
		mu = &sync.Mutex{}
		s.locks[gameID] = mu
	}
	return mu
}

type tx struct {
	store  *Store
	sqlTx  *sql.Tx
	gameID string
}

func (t *tx) LoadActions(ctx context.Context) ([]events.Action, error) {
	return loadActions(ctx, t.sqlTx, t.gameID)
}

func (t *tx) Append(ctx context.Context, action events.Action) error {
	if err := events.Validate(action, t.gameID); err != nil {
		return err
	}

	var value sql.NullInt64
	if action.Value != nil {
		value = sql.NullInt64{Int64: int64(*action.Value), Valid: true}
	}
	_, err := t.sqlTx.ExecContext(ctx,
		`INSERT INTO game_actions (game_id, actor_id, kind, value, created_at) VALUES (?, ?, ?, ?, ?)`,
		t.gameID,
		action.ActorID,
		action.Kind.String(),
		value,
		toMillis(t.store.now()),
	)
	if err != nil {
		return fmt.Errorf("append action: %w", err)
	}
	return nil
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func loadActions(ctx context.Context, q querier, gameID string) ([]events.Action, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT seq, game_id, actor_id, kind, value, created_at
		   FROM game_actions
		  WHERE game_id = ?
		  ORDER BY seq`,
		gameID,
	)
	if err != nil {
		return nil, fmt.Errorf("query actions: %w", err)
	}
	defer rows.Close()

	var actions []events.Action
	for rows.Next() {
		var (
			action    events.Action
			kind      string
			value     sql.NullInt64
			createdAt int64
		)
		if err := rows.Scan(&action.Seq, &action.GameID, &action.ActorID, &kind, &value, &createdAt); err != nil {
			return nil, fmt.Errorf("scan action: %w", err)
		}
		if action.Kind, err = events.ParseKind(kind); err != nil {
			return nil, fmt.Errorf("action %d: %w", action.Seq, err)
		}
		if value.Valid {
			action.Value = events.Int(int(value.Int64))
		}
		action.CreatedAt = fromMillis(createdAt)
		actions = append(actions, action)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate actions: %w", err)
	}
	return actions, nil
}
