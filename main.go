package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/lazharichir/bluff/config"
	"github.com/lazharichir/bluff/events"
	"github.com/lazharichir/bluff/game"
	"github.com/lazharichir/bluff/server"
	"github.com/lazharichir/bluff/storage/postgres"
	"github.com/lazharichir/bluff/storage/sqlite"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Config failed: %v", err)
	}
	logger, err := config.NewLogger(cfg)
	if err != nil {
		log.Fatalf("Logger failed: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to open store", zap.String("store", cfg.Store), zap.Error(err))
	}
	defer closeStore()

	creator := game.NewActionCreator(store, logger.Named("game"), game.WithRules(game.Rules{
		StartingChips: cfg.StartingChips,
		Ante:          cfg.Ante,
	}))

	s := server.NewServer(creator, logger.Named("server"))
	if err := s.Start(ctx, cfg.Addr()); err != nil {
		logger.Fatal("server failed", zap.Error(err))
	}
}

// openStore picks the action log backend named in the config
func openStore(ctx context.Context, cfg config.Config, logger *zap.Logger) (events.EventStore, func(), error) {
	switch cfg.Store {
	case config.StoreSQLite:
		store, err := sqlite.Open(cfg.SQLitePath, logger.Named("sqlite"))
		if err != nil {
			return nil, nil, err
		}
		if cfg.AutoMigrate {
			if err := store.Migrate(ctx); err != nil {
				store.Close()
				return nil, nil, err
			}
		}
		return store, func() { store.Close() }, nil

	case config.StorePostgres:
		store, err := postgres.Open(ctx, cfg.PostgresDSN, logger.Named("postgres"))
		if err != nil {
			return nil, nil, err
		}
		if cfg.AutoMigrate {
			if err := store.Migrate(ctx); err != nil {
				store.Close()
				return nil, nil, err
			}
		}
		return store, store.Close, nil

	default:
		logger.Warn("using the in-memory store, games are lost on restart")
		return events.NewInMemoryEventStore(), func() {}, nil
	}
}
