// Package config loads server settings from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Store backends
const (
	StoreMemory   = "memory"
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
)

// Config holds everything the server needs to boot.
type Config struct {
	Port          int    `env:"BLUFF_PORT" envDefault:"7777"`
	Store         string `env:"BLUFF_STORE" envDefault:"memory"`
	SQLitePath    string `env:"BLUFF_SQLITE_PATH" envDefault:"bluff.db"`
	PostgresDSN   string `env:"BLUFF_POSTGRES_DSN"`
	AutoMigrate   bool   `env:"BLUFF_AUTO_MIGRATE" envDefault:"true"`
	StartingChips int    `env:"BLUFF_STARTING_CHIPS" envDefault:"100"`
	Ante          int    `env:"BLUFF_ANTE" envDefault:"5"`
	LogLevel      string `env:"BLUFF_LOG_LEVEL" envDefault:"info"`
	Dev           bool   `env:"BLUFF_DEV" envDefault:"false"`
}

// Load reads an optional .env file, then the environment. Variables already
// set in the environment win over the file.
func Load(files ...string) (Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load dotenv: %w", err)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.Store = strings.ToLower(strings.TrimSpace(cfg.Store))
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that the settings can work together.
func (c Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	switch c.Store {
	case StoreMemory:
	case StoreSQLite:
		if strings.TrimSpace(c.SQLitePath) == "" {
			return fmt.Errorf("BLUFF_SQLITE_PATH is required for the sqlite store")
		}
	case StorePostgres:
		if strings.TrimSpace(c.PostgresDSN) == "" {
			return fmt.Errorf("BLUFF_POSTGRES_DSN is required for the postgres store")
		}
	default:
		return fmt.Errorf("unknown store %q", c.Store)
	}
	if c.StartingChips <= 0 {
		return fmt.Errorf("starting chips must be positive, got %d", c.StartingChips)
	}
	if c.Ante <= 0 {
		return fmt.Errorf("ante must be positive, got %d", c.Ante)
	}
	return nil
}

// Addr is the listen address for the HTTP server
func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}
