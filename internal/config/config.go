package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds application configuration loaded from environment variables.
type Config struct {
	MovesDir     string `env:"MOVES_DIR" envDefault:"moves"`
	SnapshotDir  string `env:"SNAPSHOT_DIR" envDefault:"moves_map"`
	SentencesDir string `env:"SENTENCES_DIR" envDefault:"moves_sentences"`

	// SeedPath points at a JSON or YAML map state. Empty means the
	// built-in standard starting position.
	SeedPath         string `env:"SEED_PATH"`
	SnapshotCompress bool   `env:"SNAPSHOT_COMPRESS" envDefault:"false"`

	// SkipFinalSnapshot drops the snapshot and narrative that would be
	// written after a game's last listed turn.
	SkipFinalSnapshot bool `env:"SKIP_FINAL_SNAPSHOT" envDefault:"false"`

	// Optional stores. When DatabaseURL is set snapshots go to Postgres,
	// otherwise to SQLitePath if set, otherwise to SnapshotDir.
	DatabaseURL string `env:"DATABASE_URL"`
	SQLitePath  string `env:"SQLITE_PATH"`
	RedisURL    string `env:"REDIS_URL"`

	// MigrationPath, when set, is applied to Postgres before replaying.
	MigrationPath string `env:"MIGRATION_PATH"`

	SoloThreshold int `env:"SOLO_THRESHOLD" envDefault:"18"`
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return &cfg, nil
}
