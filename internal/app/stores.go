// Package app wires configuration to concrete stores for the commands.
package app

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/freeeve/polite-betrayal/replay/internal/config"
	"github.com/freeeve/polite-betrayal/replay/internal/repository"
	"github.com/freeeve/polite-betrayal/replay/internal/repository/file"
	"github.com/freeeve/polite-betrayal/replay/internal/repository/postgres"
	redisrepo "github.com/freeeve/polite-betrayal/replay/internal/repository/redis"
	"github.com/freeeve/polite-betrayal/replay/internal/repository/sqlite"
	"github.com/freeeve/polite-betrayal/replay/internal/service"
)

// Backend names reported by Stores.Backend.
const (
	BackendFiles    = "files"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

// Stores bundles the repositories selected by configuration.
type Stores struct {
	Backend    string
	Turns      repository.TurnSource
	Snapshots  repository.SnapshotStore
	Narratives repository.NarrativeStore
	Cache      repository.StateCache // nil unless REDIS_URL is set

	closers []func() error
}

// Open selects the snapshot backend: Postgres when DatabaseURL is set,
// otherwise SQLite when SQLitePath is set, otherwise flat files. Turn
// records are always read from MovesDir.
func Open(ctx context.Context, cfg *config.Config) (*Stores, error) {
	turns, err := file.NewTurnDir(cfg.MovesDir)
	if err != nil {
		return nil, err
	}
	s := &Stores{Turns: turns}

	switch {
	case cfg.DatabaseURL != "":
		db, err := postgres.Connect(cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, db.Close)
		if cfg.MigrationPath != "" {
			script, err := os.ReadFile(cfg.MigrationPath)
			if err != nil {
				s.Close()
				return nil, fmt.Errorf("read migration: %w", err)
			}
			if err := postgres.Migrate(ctx, db, string(script)); err != nil {
				s.Close()
				return nil, err
			}
		}
		s.Backend = BackendPostgres
		s.Snapshots = postgres.NewSnapshotRepo(db)
		s.Narratives = postgres.NewNarrativeRepo(db)
	case cfg.SQLitePath != "":
		store, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, store.Close)
		s.Backend = BackendSQLite
		s.Snapshots = store
		s.Narratives = store
	default:
		s.Backend = BackendFiles
		s.Snapshots = file.NewSnapshotDir(cfg.SnapshotDir, cfg.SnapshotCompress)
		s.Narratives = file.NewSentenceDir(cfg.SentencesDir)
	}

	if cfg.RedisURL != "" {
		c, err := redisrepo.NewClient(ctx, cfg.RedisURL)
		if err != nil {
			s.Close()
			return nil, err
		}
		s.closers = append(s.closers, c.Close)
		s.Cache = c
	}

	log.Debug().
		Str("backend", s.Backend).
		Str("moves", cfg.MovesDir).
		Bool("cache", s.Cache != nil).
		Msg("Stores opened")
	return s, nil
}

// Close releases every opened connection.
func (s *Stores) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		errs = append(errs, s.closers[i]())
	}
	s.closers = nil
	return errors.Join(errs...)
}

// NewReplayService builds a ReplayService over the stores, with the seed
// from cfg.SeedPath and the configured solo threshold.
func (s *Stores) NewReplayService(cfg *config.Config, withNarratives bool) (*service.ReplayService, error) {
	seed, err := file.LoadSeed(cfg.SeedPath)
	if err != nil {
		return nil, err
	}
	svc := service.NewReplayService(s.Turns, s.Snapshots, seed)
	if withNarratives {
		svc.SetNarrativeStore(s.Narratives)
	}
	if s.Cache != nil {
		svc.SetCache(s.Cache)
	}
	svc.SetSoloThreshold(cfg.SoloThreshold)
	svc.SetFinalSnapshot(!cfg.SkipFinalSnapshot)
	return svc, nil
}
