// Package sqlite keeps snapshots and narratives in a single SQLite file,
// for local replays without a Postgres server.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/freeeve/polite-betrayal/replay/internal/model"
	"github.com/freeeve/polite-betrayal/replay/internal/repository"
	"github.com/freeeve/polite-betrayal/replay/pkg/diplomacy"
)

//go:embed schema.sql
var schemaSQL string

const seasonOrder = `CASE season WHEN 'spring' THEN 1 WHEN 'fall' THEN 2 ELSE 3 END`

// Store persists replay output in SQLite.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and applies the schema.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}
	cleanPath := filepath.Clean(path)
	if err := os.MkdirAll(filepath.Dir(cleanPath), 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", cleanPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	db.SetMaxOpenConns(1)
	for _, p := range []string{"PRAGMA journal_mode=WAL;", "PRAGMA busy_timeout=5000;", "PRAGMA synchronous=NORMAL;"} {
		if _, err := db.Exec(p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("sqlite pragma %q: %w", p, err)
		}
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func nowMillis() int64 {
	return time.Now().UTC().UnixMilli()
}

// SaveSnapshot inserts or replaces the snapshot of turn.
func (s *Store) SaveSnapshot(ctx context.Context, turn diplomacy.TurnID, state diplomacy.MapState) error {
	row, err := model.NewSnapshot(turn, state)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO turn_snapshots (game_id, prefix, year, season, state, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT (game_id, prefix, year, season)
		 DO UPDATE SET state = excluded.state, created_at = excluded.created_at`,
		row.GameID, row.Prefix, row.Year, row.Season, string(row.State), nowMillis(),
	)
	if err != nil {
		return fmt.Errorf("save snapshot %s: %w", turn, err)
	}
	return nil
}

// LoadSnapshot returns the snapshot of turn or repository.ErrNotFound.
func (s *Store) LoadSnapshot(ctx context.Context, turn diplomacy.TurnID) (diplomacy.MapState, error) {
	var (
		row     model.Snapshot
		state   string
		created int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, game_id, prefix, year, season, state, created_at
		 FROM turn_snapshots WHERE game_id = ? AND prefix = ? AND year = ? AND season = ?`,
		turn.Game, turn.Prefix, turn.Year, turn.Season.String(),
	).Scan(&row.ID, &row.GameID, &row.Prefix, &row.Year, &row.Season, &state, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("snapshot %s: %w", turn, repository.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load snapshot %s: %w", turn, err)
	}
	row.State = []byte(state)
	row.CreatedAt = time.UnixMilli(created).UTC()
	return row.Decode()
}

// ListSnapshots returns the turns of game that have a snapshot, in order.
func (s *Store) ListSnapshots(ctx context.Context, game int) ([]diplomacy.TurnID, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, game_id, prefix, year, season FROM turn_snapshots
		 WHERE game_id = ? ORDER BY year, `+seasonOrder+`, prefix`, game)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer rows.Close()

	var turns []diplomacy.TurnID
	for rows.Next() {
		var row model.Snapshot
		if err := rows.Scan(&row.ID, &row.GameID, &row.Prefix, &row.Year, &row.Season); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		turn, err := row.Turn()
		if err != nil {
			return nil, fmt.Errorf("snapshot %d: %w", row.ID, err)
		}
		turns = append(turns, turn)
	}
	return turns, rows.Err()
}

// SaveNarrative inserts or replaces the narrative attached to turn.
func (s *Store) SaveNarrative(ctx context.Context, turn diplomacy.TurnID, narrative diplomacy.Narrative) error {
	row, err := model.NewTurnNarrative(turn, narrative)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO turn_narratives (game_id, prefix, year, season, sentences, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT (game_id, prefix, year, season)
		 DO UPDATE SET sentences = excluded.sentences, created_at = excluded.created_at`,
		row.GameID, row.Prefix, row.Year, row.Season, string(row.Sentences), nowMillis(),
	)
	if err != nil {
		return fmt.Errorf("save narrative %s: %w", turn, err)
	}
	return nil
}

// LoadNarrative returns the narrative attached to turn.
func (s *Store) LoadNarrative(ctx context.Context, turn diplomacy.TurnID) (diplomacy.Narrative, error) {
	var (
		row       model.TurnNarrative
		sentences string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, game_id, year, season, sentences FROM turn_narratives
		 WHERE game_id = ? AND prefix = ? AND year = ? AND season = ?`,
		turn.Game, turn.Prefix, turn.Year, turn.Season.String(),
	).Scan(&row.ID, &row.GameID, &row.Year, &row.Season, &sentences)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("narrative %s: %w", turn, repository.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load narrative %s: %w", turn, err)
	}
	row.Sentences = []byte(sentences)
	return row.Decode()
}

// DeleteGame removes every snapshot and narrative of game, whatever the prefix.
func (s *Store) DeleteGame(ctx context.Context, game int) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM turn_snapshots WHERE game_id = ?`, game); err != nil {
		return fmt.Errorf("delete snapshots: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM turn_narratives WHERE game_id = ?`, game); err != nil {
		return fmt.Errorf("delete narratives: %w", err)
	}
	return tx.Commit()
}
