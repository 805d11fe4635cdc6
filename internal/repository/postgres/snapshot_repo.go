package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/freeeve/polite-betrayal/replay/internal/model"
	"github.com/freeeve/polite-betrayal/replay/internal/repository"
	"github.com/freeeve/polite-betrayal/replay/pkg/diplomacy"
)

// seasonOrder sorts the season column chronologically.
const seasonOrder = `CASE season WHEN 'spring' THEN 1 WHEN 'fall' THEN 2 ELSE 3 END`

// SnapshotRepo stores map snapshots in the turn_snapshots table.
type SnapshotRepo struct {
	db *sql.DB
}

// NewSnapshotRepo creates a SnapshotRepo.
func NewSnapshotRepo(db *sql.DB) *SnapshotRepo {
	return &SnapshotRepo{db: db}
}

// SaveSnapshot inserts or replaces the snapshot of turn.
func (r *SnapshotRepo) SaveSnapshot(ctx context.Context, turn diplomacy.TurnID, state diplomacy.MapState) error {
	row, err := model.NewSnapshot(turn, state)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO turn_snapshots (game_id, prefix, year, season, state)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (game_id, prefix, year, season)
		 DO UPDATE SET state = EXCLUDED.state, created_at = now()`,
		row.GameID, row.Prefix, row.Year, row.Season, []byte(row.State),
	)
	if err != nil {
		return fmt.Errorf("save snapshot %s: %w", turn, err)
	}
	return nil
}

// LoadSnapshot returns the snapshot of turn or repository.ErrNotFound.
func (r *SnapshotRepo) LoadSnapshot(ctx context.Context, turn diplomacy.TurnID) (diplomacy.MapState, error) {
	var s model.Snapshot
	err := r.db.QueryRowContext(ctx,
		`SELECT id, game_id, prefix, year, season, state, created_at
		 FROM turn_snapshots WHERE game_id = $1 AND prefix = $2 AND year = $3 AND season = $4`,
		turn.Game, turn.Prefix, turn.Year, turn.Season.String(),
	).Scan(&s.ID, &s.GameID, &s.Prefix, &s.Year, &s.Season, &s.State, &s.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("snapshot %s: %w", turn, repository.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load snapshot %s: %w", turn, err)
	}
	return s.Decode()
}

// ListSnapshots returns the turns of game that have a snapshot, in order.
func (r *SnapshotRepo) ListSnapshots(ctx context.Context, game int) ([]diplomacy.TurnID, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, game_id, prefix, year, season, created_at
		 FROM turn_snapshots WHERE game_id = $1
		 ORDER BY year, `+seasonOrder+`, prefix`, game,
	)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer rows.Close()

	var turns []diplomacy.TurnID
	for rows.Next() {
		var s model.Snapshot
		if err := rows.Scan(&s.ID, &s.GameID, &s.Prefix, &s.Year, &s.Season, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		turn, err := s.Turn()
		if err != nil {
			return nil, fmt.Errorf("snapshot %d: %w", s.ID, err)
		}
		turns = append(turns, turn)
	}
	return turns, rows.Err()
}

// DeleteGame removes every snapshot and narrative of game, whatever the prefix.
func (r *SnapshotRepo) DeleteGame(ctx context.Context, game int) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM turn_snapshots WHERE game_id = $1`, game); err != nil {
		return fmt.Errorf("delete snapshots: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM turn_narratives WHERE game_id = $1`, game); err != nil {
		return fmt.Errorf("delete narratives: %w", err)
	}
	return tx.Commit()
}
