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

// NarrativeRepo stores turn narratives in the turn_narratives table.
type NarrativeRepo struct {
	db *sql.DB
}

// NewNarrativeRepo creates a NarrativeRepo.
func NewNarrativeRepo(db *sql.DB) *NarrativeRepo {
	return &NarrativeRepo{db: db}
}

// SaveNarrative inserts or replaces the narrative attached to turn.
func (r *NarrativeRepo) SaveNarrative(ctx context.Context, turn diplomacy.TurnID, narrative diplomacy.Narrative) error {
	row, err := model.NewTurnNarrative(turn, narrative)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO turn_narratives (game_id, prefix, year, season, sentences)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (game_id, prefix, year, season)
		 DO UPDATE SET sentences = EXCLUDED.sentences, created_at = now()`,
		row.GameID, row.Prefix, row.Year, row.Season, []byte(row.Sentences),
	)
	if err != nil {
		return fmt.Errorf("save narrative %s: %w", turn, err)
	}
	return nil
}

// LoadNarrative returns the narrative attached to turn.
func (r *NarrativeRepo) LoadNarrative(ctx context.Context, turn diplomacy.TurnID) (diplomacy.Narrative, error) {
	var n model.TurnNarrative
	err := r.db.QueryRowContext(ctx,
		`SELECT id, game_id, prefix, year, season, sentences, created_at
		 FROM turn_narratives WHERE game_id = $1 AND prefix = $2 AND year = $3 AND season = $4`,
		turn.Game, turn.Prefix, turn.Year, turn.Season.String(),
	).Scan(&n.ID, &n.GameID, &n.Prefix, &n.Year, &n.Season, &n.Sentences, &n.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("narrative %s: %w", turn, repository.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load narrative %s: %w", turn, err)
	}
	return n.Decode()
}
