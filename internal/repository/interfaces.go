package repository

import (
	"context"
	"errors"

	"github.com/freeeve/polite-betrayal/replay/pkg/diplomacy"
)

// ErrNotFound is returned when a requested snapshot or turn does not exist.
var ErrNotFound = errors.New("not found")

// TurnSource lists and loads adjudicated turn records from a flat namespace.
// LoadTurn takes a name exactly as ListTurns returned it.
type TurnSource interface {
	ListTurns(ctx context.Context) ([]string, error)
	LoadTurn(ctx context.Context, name string) (*diplomacy.TurnRecord, error)
}

// SnapshotStore persists the map state at the start of each turn.
type SnapshotStore interface {
	SaveSnapshot(ctx context.Context, turn diplomacy.TurnID, state diplomacy.MapState) error
	LoadSnapshot(ctx context.Context, turn diplomacy.TurnID) (diplomacy.MapState, error)
	ListSnapshots(ctx context.Context, game int) ([]diplomacy.TurnID, error)
}

// NarrativeStore persists the per-power order sentences attached to a turn.
type NarrativeStore interface {
	SaveNarrative(ctx context.Context, turn diplomacy.TurnID, narrative diplomacy.Narrative) error
	LoadNarrative(ctx context.Context, turn diplomacy.TurnID) (diplomacy.Narrative, error)
}

// StateCache holds the latest resolved map state of each game (Redis).
type StateCache interface {
	SetLatest(ctx context.Context, turn diplomacy.TurnID, state diplomacy.MapState) error
	GetLatest(ctx context.Context, game int) (diplomacy.TurnID, diplomacy.MapState, error)
	DeleteGame(ctx context.Context, game int) error
}
