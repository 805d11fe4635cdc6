package model

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/freeeve/polite-betrayal/replay/pkg/diplomacy"
)

// Snapshot is a stored map state: the state in force at the start of a turn.
type Snapshot struct {
	ID        int64           `json:"id"`
	GameID    int             `json:"game_id"`
	Prefix    string          `json:"prefix,omitempty"`
	Year      int             `json:"year"`
	Season    string          `json:"season"` // spring, fall, winter
	State     json.RawMessage `json:"state"`
	CreatedAt time.Time       `json:"created_at"`
}

// TurnNarrative is a stored narrative, keyed the same way as Snapshot.
type TurnNarrative struct {
	ID        int64           `json:"id"`
	GameID    int             `json:"game_id"`
	Prefix    string          `json:"prefix,omitempty"`
	Year      int             `json:"year"`
	Season    string          `json:"season"`
	Sentences json.RawMessage `json:"sentences"`
	CreatedAt time.Time       `json:"created_at"`
}

// NewSnapshot encodes state as a row for turn.
func NewSnapshot(turn diplomacy.TurnID, state diplomacy.MapState) (*Snapshot, error) {
	data, err := json.Marshal(state)
	if err != nil {
		return nil, fmt.Errorf("encode state %s: %w", turn, err)
	}
	return &Snapshot{
		GameID: turn.Game,
		Prefix: turn.Prefix,
		Year:   turn.Year,
		Season: turn.Season.String(),
		State:  data,
	}, nil
}

// NewTurnNarrative encodes a narrative as a row for turn.
func NewTurnNarrative(turn diplomacy.TurnID, n diplomacy.Narrative) (*TurnNarrative, error) {
	data, err := json.Marshal(n)
	if err != nil {
		return nil, fmt.Errorf("encode narrative %s: %w", turn, err)
	}
	return &TurnNarrative{
		GameID:    turn.Game,
		Prefix:    turn.Prefix,
		Year:      turn.Year,
		Season:    turn.Season.String(),
		Sentences: data,
	}, nil
}

// Turn rebuilds the turn identifier of the row.
func (s *Snapshot) Turn() (diplomacy.TurnID, error) {
	return turnOf(s.Prefix, s.GameID, s.Year, s.Season)
}

// Decode unmarshals the stored state.
func (s *Snapshot) Decode() (diplomacy.MapState, error) {
	var state diplomacy.MapState
	if err := json.Unmarshal(s.State, &state); err != nil {
		return nil, fmt.Errorf("decode snapshot %d/%d/%s: %w", s.GameID, s.Year, s.Season, err)
	}
	return state, nil
}

// Decode unmarshals the stored sentences.
func (n *TurnNarrative) Decode() (diplomacy.Narrative, error) {
	var out diplomacy.Narrative
	if err := json.Unmarshal(n.Sentences, &out); err != nil {
		return nil, fmt.Errorf("decode narrative %d/%d/%s: %w", n.GameID, n.Year, n.Season, err)
	}
	return out, nil
}

func turnOf(prefix string, game, year int, season string) (diplomacy.TurnID, error) {
	s, err := diplomacy.ParseSeason(season)
	if err != nil {
		return diplomacy.TurnID{}, err
	}
	return diplomacy.TurnID{Prefix: prefix, Game: game, Year: year, Season: s}, nil
}
