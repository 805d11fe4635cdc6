package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/freeeve/polite-betrayal/replay/internal/logger"
	"github.com/freeeve/polite-betrayal/replay/internal/repository"
	"github.com/freeeve/polite-betrayal/replay/pkg/diplomacy"
)

// ErrNoTurns is returned when a game has no turn records in the source.
var ErrNoTurns = errors.New("no turns for game")

// ErrNoCache is returned by the cached lookups when no cache is configured.
var ErrNoCache = errors.New("no state cache configured")

// TurnResolved is the payload of EventTurnResolved.
type TurnResolved struct {
	Turn           diplomacy.TurnID
	SnapshotOf     diplomacy.TurnID
	Cleared        []string
	Filled         []string
	ControlChanged []string
}

// GameSummary describes a replayed game.
type GameSummary struct {
	Game      int
	Turns     int
	Final     diplomacy.TurnID // turn State belongs to; unsaved if final snapshots are off
	State     diplomacy.MapState
	Tally     diplomacy.Tally
	Winner    diplomacy.Power
	HasWinner bool
}

// ReplayService rebuilds per-turn map snapshots by replaying adjudicated
// turn records on top of a seed state.
type ReplayService struct {
	turns       repository.TurnSource
	snapshots   repository.SnapshotStore
	narratives  repository.NarrativeStore // optional
	cache       repository.StateCache     // optional
	broadcaster Broadcaster
	seed        diplomacy.MapState

	soloThreshold int
	reset         bool
	finalSnapshot bool
}

// centreCounter is implemented by caches that keep per-power centre counts
// next to the latest state.
type centreCounter interface {
	Centres(ctx context.Context, game int) (map[diplomacy.Power]int, error)
}

// gameDeleter is implemented by stores that can drop everything stored
// for one game.
type gameDeleter interface {
	DeleteGame(ctx context.Context, game int) error
}

// NewReplayService creates a ReplayService. A nil seed means the standard
// starting position.
func NewReplayService(turns repository.TurnSource, snapshots repository.SnapshotStore, seed diplomacy.MapState) *ReplayService {
	if seed == nil {
		seed = diplomacy.StandardSeed()
	}
	return &ReplayService{
		turns:         turns,
		snapshots:     snapshots,
		broadcaster:   NoopBroadcaster{},
		seed:          seed,
		soloThreshold: diplomacy.SoloVictoryCenters,
		finalSnapshot: true,
	}
}

// SetNarrativeStore enables writing narratives alongside snapshots.
func (s *ReplayService) SetNarrativeStore(store repository.NarrativeStore) {
	s.narratives = store
}

// SetCache enables publishing the latest state of each game.
func (s *ReplayService) SetCache(cache repository.StateCache) {
	s.cache = cache
}

// SetBroadcaster routes progress events to b.
func (s *ReplayService) SetBroadcaster(b Broadcaster) {
	if b == nil {
		b = NoopBroadcaster{}
	}
	s.broadcaster = b
}

// SetSoloThreshold changes the centre count reported as a solo win.
func (s *ReplayService) SetSoloThreshold(n int) {
	if n > 0 {
		s.soloThreshold = n
	}
}

// SetReset makes ReplayGame drop a game's stored output before replaying it.
func (s *ReplayService) SetReset(reset bool) {
	s.reset = reset
}

// SetFinalSnapshot controls whether the state after a game's last listed
// turn is saved, with its narrative, under the season that follows. It is
// on by default; turning it off writes output only for listed turns.
func (s *ReplayService) SetFinalSnapshot(on bool) {
	s.finalSnapshot = on
}

// ResetGame deletes the snapshots, narratives and cached state of game from
// every configured store that supports deletion. File stores do not; their
// files are overwritten by the next replay instead.
func (s *ReplayService) ResetGame(ctx context.Context, game int) error {
	stores := []any{s.snapshots, s.narratives, s.cache}
	seen := make(map[any]bool)
	for _, st := range stores {
		d, ok := st.(gameDeleter)
		if !ok || seen[d] {
			continue
		}
		seen[d] = true
		if err := d.DeleteGame(ctx, game); err != nil {
			return fmt.Errorf("reset game %d: %w", game, err)
		}
	}
	return nil
}

// sequence lists the source and returns the ordered turns of game.
func (s *ReplayService) sequence(ctx context.Context, game int) ([]diplomacy.ListedTurn, error) {
	names, err := s.turns.ListTurns(ctx)
	if err != nil {
		return nil, fmt.Errorf("list turns: %w", err)
	}
	ids, err := diplomacy.SequenceListing(names, game)
	if err != nil {
		return nil, fmt.Errorf("sequence game %d: %w", game, err)
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("game %d: %w", game, ErrNoTurns)
	}
	return ids, nil
}

// snapshotTarget is the turn whose snapshot receives the state produced by
// ids[i]: the next listed turn, or the following season after the last one.
func snapshotTarget(ids []diplomacy.ListedTurn, i int) diplomacy.TurnID {
	if i+1 < len(ids) {
		return ids[i+1].ID
	}
	return ids[i].ID.Next()
}

// saves reports whether output is written for the state produced by ids[i].
func (s *ReplayService) saves(ids []diplomacy.ListedTurn, i int) bool {
	return s.finalSnapshot || i+1 < len(ids)
}

// ReplayGame replays every turn of game in order. The seed is stored as the
// snapshot of the first turn and each resolved state as the snapshot of the
// turn that follows. Replay stops at the first error; snapshots already
// written are left in place.
func (s *ReplayService) ReplayGame(ctx context.Context, game int) (*GameSummary, error) {
	ctx = logger.WithGame(ctx, game)
	l := logger.ForRun(ctx)

	ids, err := s.sequence(ctx, game)
	if err != nil {
		return nil, err
	}
	if s.reset {
		if err := s.ResetGame(ctx, game); err != nil {
			return nil, err
		}
	}

	state := s.seed.Clone()
	if err := s.snapshots.SaveSnapshot(ctx, ids[0].ID, state); err != nil {
		return nil, err
	}
	if err := s.saveNarrative(ctx, ids[0].ID, diplomacy.OpeningNarrative()); err != nil {
		return nil, err
	}

	target := ids[0].ID
	for i, lt := range ids {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		id := lt.ID
		record, err := s.turns.LoadTurn(ctx, lt.Name)
		if err != nil {
			return nil, err
		}
		res, err := diplomacy.ResolveDetailed(record, state, id.IsWinter())
		if err != nil {
			return nil, fmt.Errorf("resolve %s: %w", id, err)
		}

		target = snapshotTarget(ids, i)
		if s.saves(ids, i) {
			if err := s.snapshots.SaveSnapshot(ctx, target, res.State); err != nil {
				return nil, err
			}
			if err := s.saveNarrative(ctx, target, diplomacy.Narrate(record)); err != nil {
				return nil, err
			}
		}
		if s.cache != nil {
			if err := s.cache.SetLatest(ctx, target, res.State); err != nil {
				return nil, err
			}
		}

		l.Debug().
			Str("turn", id.String()).
			Strs("cleared", res.Cleared).
			Strs("filled", res.Filled).
			Strs("controlChanged", res.ControlChanged).
			Msg("Turn resolved")
		s.broadcaster.BroadcastGameEvent(game, EventTurnResolved, TurnResolved{
			Turn:           id,
			SnapshotOf:     target,
			Cleared:        res.Cleared,
			Filled:         res.Filled,
			ControlChanged: res.ControlChanged,
		})
		state = res.State
	}

	summary := s.summarize(game, len(ids), target, state)
	l.Info().
		Int("turns", summary.Turns).
		Str("final", summary.Final.String()).
		Str("leader", string(summary.Tally.Leader())).
		Msg("Game replayed")
	s.broadcaster.BroadcastGameEvent(game, EventGameReplayed, summary)
	return summary, nil
}

func (s *ReplayService) summarize(game, turns int, final diplomacy.TurnID, state diplomacy.MapState) *GameSummary {
	tally := diplomacy.CountTally(state)
	winner, ok := tally.SoloWinner(s.soloThreshold)
	return &GameSummary{
		Game:      game,
		Turns:     turns,
		Final:     final,
		State:     state,
		Tally:     tally,
		Winner:    winner,
		HasWinner: ok,
	}
}

func (s *ReplayService) saveNarrative(ctx context.Context, turn diplomacy.TurnID, n diplomacy.Narrative) error {
	if s.narratives == nil {
		return nil
	}
	return s.narratives.SaveNarrative(ctx, turn, n)
}

// ReplayAll replays every game found in the source, in game order. The
// first failing game stops the run.
func (s *ReplayService) ReplayAll(ctx context.Context) ([]GameSummary, error) {
	names, err := s.turns.ListTurns(ctx)
	if err != nil {
		return nil, fmt.Errorf("list turns: %w", err)
	}
	games := diplomacy.GameIDs(names)
	l := logger.ForRun(ctx)
	l.Info().Ints("games", games).Msg("Replaying games")

	summaries := make([]GameSummary, 0, len(games))
	for _, g := range games {
		sum, err := s.ReplayGame(ctx, g)
		if err != nil {
			return summaries, fmt.Errorf("game %d: %w", g, err)
		}
		summaries = append(summaries, *sum)
	}
	return summaries, nil
}

// NarrateGame writes only the narratives of game: the opening narrative on
// the first turn and turn i's orders on the turn that follows it. Returns
// the number of narratives written.
func (s *ReplayService) NarrateGame(ctx context.Context, game int) (int, error) {
	if s.narratives == nil {
		return 0, errors.New("no narrative store configured")
	}
	ids, err := s.sequence(ctx, game)
	if err != nil {
		return 0, err
	}
	if err := s.narratives.SaveNarrative(ctx, ids[0].ID, diplomacy.OpeningNarrative()); err != nil {
		return 0, err
	}
	written := 1
	for i, lt := range ids {
		if !s.saves(ids, i) {
			break
		}
		record, err := s.turns.LoadTurn(ctx, lt.Name)
		if err != nil {
			return written, err
		}
		if err := s.narratives.SaveNarrative(ctx, snapshotTarget(ids, i), diplomacy.Narrate(record)); err != nil {
			return written, err
		}
		written++
	}
	l := logger.ForRun(logger.WithGame(ctx, game))
	l.Info().Int("narratives", written).Msg("Game narrated")
	return written, nil
}

// TallyTurn counts supply centres in the stored snapshot of turn.
func (s *ReplayService) TallyTurn(ctx context.Context, turn diplomacy.TurnID) (diplomacy.Tally, error) {
	state, err := s.snapshots.LoadSnapshot(ctx, turn)
	if err != nil {
		return nil, err
	}
	return diplomacy.CountTally(state), nil
}

// LatestTally counts supply centres in the last snapshot stored for game.
func (s *ReplayService) LatestTally(ctx context.Context, game int) (diplomacy.TurnID, diplomacy.Tally, error) {
	turns, err := s.snapshots.ListSnapshots(ctx, game)
	if err != nil {
		return diplomacy.TurnID{}, nil, err
	}
	if len(turns) == 0 {
		return diplomacy.TurnID{}, nil, fmt.Errorf("game %d: %w", game, repository.ErrNotFound)
	}
	last := turns[len(turns)-1]
	tally, err := s.TallyTurn(ctx, last)
	return last, tally, err
}

// Narrative returns the stored narrative attached to turn.
func (s *ReplayService) Narrative(ctx context.Context, turn diplomacy.TurnID) (diplomacy.Narrative, error) {
	if s.narratives == nil {
		return nil, errors.New("no narrative store configured")
	}
	return s.narratives.LoadNarrative(ctx, turn)
}

// CachedTally counts supply centres in the latest state cached for game.
func (s *ReplayService) CachedTally(ctx context.Context, game int) (diplomacy.TurnID, diplomacy.Tally, error) {
	if s.cache == nil {
		return diplomacy.TurnID{}, nil, ErrNoCache
	}
	turn, state, err := s.cache.GetLatest(ctx, game)
	if err != nil {
		return diplomacy.TurnID{}, nil, err
	}
	return turn, diplomacy.CountTally(state), nil
}

// CachedCentres returns the per-power centre counts the cache keeps for
// game, without decoding the cached state.
func (s *ReplayService) CachedCentres(ctx context.Context, game int) (map[diplomacy.Power]int, error) {
	c, ok := s.cache.(centreCounter)
	if !ok {
		return nil, ErrNoCache
	}
	return c.Centres(ctx, game)
}
