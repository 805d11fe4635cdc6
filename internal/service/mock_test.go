package service

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/freeeve/polite-betrayal/replay/internal/repository"
	"github.com/freeeve/polite-betrayal/replay/pkg/diplomacy"
)

type mockTurnSource struct {
	names   []string
	records map[string]*diplomacy.TurnRecord // keyed by listed name
	listErr error
}

func newMockTurnSource() *mockTurnSource {
	return &mockTurnSource{records: make(map[string]*diplomacy.TurnRecord)}
}

// add lists name+".json" and serves rec under that name.
func (m *mockTurnSource) add(name string, rec *diplomacy.TurnRecord) {
	m.addListed(name+".json", rec)
}

func (m *mockTurnSource) addListed(listed string, rec *diplomacy.TurnRecord) {
	m.names = append(m.names, listed)
	m.records[listed] = rec
}

func (m *mockTurnSource) ListTurns(_ context.Context) ([]string, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return append([]string(nil), m.names...), nil
}

func (m *mockTurnSource) LoadTurn(_ context.Context, name string) (*diplomacy.TurnRecord, error) {
	rec, ok := m.records[name]
	if !ok {
		return nil, fmt.Errorf("%s: %w", name, repository.ErrNotFound)
	}
	return rec, nil
}

type mockSnapshotStore struct {
	states  map[string]diplomacy.MapState
	saved   []string // save order
	failOn  string
	saveErr error
}

func newMockSnapshotStore() *mockSnapshotStore {
	return &mockSnapshotStore{states: make(map[string]diplomacy.MapState)}
}

func (m *mockSnapshotStore) SaveSnapshot(_ context.Context, turn diplomacy.TurnID, state diplomacy.MapState) error {
	if m.failOn != "" && turn.String() == m.failOn {
		return m.saveErr
	}
	m.states[turn.String()] = state.Clone()
	m.saved = append(m.saved, turn.String())
	return nil
}

func (m *mockSnapshotStore) LoadSnapshot(_ context.Context, turn diplomacy.TurnID) (diplomacy.MapState, error) {
	s, ok := m.states[turn.String()]
	if !ok {
		return nil, fmt.Errorf("%s: %w", turn, repository.ErrNotFound)
	}
	return s.Clone(), nil
}

func (m *mockSnapshotStore) ListSnapshots(_ context.Context, game int) ([]diplomacy.TurnID, error) {
	names := make([]string, 0, len(m.states))
	for k := range m.states {
		names = append(names, k)
	}
	sort.Strings(names)
	return diplomacy.SequenceTurns(names, game)
}

type mockNarrativeStore struct {
	narratives map[string]diplomacy.Narrative
}

func newMockNarrativeStore() *mockNarrativeStore {
	return &mockNarrativeStore{narratives: make(map[string]diplomacy.Narrative)}
}

func (m *mockNarrativeStore) SaveNarrative(_ context.Context, turn diplomacy.TurnID, n diplomacy.Narrative) error {
	m.narratives[turn.String()] = n
	return nil
}

func (m *mockNarrativeStore) LoadNarrative(_ context.Context, turn diplomacy.TurnID) (diplomacy.Narrative, error) {
	n, ok := m.narratives[turn.String()]
	if !ok {
		return nil, fmt.Errorf("%s: %w", turn, repository.ErrNotFound)
	}
	return n, nil
}

type cached struct {
	turn  diplomacy.TurnID
	state diplomacy.MapState
}

type mockCache struct {
	latest map[int]cached
	sets   int
}

func newMockCache() *mockCache {
	return &mockCache{latest: make(map[int]cached)}
}

func (m *mockCache) SetLatest(_ context.Context, turn diplomacy.TurnID, state diplomacy.MapState) error {
	m.latest[turn.Game] = cached{turn: turn, state: state.Clone()}
	m.sets++
	return nil
}

func (m *mockCache) GetLatest(_ context.Context, game int) (diplomacy.TurnID, diplomacy.MapState, error) {
	c, ok := m.latest[game]
	if !ok {
		return diplomacy.TurnID{}, nil, repository.ErrNotFound
	}
	return c.turn, c.state, nil
}

func (m *mockCache) Centres(_ context.Context, game int) (map[diplomacy.Power]int, error) {
	c, ok := m.latest[game]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := make(map[diplomacy.Power]int)
	for _, pt := range diplomacy.CountTally(c.state) {
		out[pt.Power] = pt.Count()
	}
	return out, nil
}

func (m *mockCache) DeleteGame(_ context.Context, game int) error {
	delete(m.latest, game)
	return nil
}

type recordedEvent struct {
	game      int
	eventType string
	data      any
}

type mockBroadcaster struct {
	events []recordedEvent
}

func (m *mockBroadcaster) BroadcastGameEvent(game int, eventType string, data any) {
	m.events = append(m.events, recordedEvent{game, eventType, data})
}

var errBoom = errors.New("boom")
