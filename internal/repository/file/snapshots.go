package file

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/freeeve/polite-betrayal/replay/pkg/diplomacy"
)

// SnapshotDir keeps one map state file per turn, e.g. moves_map/.
type SnapshotDir struct {
	dir      string
	compress bool
}

// NewSnapshotDir stores snapshots in dir, zstd-compressed when compress is set.
func NewSnapshotDir(dir string, compress bool) *SnapshotDir {
	return &SnapshotDir{dir: dir, compress: compress}
}

func (d *SnapshotDir) fileName(turn diplomacy.TurnID) string {
	name := turn.String() + jsonExt
	if d.compress {
		name += zstdExt
	}
	return name
}

// SaveSnapshot writes the state that holds at the start of turn.
func (d *SnapshotDir) SaveSnapshot(_ context.Context, turn diplomacy.TurnID, state diplomacy.MapState) error {
	path := filepath.Join(d.dir, d.fileName(turn))
	if err := writeJSON(path, state, d.compress); err != nil {
		return fmt.Errorf("save snapshot %s: %w", turn, err)
	}
	return nil
}

// LoadSnapshot reads the snapshot of turn, compressed or not.
func (d *SnapshotDir) LoadSnapshot(_ context.Context, turn diplomacy.TurnID) (diplomacy.MapState, error) {
	stem := turn.String()
	candidates := []string{stem + jsonExt, stem + jsonExt + zstdExt}
	if d.compress {
		candidates[0], candidates[1] = candidates[1], candidates[0]
	}
	data, path, err := readFirst(d.dir, candidates...)
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	return decodeState(path, data)
}

// ListSnapshots returns the turns of game that have a snapshot, in order.
func (d *SnapshotDir) ListSnapshots(_ context.Context, game int) ([]diplomacy.TurnID, error) {
	names, err := listFiles(d.dir)
	if err != nil {
		return nil, err
	}
	// A turn may exist both compressed and not; count it once.
	seen := make(map[string]bool, len(names))
	var stems []string
	for _, n := range names {
		stem, _, _ := strings.Cut(n, ".")
		if !seen[stem] {
			seen[stem] = true
			stems = append(stems, stem)
		}
	}
	return diplomacy.SequenceTurns(stems, game)
}

// ReadSnapshotFile loads a single snapshot file by path.
func ReadSnapshotFile(path string) (diplomacy.MapState, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	return decodeState(path, data)
}

func decodeState(path string, data []byte) (diplomacy.MapState, error) {
	var state diplomacy.MapState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", filepath.Base(path), err)
	}
	return state, nil
}
