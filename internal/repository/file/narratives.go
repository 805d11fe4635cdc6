package file

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/freeeve/polite-betrayal/replay/pkg/diplomacy"
)

// SentenceDir writes narrative files, e.g. moves_sentences/.
type SentenceDir struct {
	dir string
}

func NewSentenceDir(dir string) *SentenceDir {
	return &SentenceDir{dir: dir}
}

// SaveNarrative writes {power: [sentence, ...]} for turn.
func (d *SentenceDir) SaveNarrative(_ context.Context, turn diplomacy.TurnID, narrative diplomacy.Narrative) error {
	path := filepath.Join(d.dir, turn.String()+jsonExt)
	if err := writeJSON(path, narrative, false); err != nil {
		return fmt.Errorf("save narrative %s: %w", turn, err)
	}
	return nil
}

// LoadNarrative reads the narrative written for turn.
func (d *SentenceDir) LoadNarrative(_ context.Context, turn diplomacy.TurnID) (diplomacy.Narrative, error) {
	data, path, err := readFirst(d.dir, turn.String()+jsonExt)
	if err != nil {
		return nil, fmt.Errorf("load narrative: %w", err)
	}
	var n diplomacy.Narrative
	if err := json.Unmarshal(data, &n); err != nil {
		return nil, fmt.Errorf("decode narrative %s: %w", filepath.Base(path), err)
	}
	return n, nil
}
