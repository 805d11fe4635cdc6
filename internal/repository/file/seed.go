package file

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/freeeve/polite-betrayal/replay/pkg/diplomacy"
)

// LoadSeed reads a starting map state. Files ending in .yaml or .yml are
// parsed as YAML, anything else as JSON; a .zst suffix is decompressed
// first. An empty path yields the standard starting position.
func LoadSeed(path string) (diplomacy.MapState, error) {
	if path == "" {
		return diplomacy.StandardSeed(), nil
	}
	data, err := readFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed: %w", err)
	}

	var state diplomacy.MapState
	switch strings.ToLower(filepath.Ext(strings.TrimSuffix(path, zstdExt))) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &state)
	default:
		err = json.Unmarshal(data, &state)
	}
	if err != nil {
		return nil, fmt.Errorf("seed %s: %w", filepath.Base(path), err)
	}
	if len(state) == 0 {
		return nil, fmt.Errorf("seed %s: no regions", filepath.Base(path))
	}
	return state, nil
}
