package file

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/freeeve/polite-betrayal/replay/pkg/diplomacy"
)

//go:embed schema/turn_record.schema.json
var schemaFS embed.FS

const turnSchemaName = "turn_record.schema.json"

// TurnDir reads turn records from a flat directory such as moves/.
type TurnDir struct {
	dir    string
	schema *jsonschema.Schema
}

// NewTurnDir opens dir as a turn source. Records are validated against
// the turn record schema before decoding.
func NewTurnDir(dir string) (*TurnDir, error) {
	raw, err := schemaFS.ReadFile("schema/" + turnSchemaName)
	if err != nil {
		return nil, fmt.Errorf("read turn schema: %w", err)
	}
	schema, err := jsonschema.CompileString(turnSchemaName, string(raw))
	if err != nil {
		return nil, fmt.Errorf("compile turn schema: %w", err)
	}
	return &TurnDir{dir: dir, schema: schema}, nil
}

// ListTurns returns every file name in the directory, unordered.
func (d *TurnDir) ListTurns(_ context.Context) ([]string, error) {
	return listFiles(d.dir)
}

// LoadTurn reads the listed file name from the directory. Names ending in
// .zst are decompressed.
func (d *TurnDir) LoadTurn(_ context.Context, name string) (*diplomacy.TurnRecord, error) {
	path := filepath.Join(d.dir, filepath.Base(name))
	data, err := readFile(path)
	if err != nil {
		return nil, fmt.Errorf("load turn: %w", err)
	}
	rec, err := d.decode(data)
	if err != nil {
		return nil, fmt.Errorf("turn %s: %w", path, err)
	}
	return rec, nil
}

func (d *TurnDir) decode(data []byte) (*diplomacy.TurnRecord, error) {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse json: %w", err)
	}
	if err := d.schema.Validate(doc); err != nil {
		return nil, fmt.Errorf("validate: %w", err)
	}
	var rec diplomacy.TurnRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return &rec, nil
}
