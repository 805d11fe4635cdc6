package file

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/freeeve/polite-betrayal/replay/internal/repository"
	"github.com/freeeve/polite-betrayal/replay/pkg/diplomacy"
)

func mustTurn(t *testing.T, name string) diplomacy.TurnID {
	t.Helper()
	id, err := diplomacy.ParseTurnID(name)
	if err != nil {
		t.Fatalf("parse %s: %v", name, err)
	}
	return id
}

func writeFile(t *testing.T, dir, name, body string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

// --- TurnDir ---

func TestTurnDir_ListAndLoad(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "DiplomacyGame1_1901_spring.json",
		`{"orders":{"Austria":{"Vienna":{"type":"MOVE","to":"Budapest","result":"SUCCEEDS"}}}}`)
	writeFile(t, dir, "DiplomacyGame1_1901_fall.json", `{"orders":{}}`)
	if err := os.Mkdir(filepath.Join(dir, "subdir"), 0o755); err != nil {
		t.Fatal(err)
	}

	src, err := NewTurnDir(dir)
	if err != nil {
		t.Fatalf("new turn dir: %v", err)
	}
	ctx := context.Background()

	names, err := src.ListTurns(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(names) != 2 {
		t.Fatalf("expected 2 files (dirs skipped), got %v", names)
	}

	rec, err := src.LoadTurn(ctx, "DiplomacyGame1_1901_spring.json")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	o := rec.Orders[diplomacy.Austria]["Vienna"]
	if o.Type != diplomacy.OrderMove || o.To != "Budapest" || !o.Succeeded() {
		t.Errorf("order = %+v", o)
	}

	_, err = src.LoadTurn(ctx, "DiplomacyGame1_1902_spring.json")
	if !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("missing turn err = %v, want ErrNotFound", err)
	}
}

func TestTurnDir_LoadsNonCanonicalNames(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "DiplomacyGame1_1901_Spring.json",
		`{"orders":{"Austria":{"Vienna":{"type":"SUPPORT","from":"Trieste","to":"Budapest","result":"SUCCEEDS"}}}}`)
	writeFile(t, dir, "DiplomacyGame1_01901_fall.txt", `{"orders":{}}`)
	src, err := NewTurnDir(dir)
	if err != nil {
		t.Fatalf("new turn dir: %v", err)
	}
	ctx := context.Background()

	names, err := src.ListTurns(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	turns, err := diplomacy.SequenceListing(names, 1)
	if err != nil || len(turns) != 2 {
		t.Fatalf("sequence: %v, %v", turns, err)
	}
	for _, lt := range turns {
		if _, err := src.LoadTurn(ctx, lt.Name); err != nil {
			t.Errorf("load %s (%s): %v", lt.ID, lt.Name, err)
		}
	}

	rec, err := src.LoadTurn(ctx, turns[0].Name)
	if err != nil {
		t.Fatal(err)
	}
	e := rec.OrdersOf(diplomacy.Austria)
	want := "austria: vienna: type: support, from: trieste, to: budapest, result: succeeds"
	if len(e) != 1 || e[0].Describe() != want {
		t.Errorf("sentence = %v, want %q", e, want)
	}
}

func TestTurnDir_RejectsInvalidRecords(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"no orders", `{"moves":{}}`},
		{"order without result", `{"orders":{"Austria":{"Vienna":{"type":"MOVE"}}}}`},
		{"retreat without result", `{"orders":{"Austria":{"Vienna":{"type":"HOLD","result":"FAILS","retreat":{"type":"MOVE"}}}}}`},
		{"to is not a string", `{"orders":{"Austria":{"Vienna":{"type":"MOVE","to":3,"result":"FAILS"}}}}`},
		{"build without unit", `{"orders":{"Austria":{"Vienna":{"type":"BUILD","result":"SUCCEEDS"}}}}`},
		{"build of no unit", `{"orders":{"Austria":{"Vienna":{"type":"BUILD","unit_type":"None","result":"SUCCEEDS"}}}}`},
		{"not json", `orders: none`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeFile(t, dir, "Game1_1901_spring.json", tt.body)
			src, err := NewTurnDir(dir)
			if err != nil {
				t.Fatalf("new turn dir: %v", err)
			}
			if _, err := src.LoadTurn(context.Background(), "Game1_1901_spring.json"); err == nil {
				t.Error("expected error")
			}
		})
	}
}

// --- SnapshotDir ---

func TestSnapshotDir_RoundTrip(t *testing.T) {
	for _, compress := range []bool{false, true} {
		dir := t.TempDir()
		store := NewSnapshotDir(dir, compress)
		ctx := context.Background()
		turn := mustTurn(t, "DiplomacyGame3_1901_fall")
		seed := diplomacy.StandardSeed()

		if err := store.SaveSnapshot(ctx, turn, seed); err != nil {
			t.Fatalf("compress=%v save: %v", compress, err)
		}
		wantName := "DiplomacyGame3_1901_fall.json"
		if compress {
			wantName += ".zst"
		}
		if _, err := os.Stat(filepath.Join(dir, wantName)); err != nil {
			t.Fatalf("compress=%v: expected file %s: %v", compress, wantName, err)
		}

		got, err := store.LoadSnapshot(ctx, turn)
		if err != nil {
			t.Fatalf("compress=%v load: %v", compress, err)
		}
		if len(got) != len(seed) {
			t.Fatalf("compress=%v: %d regions, want %d", compress, len(got), len(seed))
		}
		for k, v := range seed {
			if got[k] != v {
				t.Errorf("compress=%v: %s = %+v, want %+v", compress, k, got[k], v)
			}
		}

		direct, err := ReadSnapshotFile(filepath.Join(dir, wantName))
		if err != nil || len(direct) != len(seed) {
			t.Errorf("compress=%v ReadSnapshotFile: %d, %v", compress, len(direct), err)
		}
	}
}

func TestSnapshotDir_PlainJSONLayout(t *testing.T) {
	dir := t.TempDir()
	store := NewSnapshotDir(dir, false)
	turn := mustTurn(t, "DiplomacyGame1_1901_spring")
	state := diplomacy.MapState{"Vienna": {UnitType: diplomacy.Army, CurrentControl: diplomacy.Austria, ControlledBy: diplomacy.Austria, SupplyCentre: true}}
	if err := store.SaveSnapshot(context.Background(), turn, state); err != nil {
		t.Fatalf("save: %v", err)
	}
	raw, err := os.ReadFile(filepath.Join(dir, "DiplomacyGame1_1901_spring.json"))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	for _, want := range []string{`"Vienna": {`, `"unitType": "Army"`, `"controlledBy": "Austria"`, `"supplyCentre": true`} {
		if !strings.Contains(string(raw), want) {
			t.Errorf("snapshot missing %s:\n%s", want, raw)
		}
	}
}

func TestSnapshotDir_ListSnapshots(t *testing.T) {
	dir := t.TempDir()
	store := NewSnapshotDir(dir, false)
	ctx := context.Background()
	for _, name := range []string{"Game1_1902_spring", "Game1_1901_winter", "Game2_1901_spring", "Game1_1901_spring"} {
		if err := store.SaveSnapshot(ctx, mustTurn(t, name), diplomacy.MapState{}); err != nil {
			t.Fatal(err)
		}
	}
	// Same turn also present compressed.
	if err := NewSnapshotDir(dir, true).SaveSnapshot(ctx, mustTurn(t, "Game1_1901_spring"), diplomacy.MapState{}); err != nil {
		t.Fatal(err)
	}

	turns, err := store.ListSnapshots(ctx, 1)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	want := []string{"Game1_1901_spring", "Game1_1901_winter", "Game1_1902_spring"}
	if len(turns) != len(want) {
		t.Fatalf("got %v, want %v", turns, want)
	}
	for i := range want {
		if turns[i].String() != want[i] {
			t.Errorf("turn %d = %s, want %s", i, turns[i], want[i])
		}
	}
}

func TestSnapshotDir_LoadMissing(t *testing.T) {
	store := NewSnapshotDir(t.TempDir(), false)
	_, err := store.LoadSnapshot(context.Background(), mustTurn(t, "Game1_1901_spring"))
	if !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

// --- SentenceDir ---

func TestSentenceDir_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	store := NewSentenceDir(dir)
	ctx := context.Background()
	turn := mustTurn(t, "DiplomacyGame1_1901_spring")

	if err := store.SaveNarrative(ctx, turn, diplomacy.OpeningNarrative()); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := store.LoadNarrative(ctx, turn)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got[diplomacy.Austria]) != 1 || got[diplomacy.Austria][0] != "austria: none" {
		t.Errorf("Austria = %v", got[diplomacy.Austria])
	}
}

// --- Seeds ---

func TestLoadSeed(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "map.json", `{"Vienna":{"unitType":"Army","currentControl":"Austria","controlledBy":"Austria","supplyCentre":true},
		"Bohemia":{"unitType":"None","currentControl":"None","controlledBy":"None","supplyCentre":false}}`)
	writeFile(t, dir, "map.yaml", `
Vienna:
  unitType: Army
  currentControl: Austria
  controlledBy: Austria
  supplyCentre: true
Bohemia:
  unitType: None
  currentControl: None
  controlledBy: None
  supplyCentre: false
`)
	writeFile(t, dir, "empty.json", `{}`)
	writeFile(t, dir, "bad.yml", "Vienna:\n  unitType: Zeppelin\n")

	want := diplomacy.Region{UnitType: diplomacy.Army, CurrentControl: diplomacy.Austria, ControlledBy: diplomacy.Austria, SupplyCentre: true}
	for _, name := range []string{"map.json", "map.yaml"} {
		s, err := LoadSeed(filepath.Join(dir, name))
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if len(s) != 2 || s["Vienna"] != want || s["Bohemia"].Occupied() {
			t.Errorf("%s: got %+v", name, s)
		}
	}

	if _, err := LoadSeed(filepath.Join(dir, "empty.json")); err == nil {
		t.Error("empty seed should fail")
	}
	if _, err := LoadSeed(filepath.Join(dir, "bad.yml")); err == nil {
		t.Error("unknown unit type should fail")
	}
	if _, err := LoadSeed(filepath.Join(dir, "missing.json")); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("missing seed err = %v", err)
	}

	std, err := LoadSeed("")
	if err != nil || len(std) != diplomacy.ProvinceCount {
		t.Errorf("default seed = %d regions, %v", len(std), err)
	}
}
