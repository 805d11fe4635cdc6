//go:build integration

package postgres

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"testing"

	"github.com/freeeve/polite-betrayal/replay/internal/repository"
	"github.com/freeeve/polite-betrayal/replay/internal/testutil"
	"github.com/freeeve/polite-betrayal/replay/pkg/diplomacy"
)

var testDB *sql.DB

func setup(t *testing.T) {
	t.Helper()
	if testDB == nil {
		testDB = testutil.SetupDB(t)
	}
	testutil.CleanupDB(t, testDB)
}

func turn(t *testing.T, name string) diplomacy.TurnID {
	t.Helper()
	id, err := diplomacy.ParseTurnID(name)
	if err != nil {
		t.Fatalf("parse %s: %v", name, err)
	}
	return id
}

// --- SnapshotRepo Tests ---

func TestSnapshotSaveLoad(t *testing.T) {
	setup(t)
	repo := NewSnapshotRepo(testDB)
	ctx := context.Background()
	id := turn(t, "DiplomacyGame1_1901_spring")

	seed := diplomacy.StandardSeed()
	if err := repo.SaveSnapshot(ctx, id, seed); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := repo.LoadSnapshot(ctx, id)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != len(seed) {
		t.Fatalf("expected %d regions, got %d", len(seed), len(got))
	}
	if got["Vienna"] != seed["Vienna"] {
		t.Fatalf("Vienna = %+v, want %+v", got["Vienna"], seed["Vienna"])
	}
}

func TestSnapshotUpsertReplaces(t *testing.T) {
	setup(t)
	repo := NewSnapshotRepo(testDB)
	ctx := context.Background()
	id := turn(t, "Game2_1901_fall")

	first := diplomacy.MapState{"Vienna": {UnitType: diplomacy.Army, CurrentControl: diplomacy.Austria}}
	second := diplomacy.MapState{"Vienna": {UnitType: diplomacy.Fleet, CurrentControl: diplomacy.Italy}}
	if err := repo.SaveSnapshot(ctx, id, first); err != nil {
		t.Fatalf("first save: %v", err)
	}
	if err := repo.SaveSnapshot(ctx, id, second); err != nil {
		t.Fatalf("second save: %v", err)
	}
	got, err := repo.LoadSnapshot(ctx, id)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got["Vienna"].CurrentControl != diplomacy.Italy {
		t.Fatalf("expected replaced snapshot, got %+v", got["Vienna"])
	}
	turns, err := repo.ListSnapshots(ctx, 2)
	if err != nil || len(turns) != 1 {
		t.Fatalf("expected one row after upsert, got %v (%v)", turns, err)
	}
}

func TestSnapshotNotFound(t *testing.T) {
	setup(t)
	repo := NewSnapshotRepo(testDB)
	_, err := repo.LoadSnapshot(context.Background(), turn(t, "Game9_1905_winter"))
	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListSnapshotsChronological(t *testing.T) {
	setup(t)
	repo := NewSnapshotRepo(testDB)
	ctx := context.Background()
	for _, name := range []string{"Game1_1902_spring", "Game1_1901_winter", "Game1_1901_spring", "Game1_1901_fall", "Game3_1901_spring"} {
		if err := repo.SaveSnapshot(ctx, turn(t, name), diplomacy.MapState{}); err != nil {
			t.Fatalf("save %s: %v", name, err)
		}
	}
	turns, err := repo.ListSnapshots(ctx, 1)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	want := []string{"Game1_1901_spring", "Game1_1901_fall", "Game1_1901_winter", "Game1_1902_spring"}
	if len(turns) != len(want) {
		t.Fatalf("got %v, want %v", turns, want)
	}
	for i, w := range want {
		if turns[i].String() != w {
			t.Errorf("turn %d = %s, want %s", i, turns[i], w)
		}
	}
}

func TestDeleteGame(t *testing.T) {
	setup(t)
	snaps := NewSnapshotRepo(testDB)
	narr := NewNarrativeRepo(testDB)
	ctx := context.Background()
	id := turn(t, "Game4_1901_spring")

	if err := snaps.SaveSnapshot(ctx, id, diplomacy.MapState{}); err != nil {
		t.Fatal(err)
	}
	if err := narr.SaveNarrative(ctx, id, diplomacy.OpeningNarrative()); err != nil {
		t.Fatal(err)
	}
	if err := snaps.DeleteGame(ctx, 4); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := snaps.LoadSnapshot(ctx, id); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("snapshot survived delete: %v", err)
	}
	if _, err := narr.LoadNarrative(ctx, id); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("narrative survived delete: %v", err)
	}
}

// --- NarrativeRepo Tests ---

func TestNarrativeSaveLoad(t *testing.T) {
	setup(t)
	repo := NewNarrativeRepo(testDB)
	ctx := context.Background()
	id := turn(t, "Game1_1901_fall")

	n := diplomacy.Narrative{diplomacy.Austria: {"austria: vienna: type: move, to: budapest, result: succeeds"}}
	if err := repo.SaveNarrative(ctx, id, n); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := repo.LoadNarrative(ctx, id)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got[diplomacy.Austria]) != 1 || got[diplomacy.Austria][0] != n[diplomacy.Austria][0] {
		t.Fatalf("narrative round-trip failed: %v", got)
	}
}

func TestMigrateIsIdempotent(t *testing.T) {
	setup(t)
	script, err := os.ReadFile(testutil.MigrationPath())
	if err != nil {
		t.Fatalf("read migration: %v", err)
	}
	if err := Migrate(context.Background(), testDB, string(script)); err != nil {
		t.Fatalf("migrate again: %v", err)
	}
}
