package config

import (
	"os"
	"strings"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"MOVES_DIR", "SNAPSHOT_DIR", "SENTENCES_DIR", "SEED_PATH", "SNAPSHOT_COMPRESS", "DATABASE_URL", "SQLITE_PATH", "REDIS_URL", "MIGRATION_PATH", "SOLO_THRESHOLD", "SKIP_FINAL_SNAPSHOT"} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.MovesDir != "moves" || cfg.SnapshotDir != "moves_map" || cfg.SentencesDir != "moves_sentences" {
		t.Errorf("unexpected dirs: %+v", cfg)
	}
	if cfg.SoloThreshold != 18 {
		t.Errorf("SoloThreshold = %d, want 18", cfg.SoloThreshold)
	}
	if cfg.SnapshotCompress {
		t.Error("compression should default off")
	}
	if cfg.SkipFinalSnapshot {
		t.Error("final snapshot should be written by default")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("MOVES_DIR", "/data/moves")
	t.Setenv("SNAPSHOT_COMPRESS", "true")
	t.Setenv("SOLO_THRESHOLD", "10")
	t.Setenv("SKIP_FINAL_SNAPSHOT", "true")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.MovesDir != "/data/moves" || !cfg.SnapshotCompress || cfg.SoloThreshold != 10 || !cfg.SkipFinalSnapshot {
		t.Errorf("overrides not applied: %+v", cfg)
	}
}

func TestLoadInvalid(t *testing.T) {
	t.Setenv("SOLO_THRESHOLD", "lots")
	_, err := Load()
	if err == nil || !strings.Contains(err.Error(), "parse env:") {
		t.Fatalf("expected parse env error, got %v", err)
	}
}
