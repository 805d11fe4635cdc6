// Command replay rebuilds per-turn map snapshots from adjudicated turn
// records.
//
// Usage:
//
//	go run ./cmd/replay/ --moves moves --out moves_map [--game 3]
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/freeeve/polite-betrayal/replay/internal/app"
	"github.com/freeeve/polite-betrayal/replay/internal/config"
	"github.com/freeeve/polite-betrayal/replay/internal/logger"
	"github.com/freeeve/polite-betrayal/replay/internal/service"
)

func main() {
	logger.Init()
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Config load failed")
	}

	game := flag.Int("game", 0, "Replay only this game number (0 = every game found)")
	flag.StringVar(&cfg.MovesDir, "moves", cfg.MovesDir, "Directory of turn records")
	flag.StringVar(&cfg.SnapshotDir, "out", cfg.SnapshotDir, "Directory for map snapshots")
	flag.StringVar(&cfg.SentencesDir, "sentences", cfg.SentencesDir, "Directory for narratives")
	flag.StringVar(&cfg.SeedPath, "seed", cfg.SeedPath, "Seed map state (.json, .yaml); empty = standard start")
	flag.BoolVar(&cfg.SnapshotCompress, "compress", cfg.SnapshotCompress, "Write zstd-compressed snapshots")
	flag.StringVar(&cfg.SQLitePath, "sqlite", cfg.SQLitePath, "Store snapshots in this SQLite file")
	flag.StringVar(&cfg.DatabaseURL, "db", cfg.DatabaseURL, "Store snapshots in Postgres")
	flag.StringVar(&cfg.RedisURL, "redis", cfg.RedisURL, "Publish latest state to Redis")
	flag.StringVar(&cfg.MigrationPath, "migrate", cfg.MigrationPath, "Apply this SQL script to Postgres first")
	flag.IntVar(&cfg.SoloThreshold, "solo", cfg.SoloThreshold, "Centres needed for a solo win")
	flag.BoolVar(&cfg.SkipFinalSnapshot, "no-final", cfg.SkipFinalSnapshot, "Write nothing after the last listed turn")
	narrate := flag.Bool("narrate", true, "Also write narratives")
	verbose := flag.Bool("v", false, "Print every resolved turn")
	reset := flag.Bool("reset", false, "Delete a game's stored snapshots, narratives and cache before replaying")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx = logger.WithRunID(ctx, logger.NewRunID())

	stores, err := app.Open(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Open stores failed")
	}
	defer stores.Close()

	svc, err := stores.NewReplayService(cfg, *narrate)
	if err != nil {
		log.Fatal().Err(err).Msg("Replay setup failed")
	}
	if *verbose {
		svc.SetBroadcaster(printer{w: os.Stdout})
	}
	svc.SetReset(*reset)

	rl := logger.ForRun(ctx)
	rl.Info().
		Str("backend", stores.Backend).
		Str("moves", cfg.MovesDir).
		Int("game", *game).
		Msg("Replay starting")

	var summaries []service.GameSummary
	if *game > 0 {
		sum, rerr := svc.ReplayGame(ctx, *game)
		if sum != nil {
			summaries = append(summaries, *sum)
		}
		err = rerr
	} else {
		summaries, err = svc.ReplayAll(ctx)
	}
	for _, s := range summaries {
		fmt.Println(formatSummary(s))
	}
	if err != nil {
		stores.Close()
		log.Fatal().Err(err).Msg("Replay failed")
	}
}

// formatSummary renders one line per replayed game.
func formatSummary(s service.GameSummary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "game %d: %d turns, final %s", s.Game, s.Turns, s.Final)
	leader := s.Tally.Leader()
	if leader.IsNone() {
		b.WriteString(", no centres owned")
	} else {
		fmt.Fprintf(&b, ", leader %s (%d centres)", leader, s.Tally.For(leader).Count())
	}
	if s.HasWinner {
		fmt.Fprintf(&b, ", solo win: %s", s.Winner)
	}
	return b.String()
}

// printer writes turn progress events as plain lines.
type printer struct {
	w io.Writer
}

func (p printer) BroadcastGameEvent(game int, eventType string, data any) {
	ev, ok := data.(service.TurnResolved)
	if !ok || eventType != service.EventTurnResolved {
		return
	}
	fmt.Fprintf(p.w, "%s -> %s: %d cleared, %d filled%s\n",
		ev.Turn, ev.SnapshotOf, len(ev.Cleared), len(ev.Filled), controlSuffix(ev.ControlChanged))
}

func controlSuffix(regions []string) string {
	if len(regions) == 0 {
		return ""
	}
	return ", control: " + strings.Join(regions, ", ")
}

var _ service.Broadcaster = printer{}
