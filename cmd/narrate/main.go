// Command narrate writes the per-power order narratives of every turn
// without rebuilding snapshots.
//
// Usage:
//
//	go run ./cmd/narrate/ --moves moves --out moves_sentences [--game 3]
//	go run ./cmd/narrate/ --show DiplomacyGame3_1902_fall
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/freeeve/polite-betrayal/replay/internal/app"
	"github.com/freeeve/polite-betrayal/replay/internal/config"
	"github.com/freeeve/polite-betrayal/replay/internal/logger"
	"github.com/freeeve/polite-betrayal/replay/pkg/diplomacy"
)

func main() {
	logger.Init()
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Config load failed")
	}

	game := flag.Int("game", 0, "Narrate only this game number (0 = every game found)")
	flag.StringVar(&cfg.MovesDir, "moves", cfg.MovesDir, "Directory of turn records")
	flag.StringVar(&cfg.SentencesDir, "out", cfg.SentencesDir, "Directory for narratives")
	flag.StringVar(&cfg.SQLitePath, "sqlite", cfg.SQLitePath, "Store narratives in this SQLite file")
	flag.StringVar(&cfg.DatabaseURL, "db", cfg.DatabaseURL, "Store narratives in Postgres")
	show := flag.String("show", "", "Print the stored narrative of this turn instead of writing")
	flag.BoolVar(&cfg.SkipFinalSnapshot, "no-final", cfg.SkipFinalSnapshot, "Write nothing after the last listed turn")
	flag.Parse()

	// Narratives never touch the cache.
	cfg.RedisURL = ""

	ctx := logger.WithRunID(context.Background(), logger.NewRunID())
	stores, err := app.Open(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Open stores failed")
	}
	defer stores.Close()

	svc, err := stores.NewReplayService(cfg, true)
	if err != nil {
		log.Fatal().Err(err).Msg("Narrate setup failed")
	}

	if *show != "" {
		turn, err := diplomacy.ParseTurnID(*show)
		if err != nil {
			stores.Close()
			log.Fatal().Err(err).Msg("Bad turn")
		}
		n, err := svc.Narrative(ctx, turn)
		if err != nil {
			stores.Close()
			log.Fatal().Err(err).Str("turn", turn.String()).Msg("Load narrative failed")
		}
		writeNarrative(os.Stdout, n)
		return
	}

	games := []int{*game}
	if *game == 0 {
		names, err := stores.Turns.ListTurns(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("List turns failed")
		}
		games = diplomacy.GameIDs(names)
	}

	total := 0
	for _, g := range games {
		n, err := svc.NarrateGame(ctx, g)
		total += n
		if err != nil {
			stores.Close()
			log.Fatal().Err(err).Int("game", g).Msg("Narrate failed")
		}
	}
	fmt.Printf("wrote %d narratives for %d games\n", total, len(games))
}

// writeNarrative prints every sentence, great powers first in standard
// order, then any other power found.
func writeNarrative(w io.Writer, n diplomacy.Narrative) {
	rec := &diplomacy.TurnRecord{Orders: make(map[diplomacy.Power]map[string]diplomacy.Order, len(n))}
	for p := range n {
		rec.Orders[p] = nil
	}
	for _, p := range rec.Powers() {
		for _, line := range n[p] {
			fmt.Fprintln(w, line)
		}
	}
}
