// Command tally prints the supply centres owned by each power in a map
// snapshot, to check a replay by hand.
//
// Usage:
//
//	go run ./cmd/tally/ --turn DiplomacyGame1_1905_spring
//	go run ./cmd/tally/ --game 1
//	go run ./cmd/tally/ --file moves_map/DiplomacyGame1_1905_spring.json
//	go run ./cmd/tally/ --cache --game 1 --redis redis://localhost:6379/0 [--counts]
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/rs/zerolog/log"

	"github.com/freeeve/polite-betrayal/replay/internal/app"
	"github.com/freeeve/polite-betrayal/replay/internal/config"
	"github.com/freeeve/polite-betrayal/replay/internal/logger"
	"github.com/freeeve/polite-betrayal/replay/internal/repository/file"
	"github.com/freeeve/polite-betrayal/replay/pkg/diplomacy"
)

func main() {
	logger.Init()
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Config load failed")
	}

	var q query
	flag.StringVar(&q.turn, "turn", "", "Turn identifier whose snapshot to count")
	flag.IntVar(&q.game, "game", 0, "Count the latest snapshot of this game")
	flag.StringVar(&q.path, "file", "", "Count a snapshot file directly")
	flag.BoolVar(&q.cache, "cache", false, "Count the latest state cached in Redis for --game")
	counts := flag.Bool("counts", false, "With --cache, print only the cached centre counts")
	asJSON := flag.Bool("json", false, "Print the tally as JSON")
	flag.StringVar(&cfg.SnapshotDir, "dir", cfg.SnapshotDir, "Snapshot directory")
	flag.StringVar(&cfg.SQLitePath, "sqlite", cfg.SQLitePath, "Read snapshots from this SQLite file")
	flag.StringVar(&cfg.DatabaseURL, "db", cfg.DatabaseURL, "Read snapshots from Postgres")
	flag.StringVar(&cfg.RedisURL, "redis", cfg.RedisURL, "Redis holding the cached latest states")
	flag.IntVar(&cfg.SoloThreshold, "solo", cfg.SoloThreshold, "Centres needed for a solo win")
	flag.Parse()

	if *counts {
		byPower, err := loadCounts(cfg, q.game)
		if err != nil {
			log.Fatal().Err(err).Msg("Tally failed")
		}
		if err := writeCounts(os.Stdout, byPower); err != nil {
			log.Fatal().Err(err).Msg("Write failed")
		}
		return
	}

	tally, label, err := load(cfg, q)
	if err != nil {
		log.Fatal().Err(err).Msg("Tally failed")
	}

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(tally); err != nil {
			log.Fatal().Err(err).Msg("Encode failed")
		}
		return
	}
	fmt.Println(label)
	if err := writeTally(os.Stdout, tally, cfg.SoloThreshold); err != nil {
		log.Fatal().Err(err).Msg("Write failed")
	}
}

// query selects the state to count.
type query struct {
	turn  string
	game  int
	path  string
	cache bool
}

func load(cfg *config.Config, q query) (diplomacy.Tally, string, error) {
	if q.path != "" {
		state, err := file.ReadSnapshotFile(q.path)
		if err != nil {
			return nil, "", err
		}
		return diplomacy.CountTally(state), q.path, nil
	}
	if q.turn == "" && q.game == 0 {
		return nil, "", fmt.Errorf("one of --turn, --game or --file is required")
	}
	if q.cache && q.game == 0 {
		return nil, "", fmt.Errorf("--cache needs --game")
	}
	if !q.cache {
		cfg.RedisURL = ""
	}

	ctx := context.Background()
	stores, err := app.Open(ctx, cfg)
	if err != nil {
		return nil, "", err
	}
	defer stores.Close()
	svc, err := stores.NewReplayService(cfg, false)
	if err != nil {
		return nil, "", err
	}

	if q.cache {
		turn, tally, err := svc.CachedTally(ctx, q.game)
		return tally, turn.String() + " (cached)", err
	}
	if q.turn != "" {
		turn, err := diplomacy.ParseTurnID(q.turn)
		if err != nil {
			return nil, "", err
		}
		tally, err := svc.TallyTurn(ctx, turn)
		return tally, turn.String(), err
	}
	turn, tally, err := svc.LatestTally(ctx, q.game)
	return tally, turn.String(), err
}

// loadCounts reads the centre counts cached for game.
func loadCounts(cfg *config.Config, game int) (map[diplomacy.Power]int, error) {
	if game == 0 || cfg.RedisURL == "" {
		return nil, fmt.Errorf("--counts needs --game and --redis")
	}
	ctx := context.Background()
	stores, err := app.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}
	defer stores.Close()
	svc, err := stores.NewReplayService(cfg, false)
	if err != nil {
		return nil, err
	}
	return svc.CachedCentres(ctx, game)
}

// writeCounts prints one "power count" row per power, the great powers
// first in standard order.
func writeCounts(w io.Writer, counts map[diplomacy.Power]int) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	seen := make(map[diplomacy.Power]bool)
	for _, p := range diplomacy.AllPowers() {
		seen[p] = true
		fmt.Fprintf(tw, "%s\t%d\n", p, counts[p])
	}
	var extra []string
	for p := range counts {
		if !seen[p] {
			extra = append(extra, string(p))
		}
	}
	sort.Strings(extra)
	for _, p := range extra {
		fmt.Fprintf(tw, "%s\t%d\n", p, counts[diplomacy.Power(p)])
	}
	return tw.Flush()
}

// writeTally prints one row per power: name, count and sorted centres,
// then the total and any solo winner.
func writeTally(w io.Writer, t diplomacy.Tally, solo int) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, pt := range t {
		fmt.Fprintf(tw, "%s\t%d\t%s\n", pt.Power, pt.Count(), strings.Join(pt.Centres, ", "))
	}
	fmt.Fprintf(tw, "total\t%d\t\n", t.Total())
	if winner, ok := t.SoloWinner(solo); ok {
		fmt.Fprintf(tw, "solo\t%s\t\n", winner)
	}
	return tw.Flush()
}
