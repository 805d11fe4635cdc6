package main

import (
	"bytes"
	"testing"

	"github.com/freeeve/polite-betrayal/replay/internal/service"
	"github.com/freeeve/polite-betrayal/replay/pkg/diplomacy"
)

func TestFormatSummary(t *testing.T) {
	final, _ := diplomacy.ParseTurnID("DiplomacyGame2_1903_spring")
	austria := diplomacy.Tally{
		{Power: diplomacy.Austria, Centres: []string{"Budapest", "Trieste", "Vienna"}},
		{Power: diplomacy.England},
	}
	tests := []struct {
		name string
		sum  service.GameSummary
		want string
	}{
		{
			"leader",
			service.GameSummary{Game: 2, Turns: 6, Final: final, Tally: austria},
			"game 2: 6 turns, final DiplomacyGame2_1903_spring, leader Austria (3 centres)",
		},
		{
			"solo",
			service.GameSummary{Game: 2, Turns: 6, Final: final, Tally: austria, Winner: diplomacy.Austria, HasWinner: true},
			"game 2: 6 turns, final DiplomacyGame2_1903_spring, leader Austria (3 centres), solo win: Austria",
		},
		{
			"empty board",
			service.GameSummary{Game: 2, Turns: 1, Final: final, Tally: diplomacy.Tally{{Power: diplomacy.France}}},
			"game 2: 1 turns, final DiplomacyGame2_1903_spring, no centres owned",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatSummary(tt.sum); got != tt.want {
				t.Errorf("got  %q\nwant %q", got, tt.want)
			}
		})
	}
}

func TestPrinter(t *testing.T) {
	var buf bytes.Buffer
	p := printer{w: &buf}
	turn, _ := diplomacy.ParseTurnID("Game1_1901_winter")

	p.BroadcastGameEvent(1, service.EventGameReplayed, nil)
	p.BroadcastGameEvent(1, service.EventTurnResolved, service.TurnResolved{
		Turn:           turn,
		SnapshotOf:     turn.Next(),
		Cleared:        []string{"Vienna"},
		Filled:         []string{"Budapest"},
		ControlChanged: []string{"Budapest"},
	})

	want := "Game1_1901_winter -> Game1_1902_spring: 1 cleared, 1 filled, control: Budapest\n"
	if buf.String() != want {
		t.Errorf("got %q, want %q", buf.String(), want)
	}
}
