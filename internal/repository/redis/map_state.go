package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/freeeve/polite-betrayal/replay/internal/repository"
	"github.com/freeeve/polite-betrayal/replay/pkg/diplomacy"
)

// Key patterns for the per-game replay cache.
func stateKey(game int) string   { return "replay:game:" + strconv.Itoa(game) + ":state" }
func turnKey(game int) string    { return "replay:game:" + strconv.Itoa(game) + ":turn" }
func centresKey(game int) string { return "replay:game:" + strconv.Itoa(game) + ":centres" }

// SetLatest stores the state reached after turn, together with the turn id
// and the per-power supply centre counts. All keys are written atomically.
func (c *Client) SetLatest(ctx context.Context, turn diplomacy.TurnID, state diplomacy.MapState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	counts := make(map[string]any)
	for _, pt := range diplomacy.CountTally(state) {
		counts[string(pt.Power)] = pt.Count()
	}

	_, err = c.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, stateKey(turn.Game), data, 0)
		pipe.Set(ctx, turnKey(turn.Game), turn.String(), 0)
		pipe.Del(ctx, centresKey(turn.Game))
		if len(counts) > 0 {
			pipe.HSet(ctx, centresKey(turn.Game), counts)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("set latest %s: %w", turn, err)
	}
	return nil
}

// GetLatest returns the most recently cached turn and state of game, or
// repository.ErrNotFound.
func (c *Client) GetLatest(ctx context.Context, game int) (diplomacy.TurnID, diplomacy.MapState, error) {
	vals, err := c.rdb.MGet(ctx, turnKey(game), stateKey(game)).Result()
	if err != nil {
		return diplomacy.TurnID{}, nil, fmt.Errorf("get latest: %w", err)
	}
	name, ok1 := vals[0].(string)
	raw, ok2 := vals[1].(string)
	if !ok1 || !ok2 {
		return diplomacy.TurnID{}, nil, fmt.Errorf("game %d: %w", game, repository.ErrNotFound)
	}
	turn, err := diplomacy.ParseTurnID(name)
	if err != nil {
		return diplomacy.TurnID{}, nil, fmt.Errorf("cached turn: %w", err)
	}
	var state diplomacy.MapState
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		return diplomacy.TurnID{}, nil, fmt.Errorf("decode cached state: %w", err)
	}
	return turn, state, nil
}

// Centres returns the cached supply centre count per power.
func (c *Client) Centres(ctx context.Context, game int) (map[diplomacy.Power]int, error) {
	raw, err := c.rdb.HGetAll(ctx, centresKey(game)).Result()
	if errors.Is(err, redis.Nil) || (err == nil && len(raw) == 0) {
		return nil, fmt.Errorf("game %d: %w", game, repository.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get centres: %w", err)
	}
	out := make(map[diplomacy.Power]int, len(raw))
	for p, v := range raw {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("centres of %s: %w", p, err)
		}
		out[diplomacy.Power(p)] = n
	}
	return out, nil
}

// DeleteGame removes all cached data for game.
func (c *Client) DeleteGame(ctx context.Context, game int) error {
	return c.rdb.Del(ctx, stateKey(game), turnKey(game), centresKey(game)).Err()
}
