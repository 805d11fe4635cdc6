package diplomacy

import (
	"errors"
	"fmt"
	"sort"
)

// ErrBuildWithoutUnit is returned for a successful BUILD that does not say
// which unit was built.
var ErrBuildWithoutUnit = errors.New("build without unit type")

// Resolution describes what a single Resolve call did, for logging and
// inspection. Region lists are sorted.
type Resolution struct {
	State          MapState
	Cleared        []string // regions whose unit was removed
	Filled         []string // regions that received a unit (moves, retreats, builds)
	ControlChanged []string // regions whose official owner changed (winter only)
}

// Resolve applies one turn's adjudicated orders to prior and returns the
// next map state. prior is never modified.
//
// Resolution collects every intended clear and fill first and only then
// applies them, so a region vacated by one unit while another unit moves
// or retreats into it ends up occupied. Official control changes only when
// isWinter is set.
func Resolve(record *TurnRecord, prior MapState, isWinter bool) (MapState, error) {
	res, err := ResolveDetailed(record, prior, isWinter)
	if err != nil {
		return nil, err
	}
	return res.State, nil
}

// ResolveDetailed is Resolve that also reports the affected regions.
func ResolveDetailed(record *TurnRecord, prior MapState, isWinter bool) (*Resolution, error) {
	entries := record.Entries()
	if err := checkOrders(entries, prior); err != nil {
		return nil, err
	}

	next := prior.Clone()
	if next == nil {
		next = MapState{}
	}
	cleared := make(map[string]bool)
	filled := make(map[string]bool)

	// relocate moves the unit standing at from in the prior state. Reading
	// from prior keeps the copied unit type independent of order iteration.
	relocate := func(power Power, from, to string) {
		dst := next[to]
		dst.UnitType = prior[from].UnitType
		dst.CurrentControl = power
		next[to] = dst
		cleared[from] = true
		filled[to] = true
	}

	// Failed primaries: only units with a retreat outcome move or vanish.
	for _, e := range entries {
		o := e.Order
		if o.Succeeded() || o.Retreat == nil {
			continue
		}
		switch {
		case o.Retreat.Result == ResultFails:
			cleared[e.Region] = true
		case o.Retreat.Type == OrderMove:
			relocate(e.Power, e.Region, o.Retreat.To)
		case o.Retreat.Type == OrderDisband:
			cleared[e.Region] = true
		}
	}

	// Successful primaries.
	for _, e := range entries {
		o := e.Order
		if !o.Succeeded() {
			continue
		}
		switch o.Type {
		case OrderMove:
			relocate(e.Power, e.Region, o.To)
		case OrderBuild:
			r := next[e.Region]
			r.UnitType = *o.UnitType
			r.CurrentControl = e.Power
			next[e.Region] = r
			filled[e.Region] = true
		}
	}

	res := &Resolution{State: next}
	for region := range cleared {
		if filled[region] {
			continue
		}
		r := next[region]
		r.UnitType = NoUnit
		next[region] = r
		res.Cleared = append(res.Cleared, region)
	}
	for region := range filled {
		res.Filled = append(res.Filled, region)
	}

	if isWinter {
		for name, r := range next {
			if !r.Occupied() || r.ControlledBy == r.CurrentControl {
				continue
			}
			r.ControlledBy = r.CurrentControl
			next[name] = r
			res.ControlChanged = append(res.ControlChanged, name)
		}
	}

	sort.Strings(res.Cleared)
	sort.Strings(res.Filled)
	sort.Strings(res.ControlChanged)
	return res, nil
}

// checkOrders verifies every region an order names exists in state and
// that every successful build names a unit.
func checkOrders(entries []OrderEntry, state MapState) error {
	check := func(e OrderEntry, name string) error {
		if _, ok := state[name]; ok {
			return nil
		}
		return &UnknownRegionError{Region: name, Power: e.Power, Origin: e.Region}
	}
	for _, e := range entries {
		if err := check(e, e.Region); err != nil {
			return err
		}
		if e.Order.Type == OrderBuild && e.Order.Succeeded() &&
			(e.Order.UnitType == nil || *e.Order.UnitType == NoUnit) {
			return fmt.Errorf("%s build at %s: %w", e.Power, e.Region, ErrBuildWithoutUnit)
		}
		if e.Order.To != "" || (e.Order.Type == OrderMove && e.Order.Succeeded()) {
			if err := check(e, e.Order.To); err != nil {
				return err
			}
		}
		if rt := e.Order.Retreat; rt != nil {
			if rt.To != "" || (rt.Type == OrderMove && rt.Result != ResultFails && !e.Order.Succeeded()) {
				if err := check(e, rt.To); err != nil {
					return err
				}
			}
		}
	}
	return nil
}
