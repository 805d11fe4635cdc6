package diplomacy

import "sort"

// SoloVictoryCenters is the number of supply centres that wins the game
// outright on the standard map.
const SoloVictoryCenters = 18

// PowerTally is one power's officially controlled supply centres.
type PowerTally struct {
	Power   Power
	Centres []string // sorted region names
}

// Count returns the number of centres held.
func (p PowerTally) Count() int {
	return len(p.Centres)
}

// Tally lists supply-centre ownership per power: the seven great powers in
// standard order (possibly with no centres), then any other owner found in
// the state, sorted by name.
type Tally []PowerTally

// CountTally computes the tally of a map state. It only reads the state.
func CountTally(state MapState) Tally {
	byPower := make(map[Power][]string)
	for name, r := range state {
		if !r.SupplyCentre || r.ControlledBy.IsNone() {
			continue
		}
		byPower[r.ControlledBy] = append(byPower[r.ControlledBy], name)
	}

	var t Tally
	for _, p := range AllPowers() {
		centres := byPower[p]
		sort.Strings(centres)
		t = append(t, PowerTally{Power: p, Centres: centres})
		delete(byPower, p)
	}

	var extra []Power
	for p := range byPower {
		extra = append(extra, p)
	}
	sort.Slice(extra, func(i, j int) bool { return extra[i] < extra[j] })
	for _, p := range extra {
		centres := byPower[p]
		sort.Strings(centres)
		t = append(t, PowerTally{Power: p, Centres: centres})
	}
	return t
}

// For returns the entry for power, or an empty entry if it holds nothing.
func (t Tally) For(power Power) PowerTally {
	for _, pt := range t {
		if pt.Power == power {
			return pt
		}
	}
	return PowerTally{Power: power}
}

// Total returns the number of owned supply centres across all powers.
func (t Tally) Total() int {
	n := 0
	for _, pt := range t {
		n += pt.Count()
	}
	return n
}

// Leader returns the power holding the most centres. Ties go to the power
// listed first. Returns NoPower if nobody holds anything.
func (t Tally) Leader() Power {
	best := NoPower
	bestCount := 0
	for _, pt := range t {
		if pt.Count() > bestCount {
			best, bestCount = pt.Power, pt.Count()
		}
	}
	return best
}

// SoloWinner reports the power holding at least threshold centres, if any.
func (t Tally) SoloWinner(threshold int) (Power, bool) {
	leader := t.Leader()
	if leader.IsNone() || t.For(leader).Count() < threshold {
		return NoPower, false
	}
	return leader, true
}
