package diplomacy

import (
	"errors"
	"fmt"
	"sort"
)

// ErrUnknownRegion is matched by every *UnknownRegionError.
var ErrUnknownRegion = errors.New("unknown region")

// UnknownRegionError reports an order that names a region missing from
// the map state. The map is closed-world, so this is always fatal.
type UnknownRegionError struct {
	Region string
	Power  Power
	Origin string // region whose order referenced it
}

func (e *UnknownRegionError) Error() string {
	if e.Origin != "" && e.Origin != e.Region {
		return fmt.Sprintf("unknown region %q (referenced by %s order at %q)", e.Region, e.Power, e.Origin)
	}
	return fmt.Sprintf("unknown region %q", e.Region)
}

func (e *UnknownRegionError) Is(target error) bool {
	return target == ErrUnknownRegion
}

// Region is the control and occupation record of a single map region.
type Region struct {
	UnitType       UnitType `json:"unitType" yaml:"unitType"`
	CurrentControl Power    `json:"currentControl" yaml:"currentControl"`
	ControlledBy   Power    `json:"controlledBy" yaml:"controlledBy"`
	SupplyCentre   bool     `json:"supplyCentre" yaml:"supplyCentre"`
}

// Occupied reports whether a unit stands in the region. CurrentControl is
// meaningless for occupation purposes when this is false.
func (r Region) Occupied() bool {
	return r.UnitType != NoUnit
}

// MapState maps region name to its record. It is threaded from turn to
// turn as a value; Resolve never mutates its input.
type MapState map[string]Region

// Clone returns a copy of the state. Region is a plain value so a shallow
// copy of the map is a deep copy.
func (s MapState) Clone() MapState {
	if s == nil {
		return nil
	}
	c := make(MapState, len(s))
	for k, v := range s {
		c[k] = v
	}
	return c
}

// Lookup returns the record for name, or an *UnknownRegionError.
func (s MapState) Lookup(name string) (Region, error) {
	r, ok := s[name]
	if !ok {
		return Region{}, &UnknownRegionError{Region: name}
	}
	return r, nil
}

// Regions returns all region names in sorted order.
func (s MapState) Regions() []string {
	names := make([]string, 0, len(s))
	for k := range s {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// UnitCount returns the number of regions occupied by the given power.
func (s MapState) UnitCount(power Power) int {
	count := 0
	for _, r := range s {
		if r.Occupied() && r.CurrentControl == power {
			count++
		}
	}
	return count
}

// SupplyCentreCount returns the number of supply centres officially
// controlled by the given power.
func (s MapState) SupplyCentreCount(power Power) int {
	count := 0
	for _, r := range s {
		if r.SupplyCentre && r.ControlledBy == power {
			count++
		}
	}
	return count
}
