package diplomacy

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Power represents one of the seven great powers.
type Power string

const (
	Austria Power = "Austria"
	England Power = "England"
	France  Power = "France"
	Germany Power = "Germany"
	Italy   Power = "Italy"
	Russia  Power = "Russia"
	Turkey  Power = "Turkey"
	NoPower Power = "None"
)

// AllPowers returns the seven great powers in standard order.
func AllPowers() []Power {
	return []Power{Austria, England, France, Germany, Italy, Russia, Turkey}
}

// IsNone reports whether p names no power. Snapshots use "None", older
// files leave the field empty.
func (p Power) IsNone() bool {
	return p == NoPower || p == ""
}

// UnitType represents the occupant of a region.
type UnitType int

const (
	NoUnit UnitType = iota
	Army
	Fleet
)

func (u UnitType) String() string {
	switch u {
	case Army:
		return "Army"
	case Fleet:
		return "Fleet"
	default:
		return "None"
	}
}

// ParseUnitType accepts "Army", "Fleet", "None" in any case, plus the
// short forms "A" and "F". An empty string is treated as no unit.
func ParseUnitType(s string) (UnitType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "army", "a":
		return Army, nil
	case "fleet", "f":
		return Fleet, nil
	case "none", "":
		return NoUnit, nil
	}
	return NoUnit, fmt.Errorf("unknown unit type %q", s)
}

func (u UnitType) MarshalJSON() ([]byte, error) {
	return json.Marshal(u.String())
}

func (u *UnitType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("unit type: %w", err)
	}
	parsed, err := ParseUnitType(s)
	if err != nil {
		return err
	}
	*u = parsed
	return nil
}

func (u UnitType) MarshalYAML() (any, error) {
	return u.String(), nil
}

func (u *UnitType) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return fmt.Errorf("unit type: %w", err)
	}
	parsed, err := ParseUnitType(s)
	if err != nil {
		return err
	}
	*u = parsed
	return nil
}
