package diplomacy

import (
	"errors"
	"fmt"
	"path"
	"sort"
	"strconv"
	"strings"
)

// Season is a position in the fixed yearly cycle. The zero value is not a
// valid season so that an unparsed Season is never silently Spring.
type Season int

const (
	Spring Season = iota + 1
	Fall
	Winter
)

var seasonNames = [...]string{Spring: "spring", Fall: "fall", Winter: "winter"}

func (s Season) String() string {
	if s < Spring || s > Winter {
		return "unknown"
	}
	return seasonNames[s]
}

// Valid reports whether s is one of the three seasons.
func (s Season) Valid() bool {
	return s >= Spring && s <= Winter
}

// ParseSeason converts "spring", "fall" or "winter" (any case) to a Season.
func ParseSeason(s string) (Season, error) {
	switch strings.ToLower(s) {
	case "spring":
		return Spring, nil
	case "fall":
		return Fall, nil
	case "winter":
		return Winter, nil
	}
	return 0, fmt.Errorf("unknown season %q", s)
}

// ErrMalformedTurnID is matched by every *TurnIDError.
var ErrMalformedTurnID = errors.New("malformed turn id")

// ErrDuplicateTurn is returned when a listing holds two records for the
// same game, year and season.
var ErrDuplicateTurn = errors.New("duplicate turn")

// TurnIDError reports an identifier that claims a game but does not encode
// a parsable year and season.
type TurnIDError struct {
	Name   string
	Reason string
}

func (e *TurnIDError) Error() string {
	return fmt.Sprintf("malformed turn id %q: %s", e.Name, e.Reason)
}

func (e *TurnIDError) Is(target error) bool {
	return target == ErrMalformedTurnID
}

// TurnID identifies one turn of one game. Identifiers have the form
// <prefix>Game<N>_<year>_<season>, optionally followed by extensions.
type TurnID struct {
	Prefix string // text before "Game", e.g. "Diplomacy"
	Game   int
	Year   int
	Season Season
}

const gameMarker = "Game"

// ParseTurnID parses a turn identifier. Directory components and file
// extensions are ignored.
func ParseTurnID(name string) (TurnID, error) {
	stem := stemOf(name)
	prefix, game, rest, ok := splitGame(stem)
	if !ok {
		return TurnID{}, &TurnIDError{Name: name, Reason: "missing Game<N>_ marker"}
	}
	parts := strings.Split(rest, "_")
	if len(parts) != 2 {
		return TurnID{}, &TurnIDError{Name: name, Reason: "expected <year>_<season> after game number"}
	}
	year, err := strconv.Atoi(parts[0])
	if err != nil {
		return TurnID{}, &TurnIDError{Name: name, Reason: "year is not an integer"}
	}
	season, err := ParseSeason(parts[1])
	if err != nil {
		return TurnID{}, &TurnIDError{Name: name, Reason: err.Error()}
	}
	return TurnID{Prefix: prefix, Game: game, Year: year, Season: season}, nil
}

// stemOf strips directories and every extension from name.
func stemOf(name string) string {
	base := path.Base(strings.ReplaceAll(name, "\\", "/"))
	if i := strings.IndexByte(base, '.'); i >= 0 {
		base = base[:i]
	}
	return base
}

// splitGame finds the last "Game<digits>_" marker in stem.
func splitGame(stem string) (prefix string, game int, rest string, ok bool) {
	search := stem
	for {
		i := strings.LastIndex(search, gameMarker)
		if i < 0 {
			return "", 0, "", false
		}
		tail := stem[i+len(gameMarker):]
		j := 0
		for j < len(tail) && tail[j] >= '0' && tail[j] <= '9' {
			j++
		}
		if j > 0 && j < len(tail) && tail[j] == '_' {
			n, err := strconv.Atoi(tail[:j])
			if err == nil {
				return stem[:i], n, tail[j+1:], true
			}
		}
		search = stem[:i]
	}
}

// String returns the canonical identifier, e.g. "DiplomacyGame1_1901_spring".
func (t TurnID) String() string {
	return fmt.Sprintf("%s%s%d_%d_%s", t.Prefix, gameMarker, t.Game, t.Year, t.Season)
}

// IsWinter reports whether this turn carries the official-control update.
func (t TurnID) IsWinter() bool {
	return t.Season == Winter
}

// Before orders turns by year, then season.
func (t TurnID) Before(o TurnID) bool {
	if t.Year != o.Year {
		return t.Year < o.Year
	}
	return t.Season < o.Season
}

// Next returns the turn that follows t in the spring, fall, winter cycle.
func (t TurnID) Next() TurnID {
	n := t
	if t.Season >= Winter {
		n.Year++
		n.Season = Spring
		return n
	}
	n.Season++
	return n
}

// ListedTurn is a sequenced turn together with the listing entry it was
// parsed from, which need not be spelled canonically.
type ListedTurn struct {
	ID   TurnID
	Name string
}

// SequenceListing picks the entries belonging to game out of an unordered,
// flat listing and returns them in chronological order. Names of other
// games and names without a game marker are ignored; a name that carries
// this game's marker but no valid year and season is an error.
func SequenceListing(names []string, game int) ([]ListedTurn, error) {
	marker := fmt.Sprintf("%s%d_", gameMarker, game)
	seen := make(map[[2]int]string)
	var turns []ListedTurn
	for _, name := range names {
		if !strings.Contains(stemOf(name), marker) {
			continue
		}
		id, err := ParseTurnID(name)
		if err != nil {
			return nil, err
		}
		if id.Game != game {
			continue
		}
		key := [2]int{id.Year, int(id.Season)}
		if prev, dup := seen[key]; dup {
			return nil, fmt.Errorf("%w: %q and %q", ErrDuplicateTurn, prev, name)
		}
		seen[key] = name
		turns = append(turns, ListedTurn{ID: id, Name: name})
	}
	sort.Slice(turns, func(i, j int) bool { return turns[i].ID.Before(turns[j].ID) })
	return turns, nil
}

// SequenceTurns is SequenceListing without the listed names.
func SequenceTurns(names []string, game int) ([]TurnID, error) {
	listed, err := SequenceListing(names, game)
	if err != nil {
		return nil, err
	}
	ids := make([]TurnID, len(listed))
	for i, lt := range listed {
		ids[i] = lt.ID
	}
	return ids, nil
}

// GameIDs returns the sorted game numbers that appear in a listing.
func GameIDs(names []string) []int {
	set := make(map[int]bool)
	for _, name := range names {
		if _, game, _, ok := splitGame(stemOf(name)); ok {
			set[game] = true
		}
	}
	games := make([]int, 0, len(set))
	for g := range set {
		games = append(games, g)
	}
	sort.Ints(games)
	return games
}
