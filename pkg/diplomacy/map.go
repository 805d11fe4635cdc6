package diplomacy

// ProvinceCount is the number of provinces on the standard Diplomacy map.
const ProvinceCount = 75

// ProvinceType classifies a province as land, sea, or coastal.
type ProvinceType int

const (
	Land    ProvinceType = iota // Inland province (armies only)
	Sea                         // Sea province (fleets only)
	Coastal                     // Coastal province (armies or fleets)
)

// Province is a static description of one region of the standard map.
// Snapshots key regions by Name.
type Province struct {
	ID             string
	Name           string
	Type           ProvinceType
	IsSupplyCenter bool
	HomePower      Power // NoPower if not a home supply centre
}

// DiplomacyMap holds the fixed province table.
type DiplomacyMap struct {
	Provinces map[string]*Province // keyed by short ID
	byName    map[string]*Province
	names     []string // sorted display names
}

// ProvinceByName returns the province with the given display name.
func (m *DiplomacyMap) ProvinceByName(name string) (*Province, bool) {
	p, ok := m.byName[name]
	return p, ok
}

// Names returns the display names of all provinces in sorted order.
// Callers must not mutate the returned slice.
func (m *DiplomacyMap) Names() []string {
	return m.names
}

// SupplyCenters returns the number of supply centres on the map.
func (m *DiplomacyMap) SupplyCenters() int {
	count := 0
	for _, p := range m.Provinces {
		if p.IsSupplyCenter {
			count++
		}
	}
	return count
}
