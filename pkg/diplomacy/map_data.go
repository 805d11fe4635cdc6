package diplomacy

import (
	"sort"
	"sync"
)

var (
	stdMapOnce sync.Once
	stdMapInst *DiplomacyMap
)

// StandardMap returns the standard 75-province Diplomacy map. The map is
// built once and cached; callers must not mutate it.
func StandardMap() *DiplomacyMap {
	stdMapOnce.Do(func() {
		stdMapInst = buildStandardMap()
	})
	return stdMapInst
}

func buildStandardMap() *DiplomacyMap {
	m := &DiplomacyMap{
		Provinces: make(map[string]*Province, ProvinceCount),
		byName:    make(map[string]*Province, ProvinceCount),
	}

	prov := func(id, name string, pt ProvinceType, sc bool, hp Power) {
		p := &Province{
			ID:             id,
			Name:           name,
			Type:           pt,
			IsSupplyCenter: sc,
			HomePower:      hp,
		}
		m.Provinces[id] = p
		m.byName[name] = p
	}

	// --- Inland provinces (14) ---
	prov("boh", "Bohemia", Land, false, NoPower)
	prov("bud", "Budapest", Land, true, Austria)
	prov("bur", "Burgundy", Land, false, NoPower)
	prov("gal", "Galicia", Land, false, NoPower)
	prov("mos", "Moscow", Land, true, Russia)
	prov("mun", "Munich", Land, true, Germany)
	prov("par", "Paris", Land, true, France)
	prov("ruh", "Ruhr", Land, false, NoPower)
	prov("ser", "Serbia", Land, true, NoPower)
	prov("sil", "Silesia", Land, false, NoPower)
	prov("tyr", "Tyrolia", Land, false, NoPower)
	prov("ukr", "Ukraine", Land, false, NoPower)
	prov("vie", "Vienna", Land, true, Austria)
	prov("war", "Warsaw", Land, true, Russia)

	// --- Coastal provinces (42, three of them with split coasts) ---
	prov("alb", "Albania", Coastal, false, NoPower)
	prov("ank", "Ankara", Coastal, true, Turkey)
	prov("apu", "Apulia", Coastal, false, NoPower)
	prov("arm", "Armenia", Coastal, false, NoPower)
	prov("bel", "Belgium", Coastal, true, NoPower)
	prov("ber", "Berlin", Coastal, true, Germany)
	prov("bre", "Brest", Coastal, true, France)
	prov("bul", "Bulgaria", Coastal, true, NoPower)
	prov("cly", "Clyde", Coastal, false, NoPower)
	prov("con", "Constantinople", Coastal, true, Turkey)
	prov("den", "Denmark", Coastal, true, NoPower)
	prov("edi", "Edinburgh", Coastal, true, England)
	prov("fin", "Finland", Coastal, false, NoPower)
	prov("gas", "Gascony", Coastal, false, NoPower)
	prov("gre", "Greece", Coastal, true, NoPower)
	prov("hol", "Holland", Coastal, true, NoPower)
	prov("kie", "Kiel", Coastal, true, Germany)
	prov("lon", "London", Coastal, true, England)
	prov("lvn", "Livonia", Coastal, false, NoPower)
	prov("lvp", "Liverpool", Coastal, true, England)
	prov("mar", "Marseilles", Coastal, true, France)
	prov("naf", "North Africa", Coastal, false, NoPower)
	prov("nap", "Naples", Coastal, true, Italy)
	prov("nwy", "Norway", Coastal, true, NoPower)
	prov("pic", "Picardy", Coastal, false, NoPower)
	prov("pie", "Piedmont", Coastal, false, NoPower)
	prov("por", "Portugal", Coastal, true, NoPower)
	prov("pru", "Prussia", Coastal, false, NoPower)
	prov("rom", "Rome", Coastal, true, Italy)
	prov("rum", "Rumania", Coastal, true, NoPower)
	prov("sev", "Sevastopol", Coastal, true, Russia)
	prov("smy", "Smyrna", Coastal, true, Turkey)
	prov("spa", "Spain", Coastal, true, NoPower)
	prov("stp", "St Petersburg", Coastal, true, Russia)
	prov("swe", "Sweden", Coastal, true, NoPower)
	prov("syr", "Syria", Coastal, false, NoPower)
	prov("tri", "Trieste", Coastal, true, Austria)
	prov("tun", "Tunis", Coastal, true, NoPower)
	prov("tus", "Tuscany", Coastal, false, NoPower)
	prov("ven", "Venice", Coastal, true, Italy)
	prov("wal", "Wales", Coastal, false, NoPower)
	prov("yor", "Yorkshire", Coastal, false, NoPower)

	// --- Sea provinces (19) ---
	prov("adr", "Adriatic Sea", Sea, false, NoPower)
	prov("aeg", "Aegean Sea", Sea, false, NoPower)
	prov("bal", "Baltic Sea", Sea, false, NoPower)
	prov("bar", "Barents Sea", Sea, false, NoPower)
	prov("bla", "Black Sea", Sea, false, NoPower)
	prov("bot", "Gulf of Bothnia", Sea, false, NoPower)
	prov("eas", "Eastern Mediterranean", Sea, false, NoPower)
	prov("eng", "English Channel", Sea, false, NoPower)
	prov("gol", "Gulf of Lyon", Sea, false, NoPower)
	prov("hel", "Heligoland Bight", Sea, false, NoPower)
	prov("ion", "Ionian Sea", Sea, false, NoPower)
	prov("iri", "Irish Sea", Sea, false, NoPower)
	prov("mao", "Mid-Atlantic Ocean", Sea, false, NoPower)
	prov("nao", "North Atlantic Ocean", Sea, false, NoPower)
	prov("nrg", "Norwegian Sea", Sea, false, NoPower)
	prov("nth", "North Sea", Sea, false, NoPower)
	prov("ska", "Skagerrak", Sea, false, NoPower)
	prov("tys", "Tyrrhenian Sea", Sea, false, NoPower)
	prov("wes", "Western Mediterranean", Sea, false, NoPower)

	m.names = make([]string, 0, len(m.byName))
	for name := range m.byName {
		m.names = append(m.names, name)
	}
	sort.Strings(m.names)

	return m
}

type startingUnit struct {
	Type     UnitType
	Power    Power
	Province string
}

func initialUnits() []startingUnit {
	return []startingUnit{
		// Austria
		{Army, Austria, "vie"},
		{Army, Austria, "bud"},
		{Fleet, Austria, "tri"},
		// England
		{Fleet, England, "lon"},
		{Fleet, England, "edi"},
		{Army, England, "lvp"},
		// France
		{Fleet, France, "bre"},
		{Army, France, "par"},
		{Army, France, "mar"},
		// Germany
		{Fleet, Germany, "kie"},
		{Army, Germany, "ber"},
		{Army, Germany, "mun"},
		// Italy
		{Fleet, Italy, "nap"},
		{Army, Italy, "rom"},
		{Army, Italy, "ven"},
		// Russia
		{Fleet, Russia, "stp"},
		{Army, Russia, "mos"},
		{Army, Russia, "war"},
		{Fleet, Russia, "sev"},
		// Turkey
		{Fleet, Turkey, "ank"},
		{Army, Turkey, "con"},
		{Army, Turkey, "smy"},
	}
}

// StandardSeed returns the Spring 1901 map state: every province keyed by
// display name, home centres owned by their power, neutral centres and
// all other regions owned by no one.
func StandardSeed() MapState {
	m := StandardMap()
	s := make(MapState, len(m.Provinces))
	for _, p := range m.Provinces {
		s[p.Name] = Region{
			UnitType:       NoUnit,
			CurrentControl: p.HomePower,
			ControlledBy:   p.HomePower,
			SupplyCentre:   p.IsSupplyCenter,
		}
	}
	for _, u := range initialUnits() {
		p := m.Provinces[u.Province]
		r := s[p.Name]
		r.UnitType = u.Type
		r.CurrentControl = u.Power
		s[p.Name] = r
	}
	return s
}
