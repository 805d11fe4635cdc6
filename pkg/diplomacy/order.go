package diplomacy

import (
	"bytes"
	"encoding/json"
	"sort"
)

// OrderType names the kind of order a unit was given. Values outside the
// constants below are carried through untouched and resolve as no-ops.
type OrderType string

const (
	OrderMove    OrderType = "MOVE"
	OrderHold    OrderType = "HOLD"
	OrderSupport OrderType = "SUPPORT"
	OrderConvoy  OrderType = "CONVOY"
	OrderBuild   OrderType = "BUILD"
	OrderDisband OrderType = "DISBAND"
)

// OrderResult is the adjudicated outcome of an order. Only ResultSucceeds
// and ResultFails carry meaning during resolution.
type OrderResult string

const (
	ResultSucceeds  OrderResult = "SUCCEEDS"
	ResultFails     OrderResult = "FAILS"
	ResultBounces   OrderResult = "BOUNCES"
	ResultDislodged OrderResult = "DISLODGED"
)

// Retreat is the secondary order of a unit whose primary order did not
// succeed but which survived into the retreat phase.
type Retreat struct {
	Type   OrderType   `json:"type"`
	Result OrderResult `json:"result"`
	To     string      `json:"to,omitempty"`
}

// Order is one power's adjudicated order for the unit (or build site) at
// a region.
type Order struct {
	Type     OrderType   `json:"type"`
	Result   OrderResult `json:"result"`
	To       string      `json:"to,omitempty"`        // MOVE only
	UnitType *UnitType   `json:"unit_type,omitempty"` // BUILD only
	Retreat  *Retreat    `json:"retreat,omitempty"`

	// Fields lists every key of the decoded order except retreat, in
	// document order. Nil for orders built in code.
	Fields []Field `json:"-"`
}

// Field is one key of an order and its value rendered as text.
type Field struct {
	Key   string
	Value string
}

// UnmarshalJSON decodes the known keys into the typed fields and records
// every key, known or not, in Fields.
func (o *Order) UnmarshalJSON(data []byte) error {
	if string(bytes.TrimSpace(data)) == "null" {
		return nil
	}
	type plain Order
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	fields, err := orderedFields(data)
	if err != nil {
		return err
	}
	*o = Order(p)
	o.Fields = fields
	return nil
}

// orderedFields walks the top level of a JSON object and returns its keys
// in order, leaving out retreat.
func orderedFields(data []byte) ([]Field, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	var fields []Field
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, _ := tok.(string)
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, err
		}
		if key == "retreat" {
			continue
		}
		fields = append(fields, Field{Key: key, Value: fieldText(raw)})
	}
	return fields, nil
}

// fieldText renders a JSON value the way it reads in a sentence: strings
// unquoted, null as None, anything else as compact JSON.
func fieldText(raw json.RawMessage) string {
	var v any
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		return string(raw)
	}
	switch x := v.(type) {
	case nil:
		return "None"
	case string:
		return x
	case bool:
		if x {
			return "True"
		}
		return "False"
	case json.Number:
		return x.String()
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}

// Succeeded reports whether the primary order was carried out.
func (o Order) Succeeded() bool {
	return o.Result == ResultSucceeds
}

// TurnRecord holds every order submitted in one turn, keyed by power and
// then by origin region.
type TurnRecord struct {
	Orders map[Power]map[string]Order `json:"orders"`
}

// OrderEntry pairs an order with the power and region it belongs to.
type OrderEntry struct {
	Power  Power
	Region string
	Order  Order
}

// Entries returns all orders sorted by power, then region, so that
// iteration over a record is deterministic.
func (t *TurnRecord) Entries() []OrderEntry {
	if t == nil {
		return nil
	}
	var entries []OrderEntry
	for power, byRegion := range t.Orders {
		for region, o := range byRegion {
			entries = append(entries, OrderEntry{Power: power, Region: region, Order: o})
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Power != entries[j].Power {
			return entries[i].Power < entries[j].Power
		}
		return entries[i].Region < entries[j].Region
	})
	return entries
}

// OrdersOf returns the given power's orders sorted by region.
func (t *TurnRecord) OrdersOf(power Power) []OrderEntry {
	if t == nil {
		return nil
	}
	byRegion := t.Orders[power]
	entries := make([]OrderEntry, 0, len(byRegion))
	for region, o := range byRegion {
		entries = append(entries, OrderEntry{Power: power, Region: region, Order: o})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Region < entries[j].Region })
	return entries
}

// Powers returns the seven great powers followed by any other power that
// appears in the record, the extras sorted by name.
func (t *TurnRecord) Powers() []Power {
	powers := AllPowers()
	if t == nil {
		return powers
	}
	known := make(map[Power]bool, len(powers))
	for _, p := range powers {
		known[p] = true
	}
	var extra []Power
	for p := range t.Orders {
		if !known[p] {
			extra = append(extra, p)
		}
	}
	sort.Slice(extra, func(i, j int) bool { return extra[i] < extra[j] })
	return append(powers, extra...)
}
