package diplomacy

import (
	"iter"
	"strings"
)

// Narrative maps each power to the sentences describing its orders.
type Narrative map[Power][]string

// NoOrdersSentence is the sentinel sentence for a power without orders.
func NoOrdersSentence(power Power) string {
	return strings.ToLower(string(power)) + ": none"
}

// Describe renders one order as a lower-cased sentence, e.g.
// "austria: vienna: type: move, to: budapest, result: succeeds".
// Decoded orders list every key in file order; retreat outcomes are never
// described.
func (e OrderEntry) Describe() string {
	fields := e.Order.Fields
	if fields == nil {
		fields = e.Order.typedFields()
	}
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f.Key+": "+f.Value)
	}

	var b strings.Builder
	b.WriteString(string(e.Power))
	b.WriteString(": ")
	b.WriteString(e.Region)
	if len(parts) > 0 {
		b.WriteString(": ")
		b.WriteString(strings.Join(parts, ", "))
	}
	return strings.ToLower(b.String())
}

// typedFields lists the set fields of an order built in code.
func (o Order) typedFields() []Field {
	fields := make([]Field, 0, 4)
	if o.Type != "" {
		fields = append(fields, Field{"type", string(o.Type)})
	}
	if o.To != "" {
		fields = append(fields, Field{"to", o.To})
	}
	if o.UnitType != nil {
		fields = append(fields, Field{"unit_type", o.UnitType.String()})
	}
	if o.Result != "" {
		fields = append(fields, Field{"result", string(o.Result)})
	}
	return fields
}

// Sentences yields the sentences for one power's orders in region order,
// or the single sentinel sentence if the power issued none.
func Sentences(record *TurnRecord, power Power) iter.Seq[string] {
	return func(yield func(string) bool) {
		entries := record.OrdersOf(power)
		if len(entries) == 0 {
			yield(NoOrdersSentence(power))
			return
		}
		for _, e := range entries {
			if !yield(e.Describe()) {
				return
			}
		}
	}
}

// Narrate describes every power's orders in a turn record.
func Narrate(record *TurnRecord) Narrative {
	n := make(Narrative)
	for _, p := range record.Powers() {
		for s := range Sentences(record, p) {
			n[p] = append(n[p], s)
		}
	}
	return n
}

// OpeningNarrative is attached to the first turn of a game, which has no
// preceding orders.
func OpeningNarrative() Narrative {
	return Narrate(nil)
}
