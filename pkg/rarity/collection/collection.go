// Package collection derives collection-wide statistics from a token set:
// the shape (max occurrences per trait type) and per-slot value counts.
package collection

import (
	"sort"

	"github.com/cognicore/rarity/pkg/rarity/token"
)

// Collection holds precomputed statistics for rarity scoring.
// It is built once per scoring run and treated as read-only afterwards.
type Collection struct {
	TotalSupply int
	// Shape maps trait type -> max times it appears on any single token.
	Shape map[string]int
	// Frequencies maps slot -> value -> number of tokens with that value in
	// that slot. Every slot in Shape has an entry and its counts sum to
	// TotalSupply.
	Frequencies map[Slot]map[Value]int
}

// Entry is one normalized (trait type, slot index, value) triple of a token.
type Entry struct {
	Slot  Slot
	Value Value
}

// Build computes collection statistics from tokens.
//
// Trait types that occur several times on a token get one slot per
// occurrence. Values are assigned to slots in sorted order, and tokens with
// fewer occurrences than the shape are padded with Null markers.
func Build(tokens []token.Token) *Collection {
	col := &Collection{
		TotalSupply: len(tokens),
		Shape:       detectShape(tokens),
		Frequencies: make(map[Slot]map[Value]int),
	}

	for traitType, maxCount := range col.Shape {
		for i := 0; i < maxCount; i++ {
			col.Frequencies[Slot{TraitType: traitType, Index: i}] = make(map[Value]int)
		}
	}

	for _, tok := range tokens {
		for _, e := range Normalize(tok, col.Shape) {
			col.Frequencies[e.Slot][e.Value]++
		}
	}

	return col
}

// detectShape returns the max per-token occurrence count of each trait type
func detectShape(tokens []token.Token) map[string]int {
	shape := make(map[string]int)
	for _, tok := range tokens {
		counts := make(map[string]int)
		for _, attr := range tok.Attributes {
			counts[attr.TraitType]++
		}
		for traitType, n := range counts {
			if n > shape[traitType] {
				shape[traitType] = n
			}
		}
	}
	return shape
}

// Normalize assigns a token's attributes to slots against a known shape,
// without touching any collection counts. Entries are ordered by trait type,
// then slot index.
//
// Trait types absent from shape are ignored. Occurrences beyond the shape's
// max land in slots the collection has no counts for.
func Normalize(tok token.Token, shape map[string]int) []Entry {
	grouped := make(map[string][]string)
	for _, attr := range tok.Attributes {
		grouped[attr.TraitType] = append(grouped[attr.TraitType], attr.Value)
	}

	traitTypes := make([]string, 0, len(shape))
	for traitType := range shape {
		traitTypes = append(traitTypes, traitType)
	}
	sort.Strings(traitTypes)

	var out []Entry
	for _, traitType := range traitTypes {
		maxCount := shape[traitType]

		values := append([]string(nil), grouped[traitType]...)
		sort.Strings(values)

		slotValues := make([]Value, 0, maxCount)
		for _, v := range values {
			slotValues = append(slotValues, Present(v))
		}
		for i := 0; i < maxCount-len(values); i++ {
			slotValues = append(slotValues, Null(i))
		}

		for idx, v := range slotValues {
			out = append(out, Entry{Slot: Slot{TraitType: traitType, Index: idx}, Value: v})
		}
	}

	return out
}

// TraitTypes returns the shaped trait types in sorted order
func (c *Collection) TraitTypes() []string {
	out := make([]string, 0, len(c.Shape))
	for traitType := range c.Shape {
		out = append(out, traitType)
	}
	sort.Strings(out)
	return out
}

// SortedSlots returns every slot ordered by trait type, then index.
// Accumulations over buckets must follow this order to stay bit-reproducible.
func (c *Collection) SortedSlots() []Slot {
	out := make([]Slot, 0, len(c.Frequencies))
	for slot := range c.Frequencies {
		out = append(out, slot)
	}
	sortSlots(out)
	return out
}

// SortedValues returns the values seen in a slot in Value.Less order.
func (c *Collection) SortedValues(slot Slot) []Value {
	counts := c.Frequencies[slot]
	out := make([]Value, 0, len(counts))
	for v := range counts {
		out = append(out, v)
	}
	sortValues(out)
	return out
}

// TotalValuesForSlot returns the number of distinct values for a slot,
// null markers included. Unknown slots report 0.
func (c *Collection) TotalValuesForSlot(traitType string, index int) int {
	return len(c.Frequencies[Slot{TraitType: traitType, Index: index}])
}

// CountForValue returns how many tokens carry value in the given slot.
func (c *Collection) CountForValue(traitType string, index int, value Value) int {
	return c.Frequencies[Slot{TraitType: traitType, Index: index}][value]
}

// Probability returns count / TotalSupply for a slot value, or 0 for an
// empty collection.
func (c *Collection) Probability(slot Slot, value Value) float64 {
	if c.TotalSupply == 0 {
		return 0
	}
	return float64(c.Frequencies[slot][value]) / float64(c.TotalSupply)
}
