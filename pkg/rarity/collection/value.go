package collection

import (
	"sort"
	"strconv"
)

// nullPrefix renders missing-slot values for display and storage.
const nullPrefix = "__null_"

// Value is what occupies a trait slot on a token: either a real trait value
// or the Index-th missing occurrence of that trait type on the token.
// Two tokens missing the same number of occurrences get identical Null
// sequences, while different missing positions stay distinct buckets.
type Value struct {
	Text    string
	Missing bool
	Index   int
}

// Present wraps a real trait value
func Present(text string) Value {
	return Value{Text: text}
}

// Null returns the marker for the i-th missing occurrence
func Null(i int) Value {
	return Value{Missing: true, Index: i}
}

// String renders the value; null markers render as "__null_<i>".
func (v Value) String() string {
	if v.Missing {
		return nullPrefix + strconv.Itoa(v.Index)
	}
	return v.Text
}

// Less orders values by their rendered form. A present value that happens
// to render like a null marker sorts before the marker.
func (v Value) Less(o Value) bool {
	a, b := v.String(), o.String()
	if a != b {
		return a < b
	}
	return !v.Missing && o.Missing
}

// Slot identifies one occurrence position of a trait type.
type Slot struct {
	TraitType string
	Index     int
}

// Less orders slots by trait type, then index.
func (s Slot) Less(o Slot) bool {
	if s.TraitType != o.TraitType {
		return s.TraitType < o.TraitType
	}
	return s.Index < o.Index
}

func sortSlots(slots []Slot) {
	sort.Slice(slots, func(i, j int) bool { return slots[i].Less(slots[j]) })
}

func sortValues(values []Value) {
	sort.Slice(values, func(i, j int) bool { return values[i].Less(values[j]) })
}
