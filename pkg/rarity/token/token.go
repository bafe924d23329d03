// Package token holds the input model for rarity scoring: a token id and a
// flat list of trait_type/value attributes.
package token

import "sort"

// noneValue is the marketplace convention for "no trait"; it is never
// treated as a real value.
const noneValue = "None"

// Attribute is a single trait_type/value pair (Metaplex style).
type Attribute struct {
	TraitType string `json:"trait_type" yaml:"trait_type"`
	Value     string `json:"value" yaml:"value"`
}

// NewAttribute creates an attribute
func NewAttribute(traitType, value string) Attribute {
	return Attribute{TraitType: traitType, Value: value}
}

// Token is a collection item with a caller-assigned id.
// A token may carry the same trait type more than once.
type Token struct {
	ID         string      `json:"id" yaml:"id"`
	Attributes []Attribute `json:"attributes" yaml:"attributes"`
}

// New creates a token
func New(id string, attrs []Attribute) Token {
	return Token{ID: id, Attributes: attrs}
}

// TraitCount returns the number of attributes, duplicates included
func (t Token) TraitCount() int {
	return len(t.Attributes)
}

// FromTraitMap flattens a key -> values map into a token.
// Keys are visited in sorted order and "None" values are dropped.
func FromTraitMap(id string, traits map[string][]string) Token {
	keys := make([]string, 0, len(traits))
	for k := range traits {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	attrs := make([]Attribute, 0, len(keys))
	for _, k := range keys {
		for _, v := range traits[k] {
			if v == noneValue {
				continue
			}
			attrs = append(attrs, Attribute{TraitType: k, Value: v})
		}
	}
	return Token{ID: id, Attributes: attrs}
}
