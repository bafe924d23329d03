package token

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// TraitValues decodes a trait that is either a single string or a list of strings.
type TraitValues []string

// UnmarshalJSON accepts "x", ["x","y"] or null.
func (v *TraitValues) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*v = nil
		return nil
	}

	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*v = TraitValues{single}
		return nil
	}

	var multi []string
	if err := json.Unmarshal(data, &multi); err != nil {
		return fmt.Errorf("trait value must be a string or list of strings: %w", err)
	}
	*v = TraitValues(multi)
	return nil
}

// UnmarshalYAML accepts a scalar or a sequence of scalars.
func (v *TraitValues) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		if node.Tag == "!!null" {
			*v = nil
			return nil
		}
		var single string
		if err := node.Decode(&single); err != nil {
			return err
		}
		*v = TraitValues{single}
		return nil
	case yaml.SequenceNode:
		var multi []string
		if err := node.Decode(&multi); err != nil {
			return err
		}
		*v = TraitValues(multi)
		return nil
	default:
		return fmt.Errorf("line %d: trait value must be a string or list of strings", node.Line)
	}
}

// Record is the file and wire form of a token: an id plus a trait map as
// returned by marketplace and indexer APIs.
type Record struct {
	ID     string                 `json:"id" yaml:"id"`
	Traits map[string]TraitValues `json:"traits" yaml:"traits"`
}

// Token converts the record into a Token
func (r Record) Token() Token {
	traits := make(map[string][]string, len(r.Traits))
	for k, vs := range r.Traits {
		traits[k] = vs
	}
	return FromTraitMap(r.ID, traits)
}

// Tokens converts a batch of records
func Tokens(records []Record) []Token {
	out := make([]Token, len(records))
	for i, r := range records {
		out[i] = r.Token()
	}
	return out
}
