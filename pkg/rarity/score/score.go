// Package score implements pluggable rarity scoring algorithms over
// collection statistics.
package score

import (
	"fmt"
	"strings"

	"github.com/cognicore/rarity/pkg/rarity/collection"
	"github.com/cognicore/rarity/pkg/rarity/internalerr"
	"github.com/cognicore/rarity/pkg/rarity/token"
)

// Result is a token id with its raw score
type Result struct {
	ID    string  `json:"id"`
	Score float64 `json:"score"`
}

// Scorer is a rarity scoring algorithm.
// This interface allows swapping algorithms without touching the ranker.
type Scorer interface {
	// Score scores every token against the collection statistics,
	// preserving input order.
	Score(col *collection.Collection, tokens []token.Token) []Result

	// LowerIsRarer reports whether smaller scores mean rarer tokens
	LowerIsRarer() bool

	// Name is a human-readable algorithm name
	Name() string
}

// Algorithm selects a Scorer by value
type Algorithm string

const (
	AlgorithmStatistical        Algorithm = "statistical"
	AlgorithmInformationContent Algorithm = "information_content"
)

// ForAlgorithm returns the scorer for a, accepting "magic_eden" and
// "openrarity" as aliases.
func ForAlgorithm(a Algorithm) (Scorer, error) {
	switch Algorithm(strings.ToLower(strings.TrimSpace(string(a)))) {
	case AlgorithmStatistical, "magic_eden":
		return Statistical{}, nil
	case AlgorithmInformationContent, "openrarity":
		return InformationContent{}, nil
	default:
		return nil, fmt.Errorf("%q: %w", a, internalerr.ErrUnknownAlgorithm)
	}
}

// Canonical returns the canonical algorithm name for a scorer
func Canonical(s Scorer) Algorithm {
	switch s.(type) {
	case Statistical, *Statistical:
		return AlgorithmStatistical
	case InformationContent, *InformationContent:
		return AlgorithmInformationContent
	default:
		return Algorithm(s.Name())
	}
}
