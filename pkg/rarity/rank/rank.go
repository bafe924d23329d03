// Package rank turns raw rarity scores into dense, tie-sharing ranks.
package rank

import (
	"math"
	"sort"

	"github.com/cognicore/rarity/pkg/rarity/score"
)

// RankedToken is a scored token with its 1-indexed rank
type RankedToken struct {
	ID    string  `json:"id"`
	Score float64 `json:"score"`
	Rank  int     `json:"rank"`
}

// Rank sorts results rarest first and assigns ranks.
//
// Tied scores share a rank and the next distinct score takes its 1-based
// position, so [0.1, 0.2, 0.2, 0.5] ranks as [1, 2, 2, 4]. Ties are detected
// with exact equality. NaN scores compare as equal to everything during the
// sort and never tie with their neighbour. The input is not modified.
func Rank(results []score.Result, lowerIsRarer bool) []RankedToken {
	if len(results) == 0 {
		return []RankedToken{}
	}

	sorted := make([]score.Result, len(results))
	copy(sorted, results)

	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i].Score, sorted[j].Score
		if math.IsNaN(a) || math.IsNaN(b) {
			return false
		}
		if lowerIsRarer {
			return a < b
		}
		return a > b
	})

	out := make([]RankedToken, len(sorted))
	current := 1
	for i, r := range sorted {
		// Identical slot assignments produce bit-identical scores, so exact
		// comparison is the tie test.
		if i > 0 && r.Score != sorted[i-1].Score {
			current = i + 1
		}
		out[i] = RankedToken{ID: r.ID, Score: r.Score, Rank: current}
	}

	return out
}

// Top returns the first k ranked tokens. Ties at the cut are not extended.
func Top(ranked []RankedToken, k int) []RankedToken {
	if k <= 0 || k >= len(ranked) {
		return ranked
	}
	return ranked[:k]
}

// Percentile returns the "top x%" figure for a ranked token in a collection
// of total tokens.
func Percentile(r RankedToken, total int) float64 {
	if total <= 0 {
		return 0
	}
	return 100 * float64(r.Rank) / float64(total)
}
