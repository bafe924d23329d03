package score

import (
	"github.com/cognicore/rarity/pkg/rarity/collection"
	"github.com/cognicore/rarity/pkg/rarity/token"
)

// Statistical is the Magic Eden statistical rarity scorer.
//
// score = Π count(slot, value) / total_supply
//
// over every normalized slot of the token, multiplied in (trait type, slot
// index) order so that tokens with identical slot assignments get
// bit-identical scores. Lower score = rarer.
type Statistical struct{}

// Score implements Scorer
func (Statistical) Score(col *collection.Collection, tokens []token.Token) []Result {
	if col == nil || len(tokens) == 0 {
		return []Result{}
	}

	total := float64(col.TotalSupply)
	out := make([]Result, len(tokens))
	for i, tok := range tokens {
		product := 1.0
		for _, e := range collection.Normalize(tok, col.Shape) {
			count := float64(col.CountForValue(e.Slot.TraitType, e.Slot.Index, e.Value))
			product *= count / total
		}
		out[i] = Result{ID: tok.ID, Score: product}
	}
	return out
}

// LowerIsRarer implements Scorer
func (Statistical) LowerIsRarer() bool { return true }

// Name implements Scorer
func (Statistical) Name() string { return "Magic Eden Statistical Rarity" }
