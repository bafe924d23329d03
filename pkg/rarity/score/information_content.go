package score

import (
	"math"

	"github.com/cognicore/rarity/pkg/rarity/collection"
	"github.com/cognicore/rarity/pkg/rarity/token"
)

// InformationContent is the OpenRarity information content scorer.
//
// score = Σ -log2(p) / H
//
// where p = count(slot, value) / total_supply for each normalized slot of the
// token and H = -Σ p·log2(p) over every bucket in the collection. When H is 0
// (all tokens identical) the raw sum is returned. Higher score = rarer.
type InformationContent struct{}

// Score implements Scorer
func (ic InformationContent) Score(col *collection.Collection, tokens []token.Token) []Result {
	if col == nil || len(tokens) == 0 {
		return []Result{}
	}

	normalization := Entropy(col)
	if normalization <= 0 {
		normalization = 1.0
	}

	out := make([]Result, len(tokens))
	for i, tok := range tokens {
		out[i] = Result{ID: tok.ID, Score: TokenInformation(col, tok) / normalization}
	}
	return out
}

// LowerIsRarer implements Scorer
func (InformationContent) LowerIsRarer() bool { return false }

// Name implements Scorer
func (InformationContent) Name() string { return "OpenRarity Information Content" }

// Entropy returns the collection entropy -Σ p·log2(p) over every
// (slot, value) bucket, visited in sorted slot then sorted value order.
func Entropy(col *collection.Collection) float64 {
	if col == nil || col.TotalSupply == 0 {
		return 0
	}

	total := float64(col.TotalSupply)
	entropy := 0.0
	for _, slot := range col.SortedSlots() {
		counts := col.Frequencies[slot]
		for _, v := range col.SortedValues(slot) {
			p := float64(counts[v]) / total
			if p > 0 {
				entropy -= p * math.Log2(p)
			}
		}
	}
	return entropy
}

// TokenInformation returns the un-normalized information content of a token.
// Zero-probability slots contribute nothing.
func TokenInformation(col *collection.Collection, tok token.Token) float64 {
	if col == nil || col.TotalSupply == 0 {
		return 0
	}

	total := float64(col.TotalSupply)
	ic := 0.0
	for _, e := range collection.Normalize(tok, col.Shape) {
		p := float64(col.CountForValue(e.Slot.TraitType, e.Slot.Index, e.Value)) / total
		if p > 0 {
			ic += -math.Log2(p)
		}
	}
	return ic
}
