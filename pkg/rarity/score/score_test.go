package score

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/cognicore/rarity/pkg/rarity/collection"
	"github.com/cognicore/rarity/pkg/rarity/internalerr"
	"github.com/cognicore/rarity/pkg/rarity/token"
)

func attr(traitType, value string) token.Attribute {
	return token.NewAttribute(traitType, value)
}

func scoreOf(t *testing.T, results []Result, id string) float64 {
	t.Helper()
	for _, r := range results {
		if r.ID == id {
			return r.Score
		}
	}
	t.Fatalf("token %q not scored", id)
	return 0
}

// commonPlusRare returns 99 identical tokens and one with unique values
func commonPlusRare() []token.Token {
	tokens := make([]token.Token, 0, 100)
	for i := 0; i < 99; i++ {
		tokens = append(tokens, token.New(fmt.Sprintf("%d", i), []token.Attribute{
			attr("hat", "common"),
			attr("body", "common"),
		}))
	}
	tokens = append(tokens, token.New("rare", []token.Attribute{
		attr("hat", "legendary"),
		attr("body", "legendary"),
	}))
	return tokens
}

func TestStatisticalUniformScoresEqual(t *testing.T) {
	tokens := make([]token.Token, 100)
	for i := range tokens {
		tokens[i] = token.New(fmt.Sprintf("%d", i), []token.Attribute{
			attr("hat", fmt.Sprintf("hat_%d", i%10)),
			attr("body", fmt.Sprintf("body_%d", i%10)),
		})
	}

	col := collection.Build(tokens)
	results := Statistical{}.Score(col, tokens)

	first := results[0].Score
	for _, r := range results {
		if r.Score != first {
			t.Errorf("Expected uniform scores, got %g vs %g", r.Score, first)
		}
	}
}

func TestStatisticalRareTokenScoresLowest(t *testing.T) {
	tokens := commonPlusRare()
	col := collection.Build(tokens)
	results := Statistical{}.Score(col, tokens)

	rare := scoreOf(t, results, "rare")
	common := scoreOf(t, results, "0")
	if rare >= common {
		t.Errorf("Rare token (%g) should score lower than common (%g)", rare, common)
	}

	// (1/100)^2 vs (99/100)^2
	if math.Abs(rare-0.0001) > 1e-15 {
		t.Errorf("Expected rare score 0.0001, got %g", rare)
	}
}

func TestStatisticalDuplicateTraitTypes(t *testing.T) {
	tokens := []token.Token{
		token.New("1", []token.Attribute{attr("outfit", "jeans"), attr("outfit", "tee"), attr("hat", "cap")}),
		token.New("2", []token.Attribute{attr("outfit", "jeans"), attr("outfit", "tee"), attr("hat", "cap")}),
		token.New("3", []token.Attribute{attr("outfit", "spacesuit"), attr("hat", "helmet")}),
	}

	col := collection.Build(tokens)
	results := Statistical{}.Score(col, tokens)

	s1 := scoreOf(t, results, "1")
	s3 := scoreOf(t, results, "3")
	if s3 >= s1 {
		t.Errorf("Token 3 (%g) should be rarer than token 1 (%g)", s3, s1)
	}
}

func TestStatisticalMissingTraitAffectsScore(t *testing.T) {
	tokens := []token.Token{
		token.New("1", []token.Attribute{attr("hat", "red"), attr("special", "true")}),
		token.New("2", []token.Attribute{attr("hat", "red")}),
		token.New("3", []token.Attribute{attr("hat", "red")}),
		token.New("4", []token.Attribute{attr("hat", "red")}),
	}

	col := collection.Build(tokens)
	results := Statistical{}.Score(col, tokens)

	// special=true is 1/4, the null marker is 3/4
	s1 := scoreOf(t, results, "1")
	s2 := scoreOf(t, results, "2")
	if s1 != 0.25 {
		t.Errorf("Expected 0.25, got %g", s1)
	}
	if s2 != 0.75 {
		t.Errorf("Expected 0.75, got %g", s2)
	}
}

func TestICUniformCollectionScoresOne(t *testing.T) {
	tokens := make([]token.Token, 1000)
	for i := range tokens {
		attrs := make([]token.Attribute, 0, 5)
		for a := 0; a < 5; a++ {
			attrs = append(attrs, attr(fmt.Sprintf("attr_%d", a), fmt.Sprintf("val_%d", i%10)))
		}
		tokens[i] = token.New(fmt.Sprintf("%d", i), attrs)
	}

	col := collection.Build(tokens)
	results := InformationContent{}.Score(col, tokens)

	for _, r := range results {
		if math.Abs(r.Score-1.0) > 1e-8 {
			t.Errorf("Token %s should score 1.0 in uniform collection, got %g", r.ID, r.Score)
		}
	}
}

func TestICRareTokenScoresHighest(t *testing.T) {
	tokens := commonPlusRare()
	col := collection.Build(tokens)
	results := InformationContent{}.Score(col, tokens)

	rare := scoreOf(t, results, "rare")
	common := scoreOf(t, results, "0")
	if rare <= common {
		t.Errorf("Rare token (%g) should score higher than common (%g)", rare, common)
	}
}

func TestICScoreOrdering(t *testing.T) {
	tokens := []token.Token{
		token.New("0", []token.Attribute{attr("bottom", "rare"), attr("hat", "rare"), attr("special", "true")}),
		token.New("1", []token.Attribute{attr("bottom", "1"), attr("hat", "1"), attr("special", "true")}),
		token.New("2", []token.Attribute{attr("bottom", "1"), attr("hat", "1")}),
		token.New("3", []token.Attribute{attr("bottom", "2"), attr("hat", "2")}),
		token.New("4", []token.Attribute{attr("bottom", "2"), attr("hat", "2")}),
		token.New("5", []token.Attribute{attr("bottom", "3"), attr("hat", "2")}),
	}

	col := collection.Build(tokens)
	results := InformationContent{}.Score(col, tokens)
	s := make([]float64, len(results))
	for i, r := range results {
		s[i] = r.Score
	}

	if !(s[0] > s[1]) {
		t.Errorf("s[0]=%g should > s[1]=%g", s[0], s[1])
	}
	if !(s[1] > s[2]) {
		t.Errorf("s[1]=%g should > s[2]=%g", s[1], s[2])
	}
	if !(s[5] > s[2]) {
		t.Errorf("s[5]=%g should > s[2]=%g", s[5], s[2])
	}
	if !(s[2] > s[3]) {
		t.Errorf("s[2]=%g should > s[3]=%g", s[2], s[3])
	}
	if s[3] != s[4] {
		t.Errorf("s[3]=%g should == s[4]=%g", s[3], s[4])
	}
}

func TestICHomogeneousCollection(t *testing.T) {
	tokens := []token.Token{
		token.New("a", []token.Attribute{attr("hat", "red")}),
		token.New("b", []token.Attribute{attr("hat", "red")}),
	}

	col := collection.Build(tokens)
	if e := Entropy(col); e != 0 {
		t.Fatalf("Expected zero entropy, got %g", e)
	}

	for _, r := range (InformationContent{}).Score(col, tokens) {
		if r.Score != 0 || math.IsNaN(r.Score) {
			t.Errorf("Expected 0 for homogeneous collection, got %g", r.Score)
		}
	}
}

func TestMissingEqualsNull(t *testing.T) {
	// "b" lacks special entirely; "c" has no attributes at all. Both are
	// represented by null markers, so their special slot contributes the
	// same probability as any other token missing it.
	tokens := []token.Token{
		token.New("a", []token.Attribute{attr("hat", "red"), attr("special", "true")}),
		token.New("b", []token.Attribute{attr("hat", "blue")}),
		token.New("c", []token.Attribute{attr("hat", "blue")}),
	}

	col := collection.Build(tokens)

	for _, s := range []Scorer{Statistical{}, InformationContent{}} {
		results := s.Score(col, tokens)
		if scoreOf(t, results, "b") != scoreOf(t, results, "c") {
			t.Errorf("%s: tokens missing the same trait should score identically", s.Name())
		}
	}

	// Scoring b directly against the shape gives the null marker probability
	if p := col.Probability(collection.Slot{TraitType: "special"}, collection.Null(0)); p != 2.0/3.0 {
		t.Errorf("Expected null probability 2/3, got %g", p)
	}
	want := (2.0 / 3.0) * (2.0 / 3.0)
	if got := scoreOf(t, Statistical{}.Score(col, tokens), "b"); got != want {
		t.Errorf("Expected %g, got %g", want, got)
	}
}

func TestEmptyInput(t *testing.T) {
	col := collection.Build(nil)
	for _, s := range []Scorer{Statistical{}, InformationContent{}} {
		if got := s.Score(col, nil); len(got) != 0 {
			t.Errorf("%s: expected empty result, got %v", s.Name(), got)
		}
		if got := s.Score(nil, []token.Token{token.New("x", nil)}); len(got) != 0 {
			t.Errorf("%s: expected empty result for nil collection, got %v", s.Name(), got)
		}
	}
}

func TestScorerMetadata(t *testing.T) {
	if !(Statistical{}).LowerIsRarer() {
		t.Error("Statistical: lower should be rarer")
	}
	if (InformationContent{}).LowerIsRarer() {
		t.Error("InformationContent: higher should be rarer")
	}
	if (Statistical{}).Name() != "Magic Eden Statistical Rarity" {
		t.Errorf("Unexpected name %q", (Statistical{}).Name())
	}
	if (InformationContent{}).Name() != "OpenRarity Information Content" {
		t.Errorf("Unexpected name %q", (InformationContent{}).Name())
	}
}

func TestForAlgorithm(t *testing.T) {
	cases := map[Algorithm]Algorithm{
		"statistical":         AlgorithmStatistical,
		"magic_eden":          AlgorithmStatistical,
		"information_content": AlgorithmInformationContent,
		" OpenRarity ":        AlgorithmInformationContent,
	}
	for in, want := range cases {
		s, err := ForAlgorithm(in)
		if err != nil {
			t.Fatalf("ForAlgorithm(%q): %v", in, err)
		}
		if got := Canonical(s); got != want {
			t.Errorf("ForAlgorithm(%q) = %q, want %q", in, got, want)
		}
	}

	_, err := ForAlgorithm("harmonic")
	if !errors.Is(err, internalerr.ErrUnknownAlgorithm) {
		t.Errorf("Expected ErrUnknownAlgorithm, got %v", err)
	}
}

func TestParallelMatchesSequential(t *testing.T) {
	tokens := make([]token.Token, 1000)
	for i := range tokens {
		attrs := []token.Attribute{
			attr("hat", fmt.Sprintf("hat_%d", i%7)),
			attr("body", fmt.Sprintf("body_%d", i%13)),
		}
		for j := 0; j < i%3; j++ {
			attrs = append(attrs, attr("outfit", fmt.Sprintf("outfit_%d", (i+j)%5)))
		}
		tokens[i] = token.New(fmt.Sprintf("%d", i), attrs)
	}
	col := collection.Build(tokens)

	for _, s := range []Scorer{Statistical{}, InformationContent{}} {
		want := s.Score(col, tokens)
		got, err := Parallel(context.Background(), s, col, tokens, 8)
		if err != nil {
			t.Fatalf("%s: Parallel: %v", s.Name(), err)
		}
		if len(got) != len(want) {
			t.Fatalf("%s: expected %d results, got %d", s.Name(), len(want), len(got))
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("%s: result %d differs: %+v vs %+v", s.Name(), i, got[i], want[i])
			}
		}
	}
}

func TestParallelCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	tokens := []token.Token{token.New("a", []token.Attribute{attr("hat", "red")})}
	_, err := Parallel(ctx, Statistical{}, collection.Build(tokens), tokens, 4)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}
