// Package rarity computes rarity scores and dense ranks for token
// collections described by multi-valued categorical attributes.
//
//	tokens := []rarity.Token{
//		rarity.NewToken("1", []rarity.Attribute{rarity.NewAttribute("hat", "red")}),
//		rarity.NewToken("2", []rarity.Attribute{rarity.NewAttribute("hat", "gold")}),
//	}
//	ranked := rarity.ScoreAndRank(rarity.Statistical, tokens)
//
// The engine is a pure function of its input: it does not fetch, cache or
// persist anything.
package rarity

import (
	"context"

	"github.com/cognicore/rarity/pkg/rarity/collection"
	"github.com/cognicore/rarity/pkg/rarity/rank"
	"github.com/cognicore/rarity/pkg/rarity/score"
	"github.com/cognicore/rarity/pkg/rarity/token"
)

type (
	Token       = token.Token
	Attribute   = token.Attribute
	Collection  = collection.Collection
	Scorer      = score.Scorer
	RankedToken = rank.RankedToken
)

// Built-in scorers
var (
	Statistical        Scorer = score.Statistical{}
	InformationContent Scorer = score.InformationContent{}
)

// NewToken creates a token
func NewToken(id string, attrs []Attribute) Token {
	return token.New(id, attrs)
}

// NewAttribute creates an attribute
func NewAttribute(traitType, value string) Attribute {
	return token.NewAttribute(traitType, value)
}

// BuildCollection computes collection statistics for tokens
func BuildCollection(tokens []Token) *Collection {
	return collection.Build(tokens)
}

// ScoreAndRank builds collection statistics, scores every token with s and
// ranks the result rarest first.
func ScoreAndRank(s Scorer, tokens []Token) []RankedToken {
	col := collection.Build(tokens)
	results := s.Score(col, tokens)
	return rank.Rank(results, s.LowerIsRarer())
}

// Options configures an Engine
type Options struct {
	// Workers bounds scoring concurrency; values <= 1 score sequentially.
	Workers int
}

// Engine runs score-and-rank with a parallel scoring phase
type Engine struct {
	workers int
}

// New creates an Engine with the given options
func New(opts Options) *Engine {
	return &Engine{workers: opts.Workers}
}

// ScoreAndRank is the concurrent form of the package-level ScoreAndRank.
// The collection is fully built before any token is scored, and ranking
// waits for every score. Results are identical to the sequential form.
func (e *Engine) ScoreAndRank(ctx context.Context, s Scorer, tokens []Token) ([]RankedToken, error) {
	col := collection.Build(tokens)

	results, err := score.Parallel(ctx, s, col, tokens, e.workers)
	if err != nil {
		return nil, err
	}

	return rank.Rank(results, s.LowerIsRarer()), nil
}
