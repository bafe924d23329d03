package score

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/cognicore/rarity/pkg/rarity/collection"
	"github.com/cognicore/rarity/pkg/rarity/token"
)

// minChunk keeps tiny collections from being split into many goroutines.
const minChunk = 64

// Parallel scores tokens with up to workers goroutines.
//
// Tokens are split into contiguous chunks and each chunk is written into its
// own sub-slice of the result, so output order matches input order and
// values are identical to s.Score. The collection is shared read-only.
// The only error returned is ctx's.
func Parallel(ctx context.Context, s Scorer, col *collection.Collection, tokens []token.Token, workers int) ([]Result, error) {
	if workers <= 1 || len(tokens) <= minChunk {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return s.Score(col, tokens), nil
	}

	chunk := (len(tokens) + workers - 1) / workers
	if chunk < minChunk {
		chunk = minChunk
	}

	out := make([]Result, len(tokens))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for start := 0; start < len(tokens); start += chunk {
		end := start + chunk
		if end > len(tokens) {
			end = len(tokens)
		}
		lo, hi := start, end
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			copy(out[lo:hi], s.Score(col, tokens[lo:hi]))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
