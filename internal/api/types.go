package api

import (
	"time"

	"github.com/cognicore/rarity/pkg/rarity/rank"
	"github.com/cognicore/rarity/pkg/rarity/store"
	"github.com/cognicore/rarity/pkg/rarity/token"
)

// RankRequest is the body of POST /v1/collections/{collection}/rank
type RankRequest struct {
	Tokens []token.Record `json:"tokens"`
}

// RankResponse returns a completed run
type RankResponse struct {
	RunID      string             `json:"run_id"`
	Collection string             `json:"collection"`
	Algorithm  string             `json:"algorithm"`
	CreatedAt  time.Time          `json:"created_at"`
	Tokens     []rank.RankedToken `json:"tokens"`
}

// TokenResponse is a single token's standing within a run
type TokenResponse struct {
	RunID      string  `json:"run_id"`
	ID         string  `json:"id"`
	Score      float64 `json:"score"`
	Rank       int     `json:"rank"`
	Percentile float64 `json:"percentile"`
}

// RunsResponse lists run summaries
type RunsResponse struct {
	Collection string      `json:"collection"`
	Runs       []store.Run `json:"runs"`
}

type errorResponse struct {
	Error string `json:"error"`
}
