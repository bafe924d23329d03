package store

import (
	"context"
	"crypto/rand"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/cognicore/rarity/pkg/rarity/rank"
)

// Store persists completed ranking runs.
// Implementations return internalerr.ErrNotFound for unknown runs or tokens.
type Store interface {
	Close() error

	// Runs
	SaveRun(ctx context.Context, r Run) error
	GetRun(ctx context.Context, id string) (Run, error)
	LatestRun(ctx context.Context, collection, algorithm string) (Run, bool, error)
	ListRuns(ctx context.Context, collection string, limit int) ([]Run, error)

	// Tokens
	TokenRank(ctx context.Context, runID, tokenID string) (rank.RankedToken, error)
}

// Run is one score-and-rank pass over a collection. Runs are immutable once
// saved.
type Run struct {
	ID         string             `json:"id"`
	Collection string             `json:"collection"`
	Algorithm  string             `json:"algorithm"`
	CreatedAt  time.Time          `json:"created_at"`
	TokenCount int                `json:"token_count"`
	Tokens     []rank.RankedToken `json:"tokens,omitempty"` // omitted by ListRuns
}

// DefaultListLimit applies when ListRuns is called with limit <= 0
const DefaultListLimit = 20

var entropy = &ulid.LockedMonotonicReader{MonotonicReader: ulid.Monotonic(rand.Reader, 0)}

// NewRunID returns a new lexically sortable run id
func NewRunID() string {
	return ulid.MustNew(ulid.Now(), entropy).String()
}

// NewRun builds a run with a fresh id and timestamp
func NewRun(collection, algorithm string, ranked []rank.RankedToken) Run {
	return Run{
		ID:         NewRunID(),
		Collection: collection,
		Algorithm:  algorithm,
		CreatedAt:  time.Now().UTC(),
		TokenCount: len(ranked),
		Tokens:     ranked,
	}
}
