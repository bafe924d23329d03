package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/cognicore/rarity/pkg/rarity/internalerr"
	"github.com/cognicore/rarity/pkg/rarity/rank"
	"github.com/cognicore/rarity/pkg/rarity/store"
)

// Store is an in-memory implementation of store.Store.
type Store struct {
	mu   sync.RWMutex
	runs map[string]store.Run
	// runID -> tokenID -> index into Run.Tokens
	index map[string]map[string]int
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{
		runs:  make(map[string]store.Run),
		index: make(map[string]map[string]int),
	}
}

// Close implements store.Store.
func (s *Store) Close() error { return nil }

// SaveRun stores a copy of r, replacing any run with the same id.
func (s *Store) SaveRun(ctx context.Context, r store.Run) error {
	if r.ID == "" {
		return fmt.Errorf("run id required: %w", internalerr.ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	r = copyRun(r)
	r.TokenCount = len(r.Tokens)
	idx := make(map[string]int, len(r.Tokens))
	for i, t := range r.Tokens {
		idx[t.ID] = i
	}
	s.runs[r.ID] = r
	s.index[r.ID] = idx
	return nil
}

// GetRun returns a run with its ranked tokens.
func (s *Store) GetRun(ctx context.Context, id string) (store.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.runs[id]
	if !ok {
		return store.Run{}, fmt.Errorf("run %s: %w", id, internalerr.ErrNotFound)
	}
	return copyRun(r), nil
}

// LatestRun returns the newest run for a collection and algorithm.
func (s *Store) LatestRun(ctx context.Context, collection, algorithm string) (store.Run, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var latest store.Run
	found := false
	for _, r := range s.runs {
		if r.Collection != collection || r.Algorithm != algorithm {
			continue
		}
		if !found || newer(r, latest) {
			latest = r
			found = true
		}
	}
	if !found {
		return store.Run{}, false, nil
	}
	return copyRun(latest), true, nil
}

// ListRuns returns run summaries for a collection, newest first.
func (s *Store) ListRuns(ctx context.Context, collection string, limit int) ([]store.Run, error) {
	if limit <= 0 {
		limit = store.DefaultListLimit
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []store.Run
	for _, r := range s.runs {
		if r.Collection != collection {
			continue
		}
		r.Tokens = nil
		out = append(out, r)
	}

	sort.Slice(out, func(i, j int) bool { return newer(out[i], out[j]) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// TokenRank returns one token's rank within a run.
func (s *Store) TokenRank(ctx context.Context, runID, tokenID string) (rank.RankedToken, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx, ok := s.index[runID]
	if !ok {
		return rank.RankedToken{}, fmt.Errorf("run %s: %w", runID, internalerr.ErrNotFound)
	}
	i, ok := idx[tokenID]
	if !ok {
		return rank.RankedToken{}, fmt.Errorf("token %s in run %s: %w", tokenID, runID, internalerr.ErrNotFound)
	}
	return s.runs[runID].Tokens[i], nil
}

// newer orders by creation time, then id (ULIDs sort by time)
func newer(a, b store.Run) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID > b.ID
}

func copyRun(r store.Run) store.Run {
	if r.Tokens != nil {
		r.Tokens = append([]rank.RankedToken(nil), r.Tokens...)
	}
	return r
}
