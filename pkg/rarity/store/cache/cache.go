// Package cache wraps a store.Store with an LRU of completed runs.
// Saved runs never change, so cached entries need no invalidation beyond
// overwrites through SaveRun.
package cache

import (
	"context"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/cognicore/rarity/pkg/rarity/rank"
	"github.com/cognicore/rarity/pkg/rarity/store"
)

// Store is a read-through run cache.
type Store struct {
	store.Store
	runs *lru.Cache[string, store.Run]
}

// New wraps inner with an LRU holding up to size runs.
func New(inner store.Store, size int) (*Store, error) {
	if size <= 0 {
		size = 1
	}
	runs, err := lru.New[string, store.Run](size)
	if err != nil {
		return nil, err
	}
	return &Store{Store: inner, runs: runs}, nil
}

// SaveRun writes through and caches the run.
func (s *Store) SaveRun(ctx context.Context, r store.Run) error {
	if err := s.Store.SaveRun(ctx, r); err != nil {
		return err
	}
	r.TokenCount = len(r.Tokens)
	r.Tokens = append([]rank.RankedToken(nil), r.Tokens...)
	s.runs.Add(r.ID, r)
	return nil
}

// GetRun serves from the cache, loading from the inner store on a miss.
func (s *Store) GetRun(ctx context.Context, id string) (store.Run, error) {
	if r, ok := s.runs.Get(id); ok {
		return copyRun(r), nil
	}
	r, err := s.Store.GetRun(ctx, id)
	if err != nil {
		return store.Run{}, err
	}
	s.runs.Add(id, r)
	return copyRun(r), nil
}

// TokenRank scans a cached run when present.
func (s *Store) TokenRank(ctx context.Context, runID, tokenID string) (rank.RankedToken, error) {
	if r, ok := s.runs.Get(runID); ok {
		for _, t := range r.Tokens {
			if t.ID == tokenID {
				return t, nil
			}
		}
	}
	return s.Store.TokenRank(ctx, runID, tokenID)
}

// Len returns the number of cached runs
func (s *Store) Len() int {
	return s.runs.Len()
}

func copyRun(r store.Run) store.Run {
	r.Tokens = append([]rank.RankedToken(nil), r.Tokens...)
	return r
}
