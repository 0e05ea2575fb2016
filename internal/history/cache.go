package history

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/pkg/errors"
)

// CachedStore serves Get from an LRU cache in front of another store. Records are immutable
// once added, so only pruning invalidates the cache.
type CachedStore struct {
	Store
	cache *lru.Cache[uuid.UUID, *Record]

	// generation counts prunes; a cache fill that raced a prune is dropped.
	mu         sync.Mutex
	generation uint64
}

// NewCachedStore wraps a store with a cache of the given size.
func NewCachedStore(inner Store, size int) (*CachedStore, error) {
	cache, err := lru.New[uuid.UUID, *Record](size)
	if err != nil {
		return nil, errors.Wrap(err, "creating history cache")
	}
	return &CachedStore{Store: inner, cache: cache}, nil
}

// Add implements Store.
func (s *CachedStore) Add(ctx context.Context, r *Record) error {
	if err := s.Store.Add(ctx, r); err != nil {
		return err
	}
	s.cache.Add(r.ID, r)
	return nil
}

// Get implements Store.
func (s *CachedStore) Get(ctx context.Context, id uuid.UUID) (*Record, error) {
	if r, ok := s.cache.Get(id); ok {
		return r, nil
	}

	s.mu.Lock()
	gen := s.generation
	s.mu.Unlock()

	r, err := s.Store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen == s.generation {
		s.cache.Add(id, r)
	}
	return r, nil
}

// DeleteBefore implements Store.
func (s *CachedStore) DeleteBefore(ctx context.Context, t time.Time) (int, error) {
	n, err := s.Store.DeleteBefore(ctx, t)
	if n > 0 {
		s.mu.Lock()
		s.generation++
		s.cache.Purge()
		s.mu.Unlock()
	}
	return n, err
}
