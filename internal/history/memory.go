package history

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/leadflow/forecaster/internal/api"
)

// MemoryStore keeps the newest records in memory, evicting the oldest once full.
type MemoryStore struct {
	mu         sync.RWMutex
	maxEntries int
	// records is ordered oldest first.
	records []*Record
}

// NewMemoryStore returns a store holding at most maxEntries records.
func NewMemoryStore(maxEntries int) *MemoryStore {
	return &MemoryStore{maxEntries: maxEntries}
}

// Add implements Store.
func (s *MemoryStore) Add(_ context.Context, r *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = append(s.records, r)
	if over := len(s.records) - s.maxEntries; over > 0 {
		// Copy so the evicted records are not kept alive by the backing array.
		s.records = append([]*Record(nil), s.records[over:]...)
	}
	return nil
}

// Get implements Store.
func (s *MemoryStore) Get(_ context.Context, id uuid.UUID) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := len(s.records) - 1; i >= 0; i-- {
		if s.records[i].ID == id {
			return s.records[i], nil
		}
	}
	return nil, errors.WithStack(ErrNotFound)
}

// List implements Store.
func (s *MemoryStore) List(_ context.Context, opts ListOptions) ([]*Record, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matching []*Record
	for i := len(s.records) - 1; i >= 0; i-- {
		if opts.Kind == "" || s.records[i].Kind == opts.Kind {
			matching = append(matching, s.records[i])
		}
	}

	total := len(matching)
	if opts.Offset >= total {
		return []*Record{}, total, nil
	}
	p, err := api.Paginate(total, opts.Offset, opts.Limit)
	if err != nil {
		return nil, 0, err
	}
	return matching[p.StartIndex:p.EndIndex], total, nil
}

// DeleteBefore implements Store.
func (s *MemoryStore) DeleteBefore(_ context.Context, t time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := make([]*Record, 0, len(s.records))
	for _, r := range s.records {
		if !r.CreatedAt.Before(t) {
			kept = append(kept, r)
		}
	}
	deleted := len(s.records) - len(kept)
	s.records = kept
	return deleted, nil
}

// Ping implements Store.
func (s *MemoryStore) Ping(context.Context) error { return nil }

// Close implements Store.
func (s *MemoryStore) Close() error { return nil }
