package history

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// countingStore counts reads that reach the wrapped store.
type countingStore struct {
	*MemoryStore
	gets int
	// afterGet runs once the wrapped store has answered a read.
	afterGet func()
}

func (s *countingStore) Get(ctx context.Context, id uuid.UUID) (*Record, error) {
	s.gets++
	r, err := s.MemoryStore.Get(ctx, id)
	if s.afterGet != nil {
		s.afterGet()
	}
	return r, err
}

func TestCachedStore(t *testing.T) {
	ctx := context.Background()
	inner := &countingStore{MemoryStore: NewMemoryStore(10)}
	s, err := NewCachedStore(inner, 1)
	require.NoError(t, err)

	a := newRecord(t, KindForecast, epoch)
	b := newRecord(t, KindForecast, epoch.Add(time.Minute))
	require.NoError(t, s.Add(ctx, a))
	require.NoError(t, s.Add(ctx, b))

	// b is cached; a was evicted by the size-one cache.
	_, err = s.Get(ctx, b.ID)
	require.NoError(t, err)
	require.Equal(t, 0, inner.gets)

	_, err = s.Get(ctx, a.ID)
	require.NoError(t, err)
	require.Equal(t, 1, inner.gets)
	_, err = s.Get(ctx, a.ID)
	require.NoError(t, err)
	require.Equal(t, 1, inner.gets)

	n, err := s.DeleteBefore(ctx, epoch.Add(time.Second))
	require.NoError(t, err)
	require.Equal(t, 1, n)
	_, err = s.Get(ctx, a.ID)
	require.ErrorIs(t, err, ErrNotFound)

	list, total, err := s.List(ctx, ListOptions{})
	require.NoError(t, err)
	require.Equal(t, 1, total)
	require.Equal(t, b.ID, list[0].ID)
}

func TestCachedStoreDropsFillRacingPrune(t *testing.T) {
	ctx := context.Background()
	inner := &countingStore{MemoryStore: NewMemoryStore(10)}
	s, err := NewCachedStore(inner, 10)
	require.NoError(t, err)

	old := newRecord(t, KindForecast, epoch)
	require.NoError(t, inner.MemoryStore.Add(ctx, old))

	// The prune lands after the read but before the cache fill.
	inner.afterGet = func() {
		inner.afterGet = nil
		n, err := s.DeleteBefore(ctx, epoch.Add(time.Second))
		require.NoError(t, err)
		require.Equal(t, 1, n)
	}
	got, err := s.Get(ctx, old.ID)
	require.NoError(t, err)
	require.Equal(t, old.ID, got.ID)

	require.False(t, s.cache.Contains(old.ID))
	_, err = s.Get(ctx, old.ID)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestCachedStoreRejectsBadSize(t *testing.T) {
	_, err := NewCachedStore(NewMemoryStore(1), 0)
	require.Error(t, err)
}
