package history

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

func newRecord(t *testing.T, kind Kind, createdAt time.Time) *Record {
	t.Helper()
	return &Record{ID: uuid.New(), Kind: kind, CreatedAt: createdAt}
}

func ids(records []*Record) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(records))
	for _, r := range records {
		out = append(out, r.ID)
	}
	return out
}

func TestMemoryStoreListsNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(10)

	a := newRecord(t, KindForecast, epoch)
	b := newRecord(t, KindIncremental, epoch.Add(time.Minute))
	c := newRecord(t, KindForecast, epoch.Add(2*time.Minute))
	for _, r := range []*Record{a, b, c} {
		require.NoError(t, s.Add(ctx, r))
	}

	all, total, err := s.List(ctx, ListOptions{})
	require.NoError(t, err)
	require.Equal(t, 3, total)
	require.Equal(t, []uuid.UUID{c.ID, b.ID, a.ID}, ids(all))

	forecasts, total, err := s.List(ctx, ListOptions{Kind: KindForecast})
	require.NoError(t, err)
	require.Equal(t, 2, total)
	require.Equal(t, []uuid.UUID{c.ID, a.ID}, ids(forecasts))

	window, total, err := s.List(ctx, ListOptions{Offset: 1, Limit: 1})
	require.NoError(t, err)
	require.Equal(t, 3, total)
	require.Equal(t, []uuid.UUID{b.ID}, ids(window))

	past, total, err := s.List(ctx, ListOptions{Offset: 5})
	require.NoError(t, err)
	require.Equal(t, 3, total)
	require.Empty(t, past)
}

func TestMemoryStoreEvictsOldest(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(2)

	a := newRecord(t, KindForecast, epoch)
	b := newRecord(t, KindForecast, epoch.Add(time.Second))
	c := newRecord(t, KindForecast, epoch.Add(2*time.Second))
	for _, r := range []*Record{a, b, c} {
		require.NoError(t, s.Add(ctx, r))
	}

	_, err := s.Get(ctx, a.ID)
	require.ErrorIs(t, err, ErrNotFound)
	got, err := s.Get(ctx, c.ID)
	require.NoError(t, err)
	require.Same(t, c, got)

	_, total, err := s.List(ctx, ListOptions{})
	require.NoError(t, err)
	require.Equal(t, 2, total)
}

func TestMemoryStoreDeleteBefore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(10)

	old := newRecord(t, KindForecast, epoch)
	edge := newRecord(t, KindForecast, epoch.Add(time.Hour))
	fresh := newRecord(t, KindIncremental, epoch.Add(2*time.Hour))
	for _, r := range []*Record{old, edge, fresh} {
		require.NoError(t, s.Add(ctx, r))
	}

	n, err := s.DeleteBefore(ctx, epoch.Add(time.Hour))
	require.NoError(t, err)
	require.Equal(t, 1, n)

	left, _, err := s.List(ctx, ListOptions{})
	require.NoError(t, err)
	require.Equal(t, []uuid.UUID{fresh.ID, edge.ID}, ids(left))
	require.NoError(t, s.Ping(ctx))
}
