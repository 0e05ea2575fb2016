//go:build integration
// +build integration

package history

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gopkg.in/guregu/null.v3"

	"github.com/leadflow/forecaster/internal/db"
)

func setupPostgres(t *testing.T) *PostgresStore {
	t.Helper()
	url := os.Getenv("FORECASTER_INTEGRATION_POSTGRES_URL")
	if url == "" {
		t.Skip("FORECASTER_INTEGRATION_POSTGRES_URL is not set")
	}
	ctx := context.Background()
	pg, err := db.ConnectPostgres(ctx, url)
	require.NoError(t, err)
	require.NoError(t, db.Migrate(ctx, pg.SQL().DB))
	_, err = pg.SQL().ExecContext(ctx, "TRUNCATE forecasts")
	require.NoError(t, err)

	s := NewPostgresStore(pg, false)
	t.Cleanup(func() { require.NoError(t, s.Close()) })
	return s
}

func TestPostgresStore(t *testing.T) {
	ctx := context.Background()
	s := setupPostgres(t)
	require.NoError(t, s.Ping(ctx))

	budget := null.FloatFrom(250)
	old := &Record{
		ID: uuid.New(), Name: "quiet-heron", Kind: KindForecast, CurrentSpend: 1000, CurrentLeads: 100,
		SpendChangePercent: 10, Elasticity: 0.82, NewSpend: 1100, NewLeads: 108.13, NewCPL: 10.17,
		Result: map[string]interface{}{"new_leads": 108.13}, CreatedAt: epoch,
	}
	fresh := &Record{
		ID: uuid.New(), Name: "brave-otter", Kind: KindIncremental, CurrentSpend: 1000, CurrentLeads: 100,
		SpendChangePercent: 25, IncrementalBudget: budget, Elasticity: 0.82,
		Result: map[string]interface{}{"incremental_budget": 250.0}, CreatedAt: epoch.Add(time.Hour),
	}
	require.NoError(t, s.Add(ctx, old))
	require.NoError(t, s.Add(ctx, fresh))

	got, err := s.Get(ctx, fresh.ID)
	require.NoError(t, err)
	require.Equal(t, KindIncremental, got.Kind)
	require.Equal(t, budget, got.IncrementalBudget)
	require.Equal(t, "brave-otter", got.Name)
	require.Equal(t, 250.0, got.Result["incremental_budget"])

	_, err = s.Get(ctx, uuid.New())
	require.ErrorIs(t, err, ErrNotFound)

	list, total, err := s.List(ctx, ListOptions{Limit: 1})
	require.NoError(t, err)
	require.Equal(t, 2, total)
	require.Equal(t, []uuid.UUID{fresh.ID}, ids(list))

	list, total, err = s.List(ctx, ListOptions{Kind: KindForecast})
	require.NoError(t, err)
	require.Equal(t, 1, total)
	require.Equal(t, []uuid.UUID{old.ID}, ids(list))

	n, err := s.DeleteBefore(ctx, epoch.Add(time.Minute))
	require.NoError(t, err)
	require.Equal(t, 1, n)
}
