package history

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"

	"github.com/leadflow/forecaster/internal/db"
	"github.com/leadflow/forecaster/internal/prom"
)

// PostgresStore keeps records in the forecasts table.
type PostgresStore struct {
	pg  *db.PgDB
	bun *bun.DB
}

// NewPostgresStore returns a store over an already migrated database.
func NewPostgresStore(pg *db.PgDB, debug bool) *PostgresStore {
	return &PostgresStore{pg: pg, bun: pg.Bun(debug)}
}

// Add implements Store.
func (s *PostgresStore) Add(ctx context.Context, r *Record) error {
	defer prom.Time(prom.HistoryQueryDuration.WithLabelValues("add"))()

	if _, err := s.bun.NewInsert().Model(r).Exec(ctx); err != nil {
		return errors.Wrapf(err, "inserting forecast %s", r.ID)
	}
	return nil
}

// Get implements Store.
func (s *PostgresStore) Get(ctx context.Context, id uuid.UUID) (*Record, error) {
	defer prom.Time(prom.HistoryQueryDuration.WithLabelValues("get"))()

	var r Record
	err := s.bun.NewSelect().Model(&r).Where("id = ?", id).Scan(ctx)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, errors.WithStack(ErrNotFound)
	case err != nil:
		return nil, errors.Wrapf(err, "getting forecast %s", id)
	}
	return &r, nil
}

// List implements Store.
func (s *PostgresStore) List(ctx context.Context, opts ListOptions) ([]*Record, int, error) {
	defer prom.Time(prom.HistoryQueryDuration.WithLabelValues("list"))()

	var records []*Record
	q := s.bun.NewSelect().Model(&records).
		OrderExpr("created_at DESC, id DESC").
		Offset(opts.Offset)
	if opts.Kind != "" {
		q = q.Where("kind = ?", opts.Kind)
	}
	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}
	total, err := q.ScanAndCount(ctx)
	if err != nil {
		return nil, 0, errors.Wrap(err, "listing forecasts")
	}
	return records, total, nil
}

// DeleteBefore implements Store.
func (s *PostgresStore) DeleteBefore(ctx context.Context, t time.Time) (int, error) {
	defer prom.Time(prom.HistoryQueryDuration.WithLabelValues("delete"))()

	res, err := s.bun.NewDelete().Model((*Record)(nil)).Where("created_at < ?", t).Exec(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "deleting old forecasts")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "counting deleted forecasts")
	}
	return int(n), nil
}

// Ping implements Store.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pg.Ping(ctx)
}

// Close implements Store.
func (s *PostgresStore) Close() error {
	return s.pg.Close()
}
