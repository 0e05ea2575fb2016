package history

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/leadflow/forecaster/internal/db"
)

// ErrNotFound is returned by Get for unknown ids.
var ErrNotFound = db.ErrNotFound

// ListOptions filters and windows a listing. A zero Limit lists every matching record.
type ListOptions struct {
	Kind   Kind
	Offset int
	Limit  int
}

// Store persists forecast records.
type Store interface {
	Add(ctx context.Context, r *Record) error
	Get(ctx context.Context, id uuid.UUID) (*Record, error)
	// List returns matching records newest first, along with the number of records matching
	// the filter before windowing.
	List(ctx context.Context, opts ListOptions) ([]*Record, int, error)
	// DeleteBefore removes records created before t and returns how many were removed.
	DeleteBefore(ctx context.Context, t time.Time) (int, error)
	Ping(ctx context.Context) error
	Close() error
}
