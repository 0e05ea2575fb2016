package history

import (
	"context"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/leadflow/forecaster/internal/config"
	"github.com/leadflow/forecaster/internal/db"
)

// Open returns the store the configuration selects: nil when history is disabled, a memory
// store when no database host is set, and a cached Postgres store otherwise.
func Open(ctx context.Context, cfg *config.Config) (Store, error) {
	if !cfg.History.Enabled {
		log.Info("forecast history is disabled")
		return nil, nil
	}
	if !cfg.DB.Enabled() {
		log.Infof("keeping up to %d forecasts in memory", cfg.History.MaxEntries)
		return NewMemoryStore(cfg.History.MaxEntries), nil
	}

	pg, err := db.Setup(ctx, cfg.DB)
	if err != nil {
		return nil, errors.Wrap(err, "opening forecast history")
	}
	var store Store = NewPostgresStore(pg, cfg.Log.Level == "debug")
	if cfg.History.CacheSize > 0 {
		if store, err = NewCachedStore(store, cfg.History.CacheSize); err != nil {
			return nil, err
		}
	}
	return store, nil
}
