package config

import (
	"time"

	"github.com/leadflow/forecaster/pkg/check"
)

// DefaultHistoryConfig returns the default configuration of the forecast history.
func DefaultHistoryConfig() *HistoryConfig {
	return &HistoryConfig{
		Enabled:       true,
		MaxEntries:    10000,
		CacheSize:     1024,
		Retention:     Duration(30 * 24 * time.Hour),
		PruneInterval: Duration(time.Hour),
	}
}

// HistoryConfig configures how past forecasts are kept.
type HistoryConfig struct {
	Enabled bool `json:"enabled"`
	// MaxEntries bounds the in-memory store; the database store is bounded by Retention only.
	MaxEntries int `json:"max_entries"`
	// CacheSize is the number of records kept in front of the database store.
	CacheSize     int      `json:"cache_size"`
	Retention     Duration `json:"retention"`
	PruneInterval Duration `json:"prune_interval"`
}

// Validate implements the check.Validatable interface.
func (c HistoryConfig) Validate() []error {
	if !c.Enabled {
		return nil
	}
	return []error{
		check.GreaterThan(float64(c.MaxEntries), 0, "history max_entries"),
		check.GreaterThanOrEqualTo(float64(c.CacheSize), 0, "history cache_size"),
		check.GreaterThan(float64(c.Retention), 0, "history retention"),
		check.GreaterThanOrEqualTo(float64(time.Duration(c.PruneInterval)), float64(time.Second),
			"history prune_interval"),
	}
}
