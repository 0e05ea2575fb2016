// Package config holds the forecaster server configuration.
package config

import (
	"encoding/json"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/leadflow/forecaster/pkg/check"
	"github.com/leadflow/forecaster/pkg/forecast"
	"github.com/leadflow/forecaster/pkg/logger"
)

// DefaultPort is used for local runs; container deploys set PORT instead.
const DefaultPort = 5001

// Config is the configuration of the forecaster server.
type Config struct {
	ConfigFile   string          `json:"config_file"`
	Port         int             `json:"port"`
	Debug        bool            `json:"debug"`
	TemplatesDir string          `json:"templates_dir"`
	Log          logger.Config   `json:"log"`
	Forecast     ForecastConfig  `json:"forecast"`
	RateLimit    RateLimitConfig `json:"rate_limit"`
	History      HistoryConfig   `json:"history"`
	DB           DBConfig        `json:"db"`
}

// DefaultConfig returns the default configuration of the server.
func DefaultConfig() *Config {
	return &Config{
		Port:      DefaultPort,
		Log:       *logger.DefaultConfig(),
		Forecast:  ForecastConfig{DefaultElasticity: forecast.DefaultElasticity},
		RateLimit: RateLimitConfig{RequestsPerSecond: 20, Burst: 40},
		History:   *DefaultHistoryConfig(),
		DB:        *DefaultDBConfig(),
	}
}

// ForecastConfig tunes the model defaults applied to requests.
type ForecastConfig struct {
	DefaultElasticity float64 `json:"default_elasticity"`
}

// Validate implements the check.Validatable interface.
func (c ForecastConfig) Validate() []error {
	return []error{
		check.Between(c.DefaultElasticity, forecast.MinElasticity, forecast.MaxElasticity,
			"forecast default_elasticity"),
	}
}

// RateLimitConfig limits API requests per client IP. A zero rate disables limiting.
type RateLimitConfig struct {
	RequestsPerSecond float64 `json:"requests_per_second"`
	Burst             int     `json:"burst"`
}

// Enabled reports whether requests are rate limited.
func (c RateLimitConfig) Enabled() bool {
	return c.RequestsPerSecond > 0
}

// Validate implements the check.Validatable interface.
func (c RateLimitConfig) Validate() []error {
	return []error{
		check.GreaterThanOrEqualTo(c.RequestsPerSecond, 0, "rate_limit requests_per_second"),
		check.GreaterThanOrEqualTo(float64(c.Burst), 0, "rate_limit burst"),
	}
}

// Validate implements the check.Validatable interface.
func (c Config) Validate() []error {
	return []error{
		check.Between(float64(c.Port), 1, 65535, "port"),
	}
}

// Resolve fills in values derived from other settings.
func (c *Config) Resolve() error {
	if c.Debug {
		c.Log.Level = "debug"
	}
	if c.TemplatesDir != "" {
		dir, err := filepath.Abs(c.TemplatesDir)
		if err != nil {
			return errors.Wrapf(err, "resolving templates_dir %s", c.TemplatesDir)
		}
		c.TemplatesDir = dir
	}
	return nil
}

// Printable returns a printable string with secrets hidden.
func (c Config) Printable() ([]byte, error) {
	const hiddenValue = "********"
	if c.DB.Password != "" {
		c.DB.Password = hiddenValue
	}

	bs, err := json.Marshal(c)
	if err != nil {
		return nil, errors.Wrap(err, "unable to convert config to JSON")
	}
	return bs, nil
}

// Check validates the whole configuration tree.
func (c *Config) Check() error {
	return check.Validate(c)
}
