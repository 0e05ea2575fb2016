package logger

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/leadflow/forecaster/pkg/check"
)

const (
	// TextFormat renders human readable lines; JSONFormat suits log collectors.
	TextFormat = "text"
	JSONFormat = "json"
)

// DefaultConfig returns the default configuration of logger.
func DefaultConfig() *Config {
	return &Config{
		Level:  "info",
		Color:  true,
		Format: TextFormat,
	}
}

// Config is the configuration of logger.
type Config struct {
	Level  string `json:"level"`
	Color  bool   `json:"color"`
	Format string `json:"format"`
}

// Validate implements the check.Validatable interface.
func (c Config) Validate() []error {
	var errs []error
	if _, err := logrus.ParseLevel(c.Level); err != nil {
		errs = append(errs, err)
	}
	errs = append(errs, check.In(c.Format, []string{TextFormat, JSONFormat}, "log format"))
	return errs
}

// SetLogrus sets logrus globally.
func SetLogrus(c Config) {
	level, err := logrus.ParseLevel(c.Level)
	if err != nil {
		panic(fmt.Sprintf("invalid log level: %s", c.Level))
	}

	logrus.SetLevel(level)
	if c.Format == JSONFormat {
		logrus.SetFormatter(&logrus.JSONFormatter{})
		return
	}
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
		ForceColors:   c.Color,
		DisableColors: !c.Color,
	})
}
