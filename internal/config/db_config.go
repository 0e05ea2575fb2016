package config

import "github.com/leadflow/forecaster/pkg/check"

const sslModeDisable = "disable"

var sslModes = []string{"disable", "allow", "prefer", "require", "verify-ca", "verify-full"}

// DefaultDBConfig returns the default configuration of the database.
func DefaultDBConfig() *DBConfig {
	return &DBConfig{
		Port:         "5432",
		Name:         "forecaster",
		SSLMode:      sslModeDisable,
		MaxOpenConns: 16,
	}
}

// DBConfig hosts configuration fields of the database. History is kept in memory when Host
// is empty.
type DBConfig struct {
	User         string `json:"user"`
	Password     string `json:"password"`
	Host         string `json:"host"`
	Port         string `json:"port"`
	Name         string `json:"name"`
	SSLMode      string `json:"ssl_mode"`
	SSLRootCert  string `json:"ssl_root_cert"`
	MaxOpenConns int    `json:"max_open_conns"`
}

// Enabled reports whether a database is configured.
func (c DBConfig) Enabled() bool {
	return c.Host != ""
}

// Validate implements the check.Validatable interface.
func (c DBConfig) Validate() []error {
	if !c.Enabled() {
		return nil
	}
	return []error{
		check.In(c.SSLMode, sslModes, "db ssl_mode"),
		check.True(c.Name != "", "db name must be set"),
		check.GreaterThan(float64(c.MaxOpenConns), 0, "db max_open_conns"),
	}
}
