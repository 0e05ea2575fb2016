// Package db connects the forecaster to Postgres.
package db

import (
	"github.com/pkg/errors"
)

// ErrNotFound is returned if nothing is found.
var ErrNotFound = errors.New("not found")
