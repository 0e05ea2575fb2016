package db

import (
	"context"
	"database/sql"
	_ "embed"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

//go:embed schema.sql
var schema string

// Statements returns the schema statements in the order Migrate applies them.
func Statements() []string {
	var stmts []string
	for _, stmt := range strings.Split(schema, ";") {
		if stmt = strings.TrimSpace(stmt); stmt != "" {
			stmts = append(stmts, stmt)
		}
	}
	return stmts
}

// Migrate applies the schema in a single transaction. Every statement is idempotent, so it is
// safe to run on each start.
func Migrate(ctx context.Context, db *sql.DB) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "starting migration transaction")
	}
	for _, stmt := range Statements() {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				log.WithError(rbErr).Error("rolling back migration")
			}
			return errors.Wrapf(err, "applying %q", firstLine(stmt))
		}
	}
	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "committing migration")
	}
	log.Info("database schema is up to date")
	return nil
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
