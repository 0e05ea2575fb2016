package db

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	_ "github.com/jackc/pgx/v4/stdlib" // Import Postgres driver.
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/extra/bundebug"
)

const (
	connectInterval = 4 * time.Second
	connectTries    = 15
)

// PgDB represents a Postgres database connection.
type PgDB struct {
	sql *sqlx.DB
	bun *bun.DB
}

// ConnectPostgres connects to a Postgres database, retrying while the server comes up.
func ConnectPostgres(ctx context.Context, url string) (*PgDB, error) {
	var sql *sqlx.DB
	numTries := 0
	connect := func() error {
		numTries++
		var err error
		sql, err = sqlx.ConnectContext(ctx, "pgx", url)
		return err
	}
	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(connectInterval), connectTries-1), ctx)
	notify := func(err error, toWait time.Duration) {
		log.WithError(err).Warnf("failed to connect to postgres, trying again in %s", toWait)
	}
	if err := backoff.RetryNotify(connect, policy, notify); err != nil {
		return nil, errors.Wrapf(err, "could not connect to database after %v tries", numTries)
	}
	return &PgDB{sql: sql}, nil
}

// NewPgDB wraps an existing connection.
func NewPgDB(sql *sqlx.DB) *PgDB {
	return &PgDB{sql: sql}
}

// Bun returns a bun.DB over the connection, built on first use. The bundebug query hook
// is attached when debug is set and logs every query through logrus at debug level.
func (db *PgDB) Bun(debug bool) *bun.DB {
	if db.bun == nil {
		db.bun = bun.NewDB(db.sql.DB, pgdialect.New())
		if debug {
			db.bun.AddQueryHook(bundebug.NewQueryHook(
				bundebug.WithVerbose(true),
				bundebug.WithWriter(log.StandardLogger().WriterLevel(log.DebugLevel)),
			))
		}
	}
	return db.bun
}

// SQL returns the underlying connection.
func (db *PgDB) SQL() *sqlx.DB {
	return db.sql
}

// Ping checks that the database is reachable.
func (db *PgDB) Ping(ctx context.Context) error {
	return errors.Wrap(db.sql.PingContext(ctx), "pinging database")
}

// Close closes the underlying connection.
func (db *PgDB) Close() error {
	return db.sql.Close()
}
