package db

import (
	"context"
	"fmt"
	"net"
	"net/url"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/leadflow/forecaster/internal/config"
)

const sslTpl = "application_name=forecaster&sslmode=%s"

// URL builds the connection string for the configured database.
func URL(opts config.DBConfig) string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(opts.User, opts.Password),
		Host:     net.JoinHostPort(opts.Host, opts.Port),
		Path:     "/" + opts.Name,
		RawQuery: fmt.Sprintf(sslTpl, url.QueryEscape(opts.SSLMode)),
	}
	if opts.SSLRootCert != "" {
		u.RawQuery += "&sslrootcert=" + url.QueryEscape(opts.SSLRootCert)
	}
	return u.String()
}

// Connect connects to the database, but doesn't run migrations.
func Connect(ctx context.Context, opts config.DBConfig) (*PgDB, error) {
	log.Infof("connecting to database %s:%s", opts.Host, opts.Port)
	db, err := ConnectPostgres(ctx, URL(opts))
	if err != nil {
		return nil, errors.Wrapf(err, "error connecting to database: %s:%s", opts.Host, opts.Port)
	}

	db.sql.SetMaxOpenConns(opts.MaxOpenConns)
	return db, nil
}

// Setup connects to the database and applies the schema.
func Setup(ctx context.Context, opts config.DBConfig) (*PgDB, error) {
	db, err := Connect(ctx, opts)
	if err != nil {
		return nil, err
	}

	if err = Migrate(ctx, db.sql.DB); err != nil {
		if cErr := db.Close(); cErr != nil {
			log.WithError(cErr).Error("closing database after failed migration")
		}
		return nil, errors.Wrap(err, "running migrations")
	}
	return db, nil
}
