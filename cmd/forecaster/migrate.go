package main

import (
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/leadflow/forecaster/internal/db"
	"github.com/leadflow/forecaster/pkg/logger"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the forecast history schema in Postgres",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := initializeConfig()
		if err != nil {
			return err
		}
		logger.SetLogrus(cfg.Log)

		if !cfg.DB.Enabled() {
			return errors.New("no database configured, set --db-host or FORECASTER_DB_HOST")
		}
		pg, err := db.Setup(cmd.Context(), cfg.DB)
		if err != nil {
			return err
		}
		if err := pg.Close(); err != nil {
			log.WithError(err).Warn("error closing database")
		}
		return nil
	},
}
