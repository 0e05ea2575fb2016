package main

import (
	"fmt"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"github.com/leadflow/forecaster/pkg/logger"
)

func main() {
	logger.SetLogrus(*logger.DefaultConfig())

	// A local .env is optional; deployed environments set variables directly.
	if err := godotenv.Load(); err == nil {
		log.Debug("loaded environment from .env")
	}

	if err := rootCmd.Execute(); err != nil {
		log.Fatal(errorMessage(err))
	}
}

// errorMessage renders err with its wrap context and stack trace.
func errorMessage(err error) string {
	return fmt.Sprintf("%+v", err)
}
