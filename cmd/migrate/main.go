package main

import (
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	logger := zap.Must(zap.NewDevelopment())
	defer logger.Sync()

	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		logger.Debug(".env file not found, using existing environment variables")
	}

	if err := newRootCmd(logger).Execute(); err != nil {
		logger.Error("Migration failed", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
}
