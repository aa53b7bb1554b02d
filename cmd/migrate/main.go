package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/flexprice/plancatalog/internal/config"
	"github.com/flexprice/plancatalog/internal/logger"
	"github.com/flexprice/plancatalog/internal/postgres"
)

func main() {
	// Parse command line flags
	command := flag.String("command", "up", "goose command: up, down, status, version, redo, reset")
	timeout := flag.Duration("timeout", 60*time.Second, "Time allowed for the whole migration run")
	flag.Parse()

	// Load configuration
	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger, err := logger.NewLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}

	logger.Infow("Connecting to database", "host", cfg.Postgres.Host, "dbname", cfg.Postgres.DBName)

	db, err := postgres.NewDB(cfg, logger)
	if err != nil {
		logger.Fatalw("Failed to connect to postgres", "error", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	logger.Infow("Running database migrations...", "command", *command)
	if err := postgres.Migrate(ctx, db.DB.DB, *command, flag.Args()...); err != nil {
		logger.Fatalw("Migration failed", "error", err)
	}

	logger.Info("Migrations completed successfully")
}
