package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"github.com/orestischaral/water-temp-analysis/adapters/artifact"
	"github.com/orestischaral/water-temp-analysis/adapters/postgres"
	"github.com/orestischaral/water-temp-analysis/internal"
	"github.com/orestischaral/water-temp-analysis/internal/config"
	"github.com/orestischaral/water-temp-analysis/ui"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()

	logger := internal.NewDefaultLogger()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	var source ui.RunSource
	if cfg.Database.URL != "" {
		db, err := sqlx.ConnectContext(context.Background(), "postgres", cfg.Database.URL)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer db.Close()
		source = postgres.NewResultRepository(db)
		logger.Info("serving runs from postgres")
	} else {
		store, err := artifact.NewStore(cfg.Paths.OutputDir)
		if err != nil {
			return err
		}
		source = store
		logger.Info("serving runs from %s", cfg.Paths.OutputDir)
	}

	server := ui.NewServer(source, logger)
	return server.ListenAndServe(":" + cfg.Server.Port)
}
