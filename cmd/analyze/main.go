package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"github.com/orestischaral/water-temp-analysis/adapters/artifact"
	"github.com/orestischaral/water-temp-analysis/adapters/excel"
	"github.com/orestischaral/water-temp-analysis/adapters/postgres"
	"github.com/orestischaral/water-temp-analysis/app"
	"github.com/orestischaral/water-temp-analysis/internal"
	"github.com/orestischaral/water-temp-analysis/internal/config"
	"github.com/orestischaral/water-temp-analysis/ports"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	// .env is optional; environment variables win either way.
	_ = godotenv.Load()

	logger := internal.NewDefaultLogger()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	sources, err := excel.LoadDataSourcesConfig(cfg.Paths.DataSourcesFile)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var repo ports.ResultRepository
	if cfg.Database.URL != "" {
		db, err := sqlx.ConnectContext(ctx, "postgres", cfg.Database.URL)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer db.Close()

		pg := postgres.NewResultRepository(db).(*postgres.ResultRepositoryImpl)
		if err := pg.EnsureSchema(ctx); err != nil {
			return err
		}
		repo = pg
		logger.Info("persisting runs to postgres")
	} else {
		store, err := artifact.NewStore(cfg.Paths.OutputDir)
		if err != nil {
			return err
		}
		repo = store
		logger.Info("persisting runs to %s", cfg.Paths.OutputDir)
	}

	service := app.NewAnalysisService(
		excel.NewTemperatureReader(sources, logger),
		excel.NewShipScheduleReader(sources.Ships, logger),
		repo,
		cfg.Analysis,
		logger,
	)

	rn, err := service.Run(ctx)
	if err != nil {
		return err
	}

	reportPath := filepath.Join(cfg.Paths.OutputDir, fmt.Sprintf("report-%s.md", rn.ID))
	if err := os.MkdirAll(cfg.Paths.OutputDir, 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(reportPath, []byte(app.RenderReport(rn)), 0o644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	logger.Info("run %s complete, report at %s", rn.ID, reportPath)
	return nil
}
