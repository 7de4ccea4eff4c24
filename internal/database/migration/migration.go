package migration

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	"github.com/pressly/goose/v3"
)

//go:embed sql/*.sql
var migrations embed.FS

// Files returns the embedded migration scripts rooted at their directory.
func Files() fs.FS {
	sub, err := fs.Sub(migrations, "sql")
	if err != nil {
		panic(err)
	}
	return sub
}

// Up applies all pending migrations and logs each stage.
func Up(ctx context.Context, db *sql.DB, logger *slog.Logger, dbHost string) error {
	start := time.Now()
	log := logger.With("component", "database", "db_host", dbHost)

	provider, err := goose.NewProvider(goose.DialectPostgres, db, Files(), goose.WithDisableGlobalRegistry(true))
	if err != nil {
		return fmt.Errorf("create migration provider: %w", err)
	}

	current, err := provider.GetDBVersion(ctx)
	if err != nil {
		log.Error("db_migration_failed", "error", err, "duration_ms", time.Since(start).Milliseconds())
		return fmt.Errorf("read schema version: %w", err)
	}
	log.Info("db_migration_check", "version", current)

	results, err := provider.Up(ctx)
	for _, r := range results {
		if r.Error != nil {
			log.Error("db_migration_failed",
				"migration_step", r.Source.Path,
				"error", r.Error,
				"step_duration_ms", r.Duration.Milliseconds(),
			)
			continue
		}
		log.Info("db_migration_step",
			"migration_step", r.Source.Path,
			"version", r.Source.Version,
			"step_duration_ms", r.Duration.Milliseconds(),
		)
	}
	if err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}

	if len(results) == 0 {
		log.Info("db_migration_skip", "reason", "schema up to date", "duration_ms", time.Since(start).Milliseconds())
		return nil
	}
	log.Info("db_migration_success", "applied", len(results), "duration_ms", time.Since(start).Milliseconds())
	return nil
}
