package db

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"

	_ "github.com/jackc/pgx/v4/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/Soodgit/ai-code-documenter/internal/common/logger"
)

var gooseUpContext = goose.UpContext

func RunMigrations(ctx context.Context, log *logger.Logger, databaseURL string, migrationsFS fs.FS) error {
	goose.SetBaseFS(migrationsFS)
	goose.SetLogger(goose.NopLogger())

	if err := goose.SetDialect("pgx"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	sqlDB, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database for migrations: %w", err)
	}
	defer func() {
		if cerr := sqlDB.Close(); cerr != nil {
			log.Warnf("failed to close migration connection: %v", cerr)
		}
	}()

	err = RetryWithBackoff(ctx, log, DefaultRetryConfig, func() error {
		return gooseUpContext(ctx, sqlDB, ".")
	})
	if err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	log.Info("database migrations applied")
	return nil
}
