package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
)

const migrationDir = "migrations"

//go:embed migrations/*.sql
var embedMigrations embed.FS

// Migrate brings the schema to version, or to the latest version when version is 0.
func Migrate(ctx context.Context, db *sql.DB, version int64) error {
	goose.SetBaseFS(embedMigrations)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect("mysql"); err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}

	if version == 0 {
		if err := goose.UpContext(ctx, db, migrationDir); err != nil {
			return fmt.Errorf("migrate up: %w", err)
		}
		return nil
	}

	current, err := goose.GetDBVersionContext(ctx, db)
	if err != nil {
		return fmt.Errorf("migration version: %w", err)
	}
	if version < current {
		if err := goose.DownToContext(ctx, db, migrationDir, version); err != nil {
			return fmt.Errorf("migrate down to %d: %w", version, err)
		}
		return nil
	}
	if err := goose.UpToContext(ctx, db, migrationDir, version); err != nil {
		return fmt.Errorf("migrate up to %d: %w", version, err)
	}
	return nil
}
