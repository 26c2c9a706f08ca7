package db

import (
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"

	"hr-approvals/internal/db/dbstore"
)

// RunMigrations applies all pending goose migrations using the dialect's
// goose driver.
func RunMigrations(db *sql.DB, dialect dbstore.Dialect) error {
	goose.SetBaseFS(EmbedMigrations)

	if err := goose.SetDialect(string(dialect)); err != nil {
		return fmt.Errorf("goose set dialect: %w", err)
	}

	if err := goose.Up(db, "migrations"); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}

	return nil
}

// MigrationVersion reports the current schema version.
func MigrationVersion(db *sql.DB, dialect dbstore.Dialect) (int64, error) {
	goose.SetBaseFS(EmbedMigrations)
	if err := goose.SetDialect(string(dialect)); err != nil {
		return 0, fmt.Errorf("goose set dialect: %w", err)
	}
	v, err := goose.GetDBVersion(db)
	if err != nil {
		return 0, fmt.Errorf("goose version: %w", err)
	}
	return v, nil
}
