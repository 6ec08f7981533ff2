package infra

import (
	"database/sql"
	"embed"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// RunMigrations applies all pending goose migrations against dsn.
func RunMigrations(dsn string) error {
	return withGoose(dsn, func(db *sql.DB) error { return goose.Up(db, "migrations") })
}

// RollbackMigration reverts the most recent migration.
func RollbackMigration(dsn string) error {
	return withGoose(dsn, func(db *sql.DB) error { return goose.Down(db, "migrations") })
}

// MigrationStatus logs the applied state of every migration.
func MigrationStatus(dsn string) error {
	return withGoose(dsn, func(db *sql.DB) error { return goose.Status(db, "migrations") })
}

func withGoose(dsn string, fn func(*sql.DB) error) error {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close() //nolint:errcheck

	goose.SetBaseFS(migrationFS)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	if err := fn(db); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}
	return nil
}
