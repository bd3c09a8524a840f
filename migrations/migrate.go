package migrations

import (
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
)

//go:embed postgres/*.sql
var postgresMigrations embed.FS

//go:embed sqlite/*.sql
var sqliteMigrations embed.FS

// Migrate applies the server schema to a PostgreSQL database.
func Migrate(db *sql.DB) error {
	goose.SetBaseFS(postgresMigrations)

	if err := goose.SetDialect("pgx"); err != nil {
		return fmt.Errorf("migration error setting dialect for db: %w", err)
	}

	if err := goose.Up(db, "postgres"); err != nil {
		return fmt.Errorf("migration error: %w", err)
	}

	return nil
}

// MigrateLocal applies the client state schema to an SQLite database.
func MigrateLocal(db *sql.DB) error {
	goose.SetBaseFS(sqliteMigrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("migration error setting dialect for db: %w", err)
	}

	if err := goose.Up(db, "sqlite"); err != nil {
		return fmt.Errorf("migration error: %w", err)
	}

	return nil
}
