package store

import (
	"database/sql"

	"github.com/KeenanHusselmann/basket-buddy-sub000/internal/logger"
	"github.com/KeenanHusselmann/basket-buddy-sub000/migrations"
)

type DB struct {
	*sql.DB
	errorClassificator ErrorClassificator
	logger             *logger.Logger
}

// Migrate applies the server-side PostgreSQL schema.
func (db *DB) Migrate() error {
	return migrations.Migrate(db.DB)
}

// MigrateLocal applies the client-side SQLite schema.
func (db *DB) MigrateLocal() error {
	return migrations.MigrateLocal(db.DB)
}
