package store

import (
	"context"
	"fmt"

	"github.com/KeenanHusselmann/basket-buddy-sub000/internal/config"
	"github.com/KeenanHusselmann/basket-buddy-sub000/internal/logger"
)

// ClientStorages groups all client-side storage repositories into a single
// value that can be passed around the service layer. Currently it holds only
// [KeyValueStore]; additional repositories can be added here as the feature
// set grows.
type ClientStorages struct {
	// StateKV is the SQLite-backed key/value store holding the canonical
	// state blob, the backup blob and the durable sync flags.
	StateKV KeyValueStore
}

// NewClientStorages initialises the client storage layer using the supplied
// configuration and logger. It performs the following steps:
//  1. Opens an SQLite connection to the file path specified in cfg.Path,
//     creating the database file if it does not yet exist.
//  2. Runs pending schema migrations via [DB.MigrateLocal].
//  3. Constructs and returns a [ClientStorages] value wired to a fresh
//     [KeyValueStore].
//
// Returns an error if the database connection cannot be established or if
// migration fails.
func NewClientStorages(cfg config.ClientStorage, logger *logger.Logger) (*ClientStorages, error) {
	logger.Info().Msg("creating new storages...")

	db, err := NewConnectSQLite(context.Background(), cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("sqlite connection error: %w", err)
	}

	if err := db.MigrateLocal(); err != nil {
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	return &ClientStorages{
		StateKV: NewLocalStateRepository(db, logger),
	}, nil
}
