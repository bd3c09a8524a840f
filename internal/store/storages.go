package store

import (
	"context"
	"fmt"

	"github.com/KeenanHusselmann/basket-buddy-sub000/internal/config"
	"github.com/KeenanHusselmann/basket-buddy-sub000/internal/logger"
)

// Storages groups the server-side repositories into a single value that can
// be passed around the service layer.
type Storages struct {
	Users     UserRepository
	Documents DocumentRepository
	Profiles  ProfileRepository
}

// NewStorages connects to PostgreSQL, applies pending migrations and wires
// every repository.
func NewStorages(ctx context.Context, cfg config.DB, logger *logger.Logger) (*Storages, error) {
	logger.Info().Msg("creating new storages...")

	db, err := NewConnectPostgres(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("postgres connection error: %w", err)
	}

	if err := db.Migrate(); err != nil {
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	return &Storages{
		Users:     NewUserRepository(db, logger),
		Documents: NewDocumentRepository(db, logger),
		Profiles:  NewProfileRepository(db, logger),
	}, nil
}
