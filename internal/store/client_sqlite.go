package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/KeenanHusselmann/basket-buddy-sub000/internal/logger"
)

type localStateRepository struct {
	*DB
	logger *logger.Logger
}

// NewLocalStateRepository returns the SQLite-backed [KeyValueStore] holding
// the client's durable sync state.
func NewLocalStateRepository(db *DB, logger *logger.Logger) KeyValueStore {
	return &localStateRepository{
		DB:     db,
		logger: logger,
	}
}

func (l *localStateRepository) Get(ctx context.Context, key string) ([]byte, error) {
	log := logger.FromContext(ctx)

	var value []byte
	row := l.DB.QueryRowContext(ctx, getStateValue, key)
	if err := row.Scan(&value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrKeyNotFound
		}
		log.Err(err).
			Str("func", "localStateRepository.Get").
			Str("key", key).
			Msg("failed to read state value")
		return nil, fmt.Errorf("failed to read state value (key=%s): %w", key, err)
	}

	return value, nil
}

func (l *localStateRepository) Set(ctx context.Context, key string, value []byte) error {
	log := logger.FromContext(ctx)

	if _, err := l.DB.ExecContext(ctx, setStateValue, key, value); err != nil {
		log.Err(err).
			Str("func", "localStateRepository.Set").
			Str("key", key).
			Int("bytes", len(value)).
			Msg("failed to write state value")
		return fmt.Errorf("failed to write state value (key=%s): %w", key, err)
	}

	return nil
}

func (l *localStateRepository) Delete(ctx context.Context, key string) error {
	log := logger.FromContext(ctx)

	if _, err := l.DB.ExecContext(ctx, deleteStateValue, key); err != nil {
		log.Err(err).
			Str("func", "localStateRepository.Delete").
			Str("key", key).
			Msg("failed to delete state value")
		return fmt.Errorf("failed to delete state value (key=%s): %w", key, err)
	}

	return nil
}
