package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/KeenanHusselmann/basket-buddy-sub000/internal/logger"
	"github.com/KeenanHusselmann/basket-buddy-sub000/models"
)

// profileRepository is the PostgreSQL-backed implementation of
// [ProfileRepository]. The profile row is created lazily on the first
// sync-stamp write, so reading a profile that was never stamped returns an
// empty profile rather than an error.
type profileRepository struct {
	logger *logger.Logger
	db     *DB
}

func NewProfileRepository(db *DB, logger *logger.Logger) ProfileRepository {
	logger.Debug().Msg("creating profile repository")
	return &profileRepository{
		db:     db,
		logger: logger,
	}
}

func (r *profileRepository) GetProfile(ctx context.Context, userID int64) (models.Profile, error) {
	log := logger.FromContext(ctx)

	var lastSyncAt sql.NullTime
	row := r.db.QueryRowContext(ctx, getProfile, userID)
	if err := row.Scan(&lastSyncAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Profile{}, nil
		}

		log.Err(err).
			Str("func", "profileRepository.GetProfile").
			Int64("user_id", userID).
			Msg("failed to read profile")
		return models.Profile{}, fmt.Errorf("failed to read profile: %w", err)
	}

	var profile models.Profile
	if lastSyncAt.Valid {
		at := lastSyncAt.Time
		profile.LastSyncAt = &at
	}

	return profile, nil
}

func (r *profileRepository) SetLastSyncAt(ctx context.Context, userID int64, at time.Time) error {
	log := logger.FromContext(ctx)

	if _, err := r.db.ExecContext(ctx, setLastSyncAt, userID, at); err != nil {
		log.Err(err).
			Str("func", "profileRepository.SetLastSyncAt").
			Int64("user_id", userID).
			Time("last_sync_at", at).
			Msg("failed to write sync stamp")
		return fmt.Errorf("failed to write sync stamp: %w", err)
	}

	return nil
}
