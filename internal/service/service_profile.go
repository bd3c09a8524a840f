package service

import (
	"context"
	"fmt"
	"time"

	"github.com/KeenanHusselmann/basket-buddy-sub000/internal/logger"
	"github.com/KeenanHusselmann/basket-buddy-sub000/internal/store"
	"github.com/KeenanHusselmann/basket-buddy-sub000/models"
)

// profileService is the concrete implementation of ProfileService.
type profileService struct {
	profiles store.ProfileRepository
	logger   *logger.Logger
}

// NewProfileService constructs a ProfileService on top of the given
// repository.
func NewProfileService(profiles store.ProfileRepository, logger *logger.Logger) ProfileService {
	return &profileService{
		profiles: profiles,
		logger:   logger,
	}
}

// GetProfile returns the identity's sync profile. An identity that has
// never synced gets a profile with a nil LastSyncAt.
func (p *profileService) GetProfile(ctx context.Context, userID int64) (models.Profile, error) {
	profile, err := p.profiles.GetProfile(ctx, userID)
	if err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "profileService.GetProfile").
			Int64("user_id", userID).
			Msg("profile read failed")
		return models.Profile{}, fmt.Errorf("profile read failed: %w", err)
	}

	return profile, nil
}

// StampLastSync records the moment the identity last completed a commit.
//
// Returns ErrInvalidDataProvided for a zero timestamp.
func (p *profileService) StampLastSync(ctx context.Context, userID int64, at time.Time) error {
	if at.IsZero() {
		return fmt.Errorf("%w: zero sync timestamp", ErrInvalidDataProvided)
	}

	if err := p.profiles.SetLastSyncAt(ctx, userID, at.UTC()); err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "profileService.StampLastSync").
			Int64("user_id", userID).
			Msg("sync stamp write failed")
		return fmt.Errorf("sync stamp write failed: %w", err)
	}

	return nil
}
