package store

import (
	"context"
	"time"

	"github.com/KeenanHusselmann/basket-buddy-sub000/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/store_mock.go -package=mock

type UserRepository interface {
	CreateUser(ctx context.Context, user models.User) (models.User, error)
	FindUserByEmail(ctx context.Context, email string) (models.User, error)
}

// DocumentRepository persists the per-user synced collections as JSONB rows
// keyed by (user_id, collection, record_id).
type DocumentRepository interface {
	// ApplyBatch applies every operation inside one transaction. Upserts
	// replace the whole document; deletes of absent rows are no-ops.
	ApplyBatch(ctx context.Context, userID int64, ops []models.BatchOp) error
	// Snapshot returns the user's complete document set.
	Snapshot(ctx context.Context, userID int64) (models.Ledger, error)
	// ListIDs returns every record id the user has in a collection.
	ListIDs(ctx context.Context, userID int64, collection models.Collection) ([]string, error)
	// Count returns the number of records the user has in a collection.
	Count(ctx context.Context, userID int64, collection models.Collection) (int, error)
}

type ProfileRepository interface {
	GetProfile(ctx context.Context, userID int64) (models.Profile, error)
	SetLastSyncAt(ctx context.Context, userID int64, at time.Time) error
}
