package service

import (
	"context"
	"time"

	"github.com/KeenanHusselmann/basket-buddy-sub000/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/service_mock.go -package=mock

// AuthService handles account registration, credential verification and
// the JWT token lifecycle for the document-store server.
type AuthService interface {
	RegisterUser(ctx context.Context, email, password string) (models.User, error)
	Login(ctx context.Context, email, password string) (models.User, error)
	CreateToken(ctx context.Context, user models.User) (models.Token, error)
	ParseToken(ctx context.Context, tokenString string) (models.Token, error)
}

// DocumentService validates and applies identity-scoped document
// operations on top of a DocumentRepository.
type DocumentService interface {
	ApplyBatch(ctx context.Context, userID int64, ops []models.BatchOp) error
	Snapshot(ctx context.Context, userID int64) (models.Ledger, error)
	ListIDs(ctx context.Context, userID int64, collection string) ([]string, error)
	Count(ctx context.Context, userID int64, collection string) (int, error)
}

// ProfileService exposes the per-identity sync profile.
type ProfileService interface {
	GetProfile(ctx context.Context, userID int64) (models.Profile, error)
	StampLastSync(ctx context.Context, userID int64, at time.Time) error
}

// AppInfoService exposes build metadata for the version endpoint.
type AppInfoService interface {
	GetAppVersion(ctx context.Context) string
}
