package service

import (
	"context"
	"time"

	"github.com/KeenanHusselmann/basket-buddy-sub000/models"
)

//go:generate mockgen -source=remote_store.go -destination=../mock/remote_store_mock.go -package=mock

// RemoteStore is the transport-agnostic surface of the remote document
// store. Implementations own serialization, bearer-token management, and
// the translation of transport failures into this package's error kinds
// (ErrNetworkFailure, ErrPermissionDenied, ErrQuotaExhausted); the engine
// never inspects transport errors itself.
type RemoteStore interface {
	// SetToken stores the bearer token attached to every subsequent
	// identity-scoped request. Register and Login call it themselves on
	// success.
	SetToken(token string)

	// Register creates an account and returns an authenticated session
	// for it.
	Register(ctx context.Context, email, password string) (models.Session, error)

	// Login authenticates the account and returns its session.
	Login(ctx context.Context, email, password string) (models.Session, error)

	// CommitBatch applies up to models.MaxBatchOps write operations
	// atomically, in order.
	CommitBatch(ctx context.Context, ops []models.BatchOp) error

	// ListIDs returns every record id in the identity's collection.
	ListIDs(ctx context.Context, collection models.Collection) ([]string, error)

	// Count returns the number of records in the identity's collection
	// without downloading them.
	Count(ctx context.Context, collection models.Collection) (int, error)

	// Snapshot fetches the identity's full remote state.
	Snapshot(ctx context.Context) (models.Ledger, error)

	// Profile fetches the identity's sync metadata.
	Profile(ctx context.Context) (models.Profile, error)

	// StampLastSync records a successful commit time on the identity's
	// profile.
	StampLastSync(ctx context.Context, at time.Time) error
}
