package store

import (
	"context"
)

//go:generate mockgen -source=client_interfaces.go -destination=../mock/client_store_mock.go -package=mock

// KeyValueStore is the narrow persistence surface the client engine works
// against. The engine stores a handful of well-known keys (the canonical
// state blob, the backup blob, the pending-write flag, the local modified
// stamp), so a flat key/value contract is all it needs.
type KeyValueStore interface {
	// Get returns the value stored under key, or [ErrKeyNotFound] when the
	// key is absent.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set durably stores value under key, replacing any previous value.
	Set(ctx context.Context, key string, value []byte) error
	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
}
