package models

import "time"

// MaxBatchOps is the hard per-request operation limit of the remote
// store's batch endpoint. Requests above it are rejected outright, so
// clients chunk below this value.
const MaxBatchOps = 500

// BatchOpType discriminates the two batchable write operations.
type BatchOpType string

const (
	BatchOpUpsert BatchOpType = "upsert"
	BatchOpDelete BatchOpType = "delete"
)

// BatchOp is one write operation inside a batch commit: an upsert
// carrying the full document, or a delete carrying only the id.
type BatchOp struct {
	// Op selects upsert or delete.
	Op BatchOpType `json:"op"`

	// Collection is the target collection name.
	Collection Collection `json:"collection"`

	// ID is the record identifier the operation addresses.
	ID string `json:"id"`

	// Doc is the full record for upserts; absent for deletes.
	Doc Document `json:"doc,omitempty"`
}

// BatchWriteRequest is the body of POST /api/user/batch. All operations
// are applied atomically in order.
type BatchWriteRequest struct {
	Ops []BatchOp `json:"ops"`
}

// SnapshotResponse is the body of GET /api/user/snapshot: every
// collection with all of its records, empty collections included.
type SnapshotResponse struct {
	Collections map[Collection][]Document `json:"collections"`
}

// IDListResponse is the body of GET /api/user/collections/{name}/ids.
type IDListResponse struct {
	IDs []string `json:"ids"`
}

// CountResponse is the body of GET /api/user/collections/{name}/count.
type CountResponse struct {
	Count int `json:"count"`
}

// SyncStampRequest is the body of PUT /api/user/profile/sync-stamp.
type SyncStampRequest struct {
	LastSyncAt time.Time `json:"lastSyncAt"`
}

// AuthRequest is the body of the register and login endpoints.
type AuthRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TokenResponse carries a freshly issued bearer token.
type TokenResponse struct {
	Token string `json:"token"`
}

// ErrorResponse is the uniform error body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
}
