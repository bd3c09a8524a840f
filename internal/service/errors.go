package service

import "errors"

// Client-side error kinds. Every remote-operation failure is translated
// into exactly one of these at the transport boundary (internal/adapter);
// the engine and the console branch on them with errors.Is and never
// inspect transport errors directly.
var (
	// ErrNetworkFailure is a transient transport error that does not
	// indicate quota exhaustion. The dirty set is kept; the next debounce
	// cycle or a manual retry attempts the commit again.
	ErrNetworkFailure = errors.New("network failure")

	// ErrPermissionDenied means the remote store rejected the operation
	// on security grounds. Never retried automatically.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrQuotaExhausted means a remote write was rejected for exceeding
	// quota, or a batch commit hit its hard timeout. Engages the quota
	// gate cooldown.
	ErrQuotaExhausted = errors.New("write quota exhausted")

	// ErrLoadFailure means the initial remote fetch for a freshly
	// signed-in identity failed. Distinct from a genuine empty first-time
	// account: the caller keeps local-only state and must not
	// auto-initialize the remote side.
	ErrLoadFailure = errors.New("initial remote load failed")

	// ErrParseFailure means an imported blob does not parse as a ledger.
	// The import is rejected before any mutation.
	ErrParseFailure = errors.New("import blob failed to parse")
)

// Client-side engine state errors.
var (
	ErrSyncInFlight  = errors.New("a sync commit is already in flight")
	ErrBackupMissing = errors.New("no backup snapshot exists")
	ErrNoLocalState  = errors.New("no local state saved yet")
	ErrNotSignedIn   = errors.New("not signed in")
)

// Server-side validation and auth errors.
var (
	ErrInvalidDataProvided = errors.New("invalid data provided")
	ErrWrongPassword       = errors.New("wrong password")

	ErrTokenCreationFailed     = errors.New("token creation failed")
	ErrTokenIsExpiredOrInvalid = errors.New("token is expired or invalid")

	ErrEmptyBatch        = errors.New("no batch operations provided")
	ErrBatchTooLarge     = errors.New("batch exceeds the operation limit")
	ErrUnknownCollection = errors.New("unknown collection")

	ErrVersionNotSpecified = errors.New("application version is not specified")
)
