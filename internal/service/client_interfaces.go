package service

import (
	"context"
	"time"

	"github.com/KeenanHusselmann/basket-buddy-sub000/models"
)

// ClientSessionService defines the client-side contract for signing in
// and bootstrapping the engine for an identity. Switching identity resets
// the scheduler and the dirty tracker; a commit still in flight for the
// previous identity finishes on its own, but its late result is discarded.
type ClientSessionService interface {
	// Register creates a new account on the remote store, then runs the
	// same initial load as Login. Returns an error if the account cannot
	// be created or the load fails.
	Register(ctx context.Context, email, password string) error

	// Login authenticates against the remote store and runs the initial
	// load for the identity: with an owed local write, the local blob is
	// kept and auto-uploaded; otherwise the remote snapshot is pulled
	// over local state, with a backup taken first. A load failure leaves
	// automatic commits blocked and is reported as ErrLoadFailure.
	Login(ctx context.Context, email, password string) error

	// Current returns the active session, or false when nobody is
	// signed in.
	Current() (models.Session, bool)

	// Profile fetches the identity's remote sync metadata, including
	// the last successful commit time. Returns ErrNotSignedIn when
	// nobody is signed in.
	Profile(ctx context.Context) (models.Profile, error)
}

// SyncScheduler coalesces bursts of local mutations into one remote
// commit after a quiescence window, serializes commits, and tracks the
// user-facing sync status.
type SyncScheduler interface {
	// OnMutation restarts the debounce window. Called by the state tree
	// after every persisted mutation. Before the initial load completes
	// the mutation is only recorded; while a commit is in flight it is
	// deferred until the commit finishes.
	OnMutation()

	// SignalLoadComplete unblocks automatic commits once the initial
	// load for the current identity has finished. Work recorded while
	// blocked starts a debounce window immediately.
	SignalLoadComplete()

	// ForceSync runs a full save right away, bypassing the debounce
	// window but not the quota gate. Returns ErrSyncInFlight while
	// another commit is running and ErrQuotaExhausted during a cooldown,
	// both without touching the network.
	ForceSync(ctx context.Context) error

	// Status returns the current user-facing sync status.
	Status() models.SyncStatus

	// State returns the scheduler's lifecycle state.
	State() SchedulerState

	// LastError returns the error of the most recent failed commit, or
	// nil after a success.
	LastError() error

	// Reset returns the scheduler to blocked-on-initial-load for a new
	// identity and invalidates in-flight commit results.
	Reset()
}

// RemoteSyncClient turns the state tree, the pending deletes, and an
// optional dirty filter into batched writes against the remote store and
// executes them in order.
type RemoteSyncClient interface {
	// CommitIncremental writes the pending deletes followed by only the
	// records whose ids appear in filter. Collections absent from the
	// filter are skipped entirely.
	CommitIncremental(ctx context.Context, ledger models.Ledger, deletes []PendingDelete, filter DirtyFilter) error

	// CommitFull writes the pending deletes, removes every remote record
	// absent from the ledger, and upserts every local record. Used where
	// deletions were not individually tracked.
	CommitFull(ctx context.Context, ledger models.Ledger, deletes []PendingDelete) error
}

// ClientVerifyService compares local and remote record counts and drives
// the merge-or-overwrite reconciliation path.
type ClientVerifyService interface {
	// VerifyCounts fetches the remote per-collection record counts with
	// one count-only query per collection. Returns a nil map on failure.
	VerifyCounts(ctx context.Context) (map[models.Collection]int, error)

	// Verify runs VerifyCounts and resolves a merge decision against the
	// local counts.
	Verify(ctx context.Context) (models.VerificationReport, error)

	// MergeSync verifies and then reconciles: in sync does nothing, a
	// remote lead fetches and unions remote records into local state
	// before a full save, a local lead runs the full save directly. The
	// report of the verification run is returned either way.
	MergeSync(ctx context.Context) (models.VerificationReport, error)
}

// ClientBackupService owns the pre-pull safety snapshot and the manual
// export/import of the local state blob.
type ClientBackupService interface {
	// BackupBeforePull copies the canonical blob into the backup slot,
	// overwriting the previous generation. A missing blob (first run) is
	// not an error.
	BackupBeforePull(ctx context.Context) error

	// Restore writes the backup blob back over the canonical blob, sets
	// the pending-write flag, and stamps the local-modified time. The
	// running process keeps its in-memory state; a restart is required.
	// Returns ErrBackupMissing when no backup exists.
	Restore(ctx context.Context) error

	// Export writes the raw canonical blob to a timestamped file in the
	// export directory and returns its path.
	Export(ctx context.Context) (string, error)

	// ImportBlob validates that blob parses as a ledger and then
	// replaces the canonical blob byte for byte, with the same side
	// effects as Restore. Returns ErrParseFailure without touching
	// anything when validation fails.
	ImportBlob(ctx context.Context, blob []byte) error
}

// ClientVerifyJob is a background worker that periodically compares local
// and remote counts and logs divergence. It never mutates state.
type ClientVerifyJob interface {
	// Start launches the background goroutine, verifying every interval.
	// A non-positive interval disables the job. Any previously running
	// job is stopped before the new one begins.
	Start(ctx context.Context, interval time.Duration)

	// Stop signals the background goroutine to exit and blocks until it
	// has fully terminated.
	Stop()
}
