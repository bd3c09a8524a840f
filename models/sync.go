package models

import "time"

// SyncStatus is the engine's user-facing state, driven only by the
// outcome of the most recent remote operation. StatusSaved and
// StatusError are transient display states that decay back to
// StatusIdle after a fixed display duration.
type SyncStatus int

const (
	StatusIdle SyncStatus = iota
	StatusSaving
	StatusSaved
	StatusError
)

// String implements [fmt.Stringer].
func (s SyncStatus) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusSaving:
		return "saving"
	case StatusSaved:
		return "saved"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// MergeDecision is the Merge Resolver's verdict over local and remote
// per-collection record counts.
type MergeDecision int

const (
	// DecisionInSync means every remote count equals the local count.
	DecisionInSync MergeDecision = iota + 1

	// DecisionMerge means at least one remote collection holds records
	// local lacks; remote data must be fetched and unioned in before
	// saving, or those records would be destroyed by an overwrite.
	DecisionMerge

	// DecisionForceOverwrite means local is ahead (or remote behind);
	// a full save without a prior fetch is safe.
	DecisionForceOverwrite
)

// String implements [fmt.Stringer].
func (d MergeDecision) String() string {
	switch d {
	case DecisionInSync:
		return "in sync"
	case DecisionMerge:
		return "merge"
	case DecisionForceOverwrite:
		return "force overwrite"
	default:
		return "unknown"
	}
}

// VerificationReport carries the outcome of one count verification run:
// both count maps and the resolver's decision over them.
type VerificationReport struct {
	Local    map[Collection]int `json:"local"`
	Remote   map[Collection]int `json:"remote"`
	Decision MergeDecision      `json:"decision"`
	RanAt    time.Time          `json:"ran_at"`
}

// Profile is the identity-scoped remote record holding sync metadata.
type Profile struct {
	// LastSyncAt is stamped after every successful remote commit.
	// Nil means the identity has never completed a commit.
	LastSyncAt *time.Time `json:"lastSyncAt,omitempty"`
}

// Session is an authenticated client session against the remote store.
type Session struct {
	// IdentityID scopes every remote collection root; it is the
	// token's subject claim.
	IdentityID string `json:"identity_id"`

	// Token is the compact JWS sent as the bearer credential.
	Token string `json:"-"`
}
