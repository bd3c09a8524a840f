package service

import (
	"sync"

	"github.com/KeenanHusselmann/basket-buddy-sub000/models"
)

// PendingDelete is one record deletion queued for the next remote commit.
type PendingDelete struct {
	Collection models.Collection
	ID         string
}

// DirtyFilter restricts an incremental save to the listed record ids.
// Collections absent from the filter are skipped entirely.
type DirtyFilter map[models.Collection]map[string]struct{}

// Contains reports whether the filter lists id inside collection c.
func (f DirtyFilter) Contains(c models.Collection, id string) bool {
	ids, ok := f[c]
	if !ok {
		return false
	}
	_, ok = ids[id]
	return ok
}

// DirtyTracker accumulates the record ids changed since the last
// successful remote commit plus an ordered log of pending deletes.
//
// Invariant: an id in the dirty set currently exists in its collection.
// Deleting a record moves its id out of the dirty set and onto the
// pending-delete log. Clearing is revision-guarded: a finished commit
// clears the tracker only when no mutation landed between its drain and
// its completion, so a raced mutation survives into the next cycle.
// Re-sent upserts and deletes are idempotent, which makes the occasional
// double send safe.
type DirtyTracker struct {
	mu       sync.Mutex
	dirty    map[models.Collection]map[string]struct{}
	deletes  []PendingDelete
	queued   map[PendingDelete]struct{}
	revision uint64
}

// NewDirtyTracker returns an empty tracker.
func NewDirtyTracker() *DirtyTracker {
	return &DirtyTracker{
		dirty:  make(map[models.Collection]map[string]struct{}),
		queued: make(map[PendingDelete]struct{}),
	}
}

// MarkDirty records that the given records changed in collection c.
func (t *DirtyTracker) MarkDirty(c models.Collection, ids ...string) {
	if len(ids) == 0 {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	set, ok := t.dirty[c]
	if !ok {
		set = make(map[string]struct{}, len(ids))
		t.dirty[c] = set
	}
	for _, id := range ids {
		set[id] = struct{}{}
	}
	t.revision++
}

// MarkDeleted records that the record was removed from collection c. The
// id leaves the dirty set (a deleted record can no longer be upserted)
// and joins the pending-delete log. Re-deleting an already queued record
// changes nothing.
func (t *DirtyTracker) MarkDeleted(c models.Collection, id string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if set, ok := t.dirty[c]; ok {
		delete(set, id)
		if len(set) == 0 {
			delete(t.dirty, c)
		}
	}

	del := PendingDelete{Collection: c, ID: id}
	if _, dup := t.queued[del]; dup {
		return
	}
	t.queued[del] = struct{}{}
	t.deletes = append(t.deletes, del)
	t.revision++
}

// Drain returns a snapshot of the dirty filter and the pending deletes
// together with the revision they were taken at. Nothing is cleared; the
// caller passes the revision back to ClearIfUnchanged once the commit
// built from this snapshot succeeds.
func (t *DirtyTracker) Drain() (DirtyFilter, []PendingDelete, uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	filter := make(DirtyFilter, len(t.dirty))
	for c, ids := range t.dirty {
		set := make(map[string]struct{}, len(ids))
		for id := range ids {
			set[id] = struct{}{}
		}
		filter[c] = set
	}

	deletes := make([]PendingDelete, len(t.deletes))
	copy(deletes, t.deletes)

	return filter, deletes, t.revision
}

// ClearIfUnchanged empties the tracker if its revision still equals
// revision and reports whether it did. A false return means mutations
// raced the commit; everything is kept for the next cycle.
func (t *DirtyTracker) ClearIfUnchanged(revision uint64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.revision != revision {
		return false
	}

	t.dirty = make(map[models.Collection]map[string]struct{})
	t.deletes = nil
	t.queued = make(map[PendingDelete]struct{})
	return true
}

// HasWork reports whether anything is waiting to be committed.
func (t *DirtyTracker) HasWork() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if len(t.deletes) > 0 {
		return true
	}
	for _, ids := range t.dirty {
		if len(ids) > 0 {
			return true
		}
	}
	return false
}

// Counts returns the number of dirty records and pending deletes, for
// display purposes.
func (t *DirtyTracker) Counts() (dirty, deletes int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, ids := range t.dirty {
		dirty += len(ids)
	}
	return dirty, len(t.deletes)
}

// Reset empties the tracker unconditionally and bumps the revision so an
// in-flight drain can no longer clear it. Used on identity switch.
func (t *DirtyTracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.dirty = make(map[models.Collection]map[string]struct{})
	t.deletes = nil
	t.queued = make(map[PendingDelete]struct{})
	t.revision++
}
