// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Keenan Husselmann

package service

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"time"

	"github.com/KeenanHusselmann/basket-buddy-sub000/internal/logger"
	"github.com/KeenanHusselmann/basket-buddy-sub000/internal/store"
	"github.com/KeenanHusselmann/basket-buddy-sub000/models"
)

// Well-known keys in the client's local key/value store.
const (
	// KeyStateBlob holds the canonical serialized ledger.
	KeyStateBlob = "state"

	// KeyBackupBlob holds the pre-pull backup ledger. One generation
	// only: each pull overwrites it.
	KeyBackupBlob = "backup"

	// KeyPendingWrite holds "1" while local changes have not been
	// confirmed written remotely. Durable, so a restart still knows an
	// upload is owed even though the in-memory dirty set is gone.
	KeyPendingWrite = "pending_remote_write"

	// KeyLocalModified holds the RFC 3339 timestamp of the last local
	// mutation.
	KeyLocalModified = "last_local_modified"
)

var (
	pendingFlagSet   = []byte("1")
	pendingFlagClear = []byte("0")
)

// MutateFunc transforms one collection and returns its new contents. The
// input slice is a deep copy and may be edited freely; the returned
// documents are owned by the tree afterwards and must not be retained by
// the caller.
type MutateFunc func(docs []models.Document) []models.Document

// StateTree is the canonical in-memory aggregate of all synced
// collections. Every local edit goes through Mutate or DeleteRecord: the
// tree diffs the result against the previous contents, records dirty ids
// and pending deletes on the tracker, persists the full blob to the local
// store synchronously, and only then notifies the scheduler. No remote
// I/O ever happens here.
type StateTree struct {
	kv      store.KeyValueStore
	tracker *DirtyTracker
	clock   Clock
	logger  *logger.Logger

	mu       sync.Mutex
	ledger   models.Ledger
	onMutate func()
}

// NewStateTree returns a tree holding an empty ledger. Call Load to pick
// up previously persisted state.
func NewStateTree(kv store.KeyValueStore, tracker *DirtyTracker, clock Clock, logger *logger.Logger) *StateTree {
	return &StateTree{
		kv:      kv,
		tracker: tracker,
		clock:   clock,
		logger:  logger,
		ledger:  models.NewLedger(),
	}
}

// SetOnMutate registers the hook fired after every successfully persisted
// mutation. The hook runs outside the tree's lock.
func (s *StateTree) SetOnMutate(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onMutate = fn
}

// Load replaces the in-memory ledger with the persisted blob. A missing
// blob is a fresh install and leaves the tree empty.
func (s *StateTree) Load(ctx context.Context) error {
	blob, err := s.kv.Get(ctx, KeyStateBlob)
	if errors.Is(err, store.ErrKeyNotFound) {
		s.mu.Lock()
		s.ledger = models.NewLedger()
		s.mu.Unlock()
		return nil
	}
	if err != nil {
		return fmt.Errorf("read local state: %w", err)
	}

	ledger, err := models.ParseLedger(blob)
	if err != nil {
		return fmt.Errorf("parse local state: %w", err)
	}

	s.mu.Lock()
	s.ledger = ledger
	s.mu.Unlock()
	return nil
}

// Snapshot returns a deep copy of the current ledger.
func (s *StateTree) Snapshot() models.Ledger {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.Clone()
}

// Counts returns the current per-collection record counts.
func (s *StateTree) Counts() map[models.Collection]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.Counts()
}

// Mutate applies fn to the named collection and atomically replaces it,
// marks every created or changed record id dirty, turns disappeared
// records into pending deletes, and persists the full ledger to the local
// store before returning. The durable pending-write flag is set and the
// local-modified stamp updated as a side effect.
func (s *StateTree) Mutate(ctx context.Context, collection models.Collection, fn MutateFunc) error {
	if !models.KnownCollection(collection) {
		return fmt.Errorf("unknown collection %q", collection)
	}

	s.mu.Lock()

	old := s.ledger[collection]
	work := make([]models.Document, len(old))
	for i, doc := range old {
		work[i] = doc.Clone()
	}

	next := fn(work)
	if err := validateCollection(collection, next); err != nil {
		s.mu.Unlock()
		return err
	}

	changed, deleted := diffCollection(old, next)
	s.ledger[collection] = next

	s.tracker.MarkDirty(collection, changed...)
	for _, id := range deleted {
		s.tracker.MarkDeleted(collection, id)
	}

	err := s.persistLocked(ctx)
	hook := s.onMutate
	s.mu.Unlock()

	if err != nil {
		return err
	}
	if hook != nil {
		hook()
	}
	return nil
}

// DeleteRecord removes the record and, transitively, every record in
// other collections whose foreign-key field references it, per the
// cascade rule table. Collections whose rule clears the reference instead
// keep their records with the field removed. Everything runs through
// Mutate, so dirty and delete tracking stay correct. Deleting an absent
// record is a no-op.
func (s *StateTree) DeleteRecord(ctx context.Context, collection models.Collection, id string) error {
	if !models.KnownCollection(collection) {
		return fmt.Errorf("unknown collection %q", collection)
	}

	removals, clears := s.cascadePlan(collection, id)
	if len(removals) == 0 && len(clears) == 0 {
		return nil
	}

	for _, c := range models.Collections() {
		remove := removals[c]
		clearFields := clears[c]
		if len(remove) == 0 && len(clearFields) == 0 {
			continue
		}

		err := s.Mutate(ctx, c, func(docs []models.Document) []models.Document {
			out := docs[:0]
			for _, doc := range docs {
				if _, gone := remove[doc.ID()]; gone {
					continue
				}
				if fields, ok := clearFields[doc.ID()]; ok {
					for field := range fields {
						delete(doc, field)
					}
				}
				out = append(out, doc)
			}
			return out
		})
		if err != nil {
			return fmt.Errorf("cascade delete in %q: %w", c, err)
		}
	}
	return nil
}

// cascadePlan walks the reference rules from the victim outward and
// returns the per-collection sets of record ids to remove and of
// foreign-key fields to clear.
func (s *StateTree) cascadePlan(collection models.Collection, id string) (map[models.Collection]map[string]struct{}, map[models.Collection]map[string]map[string]struct{}) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removals := make(map[models.Collection]map[string]struct{})
	clears := make(map[models.Collection]map[string]map[string]struct{})

	if s.ledger.FindByID(collection, id) == nil {
		return removals, clears
	}

	type victim struct {
		collection models.Collection
		id         string
	}
	queue := []victim{{collection: collection, id: id}}

	for len(queue) > 0 {
		v := queue[0]
		queue = queue[1:]

		set, ok := removals[v.collection]
		if !ok {
			set = make(map[string]struct{})
			removals[v.collection] = set
		}
		if _, seen := set[v.id]; seen {
			continue
		}
		set[v.id] = struct{}{}

		for _, rule := range models.ReferenceRulesFor(v.collection) {
			for _, doc := range s.ledger[rule.Collection] {
				ref, _ := doc[rule.Field].(string)
				if ref != v.id {
					continue
				}

				switch rule.Action {
				case models.RemoveReferencing:
					queue = append(queue, victim{collection: rule.Collection, id: doc.ID()})
				case models.ClearReference:
					byID, ok := clears[rule.Collection]
					if !ok {
						byID = make(map[string]map[string]struct{})
						clears[rule.Collection] = byID
					}
					fields, ok := byID[doc.ID()]
					if !ok {
						fields = make(map[string]struct{})
						byID[doc.ID()] = fields
					}
					fields[rule.Field] = struct{}{}
				}
			}
		}
	}

	return removals, clears
}

// AdoptRemote replaces the whole ledger with a freshly pulled remote
// snapshot. Local and remote now agree, so the tracker is emptied and the
// pending-write flag cleared; nothing is marked dirty and the scheduler
// is not notified.
func (s *StateTree) AdoptRemote(ctx context.Context, ledger models.Ledger) error {
	blob, err := ledger.Serialize()
	if err != nil {
		return fmt.Errorf("serialize pulled state: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.kv.Set(ctx, KeyStateBlob, blob); err != nil {
		return fmt.Errorf("persist pulled state: %w", err)
	}
	if err := s.kv.Set(ctx, KeyPendingWrite, pendingFlagClear); err != nil {
		return fmt.Errorf("clear pending write flag: %w", err)
	}

	s.ledger = ledger.Clone()
	s.tracker.Reset()
	return nil
}

// MarkSynced clears the durable pending-write flag. Called by the
// scheduler after a commit that drained the tracker completely.
func (s *StateTree) MarkSynced(ctx context.Context) error {
	if err := s.kv.Set(ctx, KeyPendingWrite, pendingFlagClear); err != nil {
		return fmt.Errorf("clear pending write flag: %w", err)
	}
	return nil
}

// PendingRemoteWrite reports whether local changes are still awaiting a
// confirmed remote write. A missing flag reads as false.
func (s *StateTree) PendingRemoteWrite(ctx context.Context) (bool, error) {
	v, err := s.kv.Get(ctx, KeyPendingWrite)
	if errors.Is(err, store.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read pending write flag: %w", err)
	}
	return string(v) == string(pendingFlagSet), nil
}

// LastLocalModified returns the stamp of the last local mutation, or
// false when no mutation has been recorded yet.
func (s *StateTree) LastLocalModified(ctx context.Context) (time.Time, bool) {
	v, err := s.kv.Get(ctx, KeyLocalModified)
	if err != nil {
		return time.Time{}, false
	}
	at, err := time.Parse(time.RFC3339Nano, string(v))
	if err != nil {
		return time.Time{}, false
	}
	return at, true
}

func (s *StateTree) persistLocked(ctx context.Context) error {
	blob, err := s.ledger.Serialize()
	if err != nil {
		return fmt.Errorf("serialize state: %w", err)
	}
	if err := s.kv.Set(ctx, KeyStateBlob, blob); err != nil {
		return fmt.Errorf("persist state: %w", err)
	}
	if err := s.kv.Set(ctx, KeyPendingWrite, pendingFlagSet); err != nil {
		return fmt.Errorf("set pending write flag: %w", err)
	}
	stamp := []byte(s.clock.Now().UTC().Format(time.RFC3339Nano))
	if err := s.kv.Set(ctx, KeyLocalModified, stamp); err != nil {
		return fmt.Errorf("stamp local modified: %w", err)
	}
	return nil
}

func validateCollection(collection models.Collection, docs []models.Document) error {
	seen := make(map[string]struct{}, len(docs))
	for i, doc := range docs {
		id := doc.ID()
		if id == "" {
			return fmt.Errorf("mutation of %q produced record %d without an id", collection, i)
		}
		if _, dup := seen[id]; dup {
			return fmt.Errorf("mutation of %q produced duplicate id %q", collection, id)
		}
		seen[id] = struct{}{}
	}
	return nil
}

// diffCollection compares a collection before and after a mutation and
// returns the created-or-changed ids and the disappeared ids.
func diffCollection(old, next []models.Document) (changed, deleted []string) {
	oldByID := make(map[string]models.Document, len(old))
	for _, doc := range old {
		oldByID[doc.ID()] = doc
	}

	nextIDs := make(map[string]struct{}, len(next))
	for _, doc := range next {
		id := doc.ID()
		nextIDs[id] = struct{}{}
		prev, existed := oldByID[id]
		if !existed || !reflect.DeepEqual(prev, doc) {
			changed = append(changed, id)
		}
	}

	for _, doc := range old {
		if _, kept := nextIDs[doc.ID()]; !kept {
			deleted = append(deleted, doc.ID())
		}
	}
	return changed, deleted
}
