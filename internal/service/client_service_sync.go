// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Keenan Husselmann

package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/KeenanHusselmann/basket-buddy-sub000/internal/logger"
	"github.com/KeenanHusselmann/basket-buddy-sub000/models"
)

const (
	// batchLimit caps the operations per commit, with headroom below the
	// store's hard limit of models.MaxBatchOps.
	batchLimit = 490

	// batchTimeout bounds one batch commit. A transport stalled under
	// backoff is indistinguishable from quota exhaustion from this side,
	// so expiry engages the quota gate.
	batchTimeout = 12 * time.Second
)

type remoteSyncClient struct {
	remote RemoteStore
	gate   *QuotaGate
	clock  Clock
	logger *logger.Logger
}

// NewRemoteSyncClient returns the RemoteSyncClient executing batched
// writes against remote, guarded by gate.
func NewRemoteSyncClient(remote RemoteStore, gate *QuotaGate, clock Clock, logger *logger.Logger) RemoteSyncClient {
	return &remoteSyncClient{remote: remote, gate: gate, clock: clock, logger: logger}
}

func (c *remoteSyncClient) CommitIncremental(ctx context.Context, ledger models.Ledger, deletes []PendingDelete, filter DirtyFilter) error {
	return c.commit(ctx, ledger, deletes, filter, false)
}

func (c *remoteSyncClient) CommitFull(ctx context.Context, ledger models.Ledger, deletes []PendingDelete) error {
	return c.commit(ctx, ledger, deletes, nil, true)
}

// commit drives one save: gate check, pending deletes, remote-absentee
// deletes (full saves only), then the upserts, all chunked into batches
// of at most batchLimit operations. The last-sync stamp at the end is
// best-effort and never fails the commit.
func (c *remoteSyncClient) commit(ctx context.Context, ledger models.Ledger, deletes []PendingDelete, filter DirtyFilter, full bool) error {
	log := logger.FromContext(ctx)

	if c.gate.IsExhausted() {
		return fmt.Errorf("%w: cooldown until %s", ErrQuotaExhausted, c.gate.Deadline().Format(time.RFC3339))
	}

	opsSent := 0
	batch := make([]models.BatchOp, 0, batchLimit)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := c.commitBatch(ctx, batch); err != nil {
			return err
		}
		opsSent += len(batch)
		batch = batch[:0]
		return nil
	}
	push := func(op models.BatchOp) error {
		batch = append(batch, op)
		if len(batch) >= batchLimit {
			return flush()
		}
		return nil
	}

	queuedDeletes := make(map[PendingDelete]struct{}, len(deletes))
	for _, del := range deletes {
		queuedDeletes[del] = struct{}{}
		op := models.BatchOp{Op: models.BatchOpDelete, Collection: del.Collection, ID: del.ID}
		if err := push(op); err != nil {
			return err
		}
	}

	if full {
		// A full save also removes remote records that no longer exist
		// locally. Deletions made while per-record tracking was
		// unavailable would otherwise survive remotely forever.
		for _, collection := range models.Collections() {
			remoteIDs, err := c.remote.ListIDs(ctx, collection)
			if err != nil {
				return fmt.Errorf("list remote ids of %q: %w", collection, err)
			}

			local := make(map[string]struct{}, len(ledger[collection]))
			for _, doc := range ledger[collection] {
				local[doc.ID()] = struct{}{}
			}

			for _, id := range remoteIDs {
				if _, kept := local[id]; kept {
					continue
				}
				del := PendingDelete{Collection: collection, ID: id}
				if _, dup := queuedDeletes[del]; dup {
					continue
				}
				op := models.BatchOp{Op: models.BatchOpDelete, Collection: collection, ID: id}
				if err := push(op); err != nil {
					return err
				}
			}
		}
	}

	for _, collection := range models.Collections() {
		if !full && len(filter[collection]) == 0 {
			continue
		}
		for _, doc := range ledger[collection] {
			if !full && !filter.Contains(collection, doc.ID()) {
				continue
			}
			op := models.BatchOp{
				Op:         models.BatchOpUpsert,
				Collection: collection,
				ID:         doc.ID(),
				Doc:        models.StripAbsent(doc),
			}
			if err := push(op); err != nil {
				return err
			}
		}
	}

	if err := flush(); err != nil {
		return err
	}

	if opsSent == 0 && !full {
		// Nothing was written, so there is nothing to stamp either.
		return nil
	}

	if err := c.remote.StampLastSync(ctx, c.clock.Now()); err != nil {
		log.Warn().Err(err).Str("func", "remoteSyncClient.commit").Msg("failed to stamp last sync time")
	}
	return nil
}

// commitBatch sends one batch under the hard timeout. Quota rejections
// and timeouts both mark the gate before propagating.
func (c *remoteSyncClient) commitBatch(ctx context.Context, ops []models.BatchOp) error {
	bctx, cancel := context.WithTimeout(ctx, batchTimeout)
	defer cancel()

	err := c.remote.CommitBatch(bctx, ops)
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) {
		c.gate.MarkExhausted()
		return fmt.Errorf("%w: batch commit timed out after %s", ErrQuotaExhausted, batchTimeout)
	}
	if errors.Is(err, ErrQuotaExhausted) {
		c.gate.MarkExhausted()
		return fmt.Errorf("commit batch of %d ops: %w", len(ops), err)
	}
	return fmt.Errorf("commit batch of %d ops: %w", len(ops), err)
}
