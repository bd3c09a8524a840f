// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Keenan Husselmann

package service

import (
	"context"
	"fmt"

	"github.com/KeenanHusselmann/basket-buddy-sub000/internal/logger"
	"github.com/KeenanHusselmann/basket-buddy-sub000/internal/store"
	"github.com/KeenanHusselmann/basket-buddy-sub000/models"
)

// documentService is the concrete implementation of DocumentService.
// It validates inbound batches and delegates persistence to a
// DocumentRepository, which applies each batch in a single transaction.
type documentService struct {
	documents store.DocumentRepository
	logger    *logger.Logger
}

// NewDocumentService constructs a DocumentService on top of the given
// repository.
func NewDocumentService(documents store.DocumentRepository, logger *logger.Logger) DocumentService {
	return &documentService{
		documents: documents,
		logger:    logger,
	}
}

// ApplyBatch validates and applies a batch of write operations for one
// identity. The whole batch is applied atomically; validation failures
// reject the batch before any row is touched.
//
// Returns nil on success or:
//   - ErrEmptyBatch if ops is empty.
//   - ErrBatchTooLarge if ops exceeds models.MaxBatchOps.
//   - ErrUnknownCollection if any operation names a collection outside the
//     fixed set.
//   - ErrInvalidDataProvided if any operation has an empty id, an upsert
//     without a document, or an unsupported op type.
//   - A wrapped storage error if the repository call fails.
func (d *documentService) ApplyBatch(ctx context.Context, userID int64, ops []models.BatchOp) error {
	log := logger.FromContext(ctx)

	if len(ops) == 0 {
		return ErrEmptyBatch
	}
	if len(ops) > models.MaxBatchOps {
		log.Error().
			Int("ops", len(ops)).
			Int("limit", models.MaxBatchOps).
			Msg("batch rejected: too many operations")
		return fmt.Errorf("%w: %d operations exceed the limit of %d", ErrBatchTooLarge, len(ops), models.MaxBatchOps)
	}

	normalized := make([]models.BatchOp, 0, len(ops))
	for i, op := range ops {
		if !models.KnownCollection(op.Collection) {
			return fmt.Errorf("%w: %q", ErrUnknownCollection, op.Collection)
		}
		if op.ID == "" {
			return fmt.Errorf("%w: operation %d has an empty record id", ErrInvalidDataProvided, i)
		}

		switch op.Op {
		case models.BatchOpUpsert:
			if op.Doc == nil {
				return fmt.Errorf("%w: upsert of %s/%s carries no document", ErrInvalidDataProvided, op.Collection, op.ID)
			}
			// The stored document always carries the id it is addressed by,
			// even if the client omitted or mismatched the field.
			doc := op.Doc.Clone()
			doc[models.IDField] = op.ID
			op.Doc = doc
		case models.BatchOpDelete:
			op.Doc = nil
		default:
			return fmt.Errorf("%w: unsupported op %q", ErrInvalidDataProvided, op.Op)
		}

		normalized = append(normalized, op)
	}

	if err := d.documents.ApplyBatch(ctx, userID, normalized); err != nil {
		log.Err(err).
			Str("func", "documentService.ApplyBatch").
			Int64("user_id", userID).
			Int("ops", len(normalized)).
			Msg("batch write failed")
		return fmt.Errorf("batch write failed: %w", err)
	}

	return nil
}

// Snapshot returns the identity's complete document set, every collection
// present even when empty.
func (d *documentService) Snapshot(ctx context.Context, userID int64) (models.Ledger, error) {
	snapshot, err := d.documents.Snapshot(ctx, userID)
	if err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "documentService.Snapshot").
			Int64("user_id", userID).
			Msg("snapshot read failed")
		return models.Ledger{}, fmt.Errorf("snapshot read failed: %w", err)
	}

	return snapshot, nil
}

// ListIDs returns every record id the identity has in the named collection.
//
// Returns ErrUnknownCollection if the name is outside the fixed set.
func (d *documentService) ListIDs(ctx context.Context, userID int64, collection string) ([]string, error) {
	name := models.Collection(collection)
	if !models.KnownCollection(name) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCollection, collection)
	}

	ids, err := d.documents.ListIDs(ctx, userID, name)
	if err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "documentService.ListIDs").
			Int64("user_id", userID).
			Str("collection", collection).
			Msg("id listing failed")
		return nil, fmt.Errorf("id listing failed: %w", err)
	}

	return ids, nil
}

// Count returns the number of records the identity has in the named
// collection.
//
// Returns ErrUnknownCollection if the name is outside the fixed set.
func (d *documentService) Count(ctx context.Context, userID int64, collection string) (int, error) {
	name := models.Collection(collection)
	if !models.KnownCollection(name) {
		return 0, fmt.Errorf("%w: %q", ErrUnknownCollection, collection)
	}

	count, err := d.documents.Count(ctx, userID, name)
	if err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "documentService.Count").
			Int64("user_id", userID).
			Str("collection", collection).
			Msg("count read failed")
		return 0, fmt.Errorf("count read failed: %w", err)
	}

	return count, nil
}
