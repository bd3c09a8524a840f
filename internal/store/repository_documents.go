// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Keenan Husselmann

package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/KeenanHusselmann/basket-buddy-sub000/internal/logger"
	"github.com/KeenanHusselmann/basket-buddy-sub000/models"
	"github.com/Masterminds/squirrel"
)

// psql builds every documents query with PostgreSQL $N placeholders.
var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// documentRepository is the PostgreSQL-backed implementation of
// [DocumentRepository]. Records live in the "documents" table as JSONB rows
// keyed by (user_id, collection, record_id); an upsert replaces the whole
// document, matching the client's last-write-wins model.
type documentRepository struct {
	logger *logger.Logger
	db     *DB
}

// NewDocumentRepository constructs a [DocumentRepository] backed by the
// provided database connection and logger.
func NewDocumentRepository(db *DB, logger *logger.Logger) DocumentRepository {
	logger.Debug().Msg("creating document repository")
	return &documentRepository{
		db:     db,
		logger: logger,
	}
}

// ApplyBatch applies every operation inside a single transaction, so a
// client batch is all-or-nothing. A failed attempt is retried once when the
// error classifier reports it as transient (deadlock, serialization
// failure, dropped connection).
func (r *documentRepository) ApplyBatch(ctx context.Context, userID int64, ops []models.BatchOp) error {
	log := logger.FromContext(ctx)

	err := r.applyBatchOnce(ctx, userID, ops)
	if err != nil && r.db.errorClassificator != nil && r.db.errorClassificator.Classify(err) == Retryable {
		log.Warn().
			Err(err).
			Str("func", "documentRepository.ApplyBatch").
			Int64("user_id", userID).
			Int("ops", len(ops)).
			Msg("retrying batch after retryable database error")
		err = r.applyBatchOnce(ctx, userID, ops)
	}

	return err
}

func (r *documentRepository) applyBatchOnce(ctx context.Context, userID int64, ops []models.BatchOp) error {
	log := logger.FromContext(ctx)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		log.Err(err).Str("func", "documentRepository.applyBatchOnce").Msg("failed to begin transaction")
		return fmt.Errorf("%w: %w", ErrBeginningTransaction, err)
	}
	defer tx.Rollback()

	for _, op := range ops {
		switch op.Op {
		case models.BatchOpUpsert:
			if err := r.upsertTx(ctx, tx, userID, op); err != nil {
				return err
			}
		case models.BatchOpDelete:
			if err := r.deleteTx(ctx, tx, userID, op); err != nil {
				return err
			}
		default:
			return fmt.Errorf("unsupported batch op %q", op.Op)
		}
	}

	if err := tx.Commit(); err != nil {
		log.Err(err).Str("func", "documentRepository.applyBatchOnce").Msg("failed to commit transaction")
		return fmt.Errorf("%w: %w", ErrCommittingTransaction, err)
	}

	return nil
}

func (r *documentRepository) upsertTx(ctx context.Context, tx squirrel.ExecerContext, userID int64, op models.BatchOp) error {
	log := logger.FromContext(ctx)

	docJSON, err := json.Marshal(op.Doc)
	if err != nil {
		return fmt.Errorf("failed to encode document (collection=%s, id=%s): %w", op.Collection, op.ID, err)
	}

	query, args, err := psql.Insert("documents").
		Columns("user_id", "collection", "record_id", "doc").
		Values(userID, op.Collection, op.ID, docJSON).
		Suffix(`ON CONFLICT (user_id, collection, record_id) DO UPDATE SET
			doc        = excluded.doc,
			updated_at = now()`).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		log.Err(err).
			Str("func", "documentRepository.upsertTx").
			Int64("user_id", userID).
			Str("collection", string(op.Collection)).
			Str("record_id", op.ID).
			Msg("failed to upsert document")
		return fmt.Errorf("failed to upsert document (collection=%s, id=%s): %w", op.Collection, op.ID, err)
	}

	return nil
}

// deleteTx removes one record. Deleting an absent record is a no-op, so
// re-sent delete batches stay idempotent.
func (r *documentRepository) deleteTx(ctx context.Context, tx squirrel.ExecerContext, userID int64, op models.BatchOp) error {
	log := logger.FromContext(ctx)

	query, args, err := psql.Delete("documents").
		Where(squirrel.Eq{
			"user_id":    userID,
			"collection": op.Collection,
			"record_id":  op.ID,
		}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		log.Err(err).
			Str("func", "documentRepository.deleteTx").
			Int64("user_id", userID).
			Str("collection", string(op.Collection)).
			Str("record_id", op.ID).
			Msg("failed to delete document")
		return fmt.Errorf("failed to delete document (collection=%s, id=%s): %w", op.Collection, op.ID, err)
	}

	return nil
}

// Snapshot returns every record the user has, grouped per collection, with
// absent collections present and empty.
func (r *documentRepository) Snapshot(ctx context.Context, userID int64) (models.Ledger, error) {
	log := logger.FromContext(ctx)

	query, args, err := psql.Select("collection", "record_id", "doc").
		From("documents").
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("collection", "record_id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).
			Str("func", "documentRepository.Snapshot").
			Int64("user_id", userID).
			Msg("failed to query snapshot")
		return nil, fmt.Errorf("failed to query snapshot: %w", err)
	}
	defer rows.Close()

	ledger := models.NewLedger()

	for rows.Next() {
		var (
			collection string
			recordID   string
			docJSON    []byte
		)
		if err := rows.Scan(&collection, &recordID, &docJSON); err != nil {
			log.Err(err).
				Str("func", "documentRepository.Snapshot").
				Int64("user_id", userID).
				Msg("failed to scan snapshot row")
			return nil, fmt.Errorf("failed to scan snapshot row: %w", err)
		}

		var doc models.Document
		if err := json.Unmarshal(docJSON, &doc); err != nil {
			log.Err(err).
				Str("func", "documentRepository.Snapshot").
				Int64("user_id", userID).
				Str("collection", collection).
				Str("record_id", recordID).
				Msg("failed to decode stored document")
			return nil, fmt.Errorf("failed to decode stored document (collection=%s, id=%s): %w", collection, recordID, err)
		}

		c := models.Collection(collection)
		if !models.KnownCollection(c) {
			log.Warn().
				Str("func", "documentRepository.Snapshot").
				Int64("user_id", userID).
				Str("collection", collection).
				Msg("skipping row from unknown collection")
			continue
		}

		ledger[c] = append(ledger[c], doc)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		log.Err(rowsErr).
			Str("func", "documentRepository.Snapshot").
			Int64("user_id", userID).
			Msg("error occurred during rows iteration")
		return nil, fmt.Errorf("error iterating snapshot rows: %w", rowsErr)
	}

	return ledger, nil
}

// ListIDs returns every record id the user has in a collection, ordered.
func (r *documentRepository) ListIDs(ctx context.Context, userID int64, collection models.Collection) ([]string, error) {
	log := logger.FromContext(ctx)

	query, args, err := psql.Select("record_id").
		From("documents").
		Where(squirrel.Eq{"user_id": userID, "collection": collection}).
		OrderBy("record_id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).
			Str("func", "documentRepository.ListIDs").
			Int64("user_id", userID).
			Str("collection", string(collection)).
			Msg("failed to query record ids")
		return nil, fmt.Errorf("failed to query record ids: %w", err)
	}
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			log.Err(err).
				Str("func", "documentRepository.ListIDs").
				Int64("user_id", userID).
				Str("collection", string(collection)).
				Msg("failed to scan record id")
			return nil, fmt.Errorf("failed to scan record id: %w", err)
		}
		ids = append(ids, id)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		log.Err(rowsErr).
			Str("func", "documentRepository.ListIDs").
			Int64("user_id", userID).
			Msg("error occurred during rows iteration")
		return nil, fmt.Errorf("error iterating record id rows: %w", rowsErr)
	}

	return ids, nil
}

// Count returns the number of records the user has in a collection.
func (r *documentRepository) Count(ctx context.Context, userID int64, collection models.Collection) (int, error) {
	log := logger.FromContext(ctx)

	query, args, err := psql.Select("COUNT(*)").
		From("documents").
		Where(squirrel.Eq{"user_id": userID, "collection": collection}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	var count int
	row := r.db.QueryRowContext(ctx, query, args...)
	if err := row.Scan(&count); err != nil {
		log.Err(err).
			Str("func", "documentRepository.Count").
			Int64("user_id", userID).
			Str("collection", string(collection)).
			Msg("failed to count records")
		return 0, fmt.Errorf("failed to count records (collection=%s): %w", collection, err)
	}

	return count, nil
}
