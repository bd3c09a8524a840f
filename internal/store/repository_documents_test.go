package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/KeenanHusselmann/basket-buddy-sub000/internal/logger"
	"github.com/KeenanHusselmann/basket-buddy-sub000/models"
	"github.com/jackc/pgerrcode"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func newDBFromSQL(db *sql.DB) *DB {
	return &DB{
		DB:                 db,
		errorClassificator: NewPostgresErrorClassifier(),
		logger:             logger.Nop(),
	}
}

func newTestDocumentRepo(t *testing.T, db *sql.DB) DocumentRepository {
	t.Helper()
	return NewDocumentRepository(newDBFromSQL(db), logger.Nop())
}

func testContext() context.Context {
	l := zerolog.Nop()
	return l.WithContext(context.Background())
}

const testUserID = int64(7)

func TestApplyBatch(t *testing.T) {
	t.Run("upsert and delete inside one transaction", func(t *testing.T) {
		db, mock := newTestDB(t)
		repo := newTestDocumentRepo(t, db)
		ctx := testContext()

		ops := []models.BatchOp{
			{Op: models.BatchOpDelete, Collection: models.CollectionItems, ID: "i-9"},
			{Op: models.BatchOpUpsert, Collection: models.CollectionItems, ID: "i-1", Doc: models.Document{"id": "i-1", "name": "Milk"}},
		}

		mock.ExpectBegin()
		// squirrel sorts Eq keys, so the delete binds (collection, record_id, user_id)
		mock.ExpectExec("DELETE FROM documents").
			WithArgs("items", "i-9", testUserID).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("INSERT INTO documents").
			WithArgs(testUserID, "items", "i-1", []byte(`{"id":"i-1","name":"Milk"}`)).
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectCommit()

		err := repo.ApplyBatch(ctx, testUserID, ops)
		require.NoError(t, err)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("retries once after a deadlock", func(t *testing.T) {
		db, mock := newTestDB(t)
		repo := newTestDocumentRepo(t, db)
		ctx := testContext()

		ops := []models.BatchOp{
			{Op: models.BatchOpUpsert, Collection: models.CollectionTags, ID: "t-1", Doc: models.Document{"id": "t-1"}},
		}

		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO documents").
			WillReturnError(pgError(pgerrcode.DeadlockDetected))
		mock.ExpectRollback()

		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO documents").
			WithArgs(testUserID, "tags", "t-1", []byte(`{"id":"t-1"}`)).
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectCommit()

		err := repo.ApplyBatch(ctx, testUserID, ops)
		require.NoError(t, err)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("does not retry a non-retryable error", func(t *testing.T) {
		db, mock := newTestDB(t)
		repo := newTestDocumentRepo(t, db)
		ctx := testContext()

		ops := []models.BatchOp{
			{Op: models.BatchOpUpsert, Collection: models.CollectionItems, ID: "i-1", Doc: models.Document{"id": "i-1"}},
		}

		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO documents").
			WillReturnError(errors.New("disk full"))
		mock.ExpectRollback()

		err := repo.ApplyBatch(ctx, testUserID, ops)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to upsert document")
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rejects an unsupported op", func(t *testing.T) {
		db, mock := newTestDB(t)
		repo := newTestDocumentRepo(t, db)
		ctx := testContext()

		ops := []models.BatchOp{
			{Op: "merge", Collection: models.CollectionItems, ID: "i-1"},
		}

		mock.ExpectBegin()
		mock.ExpectRollback()

		err := repo.ApplyBatch(ctx, testUserID, ops)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported batch op")
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("wraps begin errors", func(t *testing.T) {
		db, mock := newTestDB(t)
		repo := newTestDocumentRepo(t, db)
		ctx := testContext()

		mock.ExpectBegin().WillReturnError(errors.New("cannot begin"))

		err := repo.ApplyBatch(ctx, testUserID, []models.BatchOp{
			{Op: models.BatchOpUpsert, Collection: models.CollectionItems, ID: "i-1", Doc: models.Document{"id": "i-1"}},
		})
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrBeginningTransaction)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("wraps commit errors", func(t *testing.T) {
		db, mock := newTestDB(t)
		repo := newTestDocumentRepo(t, db)
		ctx := testContext()

		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO documents").
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectCommit().WillReturnError(errors.New("commit refused"))

		err := repo.ApplyBatch(ctx, testUserID, []models.BatchOp{
			{Op: models.BatchOpUpsert, Collection: models.CollectionItems, ID: "i-1", Doc: models.Document{"id": "i-1"}},
		})
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrCommittingTransaction)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestSnapshot(t *testing.T) {
	t.Run("groups rows per collection", func(t *testing.T) {
		db, mock := newTestDB(t)
		repo := newTestDocumentRepo(t, db)
		ctx := testContext()

		rows := sqlmock.NewRows([]string{"collection", "record_id", "doc"}).
			AddRow("items", "i-1", []byte(`{"id":"i-1","name":"Milk"}`)).
			AddRow("items", "i-2", []byte(`{"id":"i-2","name":"Bread"}`)).
			AddRow("stores", "s-1", []byte(`{"id":"s-1","name":"Corner Shop"}`))

		mock.ExpectQuery("SELECT collection, record_id, doc FROM documents").
			WithArgs(testUserID).
			WillReturnRows(rows)

		ledger, err := repo.Snapshot(ctx, testUserID)
		require.NoError(t, err)

		require.Len(t, ledger[models.CollectionItems], 2)
		assert.Equal(t, "Milk", ledger[models.CollectionItems][0]["name"])
		require.Len(t, ledger[models.CollectionStores], 1)
		assert.Empty(t, ledger[models.CollectionBudgets])
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("skips rows from unknown collections", func(t *testing.T) {
		db, mock := newTestDB(t)
		repo := newTestDocumentRepo(t, db)
		ctx := testContext()

		rows := sqlmock.NewRows([]string{"collection", "record_id", "doc"}).
			AddRow("wishlists", "w-1", []byte(`{"id":"w-1"}`)).
			AddRow("items", "i-1", []byte(`{"id":"i-1"}`))

		mock.ExpectQuery("SELECT collection, record_id, doc FROM documents").
			WithArgs(testUserID).
			WillReturnRows(rows)

		ledger, err := repo.Snapshot(ctx, testUserID)
		require.NoError(t, err)
		assert.Len(t, ledger[models.CollectionItems], 1)
		assert.Equal(t, 1, ledger.TotalRecords())
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("fails on malformed stored documents", func(t *testing.T) {
		db, mock := newTestDB(t)
		repo := newTestDocumentRepo(t, db)
		ctx := testContext()

		rows := sqlmock.NewRows([]string{"collection", "record_id", "doc"}).
			AddRow("items", "i-1", []byte(`{broken`))

		mock.ExpectQuery("SELECT collection, record_id, doc FROM documents").
			WithArgs(testUserID).
			WillReturnRows(rows)

		_, err := repo.Snapshot(ctx, testUserID)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to decode stored document")
	})
}

func TestListIDs(t *testing.T) {
	t.Run("returns ordered ids", func(t *testing.T) {
		db, mock := newTestDB(t)
		repo := newTestDocumentRepo(t, db)
		ctx := testContext()

		rows := sqlmock.NewRows([]string{"record_id"}).
			AddRow("i-1").
			AddRow("i-2")

		// squirrel sorts Eq keys, so the filter binds (collection, user_id)
		mock.ExpectQuery("SELECT record_id FROM documents").
			WithArgs("items", testUserID).
			WillReturnRows(rows)

		ids, err := repo.ListIDs(ctx, testUserID, models.CollectionItems)
		require.NoError(t, err)
		assert.Equal(t, []string{"i-1", "i-2"}, ids)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns empty slice for empty collections", func(t *testing.T) {
		db, mock := newTestDB(t)
		repo := newTestDocumentRepo(t, db)
		ctx := testContext()

		mock.ExpectQuery("SELECT record_id FROM documents").
			WithArgs("budgets", testUserID).
			WillReturnRows(sqlmock.NewRows([]string{"record_id"}))

		ids, err := repo.ListIDs(ctx, testUserID, models.CollectionBudgets)
		require.NoError(t, err)
		assert.NotNil(t, ids)
		assert.Empty(t, ids)
	})
}

func TestCount(t *testing.T) {
	db, mock := newTestDB(t)
	repo := newTestDocumentRepo(t, db)
	ctx := testContext()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM documents`).
		WithArgs("items", testUserID).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(42))

	count, err := repo.Count(ctx, testUserID, models.CollectionItems)
	require.NoError(t, err)
	assert.Equal(t, 42, count)
	require.NoError(t, mock.ExpectationsWereMet())
}
