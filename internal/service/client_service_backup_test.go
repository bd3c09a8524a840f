// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Keenan Husselmann

package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/KeenanHusselmann/basket-buddy-sub000/internal/logger"
	"github.com/KeenanHusselmann/basket-buddy-sub000/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBackupService(t *testing.T) (ClientBackupService, *memoryKV, *fakeClock, string) {
	t.Helper()

	kv := newMemoryKV()
	clock := newFakeClock()
	dir := t.TempDir()
	return NewClientBackupService(kv, clock, dir, logger.Nop()), kv, clock, dir
}

func mustGet(t *testing.T, kv *memoryKV, key string) []byte {
	t.Helper()
	v, err := kv.Get(context.Background(), key)
	require.NoError(t, err)
	return v
}

// ── Backup before pull ───────────────────────────────────────────────────────

func TestClientBackupService_BackupBeforePull_FirstRunIsNoOp(t *testing.T) {
	backup, kv, _, _ := newTestBackupService(t)

	require.NoError(t, backup.BackupBeforePull(context.Background()))

	_, err := kv.Get(context.Background(), KeyBackupBlob)
	assert.ErrorIs(t, err, store.ErrKeyNotFound, "no state means no backup slot either")
}

func TestClientBackupService_BackupBeforePull_CopiesCanonicalBlob(t *testing.T) {
	backup, kv, _, _ := newTestBackupService(t)
	ctx := context.Background()

	blob := []byte(`{"items":[{"id":"i1"}]}`)
	require.NoError(t, kv.Set(ctx, KeyStateBlob, blob))
	require.NoError(t, kv.Set(ctx, KeyBackupBlob, []byte("previous generation")))

	require.NoError(t, backup.BackupBeforePull(ctx))

	assert.Equal(t, blob, mustGet(t, kv, KeyBackupBlob), "each pull keeps exactly one backup generation")
}

// ── Restore ──────────────────────────────────────────────────────────────────

func TestClientBackupService_Restore_MissingBackup(t *testing.T) {
	backup, kv, _, _ := newTestBackupService(t)
	ctx := context.Background()

	require.NoError(t, kv.Set(ctx, KeyStateBlob, []byte("current")))

	err := backup.Restore(ctx)

	require.ErrorIs(t, err, ErrBackupMissing)
	assert.Equal(t, []byte("current"), mustGet(t, kv, KeyStateBlob), "a failed restore must not touch the state")
}

func TestClientBackupService_Restore_WritesBackupOverState(t *testing.T) {
	backup, kv, clock, _ := newTestBackupService(t)
	ctx := context.Background()

	before := []byte(`{"items":[{"id":"i1"}]}`)
	require.NoError(t, kv.Set(ctx, KeyStateBlob, before))
	require.NoError(t, backup.BackupBeforePull(ctx))

	// The pull overwrote local state with the remote snapshot.
	require.NoError(t, kv.Set(ctx, KeyStateBlob, []byte(`{"items":[]}`)))

	require.NoError(t, backup.Restore(ctx))

	assert.Equal(t, before, mustGet(t, kv, KeyStateBlob))
	assert.Equal(t, []byte("1"), mustGet(t, kv, KeyPendingWrite), "a restore owes the remote side an upload")

	stamp, err := time.Parse(time.RFC3339Nano, string(mustGet(t, kv, KeyLocalModified)))
	require.NoError(t, err)
	assert.Equal(t, clock.Now().UTC(), stamp)
}

func TestClientBackupService_Restore_IsRepeatable(t *testing.T) {
	backup, kv, _, _ := newTestBackupService(t)
	ctx := context.Background()

	before := []byte(`{"items":[{"id":"i1"}]}`)
	require.NoError(t, kv.Set(ctx, KeyStateBlob, before))
	require.NoError(t, backup.BackupBeforePull(ctx))

	require.NoError(t, backup.Restore(ctx))
	require.NoError(t, kv.Set(ctx, KeyStateBlob, []byte("scribbled again")))
	require.NoError(t, backup.Restore(ctx))

	assert.Equal(t, before, mustGet(t, kv, KeyStateBlob), "the backup survives a restore and can be applied again")
}

// ── Export ───────────────────────────────────────────────────────────────────

func TestClientBackupService_Export_NoLocalState(t *testing.T) {
	backup, _, _, _ := newTestBackupService(t)

	_, err := backup.Export(context.Background())

	assert.ErrorIs(t, err, ErrNoLocalState)
}

func TestClientBackupService_Export_WritesTimestampedFile(t *testing.T) {
	backup, kv, clock, dir := newTestBackupService(t)
	ctx := context.Background()

	blob := []byte(`{"items":[{"id":"i1","name":"milk"}]}`)
	require.NoError(t, kv.Set(ctx, KeyStateBlob, blob))

	path, err := backup.Export(ctx)

	require.NoError(t, err)
	wantName := fmt.Sprintf("basket-buddy-%s.json", clock.Now().UTC().Format("20060102-150405"))
	assert.Equal(t, filepath.Join(dir, wantName), path)

	written, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, blob, written, "the export is the raw blob, byte for byte")
}

func TestClientBackupService_Export_CreatesExportDirectory(t *testing.T) {
	kv := newMemoryKV()
	clock := newFakeClock()
	dir := filepath.Join(t.TempDir(), "exports", "basket-buddy")
	backup := NewClientBackupService(kv, clock, dir, logger.Nop())
	ctx := context.Background()

	require.NoError(t, kv.Set(ctx, KeyStateBlob, []byte(`{}`)))

	path, err := backup.Export(ctx)

	require.NoError(t, err)
	assert.FileExists(t, path)
}

// ── Import ───────────────────────────────────────────────────────────────────

func TestClientBackupService_ImportBlob_RejectsInvalidBlobs(t *testing.T) {
	tests := []struct {
		name string
		blob []byte
	}{
		{name: "not json", blob: []byte("{broken")},
		{name: "unknown collection", blob: []byte(`{"recipes":[{"id":"r1"}]}`)},
		{name: "collection not an array", blob: []byte(`{"items":"nope"}`)},
		{name: "record without id", blob: []byte(`{"items":[{"name":"milk"}]}`)},
		{name: "duplicate ids", blob: []byte(`{"items":[{"id":"i1"},{"id":"i1"}]}`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backup, kv, _, _ := newTestBackupService(t)
			ctx := context.Background()
			require.NoError(t, kv.Set(ctx, KeyStateBlob, []byte("untouched")))

			err := backup.ImportBlob(ctx, tt.blob)

			require.ErrorIs(t, err, ErrParseFailure)
			assert.Equal(t, []byte("untouched"), mustGet(t, kv, KeyStateBlob))
			_, err = kv.Get(ctx, KeyPendingWrite)
			assert.ErrorIs(t, err, store.ErrKeyNotFound, "a rejected import must leave no side effects")
		})
	}
}

func TestClientBackupService_ImportBlob_ReplacesByteForByte(t *testing.T) {
	backup, kv, _, _ := newTestBackupService(t)
	ctx := context.Background()

	// Whitespace and member order must survive: the blob is stored
	// verbatim, not re-serialized.
	blob := []byte("{\n  \"tags\": [],\n  \"items\": [ {\"id\": \"i1\"} ]\n}")

	require.NoError(t, backup.ImportBlob(ctx, blob))

	assert.Equal(t, blob, mustGet(t, kv, KeyStateBlob))
	assert.Equal(t, []byte("1"), mustGet(t, kv, KeyPendingWrite))
}

func TestClientBackupService_ExportImportRoundTrip(t *testing.T) {
	backup, kv, _, _ := newTestBackupService(t)
	ctx := context.Background()

	blob := []byte(`{"items":[{"id":"i1","price":4.2}],"stores":[{"id":"s1"}]}`)
	require.NoError(t, kv.Set(ctx, KeyStateBlob, blob))

	path, err := backup.Export(ctx)
	require.NoError(t, err)

	exported, err := os.ReadFile(path)
	require.NoError(t, err)

	fresh := newMemoryKV()
	other := NewClientBackupService(fresh, newFakeClock(), t.TempDir(), logger.Nop())
	require.NoError(t, other.ImportBlob(ctx, exported))

	assert.Equal(t, blob, mustGet(t, fresh, KeyStateBlob))
}

func TestClientBackupService_RestoreAfterStateReadFailure(t *testing.T) {
	backup, kv, _, _ := newTestBackupService(t)
	ctx := context.Background()

	kv.getErr = errors.New("store sealed")

	err := backup.BackupBeforePull(ctx)

	require.Error(t, err)
	assert.ErrorContains(t, err, "read state for backup")
}
