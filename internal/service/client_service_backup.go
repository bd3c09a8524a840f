package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/KeenanHusselmann/basket-buddy-sub000/internal/logger"
	"github.com/KeenanHusselmann/basket-buddy-sub000/internal/store"
	"github.com/KeenanHusselmann/basket-buddy-sub000/models"
)

// exportTimeLayout names export files down to the second, which is
// enough: exports are manual, one-at-a-time actions.
const exportTimeLayout = "20060102-150405"

type clientBackupService struct {
	kv        store.KeyValueStore
	clock     Clock
	exportDir string
	logger    *logger.Logger
}

// NewClientBackupService returns the ClientBackupService working on the
// local key/value store and writing exports into exportDir.
func NewClientBackupService(kv store.KeyValueStore, clock Clock, exportDir string, logger *logger.Logger) ClientBackupService {
	return &clientBackupService{kv: kv, clock: clock, exportDir: exportDir, logger: logger}
}

// BackupBeforePull implements [ClientBackupService].
func (b *clientBackupService) BackupBeforePull(ctx context.Context) error {
	blob, err := b.kv.Get(ctx, KeyStateBlob)
	if errors.Is(err, store.ErrKeyNotFound) {
		// First run: there is nothing to protect yet.
		return nil
	}
	if err != nil {
		return fmt.Errorf("read state for backup: %w", err)
	}

	if err := b.kv.Set(ctx, KeyBackupBlob, blob); err != nil {
		return fmt.Errorf("write backup: %w", err)
	}
	return nil
}

// Restore implements [ClientBackupService]. The backup blob stays in
// place afterwards, so a restore can be repeated until the next pull
// supersedes the backup.
func (b *clientBackupService) Restore(ctx context.Context) error {
	blob, err := b.kv.Get(ctx, KeyBackupBlob)
	if errors.Is(err, store.ErrKeyNotFound) {
		return ErrBackupMissing
	}
	if err != nil {
		return fmt.Errorf("read backup: %w", err)
	}

	return b.replaceState(ctx, blob)
}

// Export implements [ClientBackupService].
func (b *clientBackupService) Export(ctx context.Context) (string, error) {
	blob, err := b.kv.Get(ctx, KeyStateBlob)
	if errors.Is(err, store.ErrKeyNotFound) {
		return "", ErrNoLocalState
	}
	if err != nil {
		return "", fmt.Errorf("read state for export: %w", err)
	}

	if err := os.MkdirAll(b.exportDir, 0o755); err != nil {
		return "", fmt.Errorf("create export directory: %w", err)
	}

	name := fmt.Sprintf("basket-buddy-%s.json", b.clock.Now().UTC().Format(exportTimeLayout))
	path := filepath.Join(b.exportDir, name)
	if err := os.WriteFile(path, blob, 0o600); err != nil {
		return "", fmt.Errorf("write export file: %w", err)
	}

	logger.FromContext(ctx).Info().
		Str("func", "clientBackupService.Export").
		Str("path", path).
		Msg("exported local state")
	return path, nil
}

// ImportBlob implements [ClientBackupService]. The blob is stored byte
// for byte, so an exported file imports back to the identical state.
func (b *clientBackupService) ImportBlob(ctx context.Context, blob []byte) error {
	if _, err := models.ParseLedger(blob); err != nil {
		return fmt.Errorf("%w: %v", ErrParseFailure, err)
	}
	return b.replaceState(ctx, blob)
}

// replaceState writes blob into the canonical slot with the restore side
// effects: the pending-write flag is raised and the local-modified time
// stamped, so the next sign-in uploads the restored state instead of
// pulling over it.
func (b *clientBackupService) replaceState(ctx context.Context, blob []byte) error {
	if err := b.kv.Set(ctx, KeyStateBlob, blob); err != nil {
		return fmt.Errorf("write state: %w", err)
	}
	if err := b.kv.Set(ctx, KeyPendingWrite, pendingFlagSet); err != nil {
		return fmt.Errorf("set pending write flag: %w", err)
	}
	stamp := []byte(b.clock.Now().UTC().Format(time.RFC3339Nano))
	if err := b.kv.Set(ctx, KeyLocalModified, stamp); err != nil {
		return fmt.Errorf("stamp local modified: %w", err)
	}
	return nil
}
