package service

import (
	"context"

	"github.com/KeenanHusselmann/basket-buddy-sub000/internal/config"
	"github.com/KeenanHusselmann/basket-buddy-sub000/internal/logger"
	"github.com/KeenanHusselmann/basket-buddy-sub000/internal/store"
)

// ClientServices bundles the whole client engine: the state tree with
// its tracker, the quota gate, and the services built on top of them.
type ClientServices struct {
	Tree      *StateTree
	Tracker   *DirtyTracker
	Gate      *QuotaGate
	Session   ClientSessionService
	Scheduler SyncScheduler
	Verify    ClientVerifyService
	Backup    ClientBackupService
	VerifyJob ClientVerifyJob
}

// NewClientServices wires the engine together. ctx is the application
// context automatic commits run under; it should outlive the session.
func NewClientServices(ctx context.Context, kv store.KeyValueStore, remote RemoteStore, cfg *config.ClientConfig, logger *logger.Logger) *ClientServices {
	clock := SystemClock()
	tasks := NewTimerScheduler()

	gate := NewQuotaGate(clock)
	tracker := NewDirtyTracker()
	tree := NewStateTree(kv, tracker, clock, logger)

	syncClient := NewRemoteSyncClient(remote, gate, clock, logger)
	scheduler := NewSyncScheduler(ctx, tree, tracker, syncClient, gate, tasks, logger)
	tree.SetOnMutate(scheduler.OnMutation)

	verify := NewClientVerifyService(remote, tree, scheduler, clock, logger)
	backup := NewClientBackupService(kv, clock, cfg.ExportDir, logger)
	session := NewClientSessionService(remote, tree, tracker, scheduler, backup, logger)

	return &ClientServices{
		Tree:      tree,
		Tracker:   tracker,
		Gate:      gate,
		Session:   session,
		Scheduler: scheduler,
		Verify:    verify,
		Backup:    backup,
		VerifyJob: NewClientVerifyJob(verify, logger),
	}
}
