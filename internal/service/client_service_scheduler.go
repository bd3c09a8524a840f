// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Keenan Husselmann

package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/KeenanHusselmann/basket-buddy-sub000/internal/logger"
	"github.com/KeenanHusselmann/basket-buddy-sub000/models"
)

const (
	// debounceWindow is the quiescence delay between the last local
	// mutation and the automatic remote commit it triggers.
	debounceWindow = time.Second

	// statusDecay is how long the transient saved and error display
	// states last before returning to idle.
	statusDecay = 3 * time.Second
)

// SchedulerState is the sync scheduler's lifecycle state.
type SchedulerState int

const (
	// StateBlocked holds automatic commits until the initial remote load
	// for the current identity has completed.
	StateBlocked SchedulerState = iota
	StateIdle
	StateDebouncing
	StateCommitting
)

// String implements [fmt.Stringer].
func (s SchedulerState) String() string {
	switch s {
	case StateBlocked:
		return "blocked-on-initial-load"
	case StateIdle:
		return "idle"
	case StateDebouncing:
		return "debouncing"
	case StateCommitting:
		return "committing"
	default:
		return "unknown"
	}
}

// syncScheduler coalesces mutation bursts into one commit per quiescence
// window and keeps commits strictly serialized: at most one is in flight
// per identity. Mutations arriving during a commit only restart the
// debounce window, so a follow-up commit runs after the current one
// finishes. Every commit carries the session epoch it started under; a
// result arriving after Reset finds a newer epoch and is discarded
// without touching any state.
type syncScheduler struct {
	tree    *StateTree
	tracker *DirtyTracker
	client  RemoteSyncClient
	gate    *QuotaGate
	tasks   TaskScheduler
	logger  *logger.Logger

	// ctx is the application context automatic commits run under; a
	// mutation callback carries no context of its own.
	ctx context.Context

	mu       sync.Mutex
	state    SchedulerState
	loaded   bool
	epoch    uint64
	rerun    bool
	status   models.SyncStatus
	lastErr  error
	debounce TaskHandle
	decay    TaskHandle
}

// NewSyncScheduler returns a scheduler in blocked-on-initial-load. Wire
// it to the state tree with tree.SetOnMutate(scheduler.OnMutation).
func NewSyncScheduler(ctx context.Context, tree *StateTree, tracker *DirtyTracker, client RemoteSyncClient, gate *QuotaGate, tasks TaskScheduler, logger *logger.Logger) SyncScheduler {
	return &syncScheduler{
		tree:    tree,
		tracker: tracker,
		client:  client,
		gate:    gate,
		tasks:   tasks,
		logger:  logger,
		ctx:     ctx,
		state:   StateBlocked,
		status:  models.StatusIdle,
	}
}

// OnMutation implements [SyncScheduler].
func (s *syncScheduler) OnMutation() {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case StateBlocked:
		// Recorded on the tracker already; nothing may reach the remote
		// store before the initial load completes.
	case StateCommitting:
		s.rerun = true
	case StateIdle, StateDebouncing:
		s.restartDebounceLocked()
	}
}

// SignalLoadComplete implements [SyncScheduler].
func (s *syncScheduler) SignalLoadComplete() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.loaded = true
	if s.state != StateBlocked {
		return
	}
	if s.tracker.HasWork() {
		s.restartDebounceLocked()
		return
	}
	s.state = StateIdle
}

// ForceSync implements [SyncScheduler]. It runs a full save on the
// caller's goroutine and returns its outcome.
func (s *syncScheduler) ForceSync(ctx context.Context) error {
	s.mu.Lock()
	if s.state == StateCommitting {
		s.mu.Unlock()
		return ErrSyncInFlight
	}
	if s.gate.IsExhausted() {
		deadline := s.gate.Deadline()
		s.mu.Unlock()
		return fmt.Errorf("%w: cooldown until %s", ErrQuotaExhausted, deadline.Format(time.RFC3339))
	}
	if s.debounce != nil {
		s.debounce.Cancel()
		s.debounce = nil
	}
	epoch := s.epoch
	s.state = StateCommitting
	s.mu.Unlock()

	return s.runCommit(ctx, epoch, true)
}

// Status implements [SyncScheduler].
func (s *syncScheduler) Status() models.SyncStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// State implements [SyncScheduler].
func (s *syncScheduler) State() SchedulerState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// LastError implements [SyncScheduler].
func (s *syncScheduler) LastError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// Reset implements [SyncScheduler].
func (s *syncScheduler) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.epoch++
	s.loaded = false
	s.state = StateBlocked
	s.status = models.StatusIdle
	s.lastErr = nil
	s.rerun = false
	if s.debounce != nil {
		s.debounce.Cancel()
		s.debounce = nil
	}
	if s.decay != nil {
		s.decay.Cancel()
		s.decay = nil
	}
}

// restartDebounceLocked cancels any running debounce window and starts a
// fresh one. Callers hold s.mu.
func (s *syncScheduler) restartDebounceLocked() {
	if s.debounce != nil {
		s.debounce.Cancel()
	}
	s.state = StateDebouncing
	epoch := s.epoch
	s.debounce = s.tasks.Schedule(debounceWindow, func() {
		s.debounceFired(epoch)
	})
}

// debounceFired runs on the task scheduler's goroutine when the
// quiescence window elapses. The commit itself runs on the same
// goroutine; serialization is guaranteed by the state check.
func (s *syncScheduler) debounceFired(epoch uint64) {
	s.mu.Lock()
	if epoch != s.epoch || s.state != StateDebouncing {
		s.mu.Unlock()
		return
	}
	if !s.tracker.HasWork() {
		s.state = StateIdle
		s.mu.Unlock()
		return
	}
	s.state = StateCommitting
	s.mu.Unlock()

	if err := s.runCommit(s.ctx, epoch, false); err != nil {
		s.logger.Err(err).Str("func", "syncScheduler.debounceFired").Msg("automatic commit failed")
	}
}

// runCommit drains the tracker, executes one commit, and folds the result
// back into the scheduler under the epoch guard.
func (s *syncScheduler) runCommit(ctx context.Context, epoch uint64, full bool) error {
	s.setStatus(epoch, models.StatusSaving)

	filter, deletes, revision := s.tracker.Drain()
	snapshot := s.tree.Snapshot()

	var err error
	if full {
		err = s.client.CommitFull(ctx, snapshot, deletes)
	} else {
		err = s.client.CommitIncremental(ctx, snapshot, deletes, filter)
	}

	s.finishCommit(ctx, epoch, revision, err)
	return err
}

func (s *syncScheduler) finishCommit(ctx context.Context, epoch uint64, revision uint64, commitErr error) {
	log := logger.FromContext(ctx)

	s.mu.Lock()
	if epoch != s.epoch {
		// The commit began under a previous identity; the engine was
		// reset in the meantime and this result must not change anything.
		s.mu.Unlock()
		return
	}

	if commitErr != nil {
		s.lastErr = commitErr
		s.setStatusLocked(models.StatusError)
		followUp := s.rerun
		s.rerun = false
		switch {
		case !s.loaded:
			s.state = StateBlocked
		case followUp:
			s.restartDebounceLocked()
		default:
			s.state = StateIdle
		}
		s.mu.Unlock()
		return
	}

	cleared := s.tracker.ClearIfUnchanged(revision)
	s.lastErr = nil
	s.setStatusLocked(models.StatusSaved)
	followUp := s.rerun || !cleared || s.tracker.HasWork()
	s.rerun = false
	switch {
	case !s.loaded:
		s.state = StateBlocked
	case followUp:
		s.restartDebounceLocked()
	default:
		s.state = StateIdle
	}
	s.mu.Unlock()

	if cleared {
		if err := s.tree.MarkSynced(ctx); err != nil {
			log.Warn().Err(err).Str("func", "syncScheduler.finishCommit").Msg("failed to clear pending write flag")
		}
	}
}

func (s *syncScheduler) setStatus(epoch uint64, status models.SyncStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if epoch != s.epoch {
		return
	}
	s.setStatusLocked(status)
}

// setStatusLocked replaces the status and schedules the decay of the
// transient display states. Callers hold s.mu.
func (s *syncScheduler) setStatusLocked(status models.SyncStatus) {
	if s.decay != nil {
		s.decay.Cancel()
		s.decay = nil
	}
	s.status = status

	if status != models.StatusSaved && status != models.StatusError {
		return
	}
	epoch := s.epoch
	s.decay = s.tasks.Schedule(statusDecay, func() {
		s.decayStatus(epoch)
	})
}

func (s *syncScheduler) decayStatus(epoch uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if epoch != s.epoch {
		return
	}
	if s.status == models.StatusSaved || s.status == models.StatusError {
		s.status = models.StatusIdle
	}
}
