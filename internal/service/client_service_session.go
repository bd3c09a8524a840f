package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/KeenanHusselmann/basket-buddy-sub000/internal/logger"
	"github.com/KeenanHusselmann/basket-buddy-sub000/models"
)

type clientSessionService struct {
	remote    RemoteStore
	tree      *StateTree
	tracker   *DirtyTracker
	scheduler SyncScheduler
	backup    ClientBackupService
	logger    *logger.Logger

	mu      sync.RWMutex
	session models.Session
	active  bool
}

// NewClientSessionService returns the ClientSessionService bootstrapping
// the engine on sign-in.
func NewClientSessionService(remote RemoteStore, tree *StateTree, tracker *DirtyTracker, scheduler SyncScheduler, backup ClientBackupService, logger *logger.Logger) ClientSessionService {
	return &clientSessionService{
		remote:    remote,
		tree:      tree,
		tracker:   tracker,
		scheduler: scheduler,
		backup:    backup,
		logger:    logger,
	}
}

// Register implements [ClientSessionService].
func (s *clientSessionService) Register(ctx context.Context, email, password string) error {
	session, err := s.remote.Register(ctx, email, password)
	if err != nil {
		return fmt.Errorf("register: %w", err)
	}
	return s.begin(ctx, session)
}

// Login implements [ClientSessionService].
func (s *clientSessionService) Login(ctx context.Context, email, password string) error {
	session, err := s.remote.Login(ctx, email, password)
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}
	return s.begin(ctx, session)
}

// Current implements [ClientSessionService].
func (s *clientSessionService) Current() (models.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session, s.active
}

// Profile implements [ClientSessionService].
func (s *clientSessionService) Profile(ctx context.Context) (models.Profile, error) {
	if _, ok := s.Current(); !ok {
		return models.Profile{}, ErrNotSignedIn
	}
	return s.remote.Profile(ctx)
}

// begin resets the engine for the new identity and runs the initial
// load. A commit still in flight for the previous identity runs to
// completion or timeout on its own; the epoch bump inside Reset makes
// its late result a no-op.
func (s *clientSessionService) begin(ctx context.Context, session models.Session) error {
	s.scheduler.Reset()
	s.tracker.Reset()

	s.mu.Lock()
	s.session = session
	s.active = true
	s.mu.Unlock()

	return s.initialLoad(ctx)
}

// initialLoad establishes the baseline for the identity. With an owed
// local write the local blob is authoritative: it is loaded and
// auto-uploaded, and no pull happens. Otherwise the remote snapshot is
// pulled over local state, protected by a pre-pull backup. Any failure
// on the pull path reports ErrLoadFailure and leaves automatic commits
// blocked; a failed fetch must never pass for an empty first-time
// account.
func (s *clientSessionService) initialLoad(ctx context.Context) error {
	log := logger.FromContext(ctx)

	pending, err := s.tree.PendingRemoteWrite(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrLoadFailure, err)
	}

	if pending {
		if err := s.tree.Load(ctx); err != nil {
			return fmt.Errorf("%w: %v", ErrLoadFailure, err)
		}
		s.scheduler.SignalLoadComplete()

		if err := s.scheduler.ForceSync(ctx); err != nil {
			// The owed upload stays owed: the flag survives, and a later
			// manual sync or mutation retries it.
			log.Warn().Err(err).
				Str("func", "clientSessionService.initialLoad").
				Msg("auto-upload after sign-in failed")
		}
		return nil
	}

	remoteLedger, err := s.remote.Snapshot(ctx)
	if err != nil {
		if loadErr := s.tree.Load(ctx); loadErr != nil {
			log.Err(loadErr).
				Str("func", "clientSessionService.initialLoad").
				Msg("local fallback load failed")
		}
		return fmt.Errorf("%w: %v", ErrLoadFailure, err)
	}

	if err := s.backup.BackupBeforePull(ctx); err != nil {
		// Overwriting local state without the safety snapshot is the one
		// data-loss path the engine promises to never take.
		return fmt.Errorf("%w: %v", ErrLoadFailure, err)
	}

	if err := s.tree.AdoptRemote(ctx, remoteLedger); err != nil {
		return fmt.Errorf("%w: %v", ErrLoadFailure, err)
	}

	s.scheduler.SignalLoadComplete()
	return nil
}
