package service

import (
	"context"
	"fmt"

	"github.com/KeenanHusselmann/basket-buddy-sub000/internal/logger"
	"github.com/KeenanHusselmann/basket-buddy-sub000/models"
)

// DecideMerge is the pure decision function over local and remote
// per-collection record counts. Equal counts everywhere confirm sync. Any
// remote count above its local counterpart recommends the merge path:
// the remote side holds records local lacks, and overwriting would
// destroy them. Otherwise local is ahead and a force overwrite is safe.
func DecideMerge(local, remote map[models.Collection]int) models.MergeDecision {
	allEqual := true
	remoteAhead := false

	for _, collection := range models.Collections() {
		l := local[collection]
		r := remote[collection]
		if r != l {
			allEqual = false
		}
		if r > l {
			remoteAhead = true
		}
	}

	switch {
	case allEqual:
		return models.DecisionInSync
	case remoteAhead:
		return models.DecisionMerge
	default:
		return models.DecisionForceOverwrite
	}
}

type clientVerifyService struct {
	remote    RemoteStore
	tree      *StateTree
	scheduler SyncScheduler
	clock     Clock
	logger    *logger.Logger
}

// NewClientVerifyService returns the ClientVerifyService comparing tree
// against remote and saving through scheduler.
func NewClientVerifyService(remote RemoteStore, tree *StateTree, scheduler SyncScheduler, clock Clock, logger *logger.Logger) ClientVerifyService {
	return &clientVerifyService{
		remote:    remote,
		tree:      tree,
		scheduler: scheduler,
		clock:     clock,
		logger:    logger,
	}
}

// VerifyCounts implements [ClientVerifyService].
func (v *clientVerifyService) VerifyCounts(ctx context.Context) (map[models.Collection]int, error) {
	counts := make(map[models.Collection]int, len(models.Collections()))
	for _, collection := range models.Collections() {
		n, err := v.remote.Count(ctx, collection)
		if err != nil {
			return nil, fmt.Errorf("count remote %q: %w", collection, err)
		}
		counts[collection] = n
	}
	return counts, nil
}

// Verify implements [ClientVerifyService].
func (v *clientVerifyService) Verify(ctx context.Context) (models.VerificationReport, error) {
	remote, err := v.VerifyCounts(ctx)
	if err != nil {
		return models.VerificationReport{}, err
	}

	local := v.tree.Counts()
	return models.VerificationReport{
		Local:    local,
		Remote:   remote,
		Decision: DecideMerge(local, remote),
		RanAt:    v.clock.Now(),
	}, nil
}

// MergeSync implements [ClientVerifyService].
func (v *clientVerifyService) MergeSync(ctx context.Context) (models.VerificationReport, error) {
	log := logger.FromContext(ctx)

	report, err := v.Verify(ctx)
	if err != nil {
		return models.VerificationReport{}, err
	}

	switch report.Decision {
	case models.DecisionInSync:
		return report, nil

	case models.DecisionMerge:
		remoteLedger, err := v.remote.Snapshot(ctx)
		if err != nil {
			return report, fmt.Errorf("fetch remote state for merge: %w", err)
		}
		if err := v.applyUnion(ctx, remoteLedger); err != nil {
			return report, err
		}
		log.Info().
			Str("func", "clientVerifyService.MergeSync").
			Int("remote_records", remoteLedger.TotalRecords()).
			Msg("merged remote records into local state")
	}

	// Merge and force overwrite both end in the same full save.
	if err := v.scheduler.ForceSync(ctx); err != nil {
		return report, fmt.Errorf("full save: %w", err)
	}
	return report, nil
}

// applyUnion folds the remote ledger into local state, remote winning on
// id collisions. Each collection goes through Mutate, so changed records
// are dirty-marked and the blob is persisted before the follow-up save.
func (v *clientVerifyService) applyUnion(ctx context.Context, remote models.Ledger) error {
	merged := models.UnionByID(v.tree.Snapshot(), remote)
	for _, collection := range models.Collections() {
		docs := merged[collection]
		err := v.tree.Mutate(ctx, collection, func([]models.Document) []models.Document {
			return docs
		})
		if err != nil {
			return fmt.Errorf("apply merged %q: %w", collection, err)
		}
	}
	return nil
}
