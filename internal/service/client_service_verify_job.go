package service

import (
	"context"
	"sync"
	"time"

	"github.com/KeenanHusselmann/basket-buddy-sub000/internal/logger"
	"github.com/KeenanHusselmann/basket-buddy-sub000/models"
)

type clientVerifyJob struct {
	verify ClientVerifyService
	logger *logger.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewClientVerifyJob creates a clientVerifyJob that compares local and
// remote counts on a ticker. The job is idle until Start is called.
func NewClientVerifyJob(verify ClientVerifyService, logger *logger.Logger) ClientVerifyJob {
	return &clientVerifyJob{verify: verify, logger: logger}
}

// Start implements [ClientVerifyJob]. It stops any previously running
// job, then launches a background goroutine that verifies every
// interval. A non-positive interval disables the job entirely. The
// goroutine exits when ctx is cancelled or Stop is called.
func (j *clientVerifyJob) Start(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}

	j.Stop()

	j.mu.Lock()
	jobCtx, cancel := context.WithCancel(ctx)
	j.cancel = cancel
	j.wg.Add(1)
	j.mu.Unlock()

	go func() {
		defer j.wg.Done()
		t := time.NewTicker(interval)
		defer t.Stop()

		for {
			select {
			case <-jobCtx.Done():
				return
			case <-t.C:
				j.runOnce(jobCtx)
			}
		}
	}()
}

// Stop implements [ClientVerifyJob]. It cancels the background
// goroutine's context and blocks until the goroutine has fully exited.
// Safe to call when the job is not running (no-op in that case).
func (j *clientVerifyJob) Stop() {
	j.mu.Lock()
	cancel := j.cancel
	j.cancel = nil
	j.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	j.wg.Wait()
}

// runOnce verifies once and logs the outcome. Divergence is only
// reported; reconciliation stays a manual decision.
func (j *clientVerifyJob) runOnce(ctx context.Context) {
	report, err := j.verify.Verify(ctx)
	if err != nil {
		j.logger.Warn().Err(err).
			Str("func", "clientVerifyJob.runOnce").
			Msg("periodic verification failed")
		return
	}

	if report.Decision == models.DecisionInSync {
		j.logger.Debug().
			Str("func", "clientVerifyJob.runOnce").
			Msg("periodic verification: local and remote in sync")
		return
	}

	j.logger.Warn().
		Str("func", "clientVerifyJob.runOnce").
		Str("recommendation", report.Decision.String()).
		Interface("local", report.Local).
		Interface("remote", report.Remote).
		Msg("local and remote record counts diverge")
}
