// Package syncer runs the background drain of pending-operation queues.
package syncer

import (
	"context"
	"log/slog"
	"time"

	"cycletrack/internal/app"
	"cycletrack/internal/domain"
)

// Syncer periodically drains every user's pending queue against the remote
// store. Users whose drain failed are retried with exponential backoff
// instead of hammering an unreachable remote every tick.
type Syncer struct {
	svc            *app.SyncService
	replicas       domain.ReplicaStore
	logger         *slog.Logger
	backoffInitial time.Duration
	backoffMax     time.Duration

	failures    map[string]int
	nextAttempt map[string]time.Time
	now         func() time.Time
}

// New creates a Syncer. Zero backoff values fall back to 30s initial and
// 10m maximum.
func New(svc *app.SyncService, replicas domain.ReplicaStore, logger *slog.Logger, backoffInitial, backoffMax time.Duration) *Syncer {
	if backoffInitial <= 0 {
		backoffInitial = 30 * time.Second
	}
	if backoffMax <= 0 {
		backoffMax = 10 * time.Minute
	}
	return &Syncer{
		svc:            svc,
		replicas:       replicas,
		logger:         logger,
		backoffInitial: backoffInitial,
		backoffMax:     backoffMax,
		failures:       make(map[string]int),
		nextAttempt:    make(map[string]time.Time),
		now:            time.Now,
	}
}

// Start runs the syncer until ctx is cancelled. The first cycle runs
// immediately; later ones on the ticker. Kick makes an extra cycle run on a
// connectivity signal without waiting for the ticker.
func (s *Syncer) Start(ctx context.Context, interval time.Duration, kick <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.logger.Info("syncer started", slog.Duration("interval", interval))
	s.RunOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("syncer stopped")
			return
		case <-ticker.C:
			s.RunOnce(ctx)
		case <-kick:
			// Connectivity came back: retry everyone right away.
			s.resetBackoff()
			s.RunOnce(ctx)
		}
	}
}

// RunOnce drains every user whose backoff window has passed.
func (s *Syncer) RunOnce(ctx context.Context) {
	users, err := s.replicas.ListUsers(ctx)
	if err != nil {
		s.logger.Error("listing replica users failed", slog.String("error", err.Error()))
		return
	}

	now := s.now()
	for _, userID := range users {
		if next, ok := s.nextAttempt[userID]; ok && now.Before(next) {
			continue
		}
		applied, err := s.svc.Drain(ctx, userID)
		if err != nil {
			s.failures[userID]++
			delay := s.backoff(s.failures[userID] - 1)
			s.nextAttempt[userID] = now.Add(delay)
			s.logger.Warn("drain failed",
				slog.String("user", userID),
				slog.Int("applied", applied),
				slog.Duration("retry_in", delay),
				slog.String("error", err.Error()),
			)
			continue
		}
		delete(s.failures, userID)
		delete(s.nextAttempt, userID)
		if applied > 0 {
			s.logger.Info("drained pending operations",
				slog.String("user", userID),
				slog.Int("applied", applied),
			)
		}
	}
}

// backoff returns the delay after the given number of consecutive failures:
// the initial delay doubled per failure, capped at the maximum.
func (s *Syncer) backoff(consecutiveFailures int) time.Duration {
	delay := s.backoffInitial
	for i := 0; i < consecutiveFailures; i++ {
		delay *= 2
		if delay > s.backoffMax {
			return s.backoffMax
		}
	}
	return delay
}

func (s *Syncer) resetBackoff() {
	s.failures = make(map[string]int)
	s.nextAttempt = make(map[string]time.Time)
}
