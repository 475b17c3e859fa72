// Package jobs runs periodic maintenance next to the HTTP server.
package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

const defaultJobTimeout = time.Minute

// SessionPruner removes sessions that can no longer be used.
type SessionPruner interface {
	PruneExpiredSessions(ctx context.Context) (int64, error)
}

// Scheduler wraps a cron runner. Overlapping runs of the same job are skipped
// and panics are recovered and logged.
type Scheduler struct {
	cron    *cron.Cron
	logger  *slog.Logger
	timeout time.Duration
}

// NewScheduler constructs a Scheduler that evaluates specs in loc.
func NewScheduler(loc *time.Location, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	if loc == nil {
		loc = time.UTC
	}
	cronLogger := slogAdapter{logger: logger.With("component", "jobs")}
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithLogger(cronLogger),
			cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
		),
		logger:  logger,
		timeout: defaultJobTimeout,
	}
}

// RegisterSessionPruning schedules pruner on spec, a standard five-field cron
// expression or an @every / @hourly style descriptor.
func (s *Scheduler) RegisterSessionPruning(spec string, pruner SessionPruner) (cron.EntryID, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return 0, fmt.Errorf("jobs: empty schedule")
	}
	if pruner == nil {
		return 0, fmt.Errorf("jobs: nil session pruner")
	}

	id, err := s.cron.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()

		started := time.Now()
		removed, err := pruner.PruneExpiredSessions(ctx)
		if err != nil {
			s.logger.ErrorContext(ctx, "session pruning failed", "job", "prune_sessions", "error", err)
			return
		}
		s.logger.InfoContext(ctx, "session pruning finished",
			"job", "prune_sessions",
			"removed", removed,
			"duration_ms", time.Since(started).Milliseconds(),
		)
	})
	if err != nil {
		return 0, fmt.Errorf("jobs: parse schedule %q: %w", spec, err)
	}
	return id, nil
}

// Start runs the scheduler in its own goroutine.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts the scheduler and waits for running jobs until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// slogAdapter satisfies cron.Logger.
type slogAdapter struct {
	logger *slog.Logger
}

func (a slogAdapter) Info(msg string, keysAndValues ...interface{}) {
	a.logger.Debug(msg, keysAndValues...)
}

func (a slogAdapter) Error(err error, msg string, keysAndValues ...interface{}) {
	a.logger.Error(msg, append([]interface{}{"error", err}, keysAndValues...)...)
}
