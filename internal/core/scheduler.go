package core

// scheduler.go runs periodic ledger snapshots.
//
// The job is long-running and context-aware for graceful shutdown. A failed
// snapshot is logged and retried on the next tick; it never stops the server.

import (
	"context"
	"log/slog"
	"time"
)

// StartSnapshotScheduler archives the ledger every interval until ctx is
// cancelled. It returns immediately when no archiver is configured or
// interval is not positive.
func (s *Service) StartSnapshotScheduler(ctx context.Context, interval time.Duration) {
	if s.archiver == nil || interval <= 0 {
		return
	}

	slog.Info("snapshot scheduler started", "interval", interval.String())

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("snapshot scheduler stopped")
			return
		case <-ticker.C:
			s.runSnapshotJob(ctx)
		}
	}
}

// runSnapshotJob performs one snapshot.
func (s *Service) runSnapshotJob(ctx context.Context) {
	start := time.Now()

	location, err := s.Snapshot(ctx, "scheduled")
	if err != nil {
		slog.Error("scheduled snapshot failed", "error", err)
		return
	}
	if location == "" {
		slog.Debug("scheduled snapshot skipped, ledger empty")
		return
	}

	slog.Info("scheduled snapshot completed",
		"location", location,
		"duration_ms", time.Since(start).Milliseconds(),
	)
}
