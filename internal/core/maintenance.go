package core

// maintenance.go provides background upkeep for the snapshot store.
//
// The pruner runs periodically and deletes all but the newest snapshots so
// the table does not grow with every import. It is long-running and
// context-aware for graceful shutdown, and a failed run is logged without
// stopping the loop.

import (
	"context"
	"log/slog"
	"time"
)

// SnapshotPruner is implemented by stores that can discard old snapshots.
type SnapshotPruner interface {
	Prune(ctx context.Context, keep int) (int64, error)
}

// PruneConfig holds configuration for the snapshot pruner.
type PruneConfig struct {
	Keep     int           // Snapshots to keep; zero or less disables pruning
	Interval time.Duration // How often to run (default: 24h)
}

// StartSnapshotPruner deletes old snapshots immediately and then every
// Interval until ctx is cancelled. It returns at once when the configured
// store cannot prune or Keep disables pruning.
func (s *Service) StartSnapshotPruner(ctx context.Context, cfg PruneConfig) {
	pruner, ok := s.store.(SnapshotPruner)
	if !ok || cfg.Keep <= 0 {
		slog.Debug("snapshot pruner disabled", "keep", cfg.Keep, "store", s.store != nil)
		return
	}
	if cfg.Interval <= 0 {
		cfg.Interval = 24 * time.Hour
	}

	slog.Info("snapshot pruner started", "keep", cfg.Keep, "interval", cfg.Interval)

	s.runPruneJob(ctx, pruner, cfg.Keep)

	ticker := time.NewTicker(cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("snapshot pruner stopped")
			return
		case <-ticker.C:
			s.runPruneJob(ctx, pruner, cfg.Keep)
		}
	}
}

// runPruneJob performs one prune cycle.
func (s *Service) runPruneJob(ctx context.Context, pruner SnapshotPruner, keep int) {
	start := time.Now()
	deleted, err := pruner.Prune(ctx, keep)
	if err != nil {
		if ctx.Err() == nil {
			slog.Error("snapshot prune failed", "error", err)
		}
		return
	}
	slog.Info("snapshots pruned",
		"deleted", deleted,
		"kept", keep,
		"duration_ms", time.Since(start).Milliseconds(),
	)
}
