package core

// scheduler.go runs background maintenance for preview stores.
//
// Stores without native expiry (Postgres) keep every preview until it is
// deleted. The pruner removes entries older than MaxAge, running once at
// start and then every CheckInterval until its context ends. A failed run is
// logged and retried on the next tick.

import (
	"context"
	"log/slog"
	"time"
)

// Pruner deletes preview entries last written before cutoff.
// *preview.PostgresStore implements it.
type Pruner interface {
	Prune(ctx context.Context, cutoff time.Time) (int64, error)
}

// PruneConfig holds configuration for the preview pruner.
type PruneConfig struct {
	MaxAge        time.Duration // entries older than this are removed (default: 24h)
	CheckInterval time.Duration // how often to run (default: 1h)
}

func (c PruneConfig) withDefaults() PruneConfig {
	if c.MaxAge <= 0 {
		c.MaxAge = 24 * time.Hour
	}
	if c.CheckInterval <= 0 {
		c.CheckInterval = time.Hour
	}
	return c
}

// RunPreviewPruner prunes p immediately, then every CheckInterval, until ctx
// is cancelled. It blocks; run it in its own goroutine.
func RunPreviewPruner(ctx context.Context, p Pruner, cfg PruneConfig) {
	cfg = cfg.withDefaults()
	slog.Info("preview pruner started",
		"max_age", cfg.MaxAge,
		"interval", cfg.CheckInterval,
	)

	runPrune(ctx, p, cfg.MaxAge, time.Now)

	ticker := time.NewTicker(cfg.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("preview pruner stopped")
			return
		case <-ticker.C:
			runPrune(ctx, p, cfg.MaxAge, time.Now)
		}
	}
}

// runPrune performs one prune cycle and returns the number removed.
func runPrune(ctx context.Context, p Pruner, maxAge time.Duration, now func() time.Time) int64 {
	start := time.Now()
	n, err := p.Prune(ctx, now().Add(-maxAge))
	if err != nil {
		slog.Error("preview prune failed", "error", err)
		return 0
	}
	slog.Info("pruned preview entries",
		"entries_pruned", n,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return n
}
