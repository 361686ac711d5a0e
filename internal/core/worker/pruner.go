package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/vietddude/ethalive/internal/infra/storage"
	"github.com/vietddude/ethalive/internal/metrics"
)

// Pruner deletes check history based on a retention period.
type Pruner struct {
	retention time.Duration
	repo      storage.CheckRepository
	now       func() time.Time
}

// NewPruner creates a new Pruner worker.
func NewPruner(retention time.Duration, repo storage.CheckRepository) *Pruner {
	return &Pruner{
		retention: retention,
		repo:      repo,
		now:       time.Now,
	}
}

// Start runs the pruner loop.
func (p *Pruner) Start(ctx context.Context) {
	if p.retention <= 0 {
		return // Retention disabled
	}

	// Check every 10% of the retention period, between 1 minute and 1 hour
	interval := min(p.retention/10, 1*time.Hour)
	interval = max(interval, 1*time.Minute)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Initial prune
	p.Prune(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.Prune(ctx)
		}
	}
}

// Prune removes records older than the retention period once.
func (p *Pruner) Prune(ctx context.Context) int64 {
	cutoff := p.now().Add(-p.retention)

	n, err := p.repo.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		slog.Error("Failed to prune check history", "cutoff", cutoff, "error", err)
		return 0
	}
	if n > 0 {
		metrics.HistoryPrunedTotal.Add(float64(n))
		slog.Debug("Pruned check history", "deleted", n, "cutoff", cutoff)
	}
	return n
}
