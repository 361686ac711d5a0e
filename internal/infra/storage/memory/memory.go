package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/vietddude/ethalive/internal/core/domain"
)

// CheckRepo keeps the most recent checks in memory.
type CheckRepo struct {
	mu     sync.RWMutex
	checks []domain.Check
	limit  int
}

// NewCheckRepo creates a repository holding at most limit checks (0 = unbounded).
func NewCheckRepo(limit int) *CheckRepo {
	return &CheckRepo{limit: limit}
}

func (r *CheckRepo) Save(ctx context.Context, check domain.Check) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.checks = append(r.checks, check)
	if r.limit > 0 && len(r.checks) > r.limit {
		r.checks = append([]domain.Check(nil), r.checks[len(r.checks)-r.limit:]...)
	}
	return nil
}

func (r *CheckRepo) Recent(ctx context.Context, limit int) ([]domain.Check, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Check, len(r.checks))
	copy(out, r.checks)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CheckedAt.After(out[j].CheckedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *CheckRepo) LastAlert(ctx context.Context) (*domain.Check, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var last *domain.Check
	for i := range r.checks {
		c := r.checks[i]
		if c.Alert != domain.AlertSent {
			continue
		}
		if last == nil || !c.CheckedAt.Before(last.CheckedAt) {
			last = &c
		}
	}
	return last, nil
}

func (r *CheckRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.checks[:0]
	var deleted int64
	for _, c := range r.checks {
		if c.CheckedAt.Before(cutoff) {
			deleted++
			continue
		}
		kept = append(kept, c)
	}
	r.checks = kept
	return deleted, nil
}
