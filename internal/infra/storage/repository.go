package storage

import (
	"context"
	"time"

	"github.com/vietddude/ethalive/internal/core/domain"
)

// CheckRepository stores the history of watchdog cycles.
type CheckRepository interface {
	// Save stores a check record
	Save(ctx context.Context, check domain.Check) error

	// Recent returns up to limit checks, newest first
	Recent(ctx context.Context, limit int) ([]domain.Check, error)

	// LastAlert returns the most recent check whose alert was sent, or nil
	LastAlert(ctx context.Context) (*domain.Check, error)

	// DeleteOlderThan removes checks recorded before cutoff and returns the count
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// Recorder adapts a CheckRepository to the watchdog observer interface.
type Recorder struct {
	Repo CheckRepository
}

// Observe implements watchdog.Observer.
func (r Recorder) Observe(ctx context.Context, check domain.Check) error {
	return r.Repo.Save(ctx, check)
}
