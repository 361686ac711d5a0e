package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/vietddude/ethalive/internal/core/domain"
)

// CheckRepo implements storage.CheckRepository using PostgreSQL.
type CheckRepo struct {
	db *DB
}

// NewCheckRepo creates a new PostgreSQL check repository.
func NewCheckRepo(db *DB) *CheckRepo {
	return &CheckRepo{db: db}
}

type checkRow struct {
	ID           string    `db:"id"`
	CheckedAt    time.Time `db:"checked_at"`
	Verdict      string    `db:"verdict"`
	LocalHeight  int64     `db:"local_height"`
	RemoteHeight int64     `db:"remote_height"`
	Lag          int64     `db:"lag"`
	Lead         int64     `db:"lead"`
	Cause        string    `db:"cause"`
	Alert        string    `db:"alert"`
	DurationMS   int64     `db:"duration_ms"`
}

// ErrOutOfRange is returned for heights that do not fit a BIGINT column.
var ErrOutOfRange = errors.New("value exceeds bigint range")

func toRow(c domain.Check) (checkRow, error) {
	for _, v := range []struct {
		name string
		val  uint64
	}{
		{"local_height", c.LocalHeight},
		{"remote_height", c.RemoteHeight},
		{"lag", c.Lag},
		{"lead", c.Lead},
	} {
		if v.val > math.MaxInt64 {
			return checkRow{}, fmt.Errorf("%w: %s=%d", ErrOutOfRange, v.name, v.val)
		}
	}
	return checkRow{
		ID:           c.ID,
		CheckedAt:    c.CheckedAt,
		Verdict:      string(c.Verdict),
		LocalHeight:  int64(c.LocalHeight),
		RemoteHeight: int64(c.RemoteHeight),
		Lag:          int64(c.Lag),
		Lead:         int64(c.Lead),
		Cause:        c.Cause,
		Alert:        string(c.Alert),
		DurationMS:   c.Duration.Milliseconds(),
	}, nil
}

func (r checkRow) toDomain() domain.Check {
	return domain.Check{
		ID:           r.ID,
		CheckedAt:    r.CheckedAt,
		Verdict:      domain.VerdictKind(r.Verdict),
		LocalHeight:  uint64(r.LocalHeight),
		RemoteHeight: uint64(r.RemoteHeight),
		Lag:          uint64(r.Lag),
		Lead:         uint64(r.Lead),
		Cause:        r.Cause,
		Alert:        domain.AlertOutcome(r.Alert),
		Duration:     time.Duration(r.DurationMS) * time.Millisecond,
	}
}

const checkColumns = `id, checked_at, verdict, local_height, remote_height, lag, lead, cause, alert, duration_ms`

// Save inserts a check record.
func (r *CheckRepo) Save(ctx context.Context, c domain.Check) error {
	query := `
		INSERT INTO checks (` + checkColumns + `)
		VALUES (:id, :checked_at, :verdict, :local_height, :remote_height, :lag, :lead, :cause, :alert, :duration_ms)
		ON CONFLICT (id) DO NOTHING
	`
	row, err := toRow(c)
	if err != nil {
		return fmt.Errorf("failed to save check %s: %w", c.ID, err)
	}
	if _, err := r.db.NamedExecContext(ctx, query, row); err != nil {
		return fmt.Errorf("failed to save check: %w", err)
	}
	return nil
}

// Recent returns up to limit checks, newest first.
func (r *CheckRepo) Recent(ctx context.Context, limit int) ([]domain.Check, error) {
	if limit <= 0 {
		limit = 100
	}
	query := `SELECT ` + checkColumns + ` FROM checks ORDER BY checked_at DESC LIMIT $1`

	var rows []checkRow
	if err := r.db.SelectContext(ctx, &rows, query, limit); err != nil {
		return nil, fmt.Errorf("failed to query checks: %w", err)
	}

	checks := make([]domain.Check, len(rows))
	for i, row := range rows {
		checks[i] = row.toDomain()
	}
	return checks, nil
}

// LastAlert returns the most recent check whose alert was delivered.
func (r *CheckRepo) LastAlert(ctx context.Context) (*domain.Check, error) {
	query := `SELECT ` + checkColumns + ` FROM checks WHERE alert = $1 ORDER BY checked_at DESC LIMIT 1`

	var row checkRow
	err := r.db.GetContext(ctx, &row, query, string(domain.AlertSent))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query last alert: %w", err)
	}
	c := row.toDomain()
	return &c, nil
}

// DeleteOlderThan removes checks recorded before cutoff.
func (r *CheckRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM checks WHERE checked_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune checks: %w", err)
	}
	return res.RowsAffected()
}
