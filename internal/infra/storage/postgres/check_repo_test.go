package postgres

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/vietddude/ethalive/internal/core/domain"
)

func TestToRow_RoundTrip(t *testing.T) {
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	c := domain.Check{
		ID:           "c1",
		CheckedAt:    at,
		Verdict:      domain.VerdictLagging,
		LocalHeight:  96,
		RemoteHeight: math.MaxInt64,
		Lag:          4,
		Alert:        domain.AlertSent,
		Duration:     1500 * time.Millisecond,
	}

	row, err := toRow(c)
	if err != nil {
		t.Fatalf("toRow failed: %v", err)
	}
	got := row.toDomain()
	if got != c {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got, c)
	}
}

func TestCheckRepo_Save_RejectsOutOfRange(t *testing.T) {
	tests := []struct {
		name  string
		check domain.Check
	}{
		{"local height", domain.Check{ID: "a", LocalHeight: math.MaxInt64 + 1}},
		{"remote height", domain.Check{ID: "b", RemoteHeight: math.MaxUint64}},
		{"lag", domain.Check{ID: "c", Lag: math.MaxUint64}},
		{"lead", domain.Check{ID: "d", Lead: math.MaxInt64 + 1}},
	}

	// The range check runs before any query, so no database is needed.
	repo := NewCheckRepo(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := repo.Save(context.Background(), tt.check)
			if !errors.Is(err, ErrOutOfRange) {
				t.Fatalf("expected ErrOutOfRange, got %v", err)
			}
		})
	}
}
