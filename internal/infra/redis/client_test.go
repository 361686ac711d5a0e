package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/vietddude/ethalive/internal/core/domain"
)

func TestNewClientFromRedis_Defaults(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"})
	c := NewClientFromRedis(rdb, "", 0)
	defer c.Close()

	if c.statusKey() != "ethalive:status" {
		t.Errorf("unexpected status key %q", c.statusKey())
	}
	if c.counterKey(domain.VerdictLagging) != "ethalive:verdicts:lagging" {
		t.Errorf("unexpected counter key %q", c.counterKey(domain.VerdictLagging))
	}
	if c.ttl != DefaultStatusTTL {
		t.Errorf("expected default ttl, got %v", c.ttl)
	}
}

func TestClient_GetStatus_Unreachable(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	c := NewClientFromRedis(rdb, "test", time.Minute)
	defer c.Close()

	_, err := c.GetStatus(context.Background())
	if err == nil {
		t.Fatal("expected error from unreachable redis")
	}
	if errors.Is(err, ErrNoStatus) {
		t.Error("connection failure must not look like a missing snapshot")
	}
}

func TestNewClient_InvalidURL(t *testing.T) {
	if _, err := NewClient(Config{URL: "not-a-url"}); err == nil {
		t.Fatal("expected error for invalid redis url")
	}
}

func newTestClient(t *testing.T) (*Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	c := NewClientFromRedis(rdb, "test", time.Minute)
	t.Cleanup(func() { c.Close() })
	return c, mr
}

func TestClient_StatusRoundTrip(t *testing.T) {
	c, mr := newTestClient(t)
	ctx := context.Background()

	if _, err := c.GetStatus(ctx); !errors.Is(err, ErrNoStatus) {
		t.Fatalf("expected ErrNoStatus before first write, got %v", err)
	}

	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	checks := []domain.Check{
		{ID: "1", CheckedAt: at, Verdict: domain.VerdictLagging, LocalHeight: 96, RemoteHeight: 100, Lag: 4, Alert: domain.AlertSent},
		{ID: "2", CheckedAt: at.Add(time.Minute), Verdict: domain.VerdictLagging, LocalHeight: 97, RemoteHeight: 101, Lag: 4, Alert: domain.AlertSuppressed},
		{ID: "3", CheckedAt: at.Add(2 * time.Minute), Verdict: domain.VerdictSynced, LocalHeight: 102, RemoteHeight: 102, Alert: domain.AlertNone},
	}
	for _, check := range checks {
		if err := c.Observe(ctx, check); err != nil {
			t.Fatalf("Observe failed: %v", err)
		}
	}

	got, err := c.GetStatus(ctx)
	if err != nil {
		t.Fatalf("GetStatus failed: %v", err)
	}
	if got.ID != "3" || got.Verdict != domain.VerdictSynced || got.LocalHeight != 102 {
		t.Errorf("expected latest synced check, got %+v", got)
	}
	if !got.CheckedAt.Equal(checks[2].CheckedAt) {
		t.Errorf("expected checked_at %v, got %v", checks[2].CheckedAt, got.CheckedAt)
	}

	if ttl := mr.TTL("test:status"); ttl != time.Minute {
		t.Errorf("expected status ttl 1m, got %v", ttl)
	}

	counts, err := c.VerdictCounts(ctx)
	if err != nil {
		t.Fatalf("VerdictCounts failed: %v", err)
	}
	if counts[domain.VerdictLagging] != 2 || counts[domain.VerdictSynced] != 1 {
		t.Errorf("unexpected counts %v", counts)
	}
	if _, ok := counts[domain.VerdictLocalUnreachable]; ok {
		t.Error("expected no counter for unseen verdicts")
	}
}

func TestClient_GetStatus_Expired(t *testing.T) {
	c, mr := newTestClient(t)
	ctx := context.Background()

	if err := c.SetStatus(ctx, domain.Check{ID: "1", Verdict: domain.VerdictSynced}); err != nil {
		t.Fatalf("SetStatus failed: %v", err)
	}
	mr.FastForward(2 * time.Minute)

	if _, err := c.GetStatus(ctx); !errors.Is(err, ErrNoStatus) {
		t.Fatalf("expected ErrNoStatus after ttl, got %v", err)
	}
}

func TestClient_Ping(t *testing.T) {
	c, mr := newTestClient(t)

	if err := c.Ping(context.Background()); err != nil {
		t.Fatalf("expected ping to succeed, got %v", err)
	}
	mr.Close()
	if err := c.Ping(context.Background()); err == nil {
		t.Error("expected ping to fail after server shutdown")
	}
}
