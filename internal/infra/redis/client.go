package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/vietddude/ethalive/internal/core/domain"
)

// ErrNoStatus is returned when no snapshot has been written yet or it expired.
var ErrNoStatus = errors.New("no status snapshot")

// DefaultStatusTTL bounds how long a snapshot stays readable without a refresh.
const DefaultStatusTTL = 10 * time.Minute

// Client publishes the latest watchdog check for external readers.
type Client struct {
	rdb    redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// Config holds Redis connection configuration.
type Config struct {
	URL       string        `yaml:"url"`
	Password  string        `yaml:"password"`
	KeyPrefix string        `yaml:"key_prefix"`
	StatusTTL time.Duration `yaml:"status_ttl"`
}

// NewClient creates a new Redis client.
func NewClient(cfg Config) (*Client, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}
	if cfg.Password != "" {
		opts.Password = cfg.Password
	}

	rdb := redis.NewClient(opts)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return NewClientFromRedis(rdb, cfg.KeyPrefix, cfg.StatusTTL), nil
}

// NewClientFromRedis wraps an existing redis client.
func NewClientFromRedis(rdb redis.UniversalClient, prefix string, ttl time.Duration) *Client {
	if prefix == "" {
		prefix = "ethalive"
	}
	if ttl <= 0 {
		ttl = DefaultStatusTTL
	}
	return &Client{rdb: rdb, prefix: prefix, ttl: ttl}
}

// Close closes the Redis connection.
func (c *Client) Close() error {
	return c.rdb.Close()
}

// Ping checks the connection.
func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// Key helpers
func (c *Client) statusKey() string {
	return fmt.Sprintf("%s:status", c.prefix)
}

func (c *Client) counterKey(kind domain.VerdictKind) string {
	return fmt.Sprintf("%s:verdicts:%s", c.prefix, kind)
}

// SetStatus stores check as the latest snapshot and bumps its verdict counter.
func (c *Client) SetStatus(ctx context.Context, check domain.Check) error {
	data, err := json.Marshal(check)
	if err != nil {
		return fmt.Errorf("marshal status: %w", err)
	}

	pipe := c.rdb.TxPipeline()
	pipe.Set(ctx, c.statusKey(), data, c.ttl)
	pipe.Incr(ctx, c.counterKey(check.Verdict))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("set status failed: %w", err)
	}
	return nil
}

// GetStatus returns the latest snapshot.
func (c *Client) GetStatus(ctx context.Context) (domain.Check, error) {
	val, err := c.rdb.Get(ctx, c.statusKey()).Bytes()
	if err == redis.Nil {
		return domain.Check{}, ErrNoStatus
	}
	if err != nil {
		return domain.Check{}, fmt.Errorf("get status failed: %w", err)
	}

	var check domain.Check
	if err := json.Unmarshal(val, &check); err != nil {
		return domain.Check{}, fmt.Errorf("decode status: %w", err)
	}
	return check, nil
}

// VerdictCounts returns the number of recorded checks per verdict kind.
func (c *Client) VerdictCounts(ctx context.Context) (map[domain.VerdictKind]int64, error) {
	kinds := []domain.VerdictKind{
		domain.VerdictSynced,
		domain.VerdictLagging,
		domain.VerdictLocalAhead,
		domain.VerdictRemoteUnreachable,
		domain.VerdictLocalUnreachable,
	}

	pipe := c.rdb.Pipeline()
	cmds := make([]*redis.StringCmd, len(kinds))
	for i, k := range kinds {
		cmds[i] = pipe.Get(ctx, c.counterKey(k))
	}
	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return nil, fmt.Errorf("get counters failed: %w", err)
	}

	counts := make(map[domain.VerdictKind]int64, len(kinds))
	for i, k := range kinds {
		n, err := cmds[i].Int64()
		if err == redis.Nil {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("parse counter %s: %w", k, err)
		}
		counts[k] = n
	}
	return counts, nil
}

// Observe implements watchdog.Observer.
func (c *Client) Observe(ctx context.Context, check domain.Check) error {
	return c.SetStatus(ctx, check)
}
