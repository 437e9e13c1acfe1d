package redisclient

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/AlfredDev/connpool/config"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Client wraps a Redis connection used for cross-instance pool observability.
// It is not used to reconstruct pool state on startup (see SPEC_FULL §5 —
// this is an observability sink, not a source of truth).
type Client struct {
	c *redis.Client
}

// New creates a Redis client from the provided config. Returns an error
// if the Redis URL cannot be parsed.
func New(cfg *config.Config) (*Client, error) {
	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	r := redis.NewClient(opt)
	return &Client{c: r}, nil
}

// Ping verifies connectivity with a short deadline.
func (r *Client) Ping() error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return r.c.Ping(ctx).Err()
}

// Close releases the underlying connection pool.
func (r *Client) Close() error {
	return r.c.Close()
}

// PublishStats marshals snapshot to JSON and stores it under key with the
// given ttl. PublishLoop passes twice its publish interval, so a crashed
// instance's last-known stats expire instead of going stale forever.
func (r *Client) PublishStats(ctx context.Context, key string, snapshot any, ttl time.Duration) error {
	b, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("marshal pool snapshot: %w", err)
	}
	return r.c.Set(ctx, key, b, ttl).Err()
}

// PublishLoop periodically calls snapshotFn and publishes the result under
// key until ctx is canceled. Errors are logged, not returned — a failed
// publish must never interrupt the pool it is reporting on.
func (r *Client) PublishLoop(ctx context.Context, log zerolog.Logger, key string, interval time.Duration, snapshotFn func() any) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := r.PublishStats(ctx, key, snapshotFn(), 2*interval); err != nil {
				log.Warn().Err(err).Str("key", key).Msg("failed to publish pool stats to redis")
			}
		}
	}
}
