package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/use-agent/pricelens/metrics"
	"github.com/use-agent/pricelens/models"
)

// record is the JSON value stored under each Redis key.
type record struct {
	StoredAt int64                `json:"stored_at"` // unix milliseconds
	Payload  *models.FinalPayload `json:"payload"`
}

// Redis is a Store shared between server replicas.
type Redis struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedis connects to addr and verifies the connection with PING.
func NewRedis(ctx context.Context, addr, password string, db int, ttl time.Duration) (*Redis, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("connect redis cache: %w", err)
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Redis{rdb: rdb, ttl: ttl}, nil
}

// Get implements Store.
func (c *Redis) Get(ctx context.Context, key string, maxAge time.Duration) (*models.FinalPayload, bool) {
	if maxAge <= 0 {
		return nil, false
	}

	raw, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			slog.Warn("redis cache get failed", "key", key, "error", err)
			metrics.CacheLookups.WithLabelValues("error").Inc()
			return nil, false
		}
		metrics.CacheLookups.WithLabelValues("miss").Inc()
		return nil, false
	}

	var rec record
	if err := json.Unmarshal(raw, &rec); err != nil || rec.Payload == nil {
		slog.Warn("redis cache entry unreadable", "key", key, "error", err)
		metrics.CacheLookups.WithLabelValues("error").Inc()
		return nil, false
	}
	if time.Since(time.UnixMilli(rec.StoredAt)) > maxAge {
		metrics.CacheLookups.WithLabelValues("miss").Inc()
		return nil, false
	}

	metrics.CacheLookups.WithLabelValues("hit").Inc()
	return rec.Payload, true
}

// Set implements Store. Entries expire after the store TTL.
func (c *Redis) Set(ctx context.Context, key string, payload *models.FinalPayload) {
	if payload == nil {
		return
	}
	raw, err := json.Marshal(record{StoredAt: time.Now().UnixMilli(), Payload: payload})
	if err != nil {
		slog.Warn("redis cache marshal failed", "key", key, "error", err)
		return
	}
	if err := c.rdb.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		slog.Warn("redis cache set failed", "key", key, "error", err)
	}
}

// Backend implements Store.
func (c *Redis) Backend() string { return "redis" }

// Close releases the connection pool.
func (c *Redis) Close() error { return c.rdb.Close() }

var _ Store = (*Redis)(nil)
