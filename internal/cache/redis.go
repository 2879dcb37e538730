package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/staybook/apiserver/config"
	"github.com/staybook/apiserver/types"
)

const (
	defaultTTL         = 5 * time.Minute
	defaultDialTimeout = 3 * time.Second
)

// AvailabilityCache caches unavailable-date lookups in Redis. Entries
// carry a per-hotel version in their key; invalidation bumps the
// version so stale windows simply age out. All operations are
// best-effort: any Redis failure is treated as a miss.
type AvailabilityCache struct {
	client *redis.Client
	ttl    time.Duration
	log    zerolog.Logger
}

// New connects to Redis and verifies the connection. Returns (nil, nil)
// when no address is configured, which disables caching.
func New(ctx context.Context, cfg config.RedisConfig, log zerolog.Logger) (*AvailabilityCache, error) {
	if cfg.Addr == "" {
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(ctx, defaultDialTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return &AvailabilityCache{client: client, ttl: defaultTTL, log: log}, nil
}

// Get returns the cached unavailable dates for the window, if present.
func (c *AvailabilityCache) Get(ctx context.Context, hotelID int, from, to types.Date) ([]types.Date, bool) {
	raw, err := c.client.Get(ctx, c.key(ctx, hotelID, from, to)).Bytes()
	if err != nil {
		return nil, false
	}

	var dates []types.Date
	if err := json.Unmarshal(raw, &dates); err != nil {
		c.log.Warn().Err(err).Int("hotel_id", hotelID).Msg("corrupt availability cache entry")
		return nil, false
	}
	return dates, true
}

// Set stores the unavailable dates for the window.
func (c *AvailabilityCache) Set(ctx context.Context, hotelID int, from, to types.Date, dates []types.Date) {
	raw, err := json.Marshal(dates)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, c.key(ctx, hotelID, from, to), raw, c.ttl).Err(); err != nil {
		c.log.Warn().Err(err).Int("hotel_id", hotelID).Msg("failed to write availability cache")
	}
}

// Invalidate drops every cached window for the hotel by bumping its
// version.
func (c *AvailabilityCache) Invalidate(ctx context.Context, hotelID int) {
	if err := c.client.Incr(ctx, c.versionKey(hotelID)).Err(); err != nil {
		c.log.Warn().Err(err).Int("hotel_id", hotelID).Msg("failed to invalidate availability cache")
	}
}

// Close releases the Redis connection.
func (c *AvailabilityCache) Close() error {
	return c.client.Close()
}

func (c *AvailabilityCache) key(ctx context.Context, hotelID int, from, to types.Date) string {
	version, err := c.client.Get(ctx, c.versionKey(hotelID)).Int64()
	if err != nil {
		version = 0
	}
	return fmt.Sprintf("availability:%d:%d:%s:%s", hotelID, version, from, to)
}

func (c *AvailabilityCache) versionKey(hotelID int) string {
	return fmt.Sprintf("availability:%d:version", hotelID)
}
