package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/cypherlabdev/odds-ingestion-service/internal/models"
)

// RedisEventCache caches raw provider events in Redis, keyed by league
// selection and date window. The ingest service reads it back when the
// provider rate-limits, instead of hammering the API.
type RedisEventCache struct {
	client *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

// RedisEventCacheConfig holds Redis cache configuration.
type RedisEventCacheConfig struct {
	Addr     string // e.g., "localhost:6379"
	Password string
	DB       int
	TTL      time.Duration // e.g., 15 * time.Minute
}

// NewRedisEventCache creates a new Redis event cache.
func NewRedisEventCache(config RedisEventCacheConfig, logger zerolog.Logger) *RedisEventCache {
	client := redis.NewClient(&redis.Options{
		Addr:     config.Addr,
		Password: config.Password,
		DB:       config.DB,
	})

	return &RedisEventCache{
		client: client,
		ttl:    config.TTL,
		logger: logger.With().Str("component", "event_cache").Logger(),
	}
}

// EventCacheKey builds the cache key for a league selection and date window.
func EventCacheKey(leagues []string, startsAfter, startsBefore time.Time) string {
	return fmt.Sprintf("events:%s:%s:%s",
		strings.Join(leagues, ","),
		startsAfter.Format("2006-01-02"),
		startsBefore.Format("2006-01-02"),
	)
}

// SetEvents caches one fetch result.
func (c *RedisEventCache) SetEvents(ctx context.Context, key string, events []models.RawEvent) error {
	data, err := json.Marshal(events)
	if err != nil {
		return fmt.Errorf("failed to marshal events: %w", err)
	}

	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set in Redis: %w", err)
	}

	c.logger.Debug().
		Str("key", key).
		Int("events", len(events)).
		Dur("ttl", c.ttl).
		Msg("cached raw events")

	return nil
}

// GetEvents retrieves a cached fetch result. A miss returns an error.
func (c *RedisEventCache) GetEvents(ctx context.Context, key string) ([]models.RawEvent, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, fmt.Errorf("events not found in cache for key %s", key)
	} else if err != nil {
		return nil, fmt.Errorf("failed to get from Redis: %w", err)
	}

	var events []models.RawEvent
	if err := json.Unmarshal(data, &events); err != nil {
		return nil, fmt.Errorf("failed to unmarshal events: %w", err)
	}

	c.logger.Debug().
		Str("key", key).
		Int("events", len(events)).
		Msg("cache hit for raw events")

	return events, nil
}

// Ping checks Redis connection.
func (c *RedisEventCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the Redis connection.
func (c *RedisEventCache) Close() error {
	return c.client.Close()
}
