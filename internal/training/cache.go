package training

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/shelter-training/maps-trainer/internal/models"
)

// LeaderboardCache caches the ranked leaderboard. Implementations must treat
// every failure as a miss: the database remains the source of truth.
type LeaderboardCache interface {
	Get(ctx context.Context) ([]*models.LeaderboardEntry, bool)
	Set(ctx context.Context, entries []*models.LeaderboardEntry) error
	Invalidate(ctx context.Context) error
}

const leaderboardKey = "leaderboard:top"

// RedisCache implements LeaderboardCache on Redis.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache connects to Redis and verifies connectivity.
func NewRedisCache(address, password string, db int, ttl time.Duration) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	if ttl <= 0 {
		ttl = 30 * time.Second
	}

	return &RedisCache{client: client, ttl: ttl}, nil
}

// Get returns the cached leaderboard, or (nil, false) on miss or error.
func (c *RedisCache) Get(ctx context.Context) ([]*models.LeaderboardEntry, bool) {
	data, err := c.client.Get(ctx, leaderboardKey).Bytes()
	if err != nil {
		return nil, false
	}

	var entries []*models.LeaderboardEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, false
	}
	return entries, true
}

// Set overwrites the cached leaderboard.
func (c *RedisCache) Set(ctx context.Context, entries []*models.LeaderboardEntry) error {
	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("failed to marshal leaderboard: %w", err)
	}
	return c.client.Set(ctx, leaderboardKey, data, c.ttl).Err()
}

// Invalidate drops the cached leaderboard.
func (c *RedisCache) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, leaderboardKey).Err()
}

// Ping checks Redis connectivity.
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the Redis connection.
func (c *RedisCache) Close() error {
	return c.client.Close()
}
