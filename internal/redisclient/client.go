package redisclient

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const keyPrefix = "cafehub:storage:"

// Client is a redis backed local storage: one string value per key, with a
// sliding TTL refreshed on every write.
type Client struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewClient creates a new Redis client and checks the connection
func NewClient(addr, password string, db int, ttl time.Duration) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Client{rdb: rdb, ttl: ttl}, nil
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

// GetItem returns the stored value and whether it exists
func (c *Client) GetItem(ctx context.Context, key string) (string, bool, error) {
	val, err := c.rdb.Get(ctx, keyPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis get %s: %w", key, err)
	}
	return val, true, nil
}

// SetItem stores value under key
func (c *Client) SetItem(ctx context.Context, key, value string) error {
	if err := c.rdb.Set(ctx, keyPrefix+key, value, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// RemoveItem deletes key; a missing key is not an error
func (c *Client) RemoveItem(ctx context.Context, key string) error {
	if err := c.rdb.Del(ctx, keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}

const eventKeyPrefix = "cafehub:events:"

// eventRetention bounds how long processed event ids are remembered
const eventRetention = 7 * 24 * time.Hour

// IsEventProcessed reports whether eventID was already handled
func (c *Client) IsEventProcessed(ctx context.Context, eventID string) (bool, error) {
	n, err := c.rdb.Exists(ctx, eventKeyPrefix+eventID).Result()
	if err != nil {
		return false, fmt.Errorf("redis exists %s: %w", eventID, err)
	}
	return n > 0, nil
}

// MarkEventProcessed records eventID. Marking twice is not an error.
func (c *Client) MarkEventProcessed(ctx context.Context, eventID, eventType string) error {
	if err := c.rdb.SetNX(ctx, eventKeyPrefix+eventID, eventType, eventRetention).Err(); err != nil {
		return fmt.Errorf("redis setnx %s: %w", eventID, err)
	}
	return nil
}
