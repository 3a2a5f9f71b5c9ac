package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/fundbridge/donate/pkg/config"
)

// ErrMiss is returned by GetJSON when the key does not exist.
var ErrMiss = errors.New("cache miss")

// Cache is a JSON key-value store scoped to one key prefix.
type Cache struct {
	client     redis.UniversalClient
	prefix     string
	clearBatch int
	logger     zerolog.Logger
}

// NewClient opens a redis client from the cache config.
func NewClient(cfg config.CacheConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})
}

func New(client redis.UniversalClient, cfg config.CacheConfig, logger zerolog.Logger) *Cache {
	batch := cfg.ClearBatch
	if batch <= 0 {
		batch = 100
	}
	return &Cache{
		client:     client,
		prefix:     cfg.Prefix,
		clearBatch: batch,
		logger:     logger.With().Str("component", "cache").Logger(),
	}
}

func (c *Cache) key(k string) string {
	return c.prefix + k
}

func (c *Cache) GetJSON(ctx context.Context, key string, out interface{}) error {
	data, err := c.client.Get(ctx, c.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrMiss
	}
	if err != nil {
		return fmt.Errorf("failed to get %s: %w", key, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return nil
}

// SetJSON stores v under key. A zero ttl keeps the key until cleared.
func (c *Cache) SetJSON(ctx context.Context, key string, v interface{}, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	if err := c.client.Set(ctx, c.key(key), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	return nil
}

func (c *Cache) Delete(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, c.key(key)).Err(); err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

// Clear removes every key under the prefix in batches and returns how many
// were deleted.
func (c *Cache) Clear(ctx context.Context) (int, error) {
	var (
		cursor  uint64
		deleted int
	)
	for {
		keys, next, err := c.client.Scan(ctx, cursor, c.prefix+"*", int64(c.clearBatch)).Result()
		if err != nil {
			return deleted, fmt.Errorf("failed to scan keys: %w", err)
		}
		for start := 0; start < len(keys); start += c.clearBatch {
			end := start + c.clearBatch
			if end > len(keys) {
				end = len(keys)
			}
			n, err := c.client.Del(ctx, keys[start:end]...).Result()
			if err != nil {
				return deleted, fmt.Errorf("failed to delete keys: %w", err)
			}
			deleted += int(n)
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
	c.logger.Info().Int("deleted", deleted).Msg("Cache cleared")
	return deleted, nil
}

func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Client exposes the underlying redis client for stores sharing the
// connection.
func (c *Cache) Client() redis.UniversalClient {
	return c.client
}

// Prefix is the key prefix every entry of this cache carries.
func (c *Cache) Prefix() string {
	return c.prefix
}
