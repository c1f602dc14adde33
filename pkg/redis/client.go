package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/utulok/shelter-backend/pkg/config"
	apperrors "github.com/utulok/shelter-backend/pkg/errors"
)

// keyNamespace prefixes every key written by this service so a shared
// Redis instance stays legible.
const keyNamespace = "shl"

// Client wraps go-redis with the service key namespace.
type Client struct {
	rdb *goredis.Client
}

// NewClient connects to Redis and verifies the connection with a ping.
func NewClient(ctx context.Context, cfg config.RedisConfig) (*Client, error) {
	opts, err := goredis.ParseURL(cfg.URL)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeDependency, err, "invalid redis url")
	}
	if cfg.Address != "" {
		opts.Addr = cfg.Address
	}
	if cfg.Password != "" {
		opts.Password = cfg.Password
	}
	if cfg.DB != 0 {
		opts.DB = cfg.DB
	}
	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns
	opts.DialTimeout = cfg.DialTimeout
	opts.ReadTimeout = cfg.ReadTimeout
	opts.WriteTimeout = cfg.WriteTimeout

	rdb := goredis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, apperrors.Wrap(apperrors.CodeDependency, err, "failed to connect to redis")
	}

	return &Client{rdb: rdb}, nil
}

// IdempotencyStore is the subset of Client used by webhook idempotency
// guards.
type IdempotencyStore interface {
	IdempotencyKey(scope, id string) string
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	Del(ctx context.Context, keys ...string) error
}

// IdempotencyKey builds the dedupe key for a provider event.
func (c *Client) IdempotencyKey(scope, id string) string {
	return c.Key("idemp", scope, id)
}

// Key builds a namespaced key from parts.
func (c *Client) Key(parts ...string) string {
	key := keyNamespace
	for _, part := range parts {
		key += ":" + part
	}
	return key
}

// SetNX sets a key only if it does not exist yet and reports whether
// the write happened.
func (c *Client) SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error) {
	ok, err := c.rdb.SetNX(ctx, key, value, ttl).Result()
	if err != nil {
		return false, apperrors.Wrap(apperrors.CodeDependency, err, fmt.Sprintf("redis SETNX %s failed", key))
	}
	return ok, nil
}

// Set writes a key with a TTL.
func (c *Client) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	if err := c.rdb.Set(ctx, key, value, ttl).Err(); err != nil {
		return apperrors.Wrap(apperrors.CodeDependency, err, fmt.Sprintf("redis SET %s failed", key))
	}
	return nil
}

// Get reads a key. Missing keys return ("", false, nil).
func (c *Client) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := c.rdb.Get(ctx, key).Result()
	if err == goredis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, apperrors.Wrap(apperrors.CodeDependency, err, fmt.Sprintf("redis GET %s failed", key))
	}
	return value, true, nil
}

// Del removes keys.
func (c *Client) Del(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		return apperrors.Wrap(apperrors.CodeDependency, err, "redis DEL failed")
	}
	return nil
}

// Incr increments a counter key and returns the new value.
func (c *Client) Incr(ctx context.Context, key string) (int64, error) {
	value, err := c.rdb.Incr(ctx, key).Result()
	if err != nil {
		return 0, apperrors.Wrap(apperrors.CodeDependency, err, fmt.Sprintf("redis INCR %s failed", key))
	}
	return value, nil
}

// IncrWithTTL increments a counter and starts its window on first use.
func (c *Client) IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	count, err := c.Incr(ctx, key)
	if err != nil {
		return 0, err
	}
	if count == 1 && ttl > 0 {
		if err := c.Expire(ctx, key, ttl); err != nil {
			return count, err
		}
	}
	return count, nil
}

// Expire sets a TTL on an existing key.
func (c *Client) Expire(ctx context.Context, key string, ttl time.Duration) error {
	if err := c.rdb.Expire(ctx, key, ttl).Err(); err != nil {
		return apperrors.Wrap(apperrors.CodeDependency, err, fmt.Sprintf("redis EXPIRE %s failed", key))
	}
	return nil
}

// Ping checks connectivity, used by the readiness probe.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.rdb.Ping(ctx).Err(); err != nil {
		return apperrors.Wrap(apperrors.CodeDependency, err, "redis ping failed")
	}
	return nil
}

// Close releases the underlying connection pool.
func (c *Client) Close() error {
	return c.rdb.Close()
}
