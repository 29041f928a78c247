package redis

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/MayankSewatkar/vantagepoint/internal/domain"
	"github.com/redis/go-redis/v9"
)

// TTLCache implements domain.Cache on Redis strings with a server-side expiry.
// Redis errors on Get are logged and reported as misses.
//
// Key schema:
//
//	{prefix}{key} - string value holding the JSON payload
type TTLCache struct {
	rdb    *redis.Client
	ttl    time.Duration
	prefix string
	logger *slog.Logger
}

// NewTTLCache creates a TTLCache backed by the given Client.
func NewTTLCache(c *Client, ttl time.Duration, prefix string, logger *slog.Logger) *TTLCache {
	if logger == nil {
		logger = slog.Default()
	}
	return &TTLCache{
		rdb:    c.Underlying(),
		ttl:    ttl,
		prefix: prefix,
		logger: logger,
	}
}

func (tc *TTLCache) key(k string) string { return tc.prefix + k }

// Get returns the payload stored under key, or false when absent or expired.
func (tc *TTLCache) Get(ctx context.Context, key string) ([]byte, bool) {
	data, err := tc.rdb.Get(ctx, tc.key(key)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			tc.logger.WarnContext(ctx, "redis: cache get failed",
				slog.String("key", key),
				slog.String("error", err.Error()),
			)
		}
		return nil, false
	}
	return data, true
}

// Set stores value under key with the cache TTL.
func (tc *TTLCache) Set(ctx context.Context, key string, value []byte) error {
	if err := tc.rdb.Set(ctx, tc.key(key), value, tc.ttl).Err(); err != nil {
		return errors.Join(domain.ErrUnavailable, err)
	}
	return nil
}

// Compile-time interface check.
var _ domain.Cache = (*TTLCache)(nil)
