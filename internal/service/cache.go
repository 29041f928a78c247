// Package service holds the request logic behind every HTTP route: filtering,
// sorting, pagination and the synthetic data generators.
package service

import (
	"context"
	"encoding/json"
	"log/slog"

	"golang.org/x/sync/singleflight"

	"github.com/MayankSewatkar/vantagepoint/internal/domain"
)

// cacheAside wraps a domain.Cache with JSON encoding and collapses concurrent
// misses on the same key into one computation.
type cacheAside struct {
	cache  domain.Cache
	group  singleflight.Group
	logger *slog.Logger
}

func newCacheAside(cache domain.Cache, logger *slog.Logger) *cacheAside {
	return &cacheAside{cache: cache, logger: logger}
}

// put encodes v and stores it under key. Failures are logged, never returned.
func (c *cacheAside) put(ctx context.Context, key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		c.logger.WarnContext(ctx, "cache: marshal failed",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
		return
	}
	if err := c.cache.Set(ctx, key, data); err != nil {
		c.logger.WarnContext(ctx, "cache: set failed",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
	}
}

// lookup decodes the fresh value under key into dst.
func (c *cacheAside) lookup(ctx context.Context, key string, dst any) bool {
	data, ok := c.cache.Get(ctx, key)
	if !ok {
		return false
	}
	if err := json.Unmarshal(data, dst); err != nil {
		c.logger.WarnContext(ctx, "cache: unmarshal failed",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
		return false
	}
	return true
}

// cached returns the fresh cached value for key, or computes it with load,
// stores it and returns it. Errors from load are not cached.
func cached[T any](ctx context.Context, c *cacheAside, key string, load func(context.Context) (T, error)) (T, error) {
	var out T
	if c.lookup(ctx, key, &out) {
		return out, nil
	}

	// Every waiter on key shares this load; the leader's cancellation must not
	// reach it.
	v, err, _ := c.group.Do(key, func() (any, error) {
		shared := context.WithoutCancel(ctx)
		res, err := load(shared)
		if err != nil {
			return nil, err
		}
		c.put(shared, key, res)
		return res, nil
	})
	if err != nil {
		return out, err
	}
	return v.(T), nil
}
