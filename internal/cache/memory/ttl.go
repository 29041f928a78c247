// Package memory implements domain.Cache as a process-local TTL map.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/MayankSewatkar/vantagepoint/internal/domain"
)

// DefaultTTL is the freshness window used when New is given a non-positive ttl.
const DefaultTTL = 60 * time.Second

type entry struct {
	storedAt time.Time
	value    []byte
}

// TTLCache maps keys to (timestamp, value). A value is visible while
// now - storedAt < ttl. There is no size bound and no purge: stale entries
// stay in memory until the same key is set again.
type TTLCache struct {
	mu    sync.RWMutex
	items map[string]entry
	ttl   time.Duration
	now   func() time.Time
}

// Option configures a TTLCache.
type Option func(*TTLCache)

// WithClock replaces the wall clock, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(c *TTLCache) { c.now = now }
}

// New creates an empty TTLCache.
func New(ttl time.Duration, opts ...Option) *TTLCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	c := &TTLCache{
		items: make(map[string]entry),
		ttl:   ttl,
		now:   time.Now,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Get returns the value stored under key if it is still fresh.
func (c *TTLCache) Get(_ context.Context, key string) ([]byte, bool) {
	c.mu.RLock()
	e, ok := c.items[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if c.now().Sub(e.storedAt) >= c.ttl {
		return nil, false
	}
	return e.value, true
}

// Set overwrites key with value stamped at the current time.
func (c *TTLCache) Set(_ context.Context, key string, value []byte) error {
	c.mu.Lock()
	c.items[key] = entry{storedAt: c.now(), value: value}
	c.mu.Unlock()
	return nil
}

// Len returns the number of stored entries, stale ones included.
func (c *TTLCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// TTL returns the freshness window.
func (c *TTLCache) TTL() time.Duration {
	return c.ttl
}

// Close drops every entry.
func (c *TTLCache) Close() error {
	c.mu.Lock()
	c.items = make(map[string]entry)
	c.mu.Unlock()
	return nil
}

var _ domain.Cache = (*TTLCache)(nil)
