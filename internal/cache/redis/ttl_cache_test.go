package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MayankSewatkar/vantagepoint/internal/domain"
)

func newTestCache(t *testing.T, ttl time.Duration) (*TTLCache, *miniredis.Miniredis, *Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	c, err := New(context.Background(), ClientConfig{URL: "redis://" + mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return NewTTLCache(c, ttl, "vp:", nil), mr, c
}

func TestTTLCacheRoundTrip(t *testing.T) {
	tc, mr, _ := newTestCache(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, tc.Set(ctx, "market:1", []byte(`{"market_id":1}`)))
	assert.True(t, mr.Exists("vp:market:1"))

	v, ok := tc.Get(ctx, "market:1")
	require.True(t, ok)
	assert.JSONEq(t, `{"market_id":1}`, string(v))
}

func TestTTLCacheExpires(t *testing.T) {
	tc, mr, _ := newTestCache(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, tc.Set(ctx, "hot:5", []byte("[]")))
	mr.FastForward(61 * time.Second)

	_, ok := tc.Get(ctx, "hot:5")
	assert.False(t, ok)
}

func TestTTLCacheMissOnUnknownKey(t *testing.T) {
	tc, _, _ := newTestCache(t, time.Minute)
	_, ok := tc.Get(context.Background(), "nope")
	assert.False(t, ok)
}

func TestTTLCacheSetFailsWhenClosed(t *testing.T) {
	tc, _, c := newTestCache(t, time.Minute)
	require.NoError(t, c.Close())

	err := tc.Set(context.Background(), "k", []byte("v"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnavailable))

	_, ok := tc.Get(context.Background(), "k")
	assert.False(t, ok)
}

func TestOptionsOverrideURL(t *testing.T) {
	opts, err := Options(ClientConfig{URL: "redis://localhost:6379/2", PoolSize: 7, Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, "localhost:6379", opts.Addr)
	assert.Equal(t, 2, opts.DB)
	assert.Equal(t, 7, opts.PoolSize)
	assert.Equal(t, "pw", opts.Password)

	_, err = Options(ClientConfig{URL: "not a url"})
	assert.Error(t, err)
}
