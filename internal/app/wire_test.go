package app

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MayankSewatkar/vantagepoint/internal/config"
	"github.com/MayankSewatkar/vantagepoint/internal/server"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestWireDefaults(t *testing.T) {
	cfg := config.Defaults()

	deps, cleanup, err := Wire(context.Background(), &cfg, testLogger())
	require.NoError(t, err)
	defer cleanup()

	assert.Equal(t, backendMemory, deps.CacheBackend)
	assert.Equal(t, backendSeed, deps.StoreBackend)
	assert.Equal(t, sourceSynthetic, deps.TradeSource)
	assert.Nil(t, deps.Trades)
	assert.Nil(t, deps.Metadata)
	assert.Nil(t, deps.Pinner)
	assert.Nil(t, deps.Chain)
	assert.Nil(t, deps.Subgraph)
}

func TestWireRedisCache(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := config.Defaults()
	cfg.Cache.Backend = "redis"
	cfg.Cache.RedisURL = "redis://" + mr.Addr()

	deps, cleanup, err := Wire(context.Background(), &cfg, testLogger())
	require.NoError(t, err)
	defer cleanup()

	assert.Equal(t, backendRedis, deps.CacheBackend)
	require.NoError(t, deps.Cache.Set(context.Background(), "k", []byte(`1`)))
	assert.True(t, mr.Exists(cfg.Cache.KeyPrefix+"k"))
}

func TestWireRedisUnreachable(t *testing.T) {
	cfg := config.Defaults()
	cfg.Cache.Backend = "redis"
	cfg.Cache.RedisURL = "redis://127.0.0.1:1"

	_, _, err := Wire(context.Background(), &cfg, testLogger())
	assert.Error(t, err)
}

func TestWireSubgraphTradeSource(t *testing.T) {
	cfg := config.Defaults()
	cfg.Subgraph.Enabled = true

	deps, cleanup, err := Wire(context.Background(), &cfg, testLogger())
	require.NoError(t, err)
	defer cleanup()

	assert.Equal(t, sourceSubgraph, deps.TradeSource)
	assert.NotNil(t, deps.Trades)
}

func TestBuildHandlersServesStatus(t *testing.T) {
	cfg := config.Defaults()
	a := New(&cfg, testLogger())

	deps, cleanup, err := Wire(context.Background(), &cfg, testLogger())
	require.NoError(t, err)
	defer cleanup()

	handlers, _ := a.buildHandlers(deps)
	srv := httptest.NewServer(server.NewHandler(server.Config{}, handlers, nil, testLogger()))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/status")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, Version, body["version"])
	assert.Equal(t, "memory", body["cache_backend"])
	assert.Equal(t, "seed", body["store_backend"])
	assert.Equal(t, "synthetic", body["trade_source"])
	assert.Equal(t, map[string]any{"enabled": false}, body["subgraph"])
}
