package server_test

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MayankSewatkar/vantagepoint/internal/cache/memory"
	"github.com/MayankSewatkar/vantagepoint/internal/domain"
	"github.com/MayankSewatkar/vantagepoint/internal/server"
	"github.com/MayankSewatkar/vantagepoint/internal/server/handler"
	"github.com/MayankSewatkar/vantagepoint/internal/service"
	"github.com/MayankSewatkar/vantagepoint/internal/store/seed"
)

func newTestAPI(t *testing.T) *httptest.Server {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cache := memory.New(memory.DefaultTTL)
	markets := seed.NewMarketStore(nil)

	handlers := server.Handlers{
		Health:   handler.NewHealthHandler("1.0.0", logger),
		Markets:  handler.NewMarketHandler(service.NewMarketService(markets, cache, logger), logger),
		Trades:   handler.NewTradeHandler(service.NewTradeService(nil, nil, logger), logger),
		Metadata: handler.NewMetadataHandler(service.NewMetadataService(cache, "", logger), logger),
		Users:    handler.NewUserHandler(service.NewUserService(seed.NewLeaderboardStore(nil)), logger),
		Feed:     handler.NewFeedHandler(service.NewFeedService(markets, nil), logger),
		Status: handler.NewStatusHandler(handler.StatusInfo{
			Version: "1.0.0", CacheBackend: "memory", StoreBackend: "seed", TradeSource: "synthetic",
		}, nil, nil, logger),
	}

	srv := httptest.NewServer(server.NewHandler(server.Config{CORSOrigins: []string{"*"}}, handlers, nil, logger))
	t.Cleanup(srv.Close)
	return srv
}

func getJSON(t *testing.T, url string, dst any) int {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	if dst != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(dst))
	}
	return resp.StatusCode
}

type detail struct {
	Detail string `json:"detail"`
}

func TestHealth(t *testing.T) {
	srv := newTestAPI(t)

	var body struct {
		Status    string  `json:"status"`
		Timestamp float64 `json:"timestamp"`
		Version   string  `json:"version"`
	}
	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/health", &body))
	assert.Equal(t, "ok", body.Status)
	assert.Equal(t, "1.0.0", body.Version)
	assert.InDelta(t, float64(time.Now().Unix()), body.Timestamp, 60)
}

func TestListMarketsCryptoFilter(t *testing.T) {
	srv := newTestAPI(t)

	var page domain.MarketPage
	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/markets?category=crypto&sort_by=num_traders", &page))
	require.Len(t, page.Markets, 1)
	assert.Equal(t, 5832, page.Markets[0].NumTraders)
	assert.Equal(t, 1, page.TotalCount)
}

func TestListMarketsValidation(t *testing.T) {
	srv := newTestAPI(t)

	for _, q := range []string{"page=0", "page_size=0", "page_size=101", "page=abc"} {
		var body detail
		assert.Equal(t, http.StatusUnprocessableEntity, getJSON(t, srv.URL+"/markets?"+q, &body), q)
		assert.NotEmpty(t, body.Detail, q)
	}
}

func TestListMarketsPastLastPage(t *testing.T) {
	srv := newTestAPI(t)

	var raw map[string]json.RawMessage
	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/markets?page=3&page_size=2", &raw))
	assert.JSONEq(t, `[]`, string(raw["markets"]))
	assert.JSONEq(t, `4`, string(raw["total_count"]))

	// 2^58+1: the page offset wraps to zero in int arithmetic.
	raw = nil
	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/markets?page=288230376151711745&page_size=64", &raw))
	assert.JSONEq(t, `[]`, string(raw["markets"]))
	assert.JSONEq(t, `4`, string(raw["total_count"]))
}

func TestMarketJSONIsFlat(t *testing.T) {
	srv := newTestAPI(t)

	var raw map[string]any
	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/markets/1", &raw))
	assert.Equal(t, 6840.0, raw["yes_price_bps"])
	assert.Equal(t, "POLITICS", raw["category"])
	assert.Contains(t, raw, "source_url")
	assert.NotContains(t, raw, "MarketStats")
}

func TestGetMarketErrors(t *testing.T) {
	srv := newTestAPI(t)

	var body detail
	require.Equal(t, http.StatusNotFound, getJSON(t, srv.URL+"/markets/999", &body))
	assert.Equal(t, "Market 999 not found", body.Detail)

	assert.Equal(t, http.StatusUnprocessableEntity, getJSON(t, srv.URL+"/markets/abc", nil))
}

func TestHotMarkets(t *testing.T) {
	srv := newTestAPI(t)

	var hot []domain.Market
	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/markets/hot", &hot))
	ids := make([]int64, len(hot))
	for i, m := range hot {
		ids[i] = m.MarketID
	}
	assert.Equal(t, []int64{2, 1, 3, 4}, ids)

	assert.Equal(t, http.StatusUnprocessableEntity, getJSON(t, srv.URL+"/markets/hot?limit=21", nil))
}

func TestTrades(t *testing.T) {
	srv := newTestAPI(t)

	var trades []domain.Trade
	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/markets/1/trades?limit=500&before_ts=1.5", &trades))
	assert.Len(t, trades, 20)

	assert.Equal(t, http.StatusUnprocessableEntity, getJSON(t, srv.URL+"/markets/1/trades?before_ts=yesterday", nil))
	assert.Equal(t, http.StatusUnprocessableEntity, getJSON(t, srv.URL+"/markets/1/trades?limit=501", nil))
}

func TestPriceHistory(t *testing.T) {
	srv := newTestAPI(t)

	var ph domain.PriceHistory
	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/markets/4/price-history?interval=15m&limit=10", &ph))
	assert.Equal(t, "15m", ph.Interval)
	require.Len(t, ph.Candles, 10)
	assert.Equal(t, int64(900), ph.Candles[1].Time-ph.Candles[0].Time)

	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/markets/4/price-history", &ph))
	assert.Equal(t, "1h", ph.Interval)
	assert.Len(t, ph.Candles, 200)
}

func TestCreateMarketAndReadBack(t *testing.T) {
	srv := newTestAPI(t)

	body := `{"question":"Q?","description":"D","category":"CRYPTO","resolution_rules":"R","image_url":"https://x/y.png","image_ipfs_hash":"QmZ"}`
	resp, err := http.Post(srv.URL+"/markets", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created domain.CreateMarketResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	assert.True(t, strings.HasPrefix(created.MetadataID, "vp-"))
	assert.Equal(t, "ipfs://"+created.MetadataID, created.IPFSURI)

	var meta domain.PendingMetadata
	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/metadata/"+created.MetadataID, &meta))
	assert.Equal(t, "https://x/y.png", meta.ImageURL)
	assert.Equal(t, []string{}, meta.Tags)

	assert.Equal(t, http.StatusNotFound, getJSON(t, srv.URL+"/metadata/vp-0", nil))
}

func TestCreateMarketValidation(t *testing.T) {
	srv := newTestAPI(t)

	for _, body := range []string{
		`{"question":"Q?","description":"D","category":"CRYPTO"}`,
		`{"question":`,
		`{"question":"Q?","description":"D","category":"CRYPTO","resolution_rules":"R","tags":"nope"}`,
	} {
		resp, err := http.Post(srv.URL+"/markets", "application/json", strings.NewReader(body))
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode, body)
	}
}

func TestLeaderboardAndUsers(t *testing.T) {
	srv := newTestAPI(t)

	var entries []map[string]any
	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/leaderboard?metric=roi_pct&limit=2", &entries))
	require.Len(t, entries, 2)
	assert.Equal(t, 1.0, entries[0]["rank"])
	assert.Nil(t, entries[0]["avatar_url"])
	assert.Equal(t, http.StatusUnprocessableEntity, getJSON(t, srv.URL+"/leaderboard?limit=201", nil))

	var profile domain.UserProfile
	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/users/0xabc/profile", &profile))
	assert.Equal(t, "0xabc", profile.Address)
	assert.Equal(t, int64(1_700_000_000), profile.JoinedAt)

	var positions domain.UserPositions
	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/users/0xabc/positions", &positions))
	assert.Equal(t, "open", positions.Status)
	require.Len(t, positions.Positions, 1)
}

func TestActivityFeed(t *testing.T) {
	srv := newTestAPI(t)

	var feed []domain.Activity
	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/feed/activity", &feed))
	assert.Len(t, feed, 12)
	assert.True(t, strings.HasSuffix(feed[0].Question, "…"))

	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/feed/activity?limit=3", &feed))
	assert.Len(t, feed, 3)
	assert.Equal(t, http.StatusUnprocessableEntity, getJSON(t, srv.URL+"/feed/activity?limit=0", nil))
}

func TestSearchAndCategories(t *testing.T) {
	srv := newTestAPI(t)

	var res domain.SearchResult
	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/search?q=btc", &res))
	assert.Equal(t, 1, res.Count)
	assert.Equal(t, "btc", res.Query)

	assert.Equal(t, http.StatusUnprocessableEntity, getJSON(t, srv.URL+"/search?q=b", nil))
	assert.Equal(t, http.StatusUnprocessableEntity, getJSON(t, srv.URL+"/search", nil))

	var cats []domain.CategorySummary
	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/categories", &cats))
	assert.Len(t, cats, 4)
}

func TestResolutionStatusAndStatus(t *testing.T) {
	srv := newTestAPI(t)

	var raw map[string]any
	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/markets/2/resolution-status", &raw))
	assert.Equal(t, "PENDING", raw["oracle_status"])
	assert.Nil(t, raw["dispute_end_time"])
	assert.Equal(t, 500.0, raw["truth_bond_amount"])

	var status map[string]any
	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/status", &status))
	assert.Equal(t, "memory", status["cache_backend"])
	assert.Equal(t, map[string]any{"enabled": false}, status["chain"])
}

func TestCORSCredentialedOrigin(t *testing.T) {
	srv := newTestAPI(t)

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/health", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "https://app.example")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, "https://app.example", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", resp.Header.Get("Access-Control-Allow-Credentials"))
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
}
