package ws

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MayankSewatkar/vantagepoint/internal/domain"
)

type stubFeed struct {
	calls atomic.Int32
	err   error
}

func (f *stubFeed) Activity(_ context.Context, limit int) ([]domain.Activity, error) {
	n := f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	items := make([]domain.Activity, min(limit, 2))
	for i := range items {
		items[i] = domain.Activity{Type: "WHALE_TRADE", MarketID: int64(n)}
	}
	return items, nil
}

func dial(t *testing.T, h *Hub) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(h.HandleWS))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readSnapshot(t *testing.T, conn *websocket.Conn) Snapshot {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var snap Snapshot
	require.NoError(t, json.Unmarshal(data, &snap))
	return snap
}

func TestHubSendsInitialAndPeriodicSnapshots(t *testing.T) {
	feed := &stubFeed{}
	h := NewHub(feed, slog.New(slog.NewTextHandler(io.Discard, nil)), Config{Interval: 20 * time.Millisecond, Limit: 5})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- h.Run(ctx) }()

	conn := dial(t, h)

	first := readSnapshot(t, conn)
	assert.Equal(t, "activity", first.Type)
	require.Len(t, first.Items, 2)

	next := readSnapshot(t, conn)
	assert.Greater(t, next.Items[0].MarketID, first.Items[0].MarketID)

	cancel()
	require.ErrorIs(t, <-done, context.Canceled)
}

func TestHubSkipsFailedSnapshots(t *testing.T) {
	feed := &stubFeed{err: errors.New("feed down")}
	h := NewHub(feed, slog.New(slog.NewTextHandler(io.Discard, nil)), Config{Interval: 10 * time.Millisecond})

	ctx, cancel := context.WithCancel(context.Background())
	go h.Run(ctx)
	defer cancel()

	conn := dial(t, h)
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(100*time.Millisecond)))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err)
	assert.Equal(t, 1, h.clientCount())
}

func TestNewHubDefaults(t *testing.T) {
	h := NewHub(&stubFeed{}, slog.New(slog.NewTextHandler(io.Discard, nil)), Config{})
	assert.Equal(t, DefaultInterval, h.interval)
	assert.Equal(t, DefaultLimit, h.limit)
}
