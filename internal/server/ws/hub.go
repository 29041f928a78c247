// Package ws streams activity feed snapshots to websocket clients.
package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/MayankSewatkar/vantagepoint/internal/domain"
)

const (
	// writeWait is the maximum time to wait for a write to complete.
	writeWait = 10 * time.Second

	// pongWait is the maximum time to wait for a pong from the client.
	pongWait = 60 * time.Second

	// pingPeriod sends pings at this interval. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// maxMessageSize is the maximum size of an incoming message.
	maxMessageSize = 4096

	// sendBufferSize is the channel buffer for outgoing messages per client.
	sendBufferSize = 16

	// DefaultInterval is the snapshot period when none is configured.
	DefaultInterval = 5 * time.Second

	// DefaultLimit is the number of feed entries per snapshot.
	DefaultLimit = 20
)

// upgrader configures the WebSocket upgrade parameters.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// CORS allows every origin, so the socket does too.
		return true
	},
}

// FeedSource produces the activity feed.
type FeedSource interface {
	Activity(ctx context.Context, limit int) ([]domain.Activity, error)
}

// Snapshot is one message pushed to clients.
type Snapshot struct {
	Type  string            `json:"type"`
	Items []domain.Activity `json:"items"`
}

// Config tunes the hub.
type Config struct {
	Interval time.Duration
	Limit    int
}

// client represents a single WebSocket connection.
type client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

// Hub fans feed snapshots out to every connected client on a fixed tick.
type Hub struct {
	feed     FeedSource
	interval time.Duration
	limit    int
	logger   *slog.Logger

	mu      sync.Mutex
	clients map[*client]struct{}
	closed  bool
}

// NewHub creates a Hub reading from feed.
func NewHub(feed FeedSource, logger *slog.Logger, cfg Config) *Hub {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.Limit <= 0 {
		cfg.Limit = DefaultLimit
	}
	return &Hub{
		feed:     feed,
		interval: cfg.Interval,
		limit:    cfg.Limit,
		logger:   logger,
		clients:  make(map[*client]struct{}),
	}
}

// Run broadcasts a snapshot every interval until ctx is cancelled, then
// disconnects every client.
func (h *Hub) Run(ctx context.Context) error {
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			h.closed = true
			for c := range h.clients {
				close(c.send)
				delete(h.clients, c)
			}
			h.mu.Unlock()
			return ctx.Err()

		case <-ticker.C:
			if h.clientCount() == 0 {
				continue
			}
			msg, err := h.snapshot(ctx)
			if err != nil {
				h.logger.WarnContext(ctx, "ws: snapshot failed", slog.String("error", err.Error()))
				continue
			}
			h.broadcast(msg)
		}
	}
}

// snapshot encodes the current feed.
func (h *Hub) snapshot(ctx context.Context) ([]byte, error) {
	items, err := h.feed.Activity(ctx, h.limit)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Snapshot{Type: "activity", Items: items})
}

func (h *Hub) broadcast(msg []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
			// Client's send buffer is full; drop the message.
			h.logger.Warn("ws: dropping message for slow client")
		}
	}
}

func (h *Hub) add(c *client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.clients[c] = struct{}{}
	return true
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
}

// clientCount returns the number of currently connected clients.
func (h *Hub) clientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// HandleWS upgrades an HTTP request to a WebSocket connection, sends the
// current snapshot and registers the client for periodic updates.
// GET /feed/activity/ws
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("ws: upgrade failed", slog.String("error", err.Error()))
		return
	}

	c := &client{
		hub:  h,
		conn: conn,
		send: make(chan []byte, sendBufferSize),
	}
	if msg, err := h.snapshot(r.Context()); err == nil {
		c.send <- msg
	} else {
		h.logger.WarnContext(r.Context(), "ws: initial snapshot failed", slog.String("error", err.Error()))
	}

	if !h.add(c) {
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"),
			time.Now().Add(writeWait))
		conn.Close()
		return
	}
	h.logger.Info("ws: client connected", slog.Int("total_clients", h.clientCount()))

	go c.writePump()
	go c.readPump()
}

// readPump drains the connection so control frames are processed. Client
// messages are ignored.
func (c *client) readPump() {
	defer func() {
		c.hub.remove(c)
		c.conn.Close()
		c.hub.logger.Info("ws: client disconnected", slog.Int("total_clients", c.hub.clientCount()))
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.logger.Warn("ws: unexpected close error",
					slog.String("error", err.Error()),
				)
			}
			return
		}
	}
}

// writePump pumps snapshots to the connection as text frames and keeps the
// connection alive with pings.
func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
