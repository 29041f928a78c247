package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/MayankSewatkar/vantagepoint/internal/server/handler"
	"github.com/MayankSewatkar/vantagepoint/internal/server/middleware"
	"github.com/MayankSewatkar/vantagepoint/internal/server/ws"
)

// Config holds the HTTP server configuration.
type Config struct {
	Port        int
	CORSOrigins []string
}

// Handlers aggregates all HTTP handlers that the server needs to register.
type Handlers struct {
	Health   *handler.HealthHandler
	Markets  *handler.MarketHandler
	Trades   *handler.TradeHandler
	Metadata *handler.MetadataHandler
	Users    *handler.UserHandler
	Feed     *handler.FeedHandler
	Status   *handler.StatusHandler
}

// Server is the HTTP + WebSocket API server for the market API.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// NewServer creates a new Server with all routes registered on the ServeMux.
// It wires up middleware (recovery, logging, CORS) and attaches the
// WebSocket hub when one is given.
func NewServer(cfg Config, handlers Handlers, wsHub *ws.Hub, logger *slog.Logger) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.Port),
			Handler:      NewHandler(cfg, handlers, wsHub, logger),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		logger: logger,
	}
}

// NewHandler builds the routed, middleware-wrapped http.Handler.
func NewHandler(cfg Config, handlers Handlers, wsHub *ws.Hub, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", handlers.Health.HealthCheck)
	mux.HandleFunc("GET /status", handlers.Status.GetStatus)

	// Markets.
	mux.HandleFunc("GET /markets", handlers.Markets.ListMarkets)
	mux.HandleFunc("GET /markets/hot", handlers.Markets.HotMarkets)
	mux.HandleFunc("GET /markets/{id}", handlers.Markets.GetMarket)
	mux.HandleFunc("GET /markets/{id}/trades", handlers.Trades.ListTrades)
	mux.HandleFunc("GET /markets/{id}/price-history", handlers.Trades.PriceHistory)
	mux.HandleFunc("GET /markets/{id}/resolution-status", handlers.Markets.ResolutionStatus)
	mux.HandleFunc("POST /markets", handlers.Metadata.CreateMarket)
	mux.HandleFunc("GET /metadata/{metadata_id}", handlers.Metadata.GetPending)
	mux.HandleFunc("GET /search", handlers.Markets.Search)
	mux.HandleFunc("GET /categories", handlers.Markets.Categories)

	// Users.
	mux.HandleFunc("GET /leaderboard", handlers.Users.Leaderboard)
	mux.HandleFunc("GET /users/{address}/profile", handlers.Users.Profile)
	mux.HandleFunc("GET /users/{address}/positions", handlers.Users.Positions)

	// Feed.
	mux.HandleFunc("GET /feed/activity", handlers.Feed.Activity)
	if wsHub != nil {
		mux.HandleFunc("GET /feed/activity/ws", wsHub.HandleWS)
	}

	var h http.Handler = mux
	h = middleware.Recovery(logger)(h)
	h = middleware.Logging(logger)(h)
	h = middleware.CORS(cfg.CORSOrigins)(h)
	return h
}

// Start begins listening for HTTP requests. It blocks until the server
// encounters an error or is shut down.
func (s *Server) Start() error {
	s.logger.Info("server: starting",
		slog.String("addr", s.httpServer.Addr),
	)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server: listen: %w", err)
	}
	return nil
}

// Serve accepts connections on l until the server is shut down.
func (s *Server) Serve(l net.Listener) error {
	s.logger.Info("server: starting", slog.String("addr", l.Addr().String()))
	if err := s.httpServer.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server: serve: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server, waiting for in-flight requests
// to complete within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("server: shutting down")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	return nil
}
