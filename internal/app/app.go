// Package app provides the top-level application lifecycle management for the
// vantagepoint API. It wires together all dependencies (caches, stores,
// pinning, upstream clients and services) and runs the HTTP server and the
// activity ticker until the context is cancelled.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/MayankSewatkar/vantagepoint/internal/config"
	"github.com/MayankSewatkar/vantagepoint/internal/server"
	"github.com/MayankSewatkar/vantagepoint/internal/server/handler"
	"github.com/MayankSewatkar/vantagepoint/internal/server/ws"
	"github.com/MayankSewatkar/vantagepoint/internal/service"
)

// Version is reported by /health and /status.
const Version = "1.0.0"

// shutdownTimeout bounds graceful HTTP shutdown.
const shutdownTimeout = 5 * time.Second

// App is the root application object. It owns the configuration, logger, and a
// list of cleanup functions that are called in reverse order on shutdown.
type App struct {
	cfg     *config.Config
	logger  *slog.Logger
	closers []func()
}

// New creates a new App from the given configuration and logger.
func New(cfg *config.Config, logger *slog.Logger) *App {
	return &App{
		cfg:    cfg,
		logger: logger.With(slog.String("component", "app")),
	}
}

// Run is the main entry point. It wires all dependencies, starts the HTTP
// server and the websocket ticker, and blocks until the context is cancelled
// or one of them fails.
func (a *App) Run(ctx context.Context) error {
	a.logger.InfoContext(ctx, "starting up",
		slog.String("version", Version),
		slog.String("log_level", a.cfg.LogLevel),
		slog.Any("config", config.RedactedConfig(a.cfg)),
	)

	deps, cleanup, err := Wire(ctx, a.cfg, a.logger)
	if err != nil {
		return fmt.Errorf("app: wire dependencies: %w", err)
	}
	a.closers = append(a.closers, cleanup)

	a.logger.InfoContext(ctx, "backends selected",
		slog.String("cache", deps.CacheBackend),
		slog.String("store", deps.StoreBackend),
		slog.String("trades", deps.TradeSource),
		slog.Bool("pinning", deps.Pinner != nil),
		slog.Bool("chain", deps.Chain != nil),
	)

	g, ctx := errgroup.WithContext(ctx)

	handlers, feed := a.buildHandlers(deps)

	var hub *ws.Hub
	if a.cfg.Feed.WSEnabled {
		hub = ws.NewHub(feed, a.logger.With(slog.String("component", "ws")), ws.Config{
			Interval: a.cfg.Feed.Interval.Duration,
			Limit:    a.cfg.Feed.Limit,
		})
		g.Go(func() error {
			if err := hub.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}

	srv := server.NewServer(server.Config{
		Port:        a.cfg.Server.Port,
		CORSOrigins: a.cfg.Server.CORSOrigins,
	}, handlers, hub, a.logger.With(slog.String("component", "http")))

	g.Go(srv.Start)

	g.Go(func() error {
		<-ctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

// buildHandlers constructs the services and their HTTP handlers.
func (a *App) buildHandlers(deps *Dependencies) (server.Handlers, *service.FeedService) {
	logger := a.logger.With(slog.String("component", "handler"))

	marketSvc := service.NewMarketService(deps.Markets, deps.Cache, logger)
	tradeSvc := service.NewTradeService(deps.Trades, time.Now, logger)

	var metaOpts []service.MetadataOption
	if deps.Metadata != nil {
		metaOpts = append(metaOpts, service.WithMetadataStore(deps.Metadata))
	}
	if deps.Pinner != nil {
		metaOpts = append(metaOpts, service.WithPinner(deps.Pinner))
	}
	metadataSvc := service.NewMetadataService(deps.Cache, a.cfg.IPFS.Gateway, logger, metaOpts...)

	userSvc := service.NewUserService(deps.Leaderboard)
	feedSvc := service.NewFeedService(deps.Markets, time.Now)

	// Typed nil pointers must not reach the status probes as non-nil
	// interfaces.
	var chainProbe handler.ChainProbe
	if deps.Chain != nil {
		chainProbe = deps.Chain
	}
	var subgraphProbe handler.SubgraphProbe
	if deps.Subgraph != nil {
		subgraphProbe = deps.Subgraph
	}

	return server.Handlers{
		Health:   handler.NewHealthHandler(Version, logger),
		Markets:  handler.NewMarketHandler(marketSvc, logger),
		Trades:   handler.NewTradeHandler(tradeSvc, logger),
		Metadata: handler.NewMetadataHandler(metadataSvc, logger),
		Users:    handler.NewUserHandler(userSvc, logger),
		Feed:     handler.NewFeedHandler(feedSvc, logger),
		Status: handler.NewStatusHandler(handler.StatusInfo{
			Version:      Version,
			CacheBackend: deps.CacheBackend,
			StoreBackend: deps.StoreBackend,
			TradeSource:  deps.TradeSource,
		}, chainProbe, subgraphProbe, logger),
	}, feedSvc
}

// Close tears down all resources in reverse registration order. It is safe to
// call multiple times; subsequent calls are no-ops.
func (a *App) Close() {
	a.logger.Info("shutting down")
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
