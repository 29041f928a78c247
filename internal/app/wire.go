package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	s3blob "github.com/MayankSewatkar/vantagepoint/internal/blob/s3"
	"github.com/MayankSewatkar/vantagepoint/internal/cache/memory"
	"github.com/MayankSewatkar/vantagepoint/internal/cache/redis"
	"github.com/MayankSewatkar/vantagepoint/internal/config"
	"github.com/MayankSewatkar/vantagepoint/internal/domain"
	"github.com/MayankSewatkar/vantagepoint/internal/platform/chain"
	"github.com/MayankSewatkar/vantagepoint/internal/platform/subgraph"
	"github.com/MayankSewatkar/vantagepoint/internal/store/postgres"
	"github.com/MayankSewatkar/vantagepoint/internal/store/seed"
)

// Backend names reported by GET /status.
const (
	backendMemory   = "memory"
	backendRedis    = "redis"
	backendSeed     = "seed"
	backendPostgres = "postgres"
	sourceSynthetic = "synthetic"
	sourceSubgraph  = "subgraph"
)

// Dependencies bundles every domain-level dependency the API needs. It is
// constructed by Wire and torn down by the returned cleanup function.
type Dependencies struct {
	// Cache
	Cache        domain.Cache
	CacheBackend string

	// Stores
	Markets      domain.MarketRepository
	Leaderboard  domain.LeaderboardRepository
	Metadata     domain.MetadataStore // nil unless postgres
	StoreBackend string

	// Pinning
	Pinner domain.Pinner // nil unless ipfs.pin_enabled

	// Trades
	Trades      domain.TradeSource // nil means synthetic
	TradeSource string

	// Upstream probes
	Chain    *chain.Client    // nil unless chain.enabled
	Subgraph *subgraph.Client // nil unless subgraph.enabled
}

// Wire constructs all concrete dependency implementations from the given
// configuration and returns them together with a cleanup function that should
// be called on shutdown to release resources.
func Wire(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Dependencies, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}
	fail := func(err error) (*Dependencies, func(), error) {
		cleanup()
		return nil, nil, err
	}

	deps := &Dependencies{
		Leaderboard:  seed.NewLeaderboardStore(nil),
		TradeSource:  sourceSynthetic,
		StoreBackend: backendSeed,
	}

	// --- Cache ---
	switch strings.ToLower(cfg.Cache.Backend) {
	case backendRedis:
		redisClient, err := redis.New(ctx, redis.ClientConfig{
			URL:      cfg.Cache.RedisURL,
			Password: cfg.Cache.RedisPassword,
			PoolSize: cfg.Cache.RedisPoolSize,
		})
		if err != nil {
			return fail(fmt.Errorf("wire: redis: %w", err))
		}
		closers = append(closers, func() { _ = redisClient.Close() })
		deps.Cache = redis.NewTTLCache(redisClient, cfg.Cache.TTL(), cfg.Cache.KeyPrefix, logger)
		deps.CacheBackend = backendRedis
	default:
		mem := memory.New(cfg.Cache.TTL())
		closers = append(closers, func() { _ = mem.Close() })
		deps.Cache = mem
		deps.CacheBackend = backendMemory
	}

	// --- Stores ---
	if strings.EqualFold(cfg.Store.Backend, backendPostgres) {
		pg := cfg.Store.Postgres
		pgClient, err := postgres.New(ctx, postgres.ClientConfig{
			DSN:      pg.DSN,
			Host:     pg.Host,
			Port:     pg.Port,
			Database: pg.Database,
			User:     pg.User,
			Password: pg.Password,
			SSLMode:  pg.SSLMode,
			MaxConns: pg.PoolMaxConns,
			MinConns: pg.PoolMinConns,
		})
		if err != nil {
			return fail(fmt.Errorf("wire: postgres: %w", err))
		}
		closers = append(closers, pgClient.Close)

		// Run migrations if enabled.
		if pg.RunMigrations {
			if err := pgClient.RunMigrations(ctx); err != nil {
				return fail(fmt.Errorf("wire: postgres migrations: %w", err))
			}
		}

		markets := postgres.NewMarketStore(pgClient.Pool())
		if pg.SeedOnStart {
			if err := seedMarkets(ctx, markets, logger); err != nil {
				return fail(fmt.Errorf("wire: seed markets: %w", err))
			}
		}
		deps.Markets = markets
		deps.Metadata = postgres.NewMetadataStore(pgClient.Pool())
		deps.StoreBackend = backendPostgres
	} else {
		deps.Markets = seed.NewMarketStore(nil)
	}

	// --- IPFS pinning ---
	if cfg.IPFS.PinEnabled {
		s3Client, err := s3blob.New(ctx, s3blob.ClientConfig{
			Endpoint:       cfg.IPFS.Endpoint,
			Region:         cfg.IPFS.Region,
			Bucket:         cfg.IPFS.Bucket,
			AccessKey:      cfg.IPFS.AccessKey,
			SecretKey:      cfg.IPFS.SecretKey,
			UseSSL:         cfg.IPFS.UseSSL,
			ForcePathStyle: cfg.IPFS.ForcePathStyle,
		})
		if err != nil {
			return fail(fmt.Errorf("wire: ipfs pinner: %w", err))
		}
		closers = append(closers, func() { _ = s3Client.Close() })
		if err := s3Client.Health(ctx); err != nil {
			logger.WarnContext(ctx, "wire: pinning bucket not reachable, uploads will be retried per request",
				slog.String("bucket", cfg.IPFS.Bucket),
				slog.String("error", err.Error()),
			)
		}
		deps.Pinner = s3blob.NewPinner(s3Client, cfg.IPFS.PinPrefix)
	}

	// --- Subgraph ---
	if cfg.Subgraph.Enabled {
		deps.Subgraph = subgraph.NewClient(cfg.Subgraph.URL, cfg.Subgraph.APIKey)
		deps.Trades = deps.Subgraph
		deps.TradeSource = sourceSubgraph
	}

	// --- Chain ---
	if cfg.Chain.Enabled {
		chainClient, err := chain.Dial(ctx, cfg.Chain.RPCURL, cfg.Chain.ContractAddress)
		if err != nil {
			return fail(fmt.Errorf("wire: chain: %w", err))
		}
		closers = append(closers, chainClient.Close)
		deps.Chain = chainClient
	}

	return deps, cleanup, nil
}

// seedMarkets loads the built-in markets into an empty market table.
func seedMarkets(ctx context.Context, store *postgres.MarketStore, logger *slog.Logger) error {
	n, err := store.Count(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	markets := seed.Markets()
	if err := store.UpsertBatch(ctx, markets); err != nil {
		return err
	}
	logger.InfoContext(ctx, "wire: seeded market table", slog.Int("markets", len(markets)))
	return nil
}
