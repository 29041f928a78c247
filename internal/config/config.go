// Package config defines the top-level configuration for the vantagepoint
// API and provides validation helpers.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// Config is the root configuration structure. Fields are populated from an
// optional TOML file and then overridden by environment variables.
type Config struct {
	Chain    ChainConfig    `toml:"chain"`
	Subgraph SubgraphConfig `toml:"subgraph"`
	IPFS     IPFSConfig     `toml:"ipfs"`
	Cache    CacheConfig    `toml:"cache"`
	Store    StoreConfig    `toml:"store"`
	Server   ServerConfig   `toml:"server"`
	Feed     FeedConfig     `toml:"feed"`
	LogLevel string         `toml:"log_level"`
	LogFile  LogFileConfig  `toml:"log_file"`
}

// ChainConfig points at the market contract's chain.
type ChainConfig struct {
	Enabled         bool   `toml:"enabled"`
	RPCURL          string `toml:"rpc_url"`
	ContractAddress string `toml:"contract_address"`
}

// SubgraphConfig selects the indexed trade source.
type SubgraphConfig struct {
	Enabled bool   `toml:"enabled"`
	URL     string `toml:"url"`
	APIKey  string `toml:"api_key"`
}

// IPFSConfig holds the gateway used for image URLs and the optional
// S3-compatible pinning bucket for pending metadata.
type IPFSConfig struct {
	Gateway        string `toml:"gateway"`
	PinEnabled     bool   `toml:"pin_enabled"`
	PinPrefix      string `toml:"pin_prefix"`
	Endpoint       string `toml:"endpoint"`
	Region         string `toml:"region"`
	Bucket         string `toml:"bucket"`
	AccessKey      string `toml:"access_key"`
	SecretKey      string `toml:"secret_key"`
	UseSSL         bool   `toml:"use_ssl"`
	ForcePathStyle bool   `toml:"force_path_style"`
}

// CacheConfig selects the TTL cache backend.
type CacheConfig struct {
	// Backend is "memory" or "redis".
	Backend       string `toml:"backend"`
	TTLSeconds    int    `toml:"ttl_seconds"`
	RedisURL      string `toml:"redis_url"`
	RedisPassword string `toml:"redis_password"`
	RedisPoolSize int    `toml:"redis_pool_size"`
	KeyPrefix     string `toml:"key_prefix"`
}

// TTL returns the cache TTL as a duration.
func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLSeconds) * time.Second
}

// StoreConfig selects where markets and pending metadata live.
type StoreConfig struct {
	// Backend is "seed" or "postgres".
	Backend  string         `toml:"backend"`
	Postgres PostgresConfig `toml:"postgres"`
}

// PostgresConfig holds PostgreSQL connection parameters.
type PostgresConfig struct {
	DSN           string `toml:"dsn"`
	Host          string `toml:"host"`
	Port          int    `toml:"port"`
	Database      string `toml:"database"`
	User          string `toml:"user"`
	Password      string `toml:"password"`
	SSLMode       string `toml:"ssl_mode"`
	PoolMaxConns  int    `toml:"pool_max_conns"`
	PoolMinConns  int    `toml:"pool_min_conns"`
	RunMigrations bool   `toml:"run_migrations"`
	// SeedOnStart upserts the built-in markets when the table is empty.
	SeedOnStart bool `toml:"seed_on_start"`
}

// ServerConfig holds HTTP server parameters.
type ServerConfig struct {
	Port        int      `toml:"port"`
	CORSOrigins []string `toml:"cors_origins"`
}

// FeedConfig tunes the activity websocket.
type FeedConfig struct {
	WSEnabled bool     `toml:"ws_enabled"`
	Interval  duration `toml:"interval"`
	Limit     int      `toml:"limit"`
}

// LogFileConfig enables a rotating log file next to stdout.
type LogFileConfig struct {
	Path       string `toml:"path"`
	MaxSizeMB  int    `toml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups"`
	MaxAgeDays int    `toml:"max_age_days"`
	Compress   bool   `toml:"compress"`
}

// duration is a wrapper around time.Duration that supports TOML string decoding
// (e.g. "5m", "30s").
type duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler so the TOML decoder can
// parse duration strings like "5m" or "30s".
func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText implements encoding.TextMarshaler for round-trip encoding.
func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Defaults returns a Config populated with the values the API runs with when
// nothing is configured: seed data, in-memory cache, no upstreams.
func Defaults() Config {
	return Config{
		Chain: ChainConfig{
			RPCURL:          "https://mainnet.base.org",
			ContractAddress: "0xYourContractAddress",
		},
		Subgraph: SubgraphConfig{
			URL: "https://api.thegraph.com/subgraphs/name/vantagepoint/markets",
		},
		IPFS: IPFSConfig{
			Gateway:        "https://cloudflare-ipfs.com/ipfs/",
			PinPrefix:      "pending",
			Endpoint:       "https://s3.filebase.com",
			Region:         "us-east-1",
			UseSSL:         true,
			ForcePathStyle: true,
		},
		Cache: CacheConfig{
			Backend:       "memory",
			TTLSeconds:    60,
			RedisURL:      "redis://localhost:6379",
			RedisPoolSize: 20,
			KeyPrefix:     "vp:",
		},
		Store: StoreConfig{
			Backend: "seed",
			Postgres: PostgresConfig{
				Host:          "localhost",
				Port:          5432,
				Database:      "vantagepoint",
				User:          "postgres",
				SSLMode:       "disable",
				PoolMaxConns:  10,
				PoolMinConns:  2,
				RunMigrations: true,
				SeedOnStart:   true,
			},
		},
		Server: ServerConfig{
			Port:        8000,
			CORSOrigins: []string{"*"},
		},
		Feed: FeedConfig{
			WSEnabled: true,
			Interval:  duration{5 * time.Second},
			Limit:     20,
		},
		LogLevel: "info",
		LogFile: LogFileConfig{
			MaxSizeMB:  100,
			MaxBackups: 5,
			MaxAgeDays: 28,
		},
	}
}

// validLogLevels enumerates the accepted values for Config.LogLevel.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

var validCacheBackends = map[string]bool{"memory": true, "redis": true}

var validStoreBackends = map[string]bool{"seed": true, "postgres": true}

// Validate checks Config for obviously invalid or missing values and returns a
// combined error describing every problem found.
func (c *Config) Validate() error {
	var errs []string

	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("unknown log_level %q (valid: debug, info, warn, error)", c.LogLevel))
	}

	// Cache
	if !validCacheBackends[strings.ToLower(c.Cache.Backend)] {
		errs = append(errs, fmt.Sprintf("cache: unknown backend %q (valid: memory, redis)", c.Cache.Backend))
	}
	if c.Cache.TTLSeconds <= 0 {
		errs = append(errs, fmt.Sprintf("cache: ttl_seconds must be > 0, got %d", c.Cache.TTLSeconds))
	}
	if strings.EqualFold(c.Cache.Backend, "redis") {
		if c.Cache.RedisURL == "" {
			errs = append(errs, "cache: redis_url must not be empty for the redis backend")
		}
		if c.Cache.RedisPoolSize < 1 {
			errs = append(errs, "cache: redis_pool_size must be >= 1")
		}
	}

	// Store
	if !validStoreBackends[strings.ToLower(c.Store.Backend)] {
		errs = append(errs, fmt.Sprintf("store: unknown backend %q (valid: seed, postgres)", c.Store.Backend))
	}
	if strings.EqualFold(c.Store.Backend, "postgres") {
		pg := c.Store.Postgres
		if strings.TrimSpace(pg.DSN) == "" {
			if pg.Host == "" {
				errs = append(errs, "store.postgres: host must not be empty (or set store.postgres.dsn)")
			}
			if pg.Port <= 0 || pg.Port > 65535 {
				errs = append(errs, fmt.Sprintf("store.postgres: port must be 1-65535, got %d", pg.Port))
			}
			if pg.Database == "" {
				errs = append(errs, "store.postgres: database must not be empty")
			}
		}
		if pg.PoolMaxConns < 1 {
			errs = append(errs, "store.postgres: pool_max_conns must be >= 1")
		}
		if pg.PoolMinConns < 0 || pg.PoolMinConns > pg.PoolMaxConns {
			errs = append(errs, "store.postgres: pool_min_conns must be between 0 and pool_max_conns")
		}
	}

	// Chain
	if c.Chain.Enabled {
		if c.Chain.RPCURL == "" {
			errs = append(errs, "chain: rpc_url must not be empty when enabled")
		}
		if !common.IsHexAddress(c.Chain.ContractAddress) {
			errs = append(errs, fmt.Sprintf("chain: contract_address %q is not a 20-byte hex address", c.Chain.ContractAddress))
		}
	}

	// Subgraph
	if c.Subgraph.Enabled && c.Subgraph.URL == "" {
		errs = append(errs, "subgraph: url must not be empty when enabled")
	}

	// IPFS
	if c.IPFS.Gateway == "" {
		errs = append(errs, "ipfs: gateway must not be empty")
	}
	if c.IPFS.PinEnabled {
		if c.IPFS.Bucket == "" {
			errs = append(errs, "ipfs: bucket must not be empty when pin_enabled")
		}
		if c.IPFS.Region == "" {
			errs = append(errs, "ipfs: region must not be empty when pin_enabled")
		}
	}

	// Server
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server: port must be 1-65535, got %d", c.Server.Port))
	}

	// Feed
	if c.Feed.WSEnabled {
		if c.Feed.Interval.Duration <= 0 {
			errs = append(errs, "feed: interval must be > 0")
		}
		if c.Feed.Limit < 1 || c.Feed.Limit > 100 {
			errs = append(errs, fmt.Sprintf("feed: limit must be 1-100, got %d", c.Feed.Limit))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
