package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads an optional TOML configuration file at path, merges it on top of
// the built-in defaults, applies environment variable overrides, and returns
// the final Config. An empty path skips the file. The returned Config has NOT
// been validated; the caller should invoke Config.Validate() after Load.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return nil, fmt.Errorf("config: decode %s: %w", path, err)
		}
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads the well-known environment variables and overwrites
// the corresponding Config fields when a variable is set (i.e. not empty).
// The short names (CHAIN_RPC_URL, REDIS_URL, ...) are the deployment
// contract; VP_* names cover every other field and win when both are set.
func applyEnvOverrides(cfg *Config) {
	// ── Deployment names ──
	setStr(&cfg.Chain.RPCURL, "CHAIN_RPC_URL")
	setStr(&cfg.Chain.ContractAddress, "CONTRACT_ADDRESS")
	setStr(&cfg.Subgraph.URL, "SUBGRAPH_URL")
	setStr(&cfg.IPFS.Gateway, "IPFS_GATEWAY")
	setStr(&cfg.Cache.RedisURL, "REDIS_URL")
	setInt(&cfg.Cache.TTLSeconds, "CACHE_TTL")

	// ── Chain ──
	setBool(&cfg.Chain.Enabled, "VP_CHAIN_ENABLED")
	setStr(&cfg.Chain.RPCURL, "VP_CHAIN_RPC_URL")
	setStr(&cfg.Chain.ContractAddress, "VP_CHAIN_CONTRACT_ADDRESS")

	// ── Subgraph ──
	setBool(&cfg.Subgraph.Enabled, "VP_SUBGRAPH_ENABLED")
	setStr(&cfg.Subgraph.URL, "VP_SUBGRAPH_URL")
	setStr(&cfg.Subgraph.APIKey, "VP_SUBGRAPH_API_KEY")

	// ── IPFS ──
	setStr(&cfg.IPFS.Gateway, "VP_IPFS_GATEWAY")
	setBool(&cfg.IPFS.PinEnabled, "VP_IPFS_PIN_ENABLED")
	setStr(&cfg.IPFS.PinPrefix, "VP_IPFS_PIN_PREFIX")
	setStr(&cfg.IPFS.Endpoint, "VP_IPFS_ENDPOINT")
	setStr(&cfg.IPFS.Region, "VP_IPFS_REGION")
	setStr(&cfg.IPFS.Bucket, "VP_IPFS_BUCKET")
	setStr(&cfg.IPFS.AccessKey, "VP_IPFS_ACCESS_KEY")
	setStr(&cfg.IPFS.SecretKey, "VP_IPFS_SECRET_KEY")
	setBool(&cfg.IPFS.UseSSL, "VP_IPFS_USE_SSL")
	setBool(&cfg.IPFS.ForcePathStyle, "VP_IPFS_FORCE_PATH_STYLE")

	// ── Cache ──
	setStr(&cfg.Cache.Backend, "VP_CACHE_BACKEND")
	setInt(&cfg.Cache.TTLSeconds, "VP_CACHE_TTL_SECONDS")
	setStr(&cfg.Cache.RedisURL, "VP_CACHE_REDIS_URL")
	setStr(&cfg.Cache.RedisPassword, "VP_CACHE_REDIS_PASSWORD")
	setInt(&cfg.Cache.RedisPoolSize, "VP_CACHE_REDIS_POOL_SIZE")
	setStr(&cfg.Cache.KeyPrefix, "VP_CACHE_KEY_PREFIX")

	// ── Store ──
	setStr(&cfg.Store.Backend, "VP_STORE_BACKEND")
	setStr(&cfg.Store.Postgres.DSN, "DATABASE_URL") // compatibility alias
	setStr(&cfg.Store.Postgres.DSN, "VP_STORE_POSTGRES_DSN")
	setStr(&cfg.Store.Postgres.Host, "VP_STORE_POSTGRES_HOST")
	setInt(&cfg.Store.Postgres.Port, "VP_STORE_POSTGRES_PORT")
	setStr(&cfg.Store.Postgres.Database, "VP_STORE_POSTGRES_DATABASE")
	setStr(&cfg.Store.Postgres.User, "VP_STORE_POSTGRES_USER")
	setStr(&cfg.Store.Postgres.Password, "VP_STORE_POSTGRES_PASSWORD")
	setStr(&cfg.Store.Postgres.SSLMode, "VP_STORE_POSTGRES_SSL_MODE")
	setInt(&cfg.Store.Postgres.PoolMaxConns, "VP_STORE_POSTGRES_POOL_MAX_CONNS")
	setInt(&cfg.Store.Postgres.PoolMinConns, "VP_STORE_POSTGRES_POOL_MIN_CONNS")
	setBool(&cfg.Store.Postgres.RunMigrations, "VP_STORE_POSTGRES_RUN_MIGRATIONS")
	setBool(&cfg.Store.Postgres.SeedOnStart, "VP_STORE_POSTGRES_SEED_ON_START")

	// ── Server ──
	setInt(&cfg.Server.Port, "VP_SERVER_PORT")
	setStringSlice(&cfg.Server.CORSOrigins, "VP_SERVER_CORS_ORIGINS")

	// ── Feed ──
	setBool(&cfg.Feed.WSEnabled, "VP_FEED_WS_ENABLED")
	setDuration(&cfg.Feed.Interval, "VP_FEED_INTERVAL")
	setInt(&cfg.Feed.Limit, "VP_FEED_LIMIT")

	// ── Logging ──
	setStr(&cfg.LogLevel, "VP_LOG_LEVEL")
	setStr(&cfg.LogFile.Path, "VP_LOG_FILE")
	setInt(&cfg.LogFile.MaxSizeMB, "VP_LOG_FILE_MAX_SIZE_MB")
	setInt(&cfg.LogFile.MaxBackups, "VP_LOG_FILE_MAX_BACKUPS")
	setInt(&cfg.LogFile.MaxAgeDays, "VP_LOG_FILE_MAX_AGE_DAYS")
	setBool(&cfg.LogFile.Compress, "VP_LOG_FILE_COMPRESS")
}

// ---------------------------------------------------------------------------
// Typed env-var helpers. Each only mutates the target when the environment
// variable is present and non-empty.
// ---------------------------------------------------------------------------

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			dst.Duration = d
		}
	}
}

func setStringSlice(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		cleaned := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				cleaned = append(cleaned, p)
			}
		}
		if len(cleaned) > 0 {
			*dst = cleaned
		}
	}
}
