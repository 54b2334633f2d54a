package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port      string `env:"PORT,      default=8080"`
	Env       string `env:"ENV,       default=development"`
	JWTSecret string `env:"JWT_SECRET"`
	LogLevel  string `env:"LOG_LEVEL, default=info"`

	// SessionTTL bounds both the in-memory session cache and the Redis
	// persistence of session-local state.
	SessionTTL time.Duration `env:"SESSION_TTL, default=720h"`

	Upstream UpstreamConfig
	Redis    RedisConfig
	Mongo    MongoConfig
}

// UpstreamConfig points at the storefront API collaborators. They usually
// share one base URL; the interactions sink can be split off.
type UpstreamConfig struct {
	BaseURL         string        `env:"UPSTREAM_BASE_URL, default=http://localhost:4000"`
	InteractionsURL string        `env:"INTERACTIONS_URL"` // falls back to BaseURL when empty
	Timeout         time.Duration `env:"UPSTREAM_TIMEOUT, default=10s"`
	CatalogTTL      time.Duration `env:"CATALOG_SNAPSHOT_TTL, default=1m"`
	Workers         int           `env:"INTERACTION_WORKERS, default=4"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

// MongoConfig configures the merge-failure journal. The journal is optional;
// an empty URI disables it.
type MongoConfig struct {
	URI      string `env:"MONGO_URI"`
	Database string `env:"MONGO_DB, default=storefront_gateway"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if cfg.Upstream.InteractionsURL == "" {
		cfg.Upstream.InteractionsURL = cfg.Upstream.BaseURL
	}
	return &cfg, nil
}
