package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

const (
	StoreBackendRedis  = "redis"
	StoreBackendBolt   = "bolt"
	StoreBackendSQLite = "sqlite"

	RegistryMemory = "memory"
	RegistryRedis  = "redis"
)

type Config struct {
	Debug       bool   `env:"DEBUG" envDefault:"false"`
	ServiceName string `env:"SERVICE_NAME" envDefault:"giveaway-offers-backend"`

	Server struct {
		Port    int      `env:"PORT" envDefault:"8080"`
		Origins []string `env:"ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`
	}

	Redis struct {
		Host     string `env:"REDIS_HOST" envDefault:"localhost"`
		Port     int    `env:"REDIS_PORT" envDefault:"6379"`
		Password string `env:"REDIS_PASSWORD" envDefault:""`
		DB       int    `env:"REDIS_DB" envDefault:"0"`

		EnableSharding bool `env:"REDIS_ENABLE_SHARDING" envDefault:"false"`

		// host:port[:password][:db], comma separated
		WriteShards []string `env:"REDIS_WRITE_SHARDS" envSeparator:","`
		ReadShards  []string `env:"REDIS_READ_SHARDS" envSeparator:","`
	}

	Store struct {
		Backend    string `env:"STORE_BACKEND" envDefault:"redis"`
		BoltPath   string `env:"BOLT_PATH" envDefault:"participations.db"`
		SQLitePath string `env:"SQLITE_PATH" envDefault:"participations.sqlite"`
	}

	Participation struct {
		// email, external_id or telegram
		Mode         string        `env:"PARTICIPATION_MODE" envDefault:"email"`
		Registry     string        `env:"PARTICIPATION_REGISTRY" envDefault:"memory"`
		GlobalLock   bool          `env:"PARTICIPATION_GLOBAL_LOCK" envDefault:"false"`
		StoreTimeout time.Duration `env:"PARTICIPATION_STORE_TIMEOUT" envDefault:"5s"`
		InFlightTTL  time.Duration `env:"PARTICIPATION_INFLIGHT_TTL" envDefault:"1m"`
		OfferParam   string        `env:"OFFER_TOKEN_PARAM" envDefault:"sub1"`
	}

	Offers struct {
		PostbackSecret string        `env:"POSTBACK_SECRET" envDefault:""`
		StreamEnabled  bool          `env:"OFFER_STREAM_ENABLED" envDefault:"false"`
		StreamKey      string        `env:"OFFER_STREAM_KEY" envDefault:"offers:completions"`
		ConsumerGroup  string        `env:"OFFER_STREAM_GROUP" envDefault:"giveaway_backend_consumers"`
		ConsumerName   string        `env:"OFFER_STREAM_CONSUMER" envDefault:"giveaway_worker_1"`
		RetryPending   time.Duration `env:"OFFER_STREAM_RETRY_PENDING" envDefault:"30s"`
	}

	Admin struct {
		APIKey        string        `env:"ADMIN_API_KEY" envDefault:""`
		DrawReplayTTL time.Duration `env:"DRAW_REPLAY_TTL" envDefault:"24h"`
	}

	Telegram struct {
		BotToken    string        `env:"BOT_TOKEN" envDefault:""`
		InitDataTTL time.Duration `env:"INIT_DATA_TTL" envDefault:"24h"`
	}
}

// Load reads .env (when present) and the process environment.
func Load() (*Config, error) {
	// .env is optional; in production variables come from the environment
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Store.Backend {
	case StoreBackendRedis, StoreBackendBolt, StoreBackendSQLite:
	default:
		return fmt.Errorf("invalid STORE_BACKEND: %q", c.Store.Backend)
	}
	switch c.Participation.Registry {
	case RegistryMemory, RegistryRedis:
	default:
		return fmt.Errorf("invalid PARTICIPATION_REGISTRY: %q", c.Participation.Registry)
	}
	switch c.Participation.Mode {
	case "email", "external_id", "telegram":
	default:
		return fmt.Errorf("invalid PARTICIPATION_MODE: %q", c.Participation.Mode)
	}
	if c.Participation.Mode == "telegram" && c.Telegram.BotToken == "" {
		return fmt.Errorf("BOT_TOKEN is required in telegram participation mode")
	}
	if c.Participation.StoreTimeout <= 0 {
		return fmt.Errorf("PARTICIPATION_STORE_TIMEOUT must be positive")
	}
	if c.Participation.OfferParam == "" {
		return fmt.Errorf("OFFER_TOKEN_PARAM must not be empty")
	}
	return nil
}

// UsesRedis reports whether any component needs a Redis connection.
func (c *Config) UsesRedis() bool {
	return c.Store.Backend == StoreBackendRedis ||
		c.Participation.Registry == RegistryRedis ||
		c.Offers.StreamEnabled
}
