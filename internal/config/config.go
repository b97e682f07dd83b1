package config

import (
	"fmt"

	pkgconfig "github.com/ae-inbuator/second-story-wishlist/pkg/config"
)

// Config holds all configuration for the wishlist service.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort int `env:"WISHLIST_HTTP_PORT" envDefault:"8004"`

	// Redis, for the offline snapshot cache. Empty address falls back to
	// in-memory storage (dev and test only).
	RedisAddr string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPass string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB   int    `env:"REDIS_DB" envDefault:"0"`

	// Snapshot TTL in hours (default: 7 days, a full event cycle).
	CacheTTL int `env:"WISHLIST_CACHE_TTL_HOURS" envDefault:"168"`

	// Kafka, for outcome notices. Empty disables publishing.
	KafkaBrokers []string `env:"KAFKA_BROKERS" envSeparator:","`

	// Authoritative record store.
	RecordStoreURL       string `env:"RECORD_STORE_URL" envDefault:"http://localhost:8010"`
	RecordStoreTimeoutMS int    `env:"RECORD_STORE_TIMEOUT_MS" envDefault:"5000"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load wishlist config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate checks configuration invariants.
func (c *Config) validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	if c.RecordStoreURL == "" {
		return fmt.Errorf("RECORD_STORE_URL is required")
	}
	if c.RecordStoreTimeoutMS < 1 {
		return fmt.Errorf("invalid record store timeout: %dms", c.RecordStoreTimeoutMS)
	}
	return nil
}
