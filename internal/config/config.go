// Package config handles application configuration from environment
// variables.
package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds everything the proxy and client need to start.
type Config struct {
	// BaseURL is the farm backend the client talks to.
	BaseURL string `env:"FARM_API_URL" envDefault:"http://localhost:8080"`

	// APIToken is sent as a bearer token when set.
	APIToken string `env:"FARM_API_TOKEN"`

	// CacheCapacity bounds the number of cached responses.
	CacheCapacity int `env:"FARM_CACHE_CAPACITY" envDefault:"512"`

	// CacheTTL is the default trust window for cached responses.
	CacheTTL time.Duration `env:"FARM_CACHE_TTL" envDefault:"30s"`

	// SweepInterval enables the background expiry janitor when > 0.
	SweepInterval time.Duration `env:"FARM_CACHE_SWEEP" envDefault:"0"`

	// ListenAddr is where the local caching proxy serves.
	ListenAddr string `env:"FARMPROXY_ADDR" envDefault:":9090"`

	// LogLevel is a zerolog level name (debug, info, warn, error).
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

// Load reads configuration from the environment.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("FARM_API_URL %q is not an absolute URL", c.BaseURL)
	}
	if c.CacheCapacity <= 0 {
		return fmt.Errorf("FARM_CACHE_CAPACITY must be positive, got %d", c.CacheCapacity)
	}
	if c.CacheTTL <= 0 {
		return fmt.Errorf("FARM_CACHE_TTL must be positive, got %s", c.CacheTTL)
	}
	return nil
}
