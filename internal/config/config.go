package config

import (
	"fmt"
	"time"
)

// Config is the main application configuration struct.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Crawler    CrawlerConfig    `mapstructure:"crawler"`
	Classifier ClassifierConfig `mapstructure:"classifier"`
	Coverage   CoverageConfig   `mapstructure:"coverage"`
	Store      StoreConfig      `mapstructure:"store"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
}

type ServerConfig struct {
	Addr         string        `mapstructure:"addr"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	// SyncTimeout bounds the blocking POST /api/scan call.
	SyncTimeout time.Duration   `mapstructure:"sync_timeout"`
	RateLimit   RateLimitConfig `mapstructure:"rate_limit"`
}

type RateLimitConfig struct {
	RPS   float64 `mapstructure:"rps"`
	Burst int     `mapstructure:"burst"`
}

type CrawlerConfig struct {
	UserAgent     string        `mapstructure:"user_agent"`
	Timeout       time.Duration `mapstructure:"timeout"`
	RobotsTimeout time.Duration `mapstructure:"robots_timeout"`
	MaxRedirects  int           `mapstructure:"max_redirects"`
	MaxPages      int           `mapstructure:"max_pages"`
	MaxBodyBytes  int64         `mapstructure:"max_body_bytes"`
}

type ClassifierConfig struct {
	APIKey      string        `mapstructure:"api_key"`
	BaseURL     string        `mapstructure:"base_url"`
	Model       string        `mapstructure:"model"`
	Timeout     time.Duration `mapstructure:"timeout"`
	MaxTokens   int           `mapstructure:"max_tokens"`
	Temperature float64       `mapstructure:"temperature"`
}

type CoverageConfig struct {
	Threshold float64 `mapstructure:"threshold"`
}

type StoreConfig struct {
	Driver string        `mapstructure:"driver"`
	TTL    time.Duration `mapstructure:"ttl"`
	Redis  RedisConfig   `mapstructure:"redis"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

const (
	DriverMemory = "memory"
	DriverRedis  = "redis"
)

func validateConfig(cfg *Config) error {
	switch cfg.Store.Driver {
	case DriverMemory:
	case DriverRedis:
		if cfg.Store.Redis.Address == "" {
			return fmt.Errorf("store.redis.address is required for the redis driver")
		}
	default:
		return fmt.Errorf("store.driver must be %q or %q, got %q", DriverMemory, DriverRedis, cfg.Store.Driver)
	}

	if cfg.Coverage.Threshold <= 0 || cfg.Coverage.Threshold > 1 {
		return fmt.Errorf("coverage.threshold must be in (0,1], got %v", cfg.Coverage.Threshold)
	}
	if cfg.Crawler.MaxPages < 1 {
		return fmt.Errorf("crawler.max_pages must be positive")
	}
	if cfg.Crawler.Timeout <= 0 || cfg.Crawler.RobotsTimeout <= 0 {
		return fmt.Errorf("crawler timeouts must be positive")
	}
	if cfg.Server.SyncTimeout <= 0 {
		return fmt.Errorf("server.sync_timeout must be positive")
	}
	if cfg.Server.RateLimit.RPS < 0 || cfg.Server.RateLimit.Burst < 0 {
		return fmt.Errorf("server.rate_limit values must not be negative")
	}
	return nil
}
