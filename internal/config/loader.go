package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 40*time.Second)
	v.SetDefault("server.sync_timeout", 25*time.Second)
	v.SetDefault("server.rate_limit.rps", 2.0)
	v.SetDefault("server.rate_limit.burst", 5)

	v.SetDefault("crawler.user_agent", "")
	v.SetDefault("crawler.timeout", 5*time.Second)
	v.SetDefault("crawler.robots_timeout", 3*time.Second)
	v.SetDefault("crawler.max_redirects", 5)
	v.SetDefault("crawler.max_pages", 3)
	v.SetDefault("crawler.max_body_bytes", int64(5<<20))

	v.SetDefault("classifier.api_key", "")
	v.SetDefault("classifier.base_url", "https://api.anthropic.com")
	v.SetDefault("classifier.model", "claude-haiku-4-5")
	v.SetDefault("classifier.timeout", 10*time.Second)
	v.SetDefault("classifier.max_tokens", 400)
	v.SetDefault("classifier.temperature", 0.1)

	v.SetDefault("coverage.threshold", 0.35)

	v.SetDefault("store.driver", DriverMemory)
	v.SetDefault("store.ttl", 24*time.Hour)
	v.SetDefault("store.redis.address", "localhost:6379")
	v.SetDefault("store.redis.password", "")
	v.SetDefault("store.redis.db", 0)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("metrics.enabled", true)
}

// Load reads .env, then config.yaml from ./configs or the working
// directory, then environment overrides such as CRAWLER_TIMEOUT=8s.
func Load() (*Config, error) {
	return load("")
}

// LoadFromFile loads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	return load(path)
}

func load(path string) (*Config, error) {
	loadEnvFile()

	v := viper.New()
	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("classifier.api_key", "CLASSIFIER_API_KEY", "ANTHROPIC_API_KEY"); err != nil {
		return nil, fmt.Errorf("bind classifier key: %w", err)
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("error reading config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// loadEnvFile loads the first .env found in the working directory or the
// module root. A missing file is not an error.
func loadEnvFile() {
	paths := []string{".env"}
	if root := findProjectRoot(); root != "" {
		paths = append(paths, filepath.Join(root, ".env"))
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			if err := godotenv.Load(p); err == nil {
				return
			}
		}
	}
}

func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}
