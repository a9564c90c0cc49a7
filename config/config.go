// Package config holds the immutable settings shared by every pipeline component.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration. It is built once by Default or
// Load and handed by value to constructors; nothing mutates it afterwards.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Fetch    FetchConfig    `yaml:"fetch"`
	Browser  BrowserConfig  `yaml:"browser"`
	Search   SearchConfig   `yaml:"search"`
	Discover DiscoverConfig `yaml:"discover"`
	Cache    CacheConfig    `yaml:"cache"`
	Log      LogConfig      `yaml:"log"`

	// Workers bounds both the company fan-out and the number of browser tabs.
	Workers int `yaml:"workers"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port string `yaml:"port"`
}

// FetchConfig controls the plain HTTP page fetcher
type FetchConfig struct {
	Timeout      time.Duration `yaml:"timeout"`
	MaxRetries   int           `yaml:"max_retries"`
	MaxRedirects int           `yaml:"max_redirects"`

	// BaseDelay is the politeness delay before each request; a random
	// jitter in [JitterMin, JitterMax) is added to it.
	BaseDelay time.Duration `yaml:"base_delay"`
	JitterMin time.Duration `yaml:"jitter_min"`
	JitterMax time.Duration `yaml:"jitter_max"`

	// RequestsPerSecond caps the global request rate. Zero disables the limiter.
	RequestsPerSecond float64 `yaml:"requests_per_second"`

	MaxBodyBytes int64    `yaml:"max_body_bytes"`
	UserAgents   []string `yaml:"user_agents"`
}

// BrowserConfig controls the headless browser pool
type BrowserConfig struct {
	Headless        bool          `yaml:"headless"`
	ExecPath        string        `yaml:"exec_path"`
	PageLoadTimeout time.Duration `yaml:"page_load_timeout"`
	WaitTimeout     time.Duration `yaml:"wait_timeout"`
	WindowWidth     int           `yaml:"window_width"`
	WindowHeight    int           `yaml:"window_height"`
}

// SearchEngine describes one search engine used for domain lookup.
// URLTemplate carries a single %s that receives the query-escaped query.
type SearchEngine struct {
	Name           string `yaml:"name"`
	URLTemplate    string `yaml:"url_template"`
	ResultSelector string `yaml:"result_selector"`
}

// SearchConfig controls domain resolution
type SearchConfig struct {
	Engines    []SearchEngine `yaml:"engines"`
	Region     string         `yaml:"region"`
	MaxResults int            `yaml:"max_results"`

	// FallbackSuffix is appended to the company name for the second engine pass.
	FallbackSuffix string `yaml:"fallback_suffix"`

	Directories        []string `yaml:"directories"`
	DirectorySearchURL string   `yaml:"directory_search_url"`

	// ExcludedDomains lists registrable-domain labels that never count as a company site.
	ExcludedDomains     []string `yaml:"excluded_domains"`
	SimilarityThreshold float64  `yaml:"similarity_threshold"`
}

// DiscoverConfig controls contact page discovery
type DiscoverConfig struct {
	Vocabulary        Vocabulary `yaml:"vocabulary"`
	CommonPaths       []string   `yaml:"common_paths"`
	TopN              int        `yaml:"top_n"`
	HomepageThreshold float64    `yaml:"homepage_threshold"`
	ProbeThreshold    float64    `yaml:"probe_threshold"`
	MaxSitemaps       int        `yaml:"max_sitemaps"`
}

// CacheConfig holds cache backend configuration
type CacheConfig struct {
	// Type is one of redis, memory or none
	Type            string        `yaml:"type"`
	TTL             time.Duration `yaml:"ttl"`
	NegativeTTL     time.Duration `yaml:"negative_ttl"`
	// PageTTL is how long fetched page bodies are kept. Pages are only cached
	// in redis; the memory backend holds domain lookups alone.
	PageTTL         time.Duration `yaml:"page_ttl"`
	CleanupInterval time.Duration `yaml:"cleanup_interval"`
	Redis           RedisConfig   `yaml:"redis"`
}

// CachesPages reports whether fetched pages go into the cache
func (c CacheConfig) CachesPages() bool {
	return c.Type == "redis" && c.PageTTL > 0
}

// RedisConfig holds Redis-specific configuration
type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// LogConfig holds logger configuration
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load builds a Config from the defaults, an optional .env file, an optional
// YAML file at path and finally the process environment.
func Load(path string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Server.Port = getEnvOrDefault("PORT", c.Server.Port)
	c.Workers = getEnvAsIntOrDefault("SCRAPER_WORKERS", c.Workers)
	c.Fetch.Timeout = getEnvAsDurationOrDefault("SCRAPER_TIMEOUT", c.Fetch.Timeout)
	c.Fetch.MaxRetries = getEnvAsIntOrDefault("SCRAPER_MAX_RETRIES", c.Fetch.MaxRetries)
	c.Fetch.MaxRedirects = getEnvAsIntOrDefault("SCRAPER_MAX_REDIRECTS", c.Fetch.MaxRedirects)
	c.Fetch.BaseDelay = getEnvAsDurationOrDefault("SCRAPER_BASE_DELAY", c.Fetch.BaseDelay)
	c.Browser.ExecPath = getEnvOrDefault("CHROME_PATH", c.Browser.ExecPath)
	c.Search.Region = getEnvOrDefault("SEARCH_REGION", c.Search.Region)
	c.Cache.Type = getEnvOrDefault("CACHE_TYPE", c.Cache.Type)
	c.Cache.TTL = getEnvAsDurationOrDefault("CACHE_TTL", c.Cache.TTL)
	c.Cache.PageTTL = getEnvAsDurationOrDefault("CACHE_PAGE_TTL", c.Cache.PageTTL)
	c.Cache.Redis.Address = getEnvOrDefault("REDIS_ADDRESS", c.Cache.Redis.Address)
	c.Cache.Redis.Password = getEnvOrDefault("REDIS_PASSWORD", c.Cache.Redis.Password)
	c.Cache.Redis.DB = getEnvAsIntOrDefault("REDIS_DB", c.Cache.Redis.DB)
	c.Log.Level = getEnvOrDefault("LOG_LEVEL", c.Log.Level)
	c.Log.Format = getEnvOrDefault("LOG_FORMAT", c.Log.Format)
}

// Validate checks if the configuration is valid
func (c Config) Validate() error {
	if c.Server.Port == "" {
		return errors.New("port cannot be empty")
	}
	if c.Workers < 1 {
		return errors.New("workers must be at least 1")
	}
	if c.Fetch.Timeout <= 0 {
		return errors.New("fetch timeout must be positive")
	}
	if c.Fetch.MaxRetries < 1 {
		return errors.New("max retries must be at least 1")
	}
	if c.Fetch.MaxRedirects < 0 {
		return errors.New("max redirects cannot be negative")
	}
	if c.Fetch.JitterMax < c.Fetch.JitterMin {
		return errors.New("jitter max must not be below jitter min")
	}
	if len(c.Fetch.UserAgents) == 0 {
		return errors.New("at least one user agent is required")
	}
	if len(c.Search.Engines) == 0 {
		return errors.New("at least one search engine is required")
	}
	for _, e := range c.Search.Engines {
		if e.URLTemplate == "" || e.ResultSelector == "" {
			return fmt.Errorf("search engine %q needs a url template and a result selector", e.Name)
		}
	}
	if _, ok := RegionConfigs[c.Search.Region]; c.Search.Region != "" && !ok {
		return fmt.Errorf("unknown search region %q", c.Search.Region)
	}
	if c.Search.SimilarityThreshold <= 0 || c.Search.SimilarityThreshold > 1 {
		return errors.New("similarity threshold must be in (0, 1]")
	}
	if c.Search.MaxResults < 1 {
		return errors.New("max results must be at least 1")
	}
	if c.Cache.PageTTL < 0 {
		return errors.New("page ttl cannot be negative")
	}
	if c.Discover.TopN < 1 {
		return errors.New("top_n must be at least 1")
	}
	if _, err := c.Discover.Vocabulary.Compile(); err != nil {
		return err
	}

	switch c.Cache.Type {
	case "none", "memory":
	case "redis":
		if c.Cache.Redis.Address == "" {
			return errors.New("redis address cannot be empty when using redis cache")
		}
	default:
		return errors.New("cache type must be 'redis', 'memory' or 'none'")
	}

	return nil
}

// getEnvOrDefault returns the environment variable value or a default
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsIntOrDefault returns the environment variable as int or a default
func getEnvAsIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
