package config

import (
	"net/url"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 2, cfg.Fetch.MaxRetries)
	assert.Equal(t, 12, cfg.Workers)
	assert.Equal(t, 5*time.Second, cfg.Fetch.Timeout)
	assert.Equal(t, "div.g", cfg.Search.Engines[0].ResultSelector)
	assert.Equal(t, "li.b_algo", cfg.Search.Engines[1].ResultSelector)
	assert.Equal(t, 3, cfg.Discover.TopN)
}

func TestLoadYAMLAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scraper.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
workers: 4
fetch:
  timeout: 8s
  max_retries: 3
search:
  region: uk
cache:
  type: none
`), 0o644))

	t.Setenv("SCRAPER_MAX_RETRIES", "5")
	t.Setenv("PORT", "9090")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, 8*time.Second, cfg.Fetch.Timeout)
	assert.Equal(t, 5, cfg.Fetch.MaxRetries)
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "uk", cfg.Search.Region)
	assert.Equal(t, "none", cfg.Cache.Type)
	// untouched sections keep their defaults
	assert.Len(t, cfg.Search.Engines, 2)
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"no workers", func(c *Config) { c.Workers = 0 }},
		{"no retries", func(c *Config) { c.Fetch.MaxRetries = 0 }},
		{"no engines", func(c *Config) { c.Search.Engines = nil }},
		{"engine without selector", func(c *Config) { c.Search.Engines[0].ResultSelector = "" }},
		{"unknown region", func(c *Config) { c.Search.Region = "mars" }},
		{"bad cache type", func(c *Config) { c.Cache.Type = "disk" }},
		{"redis without address", func(c *Config) { c.Cache.Type = "redis"; c.Cache.Redis.Address = "" }},
		{"bad pattern", func(c *Config) { c.Discover.Vocabulary = Vocabulary{"url_patterns": {"(["}} }},
		{"jitter inverted", func(c *Config) { c.Fetch.JitterMin = time.Second }},
		{"no search results", func(c *Config) { c.Search.MaxResults = 0 }},
		{"negative page ttl", func(c *Config) { c.Cache.PageTTL = -time.Minute }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestCachesPages(t *testing.T) {
	cfg := Default().Cache
	assert.False(t, cfg.CachesPages(), "memory backend keeps domains only")

	cfg.Type = "redis"
	assert.True(t, cfg.CachesPages())

	cfg.PageTTL = 0
	assert.False(t, cfg.CachesPages())

	cfg.Type = "none"
	cfg.PageTTL = time.Hour
	assert.False(t, cfg.CachesPages())
}

func TestMatcher(t *testing.T) {
	m, err := Default().Discover.Vocabulary.Compile()
	require.NoError(t, err)

	matches := []string{
		"https://acme.com/contact",
		"https://acme.com/de/kontakt",
		"https://acme.com/about/team#contact",
		"https://support.acme.com/",
		"https://acme.com/contact/42",
		"https://acme.com/pages/impressum.html",
	}
	for _, raw := range matches {
		u, err := url.Parse(raw)
		require.NoError(t, err)
		assert.True(t, m.MatchURL(u), raw)
	}

	misses := []string{
		"https://acme.com/",
		"https://acme.com/products/widgets",
		"https://www.acme.com/blog/2024/launch",
	}
	for _, raw := range misses {
		u, err := url.Parse(raw)
		require.NoError(t, err)
		assert.False(t, m.MatchURL(u), raw)
	}

	assert.True(t, m.MatchText("Get in touch"))
	assert.True(t, m.MatchText("Contact Us"))
	assert.False(t, m.MatchText("Our products"))
}

func TestRegionApply(t *testing.T) {
	params := url.Values{}
	params.Set("q", "acme")
	params.Set("hl", "fr")

	RegionConfigs["uk"].Apply(params)

	assert.Equal(t, "gb", params.Get("gl"))
	assert.Equal(t, "lang_en", params.Get("lr"))
	assert.Equal(t, "fr", params.Get("hl"))
}
