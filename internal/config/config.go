// Package config defines the application configuration loaded via viper.
package config

import "time"

// AppConfig holds application-level settings.
type AppConfig struct {
	LogLevel  string `mapstructure:"log_level"`
	LogPretty bool   `mapstructure:"log_pretty"`
}

// ServerConfig holds the HTTP server settings.
type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

// RedisConfig holds redis connection settings. Redis backs the item/list
// cache and the shared upstream health state; with Enabled false the feed
// runs uncached against the upstream directly.
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Addr     string `mapstructure:"addr"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// UpstreamConfig controls the Hacker News API client.
type UpstreamConfig struct {
	BaseURL           string  `mapstructure:"base_url"`
	UserAgent         string  `mapstructure:"user_agent"`
	Timeout           string  `mapstructure:"timeout"` // duration string, e.g. "10s"
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

// FetchConfig controls the bounded batch fetcher.
type FetchConfig struct {
	Concurrency int    `mapstructure:"concurrency"`
	ItemTimeout string `mapstructure:"item_timeout"` // duration string, e.g. "8s"
}

// FeedConfig controls page assembly and highlight thresholds.
type FeedConfig struct {
	List              string `mapstructure:"list"`
	PageSize          int    `mapstructure:"page_size"`
	HotScore          int    `mapstructure:"hot_score"`
	HotDescendants    int    `mapstructure:"hot_descendants"`
	RisingScore       int    `mapstructure:"rising_score"`
	RisingDescendants int    `mapstructure:"rising_descendants"`
}

// RetryConfig controls the optional retrying source decorator. Disabled by
// default: the batch fetcher contract is retry-free.
type RetryConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	MaxAttempts    int    `mapstructure:"max_attempts"`
	InitialBackoff string `mapstructure:"initial_backoff"` // duration string
}

// Config is the top-level configuration structure.
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Server   ServerConfig   `mapstructure:"server"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Upstream UpstreamConfig `mapstructure:"upstream"`
	Fetch    FetchConfig    `mapstructure:"fetch"`
	Feed     FeedConfig     `mapstructure:"feed"`
	Retry    RetryConfig    `mapstructure:"retry"`
}

// FillDefaults applies default values if not provided.
func (c *Config) FillDefaults() {
	if c.App.LogLevel == "" {
		c.App.LogLevel = "info"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Redis.Addr == "" {
		c.Redis.Addr = "127.0.0.1:6379"
	}
	if c.Upstream.BaseURL == "" {
		c.Upstream.BaseURL = "https://hacker-news.firebaseio.com/v0"
	}
	if c.Upstream.UserAgent == "" {
		c.Upstream.UserAgent = "hnfeed/1.0"
	}
	if c.Upstream.Timeout == "" {
		c.Upstream.Timeout = "10s"
	}
	if c.Upstream.RequestsPerSecond == 0 {
		c.Upstream.RequestsPerSecond = 20
	}
	if c.Upstream.Burst == 0 {
		c.Upstream.Burst = 20
	}
	if c.Fetch.Concurrency == 0 {
		c.Fetch.Concurrency = 10
	}
	if c.Fetch.ItemTimeout == "" {
		c.Fetch.ItemTimeout = "8s"
	}
	if c.Feed.List == "" {
		c.Feed.List = "topstories"
	}
	if c.Feed.PageSize == 0 {
		c.Feed.PageSize = 30
	}
	if c.Feed.HotScore == 0 {
		c.Feed.HotScore = 300
	}
	if c.Feed.HotDescendants == 0 {
		c.Feed.HotDescendants = 150
	}
	if c.Feed.RisingScore == 0 {
		c.Feed.RisingScore = 100
	}
	if c.Feed.RisingDescendants == 0 {
		c.Feed.RisingDescendants = 50
	}
	if c.Retry.MaxAttempts == 0 {
		c.Retry.MaxAttempts = 3
	}
	if c.Retry.InitialBackoff == "" {
		c.Retry.InitialBackoff = "500ms"
	}
}

// ParseDuration parses a duration string falling back to def on error or
// empty input. Config durations are strings so YAML stays readable.
func ParseDuration(s string, def time.Duration) time.Duration {
	if s == "" {
		return def
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return def
	}
	return d
}
