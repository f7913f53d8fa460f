package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFillDefaults(t *testing.T) {
	var cfg Config
	cfg.FillDefaults()

	assert.Equal(t, "info", cfg.App.LogLevel)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "127.0.0.1:6379", cfg.Redis.Addr)
	assert.False(t, cfg.Redis.Enabled, "redis should default to disabled")
	assert.Equal(t, "https://hacker-news.firebaseio.com/v0", cfg.Upstream.BaseURL)
	assert.Equal(t, float64(20), cfg.Upstream.RequestsPerSecond)
	assert.Equal(t, 20, cfg.Upstream.Burst)
	assert.Equal(t, 10, cfg.Fetch.Concurrency)
	assert.Equal(t, "8s", cfg.Fetch.ItemTimeout)
	assert.Equal(t, "topstories", cfg.Feed.List)
	assert.Equal(t, 30, cfg.Feed.PageSize)
	assert.Equal(t, 300, cfg.Feed.HotScore)
	assert.Equal(t, 150, cfg.Feed.HotDescendants)
	assert.Equal(t, 100, cfg.Feed.RisingScore)
	assert.Equal(t, 50, cfg.Feed.RisingDescendants)
	assert.False(t, cfg.Retry.Enabled, "retry should default to disabled")
	assert.Equal(t, 3, cfg.Retry.MaxAttempts)
	assert.Equal(t, "500ms", cfg.Retry.InitialBackoff)
}

func TestFillDefaultsPreservesExplicitValues(t *testing.T) {
	cfg := Config{
		Server: ServerConfig{Addr: ":9999"},
		Fetch:  FetchConfig{Concurrency: 3},
		Feed:   FeedConfig{List: "beststories", PageSize: 10},
	}
	cfg.FillDefaults()

	assert.Equal(t, ":9999", cfg.Server.Addr)
	assert.Equal(t, 3, cfg.Fetch.Concurrency)
	assert.Equal(t, "beststories", cfg.Feed.List)
	assert.Equal(t, 10, cfg.Feed.PageSize)
}

func TestParseDuration(t *testing.T) {
	def := 7 * time.Second

	tests := []struct {
		name  string
		input string
		want  time.Duration
	}{
		{"empty falls back", "", def},
		{"valid seconds", "10s", 10 * time.Second},
		{"valid millis", "500ms", 500 * time.Millisecond},
		{"garbage falls back", "garbage", def},
		{"negative falls back", "-5s", def},
		{"zero falls back", "0s", def},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseDuration(tt.input, def))
		})
	}
}
