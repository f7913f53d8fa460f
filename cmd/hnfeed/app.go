package main

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/mlundgren/hnfeed/internal/config"
	"github.com/mlundgren/hnfeed/pkg/cache"
	"github.com/mlundgren/hnfeed/pkg/feed"
	"github.com/mlundgren/hnfeed/pkg/fetch"
	"github.com/mlundgren/hnfeed/pkg/health"
	"github.com/mlundgren/hnfeed/pkg/highlight"
	"github.com/mlundgren/hnfeed/pkg/hn"
	"github.com/mlundgren/hnfeed/pkg/logging"
)

// app is the assembled dependency graph of one hnfeed process.
type app struct {
	assembler *feed.Assembler
	tracker   *health.Tracker
	redis     *redis.Client
}

// close releases held connections.
func (a *app) close() {
	if a.redis != nil {
		_ = a.redis.Close()
	}
}

// retryingUpstream routes item resolves through the retry decorator while
// ranking fetches go straight to the client.
type retryingUpstream struct {
	items *hn.RetryingSource
	lists *hn.Client
}

func (u retryingUpstream) Item(ctx context.Context, id int64) (*hn.Item, error) {
	return u.items.Item(ctx, id)
}

func (u retryingUpstream) ListIDs(ctx context.Context, list string) ([]int64, error) {
	return u.lists.ListIDs(ctx, list)
}

// buildApp wires the feed stack from configuration: HN client, optional
// retry decorator, optional redis cache + health tracker, batch fetcher,
// assembler.
func buildApp(ctx context.Context, cfg config.Config) (*app, error) {
	client, err := hn.New(hn.Config{
		BaseURL:           cfg.Upstream.BaseURL,
		UserAgent:         cfg.Upstream.UserAgent,
		Timeout:           config.ParseDuration(cfg.Upstream.Timeout, 10*time.Second),
		RequestsPerSecond: cfg.Upstream.RequestsPerSecond,
		Burst:             cfg.Upstream.Burst,
	})
	if err != nil {
		return nil, fmt.Errorf("create hn client: %w", err)
	}

	var (
		source   fetch.ItemSource = client
		lists    feed.ListSource  = client
		upstream cache.Upstream   = client
		tracker  *health.Tracker
		rdb      *redis.Client
	)

	if cfg.Retry.Enabled {
		retrying := hn.NewRetryingSource(client, hn.RetryConfig{
			MaxAttempts:    cfg.Retry.MaxAttempts,
			InitialBackoff: config.ParseDuration(cfg.Retry.InitialBackoff, 500*time.Millisecond),
		})
		source = retrying
		upstream = retryingUpstream{items: retrying, lists: client}
	}

	if cfg.Redis.Enabled {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Username: cfg.Redis.Username,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			return nil, fmt.Errorf("connect to redis at %s: %w", cfg.Redis.Addr, err)
		}

		// The cache sits outermost so retried resolves still land in it.
		store := cache.NewStore(rdb, cache.DefaultConfig())
		caching := cache.NewCachingSource(upstream, store)
		source = caching
		lists = caching

		tracker = health.NewTracker(rdb, health.DefaultDegradedThreshold, logging.NewLogger("health"))
	}

	fetcher, err := fetch.NewFetcher(source, fetch.Config{
		Concurrency: cfg.Fetch.Concurrency,
		ItemTimeout: config.ParseDuration(cfg.Fetch.ItemTimeout, 8*time.Second),
	})
	if err != nil {
		if rdb != nil {
			_ = rdb.Close()
		}
		return nil, fmt.Errorf("create fetcher: %w", err)
	}

	assembler, err := feed.NewAssembler(lists, fetcher, tracker, feed.Config{
		List:     cfg.Feed.List,
		PageSize: cfg.Feed.PageSize,
		Thresholds: highlight.Thresholds{
			HotScore:          cfg.Feed.HotScore,
			HotDescendants:    cfg.Feed.HotDescendants,
			RisingScore:       cfg.Feed.RisingScore,
			RisingDescendants: cfg.Feed.RisingDescendants,
		},
	})
	if err != nil {
		if rdb != nil {
			_ = rdb.Close()
		}
		return nil, fmt.Errorf("create assembler: %w", err)
	}

	log.Info().
		Str("list", cfg.Feed.List).
		Int("concurrency", cfg.Fetch.Concurrency).
		Int("page_size", cfg.Feed.PageSize).
		Bool("cache", cfg.Redis.Enabled).
		Bool("retry", cfg.Retry.Enabled).
		Msg("Feed stack assembled")

	return &app{assembler: assembler, tracker: tracker, redis: rdb}, nil
}
