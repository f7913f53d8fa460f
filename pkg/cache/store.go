// Package cache provides a Redis-backed cache for Hacker News items and
// ID rankings.
//
// Items are immutable once fetched but their engagement counts drift, so
// entries carry short TTLs rather than invalidation logic. Rankings reorder
// constantly and get an even shorter TTL.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mlundgren/hnfeed/pkg/hn"
)

// ErrCacheMiss indicates the requested key was not found in cache.
var ErrCacheMiss = errors.New("cache miss")

// Config holds cache TTLs.
type Config struct {
	// ItemTTL bounds how stale a cached item's score/descendants may get.
	ItemTTL time.Duration

	// ListTTL bounds how stale a cached ranking may get.
	ListTTL time.Duration
}

// DefaultConfig returns the default cache configuration.
func DefaultConfig() Config {
	return Config{
		ItemTTL: 5 * time.Minute,
		ListTTL: time.Minute,
	}
}

// Store handles caching operations with a Redis backend.
type Store struct {
	redis  *redis.Client
	config Config
}

// NewStore creates a cache store with a Redis backend.
func NewStore(redisClient *redis.Client, cfg Config) *Store {
	if redisClient == nil {
		panic("redis client cannot be nil")
	}
	if cfg.ItemTTL <= 0 {
		cfg.ItemTTL = 5 * time.Minute
	}
	if cfg.ListTTL <= 0 {
		cfg.ListTTL = time.Minute
	}
	return &Store{
		redis:  redisClient,
		config: cfg,
	}
}

// GetItem retrieves a cached item. Returns ErrCacheMiss if absent.
func (s *Store) GetItem(ctx context.Context, id int64) (*hn.Item, error) {
	data, err := s.redis.Get(ctx, ItemKey(id)).Bytes()
	if err != nil {
		if err == redis.Nil {
			CacheMisses.WithLabelValues("item").Inc()
			return nil, ErrCacheMiss
		}
		CacheErrors.WithLabelValues("get").Inc()
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var it hn.Item
	if err := json.Unmarshal(data, &it); err != nil {
		CacheErrors.WithLabelValues("get").Inc()
		return nil, fmt.Errorf("unmarshal cached item: %w", err)
	}

	CacheHits.WithLabelValues("item").Inc()
	return &it, nil
}

// SetItem stores an item with the configured item TTL.
func (s *Store) SetItem(ctx context.Context, it *hn.Item) error {
	if it == nil {
		return fmt.Errorf("item cannot be nil")
	}

	data, err := json.Marshal(it)
	if err != nil {
		CacheErrors.WithLabelValues("set").Inc()
		return fmt.Errorf("marshal item: %w", err)
	}

	if err := s.redis.Set(ctx, ItemKey(it.ID), data, s.config.ItemTTL).Err(); err != nil {
		CacheErrors.WithLabelValues("set").Inc()
		return fmt.Errorf("redis set: %w", err)
	}

	return nil
}

// GetList retrieves a cached ID ranking. Returns ErrCacheMiss if absent.
func (s *Store) GetList(ctx context.Context, list string) ([]int64, error) {
	data, err := s.redis.Get(ctx, ListKey(list)).Bytes()
	if err != nil {
		if err == redis.Nil {
			CacheMisses.WithLabelValues("list").Inc()
			return nil, ErrCacheMiss
		}
		CacheErrors.WithLabelValues("get").Inc()
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var ids []int64
	if err := json.Unmarshal(data, &ids); err != nil {
		CacheErrors.WithLabelValues("get").Inc()
		return nil, fmt.Errorf("unmarshal cached list: %w", err)
	}

	CacheHits.WithLabelValues("list").Inc()
	return ids, nil
}

// SetList stores an ID ranking with the configured list TTL.
func (s *Store) SetList(ctx context.Context, list string, ids []int64) error {
	data, err := json.Marshal(ids)
	if err != nil {
		CacheErrors.WithLabelValues("set").Inc()
		return fmt.Errorf("marshal list: %w", err)
	}

	if err := s.redis.Set(ctx, ListKey(list), data, s.config.ListTTL).Err(); err != nil {
		CacheErrors.WithLabelValues("set").Inc()
		return fmt.Errorf("redis set: %w", err)
	}

	return nil
}

// Delete removes a cached item.
func (s *Store) Delete(ctx context.Context, id int64) error {
	if err := s.redis.Del(ctx, ItemKey(id)).Err(); err != nil {
		CacheErrors.WithLabelValues("delete").Inc()
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}
