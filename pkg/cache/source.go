package cache

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/mlundgren/hnfeed/pkg/hn"
)

// Upstream is the subset of the HN client the caching decorator wraps.
type Upstream interface {
	Item(ctx context.Context, id int64) (*hn.Item, error)
	ListIDs(ctx context.Context, list string) ([]int64, error)
}

// CachingSource decorates an upstream source with read-through caching.
// Cache errors degrade to direct upstream calls; a broken Redis never takes
// the feed down. Not-found results are not cached: unknown IDs are rare in
// live rankings and a negative entry could mask an item briefly flagged
// dead.
type CachingSource struct {
	upstream Upstream
	store    *Store
	logger   zerolog.Logger
}

// NewCachingSource creates a caching decorator around upstream.
func NewCachingSource(upstream Upstream, store *Store) *CachingSource {
	if upstream == nil {
		panic("upstream cannot be nil")
	}
	if store == nil {
		panic("store cannot be nil")
	}
	return &CachingSource{
		upstream: upstream,
		store:    store,
		logger:   log.With().Str("component", "cache").Logger(),
	}
}

// Item resolves id through the cache, falling back to the upstream.
func (c *CachingSource) Item(ctx context.Context, id int64) (*hn.Item, error) {
	it, err := c.store.GetItem(ctx, id)
	if err == nil {
		return it, nil
	}
	if !errors.Is(err, ErrCacheMiss) {
		c.logger.Warn().Err(err).Int64("item_id", id).Msg("Cache get error")
	}

	it, err = c.upstream.Item(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := c.store.SetItem(ctx, it); err != nil {
		c.logger.Warn().Err(err).Int64("item_id", id).Msg("Failed to cache item")
	}

	return it, nil
}

// ListIDs resolves a ranking through the cache, falling back to the upstream.
func (c *CachingSource) ListIDs(ctx context.Context, list string) ([]int64, error) {
	ids, err := c.store.GetList(ctx, list)
	if err == nil {
		return ids, nil
	}
	if !errors.Is(err, ErrCacheMiss) {
		c.logger.Warn().Err(err).Str("list", list).Msg("Cache get error")
	}

	ids, err = c.upstream.ListIDs(ctx, list)
	if err != nil {
		return nil, err
	}

	if err := c.store.SetList(ctx, list, ids); err != nil {
		c.logger.Warn().Err(err).Str("list", list).Msg("Failed to cache list")
	}

	return ids, nil
}
