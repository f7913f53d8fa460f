// Package feed assembles ranked, tier-annotated item pages.
//
// An Assembler stitches together the three lower layers: it slices the next
// window of IDs out of an upstream ranking, resolves the window through the
// bounded batch fetcher, annotates each resolved item with its highlight
// tier, and hands back an order-preserving page plus a continuation cursor.
// It holds no state between calls; all continuation state lives in the
// cursor the caller persists.
package feed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/mlundgren/hnfeed/pkg/fetch"
	"github.com/mlundgren/hnfeed/pkg/health"
	"github.com/mlundgren/hnfeed/pkg/highlight"
	"github.com/mlundgren/hnfeed/pkg/hn"
)

// Errors returned by the assembler.
var (
	// ErrInvalidPageSize is returned for a non-positive page size.
	ErrInvalidPageSize = errors.New("page size must be positive")

	// ErrUpstreamDegraded is returned when a non-empty ID window resolved to
	// zero items. Callers should treat it as retryable, not as a hard error.
	ErrUpstreamDegraded = errors.New("no items resolved; upstream may be degraded")
)

// ListSource provides an ordered upstream ID ranking. Implemented by
// hn.Client and the caching decorator.
type ListSource interface {
	ListIDs(ctx context.Context, list string) ([]int64, error)
}

// EnrichedItem is a fetched item annotated with its highlight tier.
type EnrichedItem struct {
	hn.Item
	Tier highlight.Tier `json:"tier"`
}

// PageResult is one assembled page: successfully resolved items in ranking
// order, plus the cursor for the next window. Failed IDs are elided, so a
// page may carry fewer items than the requested page size.
type PageResult struct {
	Items []EnrichedItem `json:"items"`
	Next  Cursor         `json:"next_cursor"`
}

// Config holds assembler configuration.
type Config struct {
	// List is the upstream ranking to page through (default topstories).
	List string

	// PageSize is the default window size for GetPage calls passing 0.
	PageSize int

	// Thresholds are the highlight tier bounds.
	Thresholds highlight.Thresholds
}

// DefaultConfig returns the default assembler configuration.
func DefaultConfig() Config {
	return Config{
		List:       hn.ListTop,
		PageSize:   30,
		Thresholds: highlight.DefaultThresholds(),
	}
}

// Assembler produces ready-to-render pages from an upstream ranking.
type Assembler struct {
	lists   ListSource
	fetcher *fetch.Fetcher
	tracker *health.Tracker // optional
	config  Config
	logger  zerolog.Logger
}

// NewAssembler creates an assembler. tracker may be nil; page results are
// then not fed into the shared upstream health state.
func NewAssembler(lists ListSource, fetcher *fetch.Fetcher, tracker *health.Tracker, cfg Config) (*Assembler, error) {
	if lists == nil {
		return nil, fmt.Errorf("list source is required")
	}
	if fetcher == nil {
		return nil, fmt.Errorf("fetcher is required")
	}
	if cfg.List == "" {
		cfg.List = hn.ListTop
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = 30
	}
	zero := highlight.Thresholds{}
	if cfg.Thresholds == zero {
		cfg.Thresholds = highlight.DefaultThresholds()
	}

	return &Assembler{
		lists:   lists,
		fetcher: fetcher,
		tracker: tracker,
		config:  cfg,
		logger:  log.With().Str("component", "feed").Str("list", cfg.List).Logger(),
	}, nil
}

// GetPage assembles the page of pageSize items starting at cursor. A zero
// cursor starts at the top of the ranking; pageSize 0 selects the configured
// default. The returned cursor always advances past the consumed window,
// even when some IDs in it failed: failed IDs are not retried on a later
// page.
func (a *Assembler) GetPage(ctx context.Context, cursor Cursor, pageSize int) (*PageResult, error) {
	if pageSize == 0 {
		pageSize = a.config.PageSize
	}
	if pageSize < 0 {
		return nil, fmt.Errorf("%w (got %d)", ErrInvalidPageSize, pageSize)
	}

	offset, err := cursor.offset()
	if err != nil {
		return nil, err
	}

	start := time.Now()

	ids, err := a.lists.ListIDs(ctx, a.config.List)
	if err != nil {
		PagesTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("fetch %s ranking: %w", a.config.List, err)
	}

	window := windowOf(ids, offset, pageSize)
	next := cursorAt(offset + pageSize)

	// Past the end of the ranking: an empty page is a valid terminal
	// result, not a degraded one — nothing was requested.
	if len(window) == 0 {
		PagesTotal.WithLabelValues("ok").Inc()
		return &PageResult{Items: []EnrichedItem{}, Next: next}, nil
	}

	outcomes, err := a.fetcher.FetchAll(ctx, window)
	if err != nil {
		PagesTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	items := make([]EnrichedItem, 0, len(outcomes))
	failed := 0
	for _, o := range outcomes {
		if !o.OK() {
			// Policy: failures are elided from the page, surfaced only in
			// logs and metrics. The cursor still advances past them.
			failed++
			PageFailuresTotal.Inc()
			a.logger.Warn().
				Int64("item_id", o.ID).
				Err(o.Err).
				Msg("Item elided from page")
			continue
		}
		items = append(items, EnrichedItem{
			Item: *o.Item,
			Tier: a.config.Thresholds.Classify(o.Item.Score, o.Item.Descendants),
		})
	}

	if len(items) == 0 {
		PagesTotal.WithLabelValues("degraded").Inc()
		a.recordFailure(ctx)
		return nil, fmt.Errorf("page at offset %d: %w", offset, ErrUpstreamDegraded)
	}

	PagesTotal.WithLabelValues("ok").Inc()
	PageItems.Observe(float64(len(items)))
	a.recordSuccess(ctx)

	a.logger.Info().
		Int("offset", offset).
		Int("requested", len(window)).
		Int("resolved", len(items)).
		Int("failed", failed).
		Dur("duration", time.Since(start)).
		Msg("Page assembled")

	return &PageResult{Items: items, Next: next}, nil
}

// windowOf slices the ranking defensively against short lists.
func windowOf(ids []int64, offset, size int) []int64 {
	if offset >= len(ids) {
		return nil
	}
	end := offset + size
	if end > len(ids) {
		end = len(ids)
	}
	return ids[offset:end]
}

func (a *Assembler) recordSuccess(ctx context.Context) {
	if a.tracker == nil {
		return
	}
	if err := a.tracker.RecordSuccess(ctx); err != nil {
		a.logger.Warn().Err(err).Msg("Failed to record upstream success")
	}
}

func (a *Assembler) recordFailure(ctx context.Context) {
	if a.tracker == nil {
		return
	}
	if _, err := a.tracker.RecordFailure(ctx); err != nil {
		a.logger.Warn().Err(err).Msg("Failed to record upstream failure")
	}
}
