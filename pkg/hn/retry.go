package hn

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Prometheus metrics for retry operations.
var (
	itemRetriesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hnfeed_item_retries_total",
		Help: "Total number of item resolve retry attempts",
	})

	itemRetryBackoffSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "hnfeed_item_retry_backoff_seconds",
		Help:    "Backoff duration between item resolve retries",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10},
	})

	itemRetryExhaustedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hnfeed_item_retry_exhausted_total",
		Help: "Total number of item resolves that exhausted all retry attempts",
	})
)

// Source resolves a single item by ID. *Client implements it; so do the
// decorators in this package and in pkg/cache.
type Source interface {
	Item(ctx context.Context, id int64) (*Item, error)
}

// RetryConfig holds the configuration for the retrying decorator.
type RetryConfig struct {
	// MaxAttempts is the total number of attempts (including the first).
	MaxAttempts int

	// InitialBackoff is the backoff before the first retry.
	InitialBackoff time.Duration

	// MaxBackoff caps the exponential backoff.
	MaxBackoff time.Duration

	// BackoffMultiplier is the exponential growth factor.
	BackoffMultiplier float64
}

// DefaultRetryConfig returns the default retry configuration.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:       3,
		InitialBackoff:    500 * time.Millisecond,
		MaxBackoff:        10 * time.Second,
		BackoffMultiplier: 2.0,
	}
}

// RetryingSource decorates a Source with exponential-backoff retries for
// transient failures. NotFound results are returned immediately. The batch
// fetcher itself never retries; stacking this decorator under it is an
// explicit opt-in.
type RetryingSource struct {
	source Source
	config RetryConfig
	logger zerolog.Logger
}

// NewRetryingSource creates a retrying decorator around source.
func NewRetryingSource(source Source, cfg RetryConfig) *RetryingSource {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = 500 * time.Millisecond
	}
	if cfg.MaxBackoff <= 0 {
		cfg.MaxBackoff = 10 * time.Second
	}
	if cfg.BackoffMultiplier <= 1 {
		cfg.BackoffMultiplier = 2.0
	}

	return &RetryingSource{
		source: source,
		config: cfg,
		logger: log.With().Str("component", "hn-retry").Logger(),
	}
}

// Item resolves id, retrying transient failures with jittered backoff.
func (r *RetryingSource) Item(ctx context.Context, id int64) (*Item, error) {
	var lastErr error
	backoff := r.config.InitialBackoff

	for attempt := 1; attempt <= r.config.MaxAttempts; attempt++ {
		it, err := r.source.Item(ctx, id)
		if err == nil {
			if attempt > 1 {
				r.logger.Info().
					Int64("item_id", id).
					Int("attempt", attempt).
					Msg("Item resolved after retry")
			}
			return it, nil
		}

		lastErr = err

		if !IsTransient(err) {
			return nil, err
		}
		if attempt >= r.config.MaxAttempts {
			break
		}

		itemRetriesTotal.Inc()

		// Jitter (plus/minus 20%) prevents synchronized retry bursts
		// across workers hitting the same degraded upstream.
		jitter := time.Duration(float64(backoff) * (0.8 + rand.Float64()*0.4))
		itemRetryBackoffSeconds.Observe(jitter.Seconds())

		r.logger.Debug().
			Int64("item_id", id).
			Int("attempt", attempt).
			Dur("backoff", jitter).
			Msg("Retrying item resolve after backoff")

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(jitter):
		}

		backoff = time.Duration(float64(backoff) * r.config.BackoffMultiplier)
		if backoff > r.config.MaxBackoff {
			backoff = r.config.MaxBackoff
		}
	}

	itemRetryExhaustedTotal.Inc()
	r.logger.Warn().
		Int64("item_id", id).
		Int("max_attempts", r.config.MaxAttempts).
		Msg("Item resolve retries exhausted")

	return nil, fmt.Errorf("retries exhausted after %d attempts: %w", r.config.MaxAttempts, lastErr)
}
