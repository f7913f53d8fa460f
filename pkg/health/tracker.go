// Package health tracks upstream availability across feed instances.
//
// The upstream publishes no budget or health headers, so the only available
// signal is our own outcome stream: a run of pages where nothing resolves
// points at systemic upstream degradation rather than a few bad IDs. The
// consecutive-failure count is shared via Redis so every instance sees the
// same picture.
package health

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Redis keys for shared health state.
const (
	RedisKeyConsecutiveFailures = "hn:upstream:consecutive_failures"
	RedisKeyLastSuccess         = "hn:upstream:last_success"
)

// DefaultDegradedThreshold is the consecutive-failure count at which the
// upstream is reported degraded.
const DefaultDegradedThreshold = 5

// Prometheus metrics for upstream health.
var (
	upstreamConsecutiveFailures = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "hnfeed_upstream_consecutive_failures",
		Help: "Consecutive page-level upstream failures recorded by this instance",
	})

	upstreamDegradedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hnfeed_upstream_degraded_total",
		Help: "Total number of times the upstream entered the degraded state",
	})
)

// State is a point-in-time view of upstream health.
type State struct {
	// ConsecutiveFailures counts page-level failures since the last success.
	ConsecutiveFailures int64 `json:"consecutive_failures"`

	// LastSuccess is the time of the last fully or partially resolved page.
	LastSuccess time.Time `json:"last_success"`

	// Degraded is true once ConsecutiveFailures reaches the threshold.
	Degraded bool `json:"degraded"`
}

// Tracker records page-level fetch results and answers health queries.
type Tracker struct {
	redis     *redis.Client
	threshold int64
	logger    zerolog.Logger
}

// NewTracker creates a health tracker. threshold <= 0 selects the default.
func NewTracker(redisClient *redis.Client, threshold int, logger zerolog.Logger) *Tracker {
	if threshold <= 0 {
		threshold = DefaultDegradedThreshold
	}
	return &Tracker{
		redis:     redisClient,
		threshold: int64(threshold),
		logger:    logger,
	}
}

// RecordSuccess resets the failure run and stamps the success time.
func (t *Tracker) RecordSuccess(ctx context.Context) error {
	pipe := t.redis.Pipeline()
	pipe.Del(ctx, RedisKeyConsecutiveFailures)
	pipe.Set(ctx, RedisKeyLastSuccess, time.Now().Unix(), 0)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("store health state in redis: %w", err)
	}

	upstreamConsecutiveFailures.Set(0)
	return nil
}

// RecordFailure increments the shared failure run and returns the new count.
func (t *Tracker) RecordFailure(ctx context.Context) (int64, error) {
	count, err := t.redis.Incr(ctx, RedisKeyConsecutiveFailures).Result()
	if err != nil {
		return 0, fmt.Errorf("increment failure count: %w", err)
	}

	upstreamConsecutiveFailures.Set(float64(count))

	if count == t.threshold {
		upstreamDegradedTotal.Inc()
		t.logger.Error().
			Int64("consecutive_failures", count).
			Msg("Upstream entered degraded state")
	} else if count > t.threshold {
		t.logger.Warn().
			Int64("consecutive_failures", count).
			Msg("Upstream still degraded")
	}

	return count, nil
}

// State returns the current shared health view.
func (t *Tracker) State(ctx context.Context) (*State, error) {
	count, err := t.redis.Get(ctx, RedisKeyConsecutiveFailures).Int64()
	if err != nil && err != redis.Nil {
		return nil, fmt.Errorf("get failure count: %w", err)
	}

	lastSuccessUnix, err := t.redis.Get(ctx, RedisKeyLastSuccess).Int64()
	if err != nil && err != redis.Nil {
		return nil, fmt.Errorf("get last success: %w", err)
	}

	state := &State{
		ConsecutiveFailures: count,
		Degraded:            count >= t.threshold,
	}
	if lastSuccessUnix > 0 {
		state.LastSuccess = time.Unix(lastSuccessUnix, 0)
	}

	return state, nil
}

// Degraded reports whether the shared failure run has reached the threshold.
func (t *Tracker) Degraded(ctx context.Context) (bool, error) {
	state, err := t.State(ctx)
	if err != nil {
		return false, err
	}
	return state.Degraded, nil
}
