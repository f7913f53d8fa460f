package fetch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/mlundgren/hnfeed/pkg/hn"
)

// Prometheus metrics for batch fetch operations.
var (
	fetchInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "hnfeed_fetch_inflight",
		Help: "Number of item resolve calls currently in flight",
	})

	fetchOutcomesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hnfeed_fetch_outcomes_total",
		Help: "Terminal per-item outcomes by result",
	}, []string{"result"})

	fetchBatchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "hnfeed_fetch_batch_duration_seconds",
		Help:    "Wall-clock duration of whole batch fetches",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
	})
)

// ErrInvalidConcurrency is returned when the concurrency limit is not positive.
var ErrInvalidConcurrency = errors.New("concurrency limit must be positive")

// ItemSource resolves a single item by ID. Implemented by hn.Client and the
// decorators around it.
type ItemSource interface {
	Item(ctx context.Context, id int64) (*hn.Item, error)
}

// Outcome is the terminal result for one requested ID. Exactly one of Item
// and Err is set.
type Outcome struct {
	ID   int64
	Item *hn.Item
	Err  error
}

// OK reports whether the ID resolved successfully.
func (o Outcome) OK() bool {
	return o.Err == nil
}

// Config holds batch fetcher configuration.
type Config struct {
	// Concurrency is the maximum number of in-flight resolve calls.
	Concurrency int

	// ItemTimeout bounds a single resolve call; overruns become transient
	// failures for that ID only.
	ItemTimeout time.Duration
}

// DefaultConfig returns the default fetcher configuration.
func DefaultConfig() Config {
	return Config{
		Concurrency: 10,
		ItemTimeout: 8 * time.Second,
	}
}

// Fetcher resolves batches of item IDs against an ItemSource under a fixed
// concurrency cap.
type Fetcher struct {
	source ItemSource
	config Config
	logger zerolog.Logger
}

// NewFetcher creates a batch fetcher. A non-positive concurrency limit is a
// configuration error and fails here, before any call is issued.
func NewFetcher(source ItemSource, cfg Config) (*Fetcher, error) {
	if source == nil {
		return nil, fmt.Errorf("item source is required")
	}
	if cfg.Concurrency <= 0 {
		return nil, fmt.Errorf("%w (got %d)", ErrInvalidConcurrency, cfg.Concurrency)
	}
	if cfg.ItemTimeout <= 0 {
		cfg.ItemTimeout = 8 * time.Second
	}

	return &Fetcher{
		source: source,
		config: cfg,
		logger: log.With().Str("component", "fetch").Logger(),
	}, nil
}

// FetchAll resolves every ID in ids and returns one Outcome per ID, in input
// order. Per-item failures are contained in their Outcome and never abort
// the batch. The returned error is non-nil only for batch-level conditions:
// context cancellation. On cancellation no outcomes are returned; a
// cancelled batch is never mistakable for a complete one.
//
// Duplicate IDs are resolved independently; callers needing deduplication
// must pre-filter.
func (f *Fetcher) FetchAll(ctx context.Context, ids []int64) ([]Outcome, error) {
	if len(ids) == 0 {
		return []Outcome{}, nil
	}

	start := time.Now()
	outcomes := make([]Outcome, len(ids))

	// Fixed-size semaphore gives an atomic concurrency cap with no
	// transient overshoot. Each goroutine writes only its own slot.
	sem := make(chan struct{}, f.config.Concurrency)
	var wg sync.WaitGroup

scheduling:
	for i, id := range ids {
		select {
		case <-ctx.Done():
			break scheduling
		case sem <- struct{}{}:
		}

		// Re-check after acquiring: a cancellation that raced the acquire
		// must not start a new resolve.
		if ctx.Err() != nil {
			<-sem
			break scheduling
		}

		wg.Add(1)
		go func(slot int, id int64) {
			defer wg.Done()
			defer func() { <-sem }()

			fetchInFlight.Inc()
			defer fetchInFlight.Dec()

			outcomes[slot] = f.resolve(ctx, id)
		}(i, id)
	}

	// Single completion point: wait for every started resolve to go
	// terminal before anything is returned.
	wg.Wait()

	if err := ctx.Err(); err != nil {
		f.logger.Warn().
			Int("requested", len(ids)).
			Msg("Batch fetch cancelled")
		return nil, fmt.Errorf("batch fetch cancelled: %w", err)
	}

	ok, notFound, transient := 0, 0, 0
	for _, o := range outcomes {
		switch {
		case o.OK():
			ok++
		case hn.IsNotFound(o.Err):
			notFound++
		default:
			transient++
		}
	}
	fetchOutcomesTotal.WithLabelValues("ok").Add(float64(ok))
	fetchOutcomesTotal.WithLabelValues("not_found").Add(float64(notFound))
	fetchOutcomesTotal.WithLabelValues("transient").Add(float64(transient))
	fetchBatchDuration.Observe(time.Since(start).Seconds())

	f.logger.Debug().
		Int("requested", len(ids)).
		Int("resolved", ok).
		Int("not_found", notFound).
		Int("transient", transient).
		Dur("duration", time.Since(start)).
		Msg("Batch fetch complete")

	return outcomes, nil
}

// resolve performs a single timeout-guarded resolve call.
func (f *Fetcher) resolve(ctx context.Context, id int64) Outcome {
	ictx, cancel := context.WithTimeout(ctx, f.config.ItemTimeout)
	defer cancel()

	it, err := f.source.Item(ictx, id)
	if err != nil {
		// A per-item deadline overrun is a transient failure for this ID,
		// unless the whole batch was cancelled underneath it.
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil && !hn.IsTransient(err) {
			err = &hn.TransientError{Endpoint: fmt.Sprintf("item/%d", id), Err: err}
		}
		return Outcome{ID: id, Err: err}
	}

	return Outcome{ID: id, Item: it}
}
