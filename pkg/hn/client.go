package hn

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

// Prometheus metrics for upstream API operations.
var (
	upstreamRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hnfeed_upstream_requests_total",
		Help: "Total upstream API requests by endpoint kind and status",
	}, []string{"endpoint", "status"})

	upstreamRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "hnfeed_upstream_request_duration_seconds",
		Help:    "Upstream request duration in seconds by endpoint kind",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
	}, []string{"endpoint"})

	upstreamErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hnfeed_upstream_errors_total",
		Help: "Total upstream failures by class",
	}, []string{"class"})

	limiterWaitSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "hnfeed_limiter_wait_seconds",
		Help:    "Time spent waiting on the client-side request limiter",
		Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 5},
	})
)

// DefaultBaseURL is the public v0 API endpoint.
const DefaultBaseURL = "https://hacker-news.firebaseio.com/v0"

// Config holds the client configuration.
type Config struct {
	// BaseURL is the API root, e.g. "https://hacker-news.firebaseio.com/v0".
	BaseURL string

	// UserAgent identifies this client to the upstream.
	UserAgent string

	// Timeout is the hard cap on a single HTTP request.
	Timeout time.Duration

	// RequestsPerSecond caps the client-side request rate. The upstream has
	// no published budget headers, so the gate is purely local.
	RequestsPerSecond float64

	// Burst is the limiter burst size.
	Burst int
}

// DefaultConfig returns a safe default configuration.
func DefaultConfig() Config {
	return Config{
		BaseURL:           DefaultBaseURL,
		UserAgent:         "hnfeed/1.0",
		Timeout:           10 * time.Second,
		RequestsPerSecond: 20,
		Burst:             20,
	}
}

// Client is a Hacker News API client. It resolves one item per call and
// performs no retries; failure classification is left to the error types.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	limiter    *rate.Limiter
	sanitizer  *bluemonday.Policy
	logger     zerolog.Logger
}

// New creates a new Hacker News client.
func New(cfg Config) (*Client, error) {
	if cfg.RequestsPerSecond <= 0 {
		return nil, fmt.Errorf("requests_per_second must be positive (got %v)", cfg.RequestsPerSecond)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "hnfeed/1.0"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 1
	}

	return &Client{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		userAgent: cfg.UserAgent,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		limiter:   rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst),
		sanitizer: bluemonday.StrictPolicy(),
		logger:    log.With().Str("component", "hn-client").Logger(),
	}, nil
}

// Item resolves a single item by ID.
// Returns a NotFoundError for 404s, null bodies and deleted/dead items,
// and a TransientError for network failures, timeouts and 429/5xx.
func (c *Client) Item(ctx context.Context, id int64) (*Item, error) {
	path := fmt.Sprintf("/item/%d.json", id)

	var it *Item
	if err := c.get(ctx, "item", path, &it); err != nil {
		var nf *NotFoundError
		if errors.As(err, &nf) {
			return nil, &NotFoundError{ID: id, Reason: nf.Reason}
		}
		return nil, err
	}

	// The upstream answers 200 with a literal null body for unknown IDs.
	if it == nil {
		upstreamErrorsTotal.WithLabelValues("not_found").Inc()
		return nil, &NotFoundError{ID: id, Reason: "null body"}
	}
	if it.Deleted || it.Dead {
		upstreamErrorsTotal.WithLabelValues("not_found").Inc()
		reason := "deleted"
		if it.Dead {
			reason = "dead"
		}
		return nil, &NotFoundError{ID: id, Reason: reason}
	}

	if it.Text != "" {
		it.Text = strings.TrimSpace(html.UnescapeString(c.sanitizer.Sanitize(it.Text)))
	}

	return it, nil
}

// ListIDs fetches an ordered ID list such as topstories or beststories.
// The upstream returns the full ranking (up to 500 IDs) in one response.
func (c *Client) ListIDs(ctx context.Context, list string) ([]int64, error) {
	if !KnownList(list) {
		return nil, fmt.Errorf("hn: unknown list %q", list)
	}

	var ids []int64
	if err := c.get(ctx, "list", "/"+list+".json", &ids); err != nil {
		return nil, err
	}

	c.logger.Debug().Str("list", list).Int("count", len(ids)).Msg("Fetched ID list")
	return ids, nil
}

// get performs a rate-limited GET against the API and decodes the JSON body.
func (c *Client) get(ctx context.Context, kind, path string, v any) error {
	waitStart := time.Now()
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}
	limiterWaitSeconds.Observe(time.Since(waitStart).Seconds())

	start := time.Now()
	defer func() {
		upstreamRequestDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		upstreamRequestsTotal.WithLabelValues(kind, "network_error").Inc()
		upstreamErrorsTotal.WithLabelValues("transient").Inc()
		return &TransientError{Endpoint: path, Err: err}
	}
	defer resp.Body.Close()

	upstreamRequestsTotal.WithLabelValues(kind, strconv.Itoa(resp.StatusCode)).Inc()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		upstreamErrorsTotal.WithLabelValues("not_found").Inc()
		return &NotFoundError{Reason: "status 404"}
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		// 429 and 5xx are the expected failure modes here; anything else
		// unexpected is classified the same way so callers stay binary.
		upstreamErrorsTotal.WithLabelValues("transient").Inc()
		c.logger.Warn().
			Str("endpoint", path).
			Int("status", resp.StatusCode).
			Msg("Upstream request error")
		return &TransientError{Endpoint: path, Status: resp.StatusCode}
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		upstreamErrorsTotal.WithLabelValues("transient").Inc()
		return &TransientError{Endpoint: path, Err: fmt.Errorf("decode response: %w", err)}
	}

	return nil
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}
