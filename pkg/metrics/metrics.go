// Package metrics documents the Prometheus metrics exposed by hnfeed.
// All metrics are defined in their respective packages (hn, fetch, feed,
// cache, health) to maintain modularity and avoid circular dependencies.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry is the default Prometheus registry used by hnfeed.
// All metrics are automatically registered via promauto in their packages.
var Registry = prometheus.DefaultRegisterer

// Metrics Documentation
//
// Upstream Metrics (pkg/hn):
//   - hnfeed_upstream_requests_total{endpoint, status} (Counter): requests by endpoint kind and HTTP status
//   - hnfeed_upstream_request_duration_seconds{endpoint} (Histogram): request duration
//   - hnfeed_upstream_errors_total{class} (Counter): failures by class (not_found, transient)
//   - hnfeed_limiter_wait_seconds (Histogram): time spent in the client-side rate gate
//
// Retry Metrics (pkg/hn):
//   - hnfeed_item_retries_total (Counter): retry attempts
//   - hnfeed_item_retry_backoff_seconds (Histogram): backoff durations
//   - hnfeed_item_retry_exhausted_total (Counter): resolves that exhausted retries
//
// Fetch Metrics (pkg/fetch):
//   - hnfeed_fetch_inflight (Gauge): resolve calls currently in flight
//   - hnfeed_fetch_outcomes_total{result} (Counter): terminal outcomes (ok, not_found, transient)
//   - hnfeed_fetch_batch_duration_seconds (Histogram): whole-batch wall time
//
// Feed Metrics (pkg/feed):
//   - hnfeed_pages_total{result} (Counter): assembled pages (ok, degraded, error)
//   - hnfeed_page_failures_total (Counter): per-item failures elided from pages
//   - hnfeed_page_items (Histogram): resolved items per page
//
// Cache Metrics (pkg/cache):
//   - hnfeed_cache_hits_total{kind} (Counter): hits by entry kind (item, list)
//   - hnfeed_cache_misses_total{kind} (Counter): misses by entry kind
//   - hnfeed_cache_errors_total{operation} (Counter): cache operation errors
//
// Health Metrics (pkg/health):
//   - hnfeed_upstream_consecutive_failures (Gauge): shared failure run length
//   - hnfeed_upstream_degraded_total (Counter): degraded-state entries
//
// Example Prometheus Queries:
//
//   # Cache hit rate
//   sum(rate(hnfeed_cache_hits_total[5m])) /
//   (sum(rate(hnfeed_cache_hits_total[5m])) + sum(rate(hnfeed_cache_misses_total[5m])))
//
//   # Elided-failure rate per page
//   rate(hnfeed_page_failures_total[5m]) / rate(hnfeed_pages_total[5m])
//
//   # P95 batch latency
//   histogram_quantile(0.95, rate(hnfeed_fetch_batch_duration_seconds_bucket[5m]))
//
//   # Upstream degradation
//   hnfeed_upstream_consecutive_failures > 0
