package feed

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PagesTotal counts assembled pages by result.
	PagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hnfeed_pages_total",
			Help: "Total assembled pages by result",
		},
		[]string{"result"}, // "ok", "degraded", "error"
	)

	// PageFailuresTotal counts per-item failures elided from pages. The page
	// contract stays silent about them; this counter is how a masked
	// upstream problem still becomes visible.
	PageFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "hnfeed_page_failures_total",
			Help: "Total per-item failures silently elided from pages",
		},
	)

	// PageItems observes how many items each assembled page carried.
	PageItems = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "hnfeed_page_items",
			Help:    "Number of resolved items per assembled page",
			Buckets: []float64{0, 5, 10, 15, 20, 25, 30, 50},
		},
	)
)
