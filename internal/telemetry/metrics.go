// Package telemetry exposes Prometheus metrics for the outreach service.
package telemetry

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	once sync.Once

	BulkItemsProcessed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "outreach_bulk_items_processed_total", Help: "Bulk action items that succeeded"},
		[]string{"action"})
	BulkItemsFailed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "outreach_bulk_items_failed_total", Help: "Bulk action items that failed"},
		[]string{"action", "reason"})
	BulkBatches = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "outreach_bulk_batches_total", Help: "Bulk batches executed"},
		[]string{"action"})
	DispatchSends = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "outreach_dispatch_sends_total", Help: "Outbound contact dispatches attempted"},
		[]string{"channel"})
	RateLimitRejects = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "outreach_rate_limit_rejects_total", Help: "Dispatches rejected by the channel rate limiter"})
	SweeperMarked = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "outreach_sweeper_marked_total", Help: "Candidates moved to no_response by the sweeper"})
)

// Handler exposes the /metrics HTTP handler with a singleton registry.
func Handler() http.Handler {
	once.Do(func() {
		prometheus.MustRegister(
			BulkItemsProcessed,
			BulkItemsFailed,
			BulkBatches,
			DispatchSends,
			RateLimitRejects,
			SweeperMarked,
		)
	})
	return promhttp.Handler()
}
