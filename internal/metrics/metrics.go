// Package metrics collects and exposes Prometheus metrics for the sync
// reconciler.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector records sync telemetry. It implements app.SyncRecorder.
type Collector struct {
	registry    *prometheus.Registry
	opsApplied  *prometheus.CounterVec
	opsFailed   *prometheus.CounterVec
	queueDepth  *prometheus.GaugeVec
	drainTiming prometheus.Histogram
}

// NewCollector creates a Collector with its own registry.
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		opsApplied: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cycletrack_sync_operations_applied_total",
			Help: "Queued operations confirmed against the remote store.",
		}, []string{"type"}),
		opsFailed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cycletrack_sync_operations_failed_total",
			Help: "Queued operations whose remote apply failed and was retained for retry.",
		}, []string{"type"}),
		queueDepth: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "cycletrack_sync_queue_depth",
			Help: "Undrained pending operations per user.",
		}, []string{"user"}),
		drainTiming: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "cycletrack_sync_drain_duration_seconds",
			Help:    "Duration of one queue drain.",
			Buckets: prometheus.DefBuckets,
		}),
	}
	c.registry.MustRegister(c.opsApplied, c.opsFailed, c.queueDepth, c.drainTiming)
	return c
}

// OperationApplied counts one confirmed operation.
func (c *Collector) OperationApplied(opType string) {
	c.opsApplied.WithLabelValues(opType).Inc()
}

// OperationFailed counts one failed (retained) operation.
func (c *Collector) OperationFailed(opType string) {
	c.opsFailed.WithLabelValues(opType).Inc()
}

// QueueDepth records the current pending-queue depth for a user.
func (c *Collector) QueueDepth(userID string, depth int) {
	c.queueDepth.WithLabelValues(userID).Set(float64(depth))
}

// DrainDuration observes the duration of one drain.
func (c *Collector) DrainDuration(d time.Duration) {
	c.drainTiming.Observe(d.Seconds())
}

// Handler returns the HTTP handler exposing the metrics.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
