package observability

import "github.com/prometheus/client_golang/prometheus"

// Metrics is the set of Prometheus collectors shared across the HTTP
// server, the dispatcher and the worker pool. Unlike the no-op metrics
// stub this service's teacher shipped in its later revisions, these are
// real collectors wired into every component that can exercise them.
type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	TasksEnqueuedTotal  prometheus.Counter
	TasksDeliveredTotal prometheus.Counter
	TasksRetriedTotal   prometheus.Counter
	TasksSkippedTotal   *prometheus.CounterVec
	QueueDepth          prometheus.Gauge
	DispatchLoopTotal   prometheus.Counter
}

// NewMetrics builds every collector and returns the handle used to update
// them. It registers nothing; call MustRegister to expose them.
func NewMetrics() *Metrics {
	return &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sps_http_requests_total",
			Help: "Total HTTP requests processed, by method/path/status.",
		}, []string{"method", "path", "status"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "sps_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"}),
		TasksEnqueuedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sps_tasks_enqueued_total",
			Help: "Total delivery tasks inserted into the delay queue.",
		}),
		TasksDeliveredTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sps_tasks_delivered_total",
			Help: "Total delivery tasks that reached state=done.",
		}),
		TasksRetriedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sps_tasks_retried_total",
			Help: "Total delivery attempts that failed and were rescheduled.",
		}),
		TasksSkippedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sps_tasks_skipped_total",
			Help: "Total delivery tasks permanently skipped, by reason.",
		}, []string{"reason"}),
		QueueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "sps_queue_depth",
			Help: "Number of task ids returned by the most recent pop_due call.",
		}),
		DispatchLoopTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sps_dispatch_loop_total",
			Help: "Total dispatcher loop iterations.",
		}),
	}
}

// MustRegister registers every collector, panicking on duplicate
// registration (mirrors the teacher's startup-time registration pattern).
func (m *Metrics) MustRegister(registry *prometheus.Registry) {
	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.TasksEnqueuedTotal,
		m.TasksDeliveredTotal,
		m.TasksRetriedTotal,
		m.TasksSkippedTotal,
		m.QueueDepth,
		m.DispatchLoopTotal,
	)
}
