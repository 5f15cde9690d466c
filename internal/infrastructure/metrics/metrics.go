// Package metrics exposes Prometheus collectors for the service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"orderbell/internal/domain/order"
)

const namespace = "orderbell"

// Metrics owns a private registry and the service's collectors.
type Metrics struct {
	registry *prometheus.Registry

	ordersCreated   prometheus.Counter
	ordersCompleted prometheus.Counter
	ordersDeleted   prometheus.Counter
	pushMessages    *prometheus.CounterVec

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
}

// New creates and registers all collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		ordersCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_created_total",
			Help:      "Orders created.",
		}),
		ordersCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_completed_total",
			Help:      "Orders marked done.",
		}),
		ordersDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_deleted_total",
			Help:      "Orders moved into history.",
		}),
		pushMessages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "push_messages_total",
			Help:      "Push messages by delivery result.",
		}, []string{"result"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests handled.",
		}, []string{"method", "path", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		}, []string{"method", "path"}),
	}

	m.registry.MustRegister(
		m.ordersCreated,
		m.ordersCompleted,
		m.ordersDeleted,
		m.pushMessages,
		m.httpRequests,
		m.httpDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry (tests, extra collectors).
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveHTTP records one finished request. path should be the route
// template, not the raw URL, to keep label cardinality bounded.
func (m *Metrics) ObserveHTTP(method, path string, status int, latency time.Duration) {
	m.httpRequests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, path).Observe(latency.Seconds())
}

// OrderCreated implements order.Recorder.
func (m *Metrics) OrderCreated() { m.ordersCreated.Inc() }

// OrderCompleted implements order.Recorder.
func (m *Metrics) OrderCompleted() { m.ordersCompleted.Inc() }

// OrderDeleted implements order.Recorder.
func (m *Metrics) OrderDeleted() { m.ordersDeleted.Inc() }

// PushMessages implements order.Recorder.
func (m *Metrics) PushMessages(result string, n int) {
	if n <= 0 {
		return
	}
	m.pushMessages.WithLabelValues(result).Add(float64(n))
}

var _ order.Recorder = (*Metrics)(nil)
