// Package metrics holds the Prometheus collectors shared by the server and
// the workers. Every method is safe on a nil *Metrics so callers and tests
// can run without a registry.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for contas.
type Metrics struct {
	// Registry owns these metrics; /metrics serves it.
	Registry *prometheus.Registry

	requestDuration    *prometheus.HistogramVec
	instancesBuilt     *prometheus.CounterVec
	obligationsSkipped *prometheus.CounterVec
	cacheHits          *prometheus.CounterVec
	cacheMisses        *prometheus.CounterVec
	remindersSent      *prometheus.CounterVec
	messagesPublished  *prometheus.CounterVec
	ledgerRows         prometheus.Counter
}

// New creates a dedicated registry and registers every collector in it. A
// private registry keeps repeated calls in tests from panicking on duplicate
// registration.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "contas_http_request_duration_seconds",
				Help:    "Duration of HTTP requests by route and status.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route", "status"},
		),
		instancesBuilt: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "contas_instances_built_total",
				Help: "Obligation instances produced by month builds, by status.",
			},
			[]string{"status"},
		),
		obligationsSkipped: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "contas_obligations_skipped_total",
				Help: "Obligations excluded from a month build because of bad configuration.",
			},
			[]string{"reason"},
		),
		cacheHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "contas_cache_hits_total",
				Help: "Total cache hits.",
			},
			[]string{"cache"},
		),
		cacheMisses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "contas_cache_misses_total",
				Help: "Total cache misses.",
			},
			[]string{"cache"},
		),
		remindersSent: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "contas_reminders_total",
				Help: "Reminder notifications by kind and result.",
			},
			[]string{"kind", "result"},
		),
		messagesPublished: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "contas_amqp_messages_published_total",
				Help: "Instance status messages published, by result.",
			},
			[]string{"result"},
		),
		ledgerRows: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "contas_ledger_rows_appended_total",
				Help: "Rows appended to the payments ledger sheet.",
			},
		),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveRequest(method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.requestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(d.Seconds())
}

func (m *Metrics) IncrInstance(status string) {
	if m == nil {
		return
	}
	m.instancesBuilt.WithLabelValues(status).Inc()
}

func (m *Metrics) IncrSkipped(reason string) {
	if m == nil {
		return
	}
	m.obligationsSkipped.WithLabelValues(reason).Inc()
}

func (m *Metrics) IncrCacheHit(cache string) {
	if m == nil {
		return
	}
	m.cacheHits.WithLabelValues(cache).Inc()
}

func (m *Metrics) IncrCacheMiss(cache string) {
	if m == nil {
		return
	}
	m.cacheMisses.WithLabelValues(cache).Inc()
}

// IncrReminder counts one notification attempt; result is "sent" or "failed".
func (m *Metrics) IncrReminder(kind, result string) {
	if m == nil {
		return
	}
	m.remindersSent.WithLabelValues(kind, result).Inc()
}

func (m *Metrics) IncrPublished(result string) {
	if m == nil {
		return
	}
	m.messagesPublished.WithLabelValues(result).Inc()
}

func (m *Metrics) IncrLedgerRow() {
	if m == nil {
		return
	}
	m.ledgerRows.Inc()
}
