package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "analyzer"

// Metrics holds the application collectors on a private registry. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	datasetsLoaded *prometheus.CounterVec
	rowsLoaded     prometheus.Counter
	rowsDropped    *prometheus.CounterVec
	loadFailures   *prometheus.CounterVec
	loadDuration   prometheus.Histogram
	packRequests   prometheus.Counter
	httpRequests   *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		datasetsLoaded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "datasets_loaded_total",
			Help:      "Datasets loaded, by source.",
		}, []string{"source"}),
		rowsLoaded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_loaded_total",
			Help:      "Transactions kept after cleaning.",
		}),
		rowsDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_dropped_total",
			Help:      "Input rows dropped, by reason.",
		}, []string{"reason"}),
		loadFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "load_failures_total",
			Help:      "Failed loads, by reason.",
		}, []string{"reason"}),
		loadDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "load_duration_seconds",
			Help:      "Time spent loading a dataset.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12),
		}),
		packRequests: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pack_suggestions_total",
			Help:      "Pack suggestion computations.",
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests, by method and status.",
		}, []string{"method", "status"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.datasetsLoaded,
		m.rowsLoaded,
		m.rowsDropped,
		m.loadFailures,
		m.loadDuration,
		m.packRequests,
		m.httpRequests,
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveLoad records a successful load.
func (m *Metrics) ObserveLoad(source string, rows, droppedStatus, droppedDate int, d time.Duration) {
	if m == nil {
		return
	}
	m.datasetsLoaded.WithLabelValues(source).Inc()
	m.rowsLoaded.Add(float64(rows))
	m.rowsDropped.WithLabelValues("status").Add(float64(droppedStatus))
	m.rowsDropped.WithLabelValues("date").Add(float64(droppedDate))
	m.loadDuration.Observe(d.Seconds())
}

func (m *Metrics) LoadFailed(reason string) {
	if m == nil {
		return
	}
	m.loadFailures.WithLabelValues(reason).Inc()
}

func (m *Metrics) PackSuggested() {
	if m == nil {
		return
	}
	m.packRequests.Inc()
}

func (m *Metrics) HTTPRequest(method string, status int) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, strconv.Itoa(status)).Inc()
}
