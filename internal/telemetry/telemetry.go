// Package telemetry exposes the service's own Prometheus metrics. These
// describe the collector itself, not the request logs it aggregates.
package telemetry

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "qa_metrics"

type Metrics struct {
	registry *prometheus.Registry

	HTTPRequests    *prometheus.CounterVec
	HTTPDuration    *prometheus.HistogramVec
	IngestedRecords *prometheus.CounterVec
	IngestBatches   prometheus.Counter
	RejectedBatches prometheus.Counter
	StoreClears     prometheus.Counter
}

// New registers all collectors on a private registry. storeSize is sampled on
// every scrape; pass nil to skip the gauge.
func New(storeSize func() int) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by route, method and status code.",
		}, []string{"route", "method", "code"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		IngestedRecords: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingest",
			Name:      "records_total",
			Help:      "Request logs appended to the store, by status.",
		}, []string{"status"}),
		IngestBatches: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingest",
			Name:      "batches_total",
			Help:      "Accepted batch ingestion calls.",
		}),
		RejectedBatches: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingest",
			Name:      "rejected_batches_total",
			Help:      "Batch ingestion calls rejected because logs was not an array.",
		}),
		StoreClears: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "clears_total",
			Help:      "Times the request log store was cleared.",
		}),
	}

	m.registry.MustRegister(
		m.HTTPRequests,
		m.HTTPDuration,
		m.IngestedRecords,
		m.IngestBatches,
		m.RejectedBatches,
		m.StoreClears,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	if storeSize != nil {
		m.registry.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "records",
			Help:      "Request logs currently held in memory.",
		}, func() float64 { return float64(storeSize()) }))
	}

	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) ObserveRequest(route, method string, code int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(route, method, strconv.Itoa(code)).Inc()
	m.HTTPDuration.WithLabelValues(route).Observe(elapsed.Seconds())
}

func (m *Metrics) RecordIngested(status string) {
	if m == nil {
		return
	}
	m.IngestedRecords.WithLabelValues(status).Inc()
}

func (m *Metrics) RecordBatch(accepted bool) {
	if m == nil {
		return
	}
	if accepted {
		m.IngestBatches.Inc()
	} else {
		m.RejectedBatches.Inc()
	}
}

func (m *Metrics) RecordClear() {
	if m == nil {
		return
	}
	m.StoreClears.Inc()
}
