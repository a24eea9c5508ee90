// Package metrics registers the hub's Prometheus instruments.
package metrics

import (
	"database/sql"
	"log"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricPrefix = "edi_"

	resultSuccess = "success"
	resultError   = "error"
)

var (
	registerOnce sync.Once

	documentsRendered *prometheus.CounterVec
	documentLatency   *prometheus.HistogramVec

	bundlesPeeked    *prometheus.CounterVec
	bundlesPublished *prometheus.CounterVec

	messagesEnqueued *prometheus.CounterVec

	seriesEmitted *prometheus.CounterVec

	exportTotal   *prometheus.CounterVec
	exportLatency *prometheus.HistogramVec
)

// Init registers the hub metrics and DB-backed gauges.
func Init(db *sql.DB, logger *log.Logger) {
	registerOnce.Do(func() {
		documentsRendered = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "documents_rendered_total",
				Help: "Total market documents rendered by type, format and result",
			},
			[]string{"type", "format", "result"},
		)
		documentLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "document_render_latency_seconds",
				Help:    "Document rendering latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"format", "result"},
		)

		bundlesPeeked = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "bundles_peeked_total",
				Help: "Total bundle peeks by category and result",
			},
			[]string{"category", "result"},
		)
		bundlesPublished = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "bundles_published_total",
				Help: "Total bundles acknowledged by category",
			},
			[]string{"category"},
		)

		messagesEnqueued = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "messages_enqueued_total",
				Help: "Total outgoing messages enqueued by document type",
			},
			[]string{"type"},
		)

		seriesEmitted = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "segmentation_series_total",
				Help: "Total series packages emitted by the segmentation engine",
			},
			[]string{"kind"},
		)

		exportTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "bundle_export_total",
				Help: "Total bundle exports by format and result",
			},
			[]string{"format", "result"},
		)
		exportLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "bundle_export_latency_seconds",
				Help:    "Bundle export latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"format", "result"},
		)

		prometheus.MustRegister(
			documentsRendered,
			documentLatency,
			bundlesPeeked,
			bundlesPublished,
			messagesEnqueued,
			seriesEmitted,
			exportTotal,
			exportLatency,
		)

		if db != nil {
			registerDBMetrics(db, logger)
		}
	})
}

// ObserveDocumentRender records a document writer invocation.
func ObserveDocumentRender(documentType, format, result string, duration time.Duration) {
	if result == "" {
		result = resultSuccess
	}
	if documentsRendered != nil {
		documentsRendered.WithLabelValues(documentType, format, result).Inc()
	}
	if documentLatency != nil {
		documentLatency.WithLabelValues(format, result).Observe(duration.Seconds())
	}
}

// IncBundlePeeked increments the peek counter.
func IncBundlePeeked(category, result string) {
	if result == "" {
		result = resultSuccess
	}
	if bundlesPeeked != nil {
		bundlesPeeked.WithLabelValues(category, result).Inc()
	}
}

// IncBundlePublished increments the publish counter.
func IncBundlePublished(category string) {
	if bundlesPublished != nil {
		bundlesPublished.WithLabelValues(category).Inc()
	}
}

// IncMessageEnqueued increments the enqueue counter.
func IncMessageEnqueued(documentType string) {
	if messagesEnqueued != nil {
		messagesEnqueued.WithLabelValues(documentType).Inc()
	}
}

// IncSeriesEmitted increments the segmentation counter.
func IncSeriesEmitted(kind string) {
	if kind == "" {
		kind = "unknown"
	}
	if seriesEmitted != nil {
		seriesEmitted.WithLabelValues(kind).Inc()
	}
}

// ObserveBundleExport records an export and its latency.
func ObserveBundleExport(format, result string, duration time.Duration) {
	if format == "" {
		format = "unknown"
	}
	if result == "" {
		result = resultSuccess
	}
	if exportTotal != nil {
		exportTotal.WithLabelValues(format, result).Inc()
	}
	if exportLatency != nil {
		exportLatency.WithLabelValues(format, result).Observe(duration.Seconds())
	}
}

// Exported constants for callers.
const (
	ResultSuccess = resultSuccess
	ResultError   = resultError
)
