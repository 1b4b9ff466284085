// Package metrics exposes Prometheus collectors for the extraction
// pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ExtractionsTotal counts extraction runs by file format and
	// outcome ("ok", "validation_error", "unreadable", "error").
	ExtractionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hsextract",
		Name:      "extractions_total",
		Help:      "Extraction runs by format and outcome.",
	}, []string{"format", "outcome"})

	// ExtractionDuration observes wall time per extraction run.
	ExtractionDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "hsextract",
		Name:      "extraction_duration_seconds",
		Help:      "Wall time of one extraction run.",
		Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
	}, []string{"format"})

	// ElementOps counts reconciliation store operations by kind.
	ElementOps = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hsextract",
		Name:      "element_ops_total",
		Help:      "Planned metadata element operations by kind and op.",
	}, []string{"kind", "op"})

	// CacheEvents counts extraction cache hits and misses.
	CacheEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hsextract",
		Name:      "cache_events_total",
		Help:      "Extraction cache hits and misses.",
	}, []string{"event"})
)
