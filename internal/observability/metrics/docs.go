package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	DocsGenerationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docs_generations_total",
			Help: "Total number of documentation generations by source",
		},
		[]string{"source"},
	)

	DocsGenerationDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "docs_generation_duration_seconds",
			Help:    "Duration of documentation generation in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 20, 30},
		},
		[]string{"source"},
	)

	DocsCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "docs_cache_hits_total",
			Help: "Total number of documentation cache hits",
		},
	)

	DocsCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "docs_cache_misses_total",
			Help: "Total number of documentation cache misses",
		},
	)

	ProviderRequestDurationSeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "provider_request_duration_seconds",
			Help:    "Duration of provider requests in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 20, 30},
		},
	)

	DocsStreamConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "docs_stream_connections_active",
			Help: "Number of active documentation stream connections",
		},
	)

	SnippetsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "snippets_created_total",
			Help: "Total number of snippets created",
		},
	)

	SnippetsDeleted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "snippets_deleted_total",
			Help: "Total number of snippets deleted",
		},
	)
)
