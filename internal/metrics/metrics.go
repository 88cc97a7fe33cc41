// Package metrics defines the prometheus collectors for search and
// embedding activity.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// SearchesTotal counts retrieval engine calls by outcome.
	SearchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "arxsearch",
			Name:      "searches_total",
			Help:      "Total number of search requests",
		},
		[]string{"status"},
	)

	// SearchDuration observes end-to-end search latency.
	SearchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "arxsearch",
			Name:      "search_duration_seconds",
			Help:      "Search request duration in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
	)

	// EmbeddingRequestsTotal counts embedding provider calls by outcome.
	EmbeddingRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "arxsearch",
			Name:      "embedding_requests_total",
			Help:      "Total number of embedding provider requests",
		},
		[]string{"status"},
	)

	// IndexSize tracks the size of the live vector index generation.
	IndexSize = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "arxsearch",
			Name:      "index_vectors",
			Help:      "Number of vectors in the live index generation",
		},
	)
)

// Register registers all collectors with the given registry. Called once
// from the composition root; no init() side effects.
func Register(reg prometheus.Registerer) {
	reg.MustRegister(SearchesTotal, SearchDuration, EmbeddingRequestsTotal, IndexSize)
}
