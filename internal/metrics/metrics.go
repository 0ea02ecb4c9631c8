// Package metrics exposes the in-process counters and histograms the engine
// maintains for its own operation. Exporting them is out of scope (spec §1
// Non-goals); having them at all is not — it's the ambient observability
// layer, carried the way the rest of the pack instruments its services
// (suprachakra-Airline-Revenue-Optimization-System, tomtom215-cartographus).
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// RecommendationLatency tracks end-to-end getRecommendations duration.
	RecommendationLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "recoengine_recommendation_latency_seconds",
		Help:    "Latency of getRecommendations calls.",
		Buckets: prometheus.DefBuckets,
	})

	// RecommendationRequests counts requests by the strategy that served them.
	RecommendationRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "recoengine_recommendation_requests_total",
		Help: "Recommendation requests, labeled by task type.",
	}, []string{"task_type"})

	// EmbeddingCacheHits / EmbeddingCacheMisses track the embedding cache.
	EmbeddingCacheHits = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "recoengine_embedding_cache_hits_total",
		Help: "Embedding cache hits.",
	})
	EmbeddingCacheMisses = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "recoengine_embedding_cache_misses_total",
		Help: "Embedding cache misses.",
	})

	// OptimizationCycleDuration tracks a full optimization cycle's wall time.
	OptimizationCycleDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "recoengine_optimization_cycle_duration_seconds",
		Help:    "Duration of a completed optimization cycle.",
		Buckets: prometheus.ExponentialBuckets(1, 2, 10),
	})

	// SafetyViolations counts fail-closed audience-safety responses.
	SafetyViolations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "recoengine_safety_violations_total",
		Help: "Responses that failed closed due to an audience-safety violation.",
	}, []string{"audience"})
)

// Registry is the process-wide collector registry. Callers that expose a
// /metrics endpoint (e.g. internal/httpapi) register against this.
var Registry = prometheus.NewRegistry()

func init() {
	Registry.MustRegister(
		RecommendationLatency,
		RecommendationRequests,
		EmbeddingCacheHits,
		EmbeddingCacheMisses,
		OptimizationCycleDuration,
		SafetyViolations,
	)
}
