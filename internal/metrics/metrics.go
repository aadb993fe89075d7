package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP Metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crop_connect_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "crop_connect_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// Recommendation Metrics
	RecommendationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crop_connect_recommendations_total",
			Help: "Total number of recommendation evaluations by input accuracy label",
		},
		[]string{"accuracy"},
	)

	RecommendationErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crop_connect_recommendation_errors_total",
			Help: "Total number of failed recommendation evaluations",
		},
		[]string{"reason"}, // "validation", "store"
	)

	RecommendationCandidates = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "crop_connect_recommendation_candidates",
			Help:    "Number of crop records scored per recommendation",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
		},
	)

	RecommendationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "crop_connect_recommendation_duration_seconds",
			Help:    "Time spent scoring and ranking candidates",
			Buckets: []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
		},
	)

	// Catalogue Cache Metrics
	CatalogCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "crop_connect_catalog_cache_hits_total",
			Help: "Total number of crop catalogue cache hits",
		},
	)

	CatalogCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "crop_connect_catalog_cache_misses_total",
			Help: "Total number of crop catalogue cache misses",
		},
	)

	CatalogWarmRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crop_connect_catalog_warm_runs_total",
			Help: "Total number of scheduled catalogue refreshes",
		},
		[]string{"status"}, // "success", "error"
	)

	// Agronomy Metrics
	AgronomyAdviceTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crop_connect_agronomy_advice_total",
			Help: "Total number of agronomy advice lookups by resolving source",
		},
		[]string{"source"},
	)
)

// RecordHTTPRequest records a completed HTTP request
func RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordRecommendation records a successful recommendation evaluation
func RecordRecommendation(accuracy string, candidates int, duration time.Duration) {
	RecommendationsTotal.WithLabelValues(accuracy).Inc()
	RecommendationCandidates.Observe(float64(candidates))
	RecommendationDuration.Observe(duration.Seconds())
}

// RecordRecommendationError records a failed recommendation evaluation
func RecordRecommendationError(reason string) {
	RecommendationErrors.WithLabelValues(reason).Inc()
}

// RecordCatalogCache records a catalogue cache lookup
func RecordCatalogCache(hit bool) {
	if hit {
		CatalogCacheHits.Inc()
		return
	}
	CatalogCacheMisses.Inc()
}

// RecordCatalogWarm records a scheduled catalogue refresh
func RecordCatalogWarm(err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	CatalogWarmRuns.WithLabelValues(status).Inc()
}

// RecordAgronomyAdvice records which lookup stage resolved an advice request
func RecordAgronomyAdvice(source string) {
	AgronomyAdviceTotal.WithLabelValues(source).Inc()
}
