package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "movielog_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "route", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "movielog_api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "movielog_api_active_requests",
			Help: "Number of in-flight API requests",
		},
	)

	// Database
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "movielog_db_query_duration_seconds",
			Help:    "Duration of viewings queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "movielog_db_query_errors_total",
			Help: "Total number of failed viewings queries",
		},
		[]string{"operation"},
	)

	// Metadata provider
	ProviderRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "movielog_provider_requests_total",
			Help: "Provider calls by endpoint and outcome",
		},
		[]string{"endpoint", "outcome"},
	)

	ProviderDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "movielog_provider_request_duration_seconds",
			Help:    "Duration of provider calls in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 15},
		},
		[]string{"endpoint"},
	)

	SearchPagesFetched = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "movielog_search_pages_fetched",
			Help:    "Provider pages fetched per search",
			Buckets: []float64{1, 2, 3, 5, 8, 10},
		},
	)

	SearchItems = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "movielog_search_items_total",
			Help: "Search items seen and kept by the filter",
		},
		[]string{"stage"}, // "fetched", "kept"
	)

	// Response cache
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "movielog_cache_hits_total",
			Help: "Response cache hits by route",
		},
		[]string{"route"},
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "movielog_cache_misses_total",
			Help: "Response cache misses by route",
		},
		[]string{"route"},
	)
)

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, route string, status int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	APIRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// TrackActiveRequest tracks in-flight API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordDBQuery records a viewings query; call with the start time and final error.
func RecordDBQuery(operation string, start time.Time, err error) {
	DBQueryDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	if err != nil {
		DBQueryErrors.WithLabelValues(operation).Inc()
	}
}

func RecordProviderCall(endpoint string, duration time.Duration, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	ProviderRequests.WithLabelValues(endpoint, outcome).Inc()
	ProviderDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

func RecordSearch(pages, fetched, kept int) {
	SearchPagesFetched.Observe(float64(pages))
	SearchItems.WithLabelValues("fetched").Add(float64(fetched))
	SearchItems.WithLabelValues("kept").Add(float64(kept))
}

func RecordCache(route string, hit bool) {
	if hit {
		CacheHits.WithLabelValues(route).Inc()
	} else {
		CacheMisses.WithLabelValues(route).Inc()
	}
}
