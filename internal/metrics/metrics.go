// ArcGIS Catalog - ArcGIS Server Service Discovery and Caching
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/arcgis-catalog

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Cache index labels.
const (
	IndexCatalogs = "catalogs"
	IndexServices = "services"
)

var (
	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30}, // Cold catalog walks can take tens of seconds
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	// Catalog Cache Metrics
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_cache_hits_total",
			Help: "Total number of catalog cache hits",
		},
		[]string{"index"}, // "catalogs", "services"
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_cache_misses_total",
			Help: "Total number of catalog cache misses (discovery required)",
		},
		[]string{"index"},
	)

	CacheSize = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "catalog_cache_entries",
			Help: "Current number of cached entries",
		},
		[]string{"index"},
	)

	CacheSwapConflicts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "catalog_cache_swap_conflicts_total",
			Help: "Token refreshes dropped because the entry changed concurrently",
		},
	)

	TokenRefreshes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "token_refreshes_total",
			Help: "Total number of token exchanges",
		},
		[]string{"target", "result"}, // target: "catalog", "service"; result: "success", "failure"
	)

	// Discovery Metrics
	DiscoveryDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "discovery_duration_seconds",
			Help:    "Duration of full catalog discovery passes",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
	)

	DiscoveryServices = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "discovery_services_total",
			Help: "Total number of services hydrated during discovery",
		},
		[]string{"service_type"},
	)

	DiscoverySkipped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "discovery_skipped_total",
			Help: "Total number of items skipped during discovery",
		},
		[]string{"kind"}, // "folder", "service", "task"
	)

	// Hydration Metrics
	HydrationRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hydration_requests_total",
			Help: "Total number of outbound ArcGIS Server requests",
		},
		[]string{"method", "result"}, // result: "success", "http_error", "remote_error", "transport_error", "rate_limited"
	)

	HydrationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "hydration_request_duration_seconds",
			Help:    "Duration of outbound ArcGIS Server requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerConsecutiveFailures = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_consecutive_failures",
			Help: "Current number of consecutive failures",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// Geoprocessing Metrics
	GPJobPolls = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "geoprocessing_job_polls_total",
			Help: "Total number of job status polls",
		},
	)

	GPActiveJobs = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "geoprocessing_active_jobs",
			Help: "Current number of tracked geoprocessing jobs",
		},
	)

	GPEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "geoprocessing_events_total",
			Help: "Total number of geoprocessing signals raised",
		},
		[]string{"kind"},
	)

	// Event Bus Metrics
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "event_bus_published_total",
			Help: "Total number of messages published to the event bus",
		},
		[]string{"topic", "result"},
	)

	EventsConsumed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "event_bus_consumed_total",
			Help: "Total number of messages consumed from the event bus",
		},
		[]string{"topic"},
	)
)

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordCacheLookup records a hit or miss against one of the cache indexes.
func RecordCacheLookup(index string, hit bool) {
	if hit {
		CacheHits.WithLabelValues(index).Inc()
		return
	}
	CacheMisses.WithLabelValues(index).Inc()
}

// RecordHydration records one outbound request and its outcome.
func RecordHydration(method, result string, duration time.Duration) {
	HydrationRequests.WithLabelValues(method, result).Inc()
	HydrationDuration.WithLabelValues(method).Observe(duration.Seconds())
}

// RecordTokenRefresh records a token exchange triggered by the cache.
func RecordTokenRefresh(target string, err error) {
	result := "success"
	if err != nil {
		result = "failure"
	}
	TokenRefreshes.WithLabelValues(target, result).Inc()
}

// RecordDiscovery records a completed discovery pass.
func RecordDiscovery(duration time.Duration, skippedFolders, skippedServices, skippedTasks int) {
	DiscoveryDuration.Observe(duration.Seconds())
	if skippedFolders > 0 {
		DiscoverySkipped.WithLabelValues("folder").Add(float64(skippedFolders))
	}
	if skippedServices > 0 {
		DiscoverySkipped.WithLabelValues("service").Add(float64(skippedServices))
	}
	if skippedTasks > 0 {
		DiscoverySkipped.WithLabelValues("task").Add(float64(skippedTasks))
	}
}
