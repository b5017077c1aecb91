// ArcGIS Catalog - ArcGIS Server Service Discovery and Caching
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/arcgis-catalog

/*
Package metrics provides Prometheus metrics collection and export for observability.

All collectors are registered on the default registry through promauto and are
exposed at /metrics by the API router.

# Available Metrics

API Metrics:
  - api_requests_total: Total API requests (counter)
    Labels: method, endpoint, status_code
  - api_request_duration_seconds: Request latency (histogram)
  - api_active_requests: In-flight requests (gauge)

Catalog Cache Metrics:
  - catalog_cache_hits_total / catalog_cache_misses_total (counter)
    Labels: index (catalogs, services)
  - catalog_cache_entries: Entries per index (gauge)
  - catalog_cache_swap_conflicts_total: Dropped optimistic token refreshes (counter)
  - token_refreshes_total: Token exchanges (counter)
    Labels: target, result

Discovery and Hydration Metrics:
  - discovery_duration_seconds: Full catalog walk duration (histogram)
  - discovery_services_total: Hydrated services (counter)
    Labels: service_type
  - discovery_skipped_total: Skipped folders, services and tasks (counter)
    Labels: kind
  - hydration_requests_total: Outbound ArcGIS Server requests (counter)
    Labels: method, result
  - hydration_request_duration_seconds (histogram)

Circuit Breaker Metrics:
  - circuit_breaker_state: Current state (gauge)
    Labels: name (one breaker per ArcGIS host)
    Values: 0=closed, 1=half-open, 2=open
  - circuit_breaker_requests_total (counter)
    Labels: name, result
  - circuit_breaker_consecutive_failures (gauge)
  - circuit_breaker_state_transitions_total (counter)
    Labels: name, from_state, to_state

Geoprocessing Metrics:
  - geoprocessing_job_polls_total (counter)
  - geoprocessing_active_jobs (gauge)
  - geoprocessing_events_total (counter)
    Labels: kind
  - event_bus_published_total / event_bus_consumed_total (counter)
    Labels: topic

# Example Queries

Cache hit ratio:

	sum(rate(catalog_cache_hits_total[5m])) /
	(sum(rate(catalog_cache_hits_total[5m])) + sum(rate(catalog_cache_misses_total[5m])))

Hosts with an open breaker:

	circuit_breaker_state == 2
*/
package metrics
