// ArcGIS Catalog - ArcGIS Server Service Discovery and Caching
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/arcgis-catalog

/*
Package middleware provides HTTP instrumentation shared by the API router.

PrometheusMetrics wraps a handler and records:

  - api_requests_total by method, route pattern and status code
  - api_request_duration_seconds by method and route pattern
  - api_active_requests

Usage:

	r := chi.NewRouter()
	r.Use(middleware.PrometheusMetrics)
	r.Get("/api/v1/gp/jobs/{jobID}", handler)

Requests are labelled with the chi route pattern ("/api/v1/gp/jobs/{jobID}"),
never the raw path. Requests that match no route are labelled "unmatched".

See Also:

  - internal/metrics: metric definitions
  - internal/api: router that installs this middleware
*/
package middleware
