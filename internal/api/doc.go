// ArcGIS Catalog - ArcGIS Server Service Discovery and Caching
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/arcgis-catalog

/*
Package api provides the HTTP REST API for the catalog cache and the
geoprocessing task runners.

The API is a thin front-end: every endpoint delegates to catalog.Cache or
geoprocessing.Registry and wraps the result in a standard envelope.

Endpoints:

	GET    /api/v1/health/live
	GET    /api/v1/catalog?url=&proxy=
	POST   /api/v1/catalog                      {url, username, password}
	GET    /api/v1/service?url=
	POST   /api/v1/service                      {url, username, password}
	GET    /api/v1/cache/stats
	POST   /api/v1/gp/execute                   {task_url, parameters}
	POST   /api/v1/gp/jobs                      {task_url, parameters}
	GET    /api/v1/gp/jobs
	GET    /api/v1/gp/jobs/{jobID}
	DELETE /api/v1/gp/jobs/{jobID}
	GET    /api/v1/gp/jobs/{jobID}/results/{param}
	GET    /api/v1/gp/jobs/{jobID}/results/{param}/image
	GET    /metrics

Response Format:

	{
	  "success": true,
	  "data": {...},
	  "meta": {"request_id": "...", "timestamp": "...", "duration_ms": 12}
	}

Errors use the same envelope with "success": false and an "error" object
carrying a machine-readable code (VALIDATION_ERROR, NOT_FOUND,
EXTERNAL_SERVICE_FAILED, UPSTREAM_TIMEOUT, ...). Upstream ArcGIS failures map
to 502, open circuit breakers to 503 and timeouts to 504.

Middleware:

Every route runs behind request ID and logging context, RealIP, Recoverer
and CORS. API routes add IP rate limiting (stricter for credentialed lookups
and for execute and submit), security headers, Prometheus instrumentation
and gzip compression.

Credentials:

Usernames and passwords travel only in POST bodies and are never logged.
Tokens obtained from them stay inside the cache and are not serialized.
*/
package api
