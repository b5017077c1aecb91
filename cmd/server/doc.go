// ArcGIS Catalog - ArcGIS Server Service Discovery and Caching
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/arcgis-catalog

/*
Package main is the entry point for the ArcGIS catalog server.

The server discovers ArcGIS Server catalogs (folders and services), keeps them
in a URL-keyed cache with token refresh for secured catalogs, and runs
geoprocessing tasks either synchronously (execute) or as polled jobs (submit).

# Application Architecture

	RootSupervisor ("arcgis-catalog")
	├── CatalogSupervisor ("catalog-layer")
	│   ├── Preload (one-shot discovery of CATALOG_PRELOAD_URLS)
	│   └── Geoprocessing registry (cancels runners on shutdown)
	├── MessagingSupervisor ("messaging-layer")
	│   └── Event log consumer (EVENTS_ENABLED=true)
	└── APISupervisor ("api-layer")
	    └── HTTP Server (chi router)

Component initialization order:

 1. Configuration: Koanf v2 with defaults, YAML file and environment variables
 2. Logging: zerolog with JSON/console output modes
 3. Hydrator: rate-limited HTTP client with per-host circuit breakers
 4. Token provider: generateToken exchange for secured catalogs
 5. Catalog cache: discovery factory, optional single-flight
 6. Event bus: Watermill GoChannel (optional)
 7. Geoprocessing registry: one runner per task URL
 8. Supervisor tree and HTTP server

# Configuration

	Priority: Environment variables > Config file > Defaults

The config file is read from CONFIG_PATH, ./config.yaml or
/etc/arcgis-catalog/config.yaml.

	# Server
	HTTP_PORT=8080
	HTTP_TIMEOUT=60s             # cold catalog walks are slow
	LOG_LEVEL=info               # trace, debug, info, warn, error
	LOG_FORMAT=json              # json or console

	# ArcGIS client
	ARCGIS_TIMEOUT=30s
	ARCGIS_REQUESTS_PER_SECOND=20
	ARCGIS_PROXY_URL=            # default {proxy}?{target} prefix

	# Catalog cache
	CATALOG_SINGLE_FLIGHT=false
	CATALOG_PRELOAD_URLS=https://sampleserver6.arcgisonline.com/arcgis/rest/services
	TOKEN_EXPIRATION_MINUTES=60

	# Geoprocessing
	GP_POLL_INTERVAL=1s
	GP_EXECUTE_TIMEOUT=2m
	GP_MAX_POLL_FAILURES=3

	# Inbound security
	CORS_ORIGINS=https://maps.example.com
	RATE_LIMIT_REQUESTS=100
	DISABLE_RATE_LIMIT=false

# Graceful Shutdown

SIGINT and SIGTERM cancel the root context. The HTTP server drains within
HTTP_SHUTDOWN_TIMEOUT, open geoprocessing jobs stop polling, and the event
bus is closed last.
*/
package main
