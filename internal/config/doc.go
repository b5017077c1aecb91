// ArcGIS Catalog - ArcGIS Server Service Discovery and Caching
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/arcgis-catalog

/*
Package config provides centralized configuration management for the ArcGIS catalog service.

# Configuration Sources

Configuration is loaded with Koanf v2 in three layers, later layers winning:
  - Built-in defaults (defaultConfig)
  - Optional YAML file: CONFIG_PATH, ./config.yaml, /etc/arcgis-catalog/config.yaml
  - Environment variables mapped through envTransformFunc

Unmapped environment variables are ignored. Comma-separated values are split
for slice settings (CORS_ORIGINS, CATALOG_PRELOAD_URLS).

# Environment Variables

ArcGIS client (ArcGISConfig):
  - ARCGIS_TIMEOUT: Per-request timeout (default: 30s)
  - ARCGIS_REQUESTS_PER_SECOND: Outbound rate limit, 0 disables (default: 20)
  - ARCGIS_BURST: Limiter burst (default: 10)
  - ARCGIS_MAX_RETRIES: HTTP 429 retries (default: 5)
  - ARCGIS_RETRY_BASE_DELAY: Backoff base delay (default: 1s)
  - ARCGIS_USER_AGENT: User-Agent header
  - ARCGIS_PROXY_URL: Default proxy page, requests become {proxy}?{target}

Circuit breaker (BreakerConfig), one breaker per ArcGIS host:
  - BREAKER_MAX_REQUESTS, BREAKER_INTERVAL, BREAKER_TIMEOUT
  - BREAKER_MIN_REQUESTS, BREAKER_FAILURE_RATIO

Discovery and cache:
  - DISCOVERY_MAX_CONCURRENCY: Concurrent service hydrations per folder (default: 4)
  - CATALOG_SINGLE_FLIGHT: Collapse concurrent misses for one URL (default: false)
  - CATALOG_PRELOAD_URLS: Catalogs discovered at start-up

Tokens (TokensConfig):
  - TOKEN_EXPIRATION_MINUTES (default: 60)
  - TOKEN_REFRESH_SKEW: Refresh this long before expiry (default: 1m)
  - TOKEN_CLIENT: requestip or referer
  - TOKEN_REFERER: Required when TOKEN_CLIENT=referer

Geoprocessing (GeoprocessingConfig):
  - GP_POLL_INTERVAL: Job status poll interval (default: 1s)
  - GP_MAX_URL_LENGTH: GET length above which requests are POSTed (default: 2000)
  - GP_EXECUTE_TIMEOUT: API wait for synchronous execute (default: 2m)

Events (EventsConfig):
  - EVENTS_ENABLED: Publish geoprocessing events to the bus (default: true)
  - EVENTS_BUFFER_SIZE: Subscriber buffer (default: 256)

Server and security:
  - HTTP_HOST, HTTP_PORT, HTTP_TIMEOUT, HTTP_SHUTDOWN_TIMEOUT
  - CORS_ORIGINS, RATE_LIMIT_REQUESTS, RATE_LIMIT_WINDOW, DISABLE_RATE_LIMIT

Logging:
  - LOG_LEVEL, LOG_FORMAT, LOG_CALLER

# Validation

Field rules are declared as validate tags and checked through internal/validation.
Cross-field rules (proxy query strings, preload URLs under /rest/services,
token skew shorter than token lifetime, rate limit bounds) live in config_validate.go.

# Usage Example

	cfg, err := config.Load()
	if err != nil {
	    log.Fatalf("Failed to load config: %v", err)
	}
*/
package config
