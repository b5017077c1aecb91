// ArcGIS Catalog - ArcGIS Server Service Discovery and Caching
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/arcgis-catalog

package config

import "time"

// Config holds all application configuration.
//
// Load order (see LoadWithKoanf): struct defaults, then an optional YAML file,
// then mapped environment variables.
type Config struct {
	ArcGIS        ArcGISConfig        `koanf:"arcgis"`
	Breaker       BreakerConfig       `koanf:"breaker"`
	Discovery     DiscoveryConfig     `koanf:"discovery"`
	Catalog       CatalogConfig       `koanf:"catalog"`
	Tokens        TokensConfig        `koanf:"tokens"`
	Geoprocessing GeoprocessingConfig `koanf:"geoprocessing"`
	Events        EventsConfig        `koanf:"events"`
	Server        ServerConfig        `koanf:"server"`
	Security      SecurityConfig      `koanf:"security"`
	Logging       LoggingConfig       `koanf:"logging"`
}

// ArcGISConfig controls the outbound HTTP client used to hydrate catalogs,
// services and geoprocessing results.
type ArcGISConfig struct {
	Timeout           time.Duration `koanf:"timeout" validate:"gt=0"`
	RequestsPerSecond float64       `koanf:"requests_per_second" validate:"gte=0"` // 0 disables the limiter
	Burst             int           `koanf:"burst" validate:"gte=1"`
	MaxRetries        int           `koanf:"max_retries" validate:"gte=0,lte=10"` // HTTP 429 retries
	RetryBaseDelay    time.Duration `koanf:"retry_base_delay" validate:"gt=0"`
	UserAgent         string        `koanf:"user_agent" validate:"required"`

	// DefaultProxyURL is used when a request does not name a proxy.
	// Requests are sent as {proxy}?{target}.
	DefaultProxyURL string `koanf:"default_proxy_url" validate:"omitempty,arcgis_url"`
}

// BreakerConfig configures the per-host circuit breakers in the hydrator.
type BreakerConfig struct {
	MaxRequests  uint32        `koanf:"max_requests" validate:"gte=1"` // half-open probe budget
	Interval     time.Duration `koanf:"interval" validate:"gte=0"`     // closed-state count reset
	Timeout      time.Duration `koanf:"timeout" validate:"gt=0"`       // open -> half-open delay
	MinRequests  uint32        `koanf:"min_requests" validate:"gte=1"`
	FailureRatio float64       `koanf:"failure_ratio" validate:"gt=0,lte=1"`
}

// DiscoveryConfig tunes the catalog walk.
type DiscoveryConfig struct {
	// MaxConcurrency bounds concurrent service hydrations within one folder.
	// Folders are walked one at a time so service order stays deterministic.
	MaxConcurrency int `koanf:"max_concurrency" validate:"gte=1,lte=64"`
}

// CatalogConfig configures the catalog cache.
type CatalogConfig struct {
	// SingleFlight collapses concurrent misses for the same URL into one
	// discovery. Disabled by default: concurrent misses each walk the catalog
	// and the last writer wins.
	SingleFlight bool `koanf:"single_flight"`

	// PreloadURLs are anonymous catalogs discovered at start-up.
	PreloadURLs []string `koanf:"preload_urls" validate:"dive,arcgis_url"`
}

// TokensConfig configures username/password token exchange.
type TokensConfig struct {
	ExpirationMinutes int           `koanf:"expiration_minutes" validate:"gte=1,lte=20160"`
	RefreshSkew       time.Duration `koanf:"refresh_skew" validate:"gte=0"`
	Client            string        `koanf:"client" validate:"oneof=requestip referer"`
	Referer           string        `koanf:"referer"`
}

// GeoprocessingConfig configures task runners.
type GeoprocessingConfig struct {
	PollInterval time.Duration `koanf:"poll_interval" validate:"gt=0"`
	// MaxURLLength is the GET length above which requests are sent as POST.
	MaxURLLength int `koanf:"max_url_length" validate:"gte=256"`
	// ExecuteTimeout bounds how long the API waits for a synchronous execute signal.
	ExecuteTimeout time.Duration `koanf:"execute_timeout" validate:"gt=0"`
	// MaxPollFailures is how many consecutive failed status requests a job
	// survives before it is given up.
	MaxPollFailures int `koanf:"max_poll_failures" validate:"gte=1,lte=100"`
}

// EventsConfig configures the in-process geoprocessing event bus.
type EventsConfig struct {
	Enabled bool `koanf:"enabled"`
	// BufferSize is the per-subscriber channel buffer.
	BufferSize int64 `koanf:"buffer_size" validate:"gte=0"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port            int           `koanf:"port" validate:"gte=1,lte=65535"`
	Host            string        `koanf:"host"`
	Timeout         time.Duration `koanf:"timeout" validate:"gt=0"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"gt=0"`
}

// SecurityConfig holds CORS and inbound rate limiting settings
type SecurityConfig struct {
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	CORSOrigins       []string      `koanf:"cors_origins"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	// Default: info
	Level string `koanf:"level"`

	// Format is the output format: json or console.
	// JSON is recommended for production (structured, machine-parseable).
	// Console is human-readable for development.
	// Default: json
	Format string `koanf:"format"`

	// Caller includes caller file and line number in logs.
	// Adds slight performance overhead.
	// Default: false
	Caller bool `koanf:"caller"`
}

// Load reads the layered configuration. It is the entry point used by main.
func Load() (*Config, error) {
	return LoadWithKoanf()
}
