// ArcGIS Catalog - ArcGIS Server Service Discovery and Caching
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/arcgis-catalog

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/arcgis-catalog/config.yaml",
	"/etc/arcgis-catalog/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config struct with all sensible default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		ArcGIS: ArcGISConfig{
			Timeout:           30 * time.Second,
			RequestsPerSecond: 20,
			Burst:             10,
			MaxRetries:        5,               // Allow up to 5 retries for rate limiting
			RetryBaseDelay:    1 * time.Second, // Start with 1 second, doubles each retry
			UserAgent:         "arcgis-catalog/1.0",
			DefaultProxyURL:   "",
		},
		Breaker: BreakerConfig{
			MaxRequests:  3,               // Allow 3 concurrent requests in half-open state
			Interval:     time.Minute,     // Reset counts after 1 minute in closed state
			Timeout:      2 * time.Minute, // Wait 2 minutes before transitioning from open to half-open
			MinRequests:  10,
			FailureRatio: 0.6,
		},
		Discovery: DiscoveryConfig{
			MaxConcurrency: 4,
		},
		Catalog: CatalogConfig{
			SingleFlight: false, // Concurrent misses are not de-duplicated unless enabled
			PreloadURLs:  []string{},
		},
		Tokens: TokensConfig{
			ExpirationMinutes: 60,
			RefreshSkew:       time.Minute,
			Client:            "requestip",
			Referer:           "",
		},
		Geoprocessing: GeoprocessingConfig{
			PollInterval:    time.Second,
			MaxURLLength:    2000,
			ExecuteTimeout:  2 * time.Minute,
			MaxPollFailures: 3,
		},
		Events: EventsConfig{
			Enabled:    true,
			BufferSize: 256,
		},
		Server: ServerConfig{
			Port:            8080,
			Host:            "0.0.0.0",
			Timeout:         60 * time.Second, // Cold catalog walks are slow
			ShutdownTimeout: 30 * time.Second,
		},
		Security: SecurityConfig{
			RateLimitReqs:     100,
			RateLimitWindow:   1 * time.Minute,
			RateLimitDisabled: false,
			CORSOrigins:       []string{"*"},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// LoadWithKoanf loads configuration using Koanf v2 with layered sources:
//  1. Defaults: Built-in sensible defaults
//  2. Config File: Optional YAML config file (if exists)
//  3. Environment Variables: Override any setting
//
// This function is the preferred way to load configuration and provides:
//   - Type-safe configuration unmarshaling
//   - Clear precedence: ENV > File > Defaults
//   - Support for nested configuration via koanf struct tags
//   - Backward compatibility with existing environment variables
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: Load defaults from struct
	defaults := defaultConfig()
	if err := k.Load(structs.Provider(defaults, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: Load config file (optional)
	configPath := findConfigFile()
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: Load environment variables (highest priority)
	// Transform environment variable names to koanf paths:
	// ARCGIS_TIMEOUT -> arcgis.timeout
	// GP_POLL_INTERVAL -> geoprocessing.poll_interval
	envProvider := env.Provider("", ".", envTransformFunc)
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	// Post-process slice fields from comma-separated strings
	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	// Unmarshal into Config struct
	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	// Validate the configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile searches for a config file in the default paths.
// Returns the path to the first file found, or empty string if none found.
func findConfigFile() string {
	// Check environment variable first
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	// Search default paths
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths defines which config paths should be parsed as comma-separated slices
var sliceConfigPaths = []string{
	"security.cors_origins",
	"catalog.preload_urls",
}

// processSliceFields converts comma-separated string values to slices for known slice fields.
// This is necessary because env vars come in as strings, but the config expects slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		val := k.Get(path)
		if val == nil {
			continue
		}

		// If it's already a slice (from YAML file), skip
		if _, ok := val.([]interface{}); ok {
			continue
		}
		if _, ok := val.([]string); ok {
			continue
		}

		// If it's a string, split by comma
		if strVal, ok := val.(string); ok {
			if strVal == "" {
				continue
			}
			parts := strings.Split(strVal, ",")
			trimmed := make([]string, 0, len(parts))
			for _, p := range parts {
				p = strings.TrimSpace(p)
				if p != "" {
					trimmed = append(trimmed, p)
				}
			}
			if len(trimmed) > 0 {
				if err := k.Set(path, trimmed); err != nil {
					return fmt.Errorf("failed to set %s: %w", path, err)
				}
			}
		}
	}
	return nil
}

// envTransformFunc transforms environment variable names to koanf config paths.
//
// Examples:
//   - ARCGIS_TIMEOUT -> arcgis.timeout
//   - ARCGIS_PROXY_URL -> arcgis.default_proxy_url
//   - CATALOG_PRELOAD_URLS -> catalog.preload_urls
//   - GP_POLL_INTERVAL -> geoprocessing.poll_interval
//   - HTTP_PORT -> server.port
func envTransformFunc(key string) string {
	key = strings.ToLower(key)

	envMappings := map[string]string{
		// ArcGIS client mappings
		"arcgis_timeout":             "arcgis.timeout",
		"arcgis_requests_per_second": "arcgis.requests_per_second",
		"arcgis_burst":               "arcgis.burst",
		"arcgis_max_retries":         "arcgis.max_retries",
		"arcgis_retry_base_delay":    "arcgis.retry_base_delay",
		"arcgis_user_agent":          "arcgis.user_agent",
		"arcgis_proxy_url":           "arcgis.default_proxy_url",

		// Circuit breaker mappings
		"breaker_max_requests":  "breaker.max_requests",
		"breaker_interval":      "breaker.interval",
		"breaker_timeout":       "breaker.timeout",
		"breaker_min_requests":  "breaker.min_requests",
		"breaker_failure_ratio": "breaker.failure_ratio",

		// Discovery and cache mappings
		"discovery_max_concurrency": "discovery.max_concurrency",
		"catalog_single_flight":     "catalog.single_flight",
		"catalog_preload_urls":      "catalog.preload_urls",

		// Token exchange mappings
		"token_expiration_minutes": "tokens.expiration_minutes",
		"token_refresh_skew":       "tokens.refresh_skew",
		"token_client":             "tokens.client",
		"token_referer":            "tokens.referer",

		// Geoprocessing mappings
		"gp_poll_interval":     "geoprocessing.poll_interval",
		"gp_max_url_length":    "geoprocessing.max_url_length",
		"gp_execute_timeout":   "geoprocessing.execute_timeout",
		"gp_max_poll_failures": "geoprocessing.max_poll_failures",

		// Event bus mappings
		"events_enabled":     "events.enabled",
		"events_buffer_size": "events.buffer_size",

		// Server mappings
		"http_port":             "server.port",
		"http_host":             "server.host",
		"http_timeout":          "server.timeout",
		"http_shutdown_timeout": "server.shutdown_timeout",

		// Security mappings
		"cors_origins":        "security.cors_origins",
		"rate_limit_requests": "security.rate_limit_reqs",
		"rate_limit_window":   "security.rate_limit_window",
		"disable_rate_limit":  "security.rate_limit_disabled",

		// Logging mappings
		"log_level":  "logging.level",
		"log_format": "logging.format",
		"log_caller": "logging.caller",
	}

	if mapped, ok := envMappings[key]; ok {
		return mapped
	}

	// For unmapped keys, return empty string to skip them
	// This prevents random environment variables from polluting config
	return ""
}
