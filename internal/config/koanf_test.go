// ArcGIS Catalog - ArcGIS Server Service Discovery and Caching
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/arcgis-catalog

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// TestDefaultConfig verifies that defaultConfig() returns proper defaults
func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.ArcGIS.Timeout != 30*time.Second {
		t.Errorf("ArcGIS.Timeout = %v, want 30s", cfg.ArcGIS.Timeout)
	}
	if cfg.ArcGIS.MaxRetries != 5 {
		t.Errorf("ArcGIS.MaxRetries = %d, want 5", cfg.ArcGIS.MaxRetries)
	}
	if cfg.ArcGIS.DefaultProxyURL != "" {
		t.Errorf("ArcGIS.DefaultProxyURL should be empty by default, got %q", cfg.ArcGIS.DefaultProxyURL)
	}

	// Cache defaults keep the documented no-dedup behaviour
	if cfg.Catalog.SingleFlight {
		t.Error("Catalog.SingleFlight should be false by default")
	}

	if cfg.Geoprocessing.PollInterval != time.Second {
		t.Errorf("Geoprocessing.PollInterval = %v, want 1s", cfg.Geoprocessing.PollInterval)
	}
	if cfg.Geoprocessing.MaxURLLength != 2000 {
		t.Errorf("Geoprocessing.MaxURLLength = %d, want 2000", cfg.Geoprocessing.MaxURLLength)
	}
	if cfg.Geoprocessing.MaxPollFailures != 3 {
		t.Errorf("Geoprocessing.MaxPollFailures = %d, want 3", cfg.Geoprocessing.MaxPollFailures)
	}

	if cfg.Tokens.Client != "requestip" {
		t.Errorf("Tokens.Client = %q, want requestip", cfg.Tokens.Client)
	}
	if cfg.Breaker.FailureRatio != 0.6 {
		t.Errorf("Breaker.FailureRatio = %v, want 0.6", cfg.Breaker.FailureRatio)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if len(cfg.Security.CORSOrigins) != 1 || cfg.Security.CORSOrigins[0] != "*" {
		t.Errorf("Security.CORSOrigins = %v, want [*]", cfg.Security.CORSOrigins)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q, want info", cfg.Logging.Level)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate, got %v", err)
	}
}

// TestEnvTransformFunc verifies environment variable name transformations
func TestEnvTransformFunc(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		// ArcGIS client
		{"ARCGIS_TIMEOUT", "arcgis.timeout"},
		{"ARCGIS_PROXY_URL", "arcgis.default_proxy_url"},
		{"ARCGIS_MAX_RETRIES", "arcgis.max_retries"},

		// Breaker
		{"BREAKER_FAILURE_RATIO", "breaker.failure_ratio"},

		// Discovery and cache
		{"DISCOVERY_MAX_CONCURRENCY", "discovery.max_concurrency"},
		{"CATALOG_SINGLE_FLIGHT", "catalog.single_flight"},
		{"CATALOG_PRELOAD_URLS", "catalog.preload_urls"},

		// Tokens
		{"TOKEN_CLIENT", "tokens.client"},

		// Geoprocessing
		{"GP_POLL_INTERVAL", "geoprocessing.poll_interval"},
		{"GP_MAX_URL_LENGTH", "geoprocessing.max_url_length"},
		{"GP_MAX_POLL_FAILURES", "geoprocessing.max_poll_failures"},

		// Events
		{"EVENTS_ENABLED", "events.enabled"},
		{"EVENTS_BUFFER_SIZE", "events.buffer_size"},

		// Server
		{"HTTP_PORT", "server.port"},
		{"HTTP_SHUTDOWN_TIMEOUT", "server.shutdown_timeout"},

		// Security
		{"RATE_LIMIT_REQUESTS", "security.rate_limit_reqs"},
		{"DISABLE_RATE_LIMIT", "security.rate_limit_disabled"},

		// Logging
		{"LOG_LEVEL", "logging.level"},

		// Unknown (should return empty)
		{"RANDOM_VAR", ""},
		{"PATH", ""},
		{"HOME", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := envTransformFunc(tt.input)
			if result != tt.expected {
				t.Errorf("envTransformFunc(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

// TestFindConfigFile verifies CONFIG_PATH handling
func TestFindConfigFile(t *testing.T) {
	tmpDir := t.TempDir()

	t.Run("CONFIG_PATH env var takes precedence", func(t *testing.T) {
		customPath := filepath.Join(tmpDir, "custom_config.yaml")
		if err := os.WriteFile(customPath, []byte("logging:\n  level: info\n"), 0o644); err != nil {
			t.Fatalf("Failed to create custom config file: %v", err)
		}
		t.Setenv(ConfigPathEnvVar, customPath)

		if result := findConfigFile(); result != customPath {
			t.Errorf("findConfigFile() = %q, want %q", result, customPath)
		}
	})

	t.Run("CONFIG_PATH env var with non-existent file", func(t *testing.T) {
		t.Setenv(ConfigPathEnvVar, filepath.Join(tmpDir, "missing.yaml"))
		t.Chdir(tmpDir)

		if result := findConfigFile(); result != "" {
			t.Errorf("findConfigFile() = %q, want empty string", result)
		}
	})
}

// TestLoadWithKoanfEnvVars tests loading configuration from environment variables
func TestLoadWithKoanfEnvVars(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv(ConfigPathEnvVar, "")
	t.Setenv("HTTP_PORT", "9000")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("GP_POLL_INTERVAL", "250ms")
	t.Setenv("CATALOG_SINGLE_FLIGHT", "true")
	t.Setenv("CATALOG_PRELOAD_URLS", "https://a.example.com/arcgis/rest/services, https://b.example.com/arcgis/rest/services")

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}

	if cfg.Server.Port != 9000 {
		t.Errorf("Server.Port = %d, want 9000", cfg.Server.Port)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
	if cfg.Geoprocessing.PollInterval != 250*time.Millisecond {
		t.Errorf("Geoprocessing.PollInterval = %v, want 250ms", cfg.Geoprocessing.PollInterval)
	}
	if !cfg.Catalog.SingleFlight {
		t.Error("Catalog.SingleFlight = false, want true")
	}
	if len(cfg.Catalog.PreloadURLs) != 2 || cfg.Catalog.PreloadURLs[1] != "https://b.example.com/arcgis/rest/services" {
		t.Errorf("Catalog.PreloadURLs = %v", cfg.Catalog.PreloadURLs)
	}

	// Defaults still apply for unset values
	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("Server.Host = %q, want 0.0.0.0 (default)", cfg.Server.Host)
	}
}

// TestLoadWithKoanfConfigFile tests loading configuration from a YAML file
func TestLoadWithKoanfConfigFile(t *testing.T) {
	tmpDir := t.TempDir()
	configContent := `
arcgis:
  timeout: 10s
  default_proxy_url: "https://www.example.com/proxy/proxy.ashx"

catalog:
  preload_urls:
    - "https://sampleserver6.arcgisonline.com/arcgis/rest/services"

server:
  port: 8888

logging:
  level: "warn"
`
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(configContent), 0o644); err != nil {
		t.Fatalf("Failed to create config file: %v", err)
	}
	t.Setenv(ConfigPathEnvVar, configPath)
	t.Setenv("LOG_LEVEL", "error") // env beats file

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}

	if cfg.ArcGIS.Timeout != 10*time.Second {
		t.Errorf("ArcGIS.Timeout = %v, want 10s", cfg.ArcGIS.Timeout)
	}
	if cfg.ArcGIS.DefaultProxyURL != "https://www.example.com/proxy/proxy.ashx" {
		t.Errorf("ArcGIS.DefaultProxyURL = %q", cfg.ArcGIS.DefaultProxyURL)
	}
	if len(cfg.Catalog.PreloadURLs) != 1 {
		t.Errorf("Catalog.PreloadURLs = %v, want 1 entry", cfg.Catalog.PreloadURLs)
	}
	if cfg.Server.Port != 8888 {
		t.Errorf("Server.Port = %d, want 8888", cfg.Server.Port)
	}
	if cfg.Logging.Level != "error" {
		t.Errorf("Logging.Level = %q, want error", cfg.Logging.Level)
	}
}

// TestProcessSliceFields tests comma-separated slice parsing
func TestProcessSliceFields(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv(ConfigPathEnvVar, "")
	t.Setenv("CORS_ORIGINS", "https://a.example.com, ,https://b.example.com")

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}

	want := []string{"https://a.example.com", "https://b.example.com"}
	if len(cfg.Security.CORSOrigins) != len(want) {
		t.Fatalf("CORSOrigins = %v, want %v", cfg.Security.CORSOrigins, want)
	}
	for i := range want {
		if cfg.Security.CORSOrigins[i] != want[i] {
			t.Errorf("CORSOrigins[%d] = %q, want %q", i, cfg.Security.CORSOrigins[i], want[i])
		}
	}
}
