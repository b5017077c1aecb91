// ArcGIS Catalog - ArcGIS Server Service Discovery and Caching
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/arcgis-catalog

package config

import (
	"fmt"
	"time"

	"github.com/tomtom215/arcgis-catalog/internal/validation"
)

// Rate limiting bounds for inbound API traffic
const (
	minRateLimitRequests = 1
	maxRateLimitRequests = 100000
	minRateLimitWindow   = time.Second
	maxRateLimitWindow   = time.Hour
)

var validLogLevels = map[string]bool{
	"trace": true,
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

var validLogFormats = map[string]bool{
	"json":    true,
	"console": true,
}

// Validate checks that required configuration is present and valid.
// Field-level rules come from validate tags; cross-field rules follow.
func (c *Config) Validate() error {
	if err := validation.ValidateStruct(c); err != nil {
		return err
	}

	if err := c.validateArcGIS(); err != nil {
		return err
	}

	if err := c.validateTokens(); err != nil {
		return err
	}

	if err := c.validateGeoprocessing(); err != nil {
		return err
	}

	if err := c.validateSecurity(); err != nil {
		return err
	}

	return c.validateLogging()
}

// validateArcGIS validates the outbound client and proxy settings
func (c *Config) validateArcGIS() error {
	if c.ArcGIS.DefaultProxyURL != "" {
		if err := validateProxyURL(c.ArcGIS.DefaultProxyURL, "ARCGIS_PROXY_URL"); err != nil {
			return err
		}
	}
	if c.ArcGIS.Timeout < c.ArcGIS.RetryBaseDelay {
		return fmt.Errorf("ARCGIS_TIMEOUT (%v) must not be shorter than ARCGIS_RETRY_BASE_DELAY (%v)",
			c.ArcGIS.Timeout, c.ArcGIS.RetryBaseDelay)
	}
	for _, u := range c.Catalog.PreloadURLs {
		if err := validateServiceRootURL(u, "CATALOG_PRELOAD_URLS"); err != nil {
			return err
		}
	}
	return nil
}

// validateTokens validates token exchange settings
func (c *Config) validateTokens() error {
	if c.Tokens.Client == "referer" && c.Tokens.Referer == "" {
		return fmt.Errorf("TOKEN_REFERER is required when TOKEN_CLIENT=referer")
	}
	if c.Tokens.RefreshSkew >= time.Duration(c.Tokens.ExpirationMinutes)*time.Minute {
		return fmt.Errorf("TOKEN_REFRESH_SKEW (%v) must be shorter than the token lifetime (%d minutes)",
			c.Tokens.RefreshSkew, c.Tokens.ExpirationMinutes)
	}
	return nil
}

// validateGeoprocessing validates task runner settings
func (c *Config) validateGeoprocessing() error {
	if c.Geoprocessing.ExecuteTimeout < c.Geoprocessing.PollInterval {
		return fmt.Errorf("GP_EXECUTE_TIMEOUT (%v) must not be shorter than GP_POLL_INTERVAL (%v)",
			c.Geoprocessing.ExecuteTimeout, c.Geoprocessing.PollInterval)
	}
	return nil
}

// validateSecurity validates inbound rate limiting bounds
func (c *Config) validateSecurity() error {
	if c.Security.RateLimitDisabled {
		return nil
	}

	if c.Security.RateLimitReqs < minRateLimitRequests || c.Security.RateLimitReqs > maxRateLimitRequests {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be between %d and %d", minRateLimitRequests, maxRateLimitRequests)
	}
	if c.Security.RateLimitWindow < minRateLimitWindow || c.Security.RateLimitWindow > maxRateLimitWindow {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be between %v and %v", minRateLimitWindow, maxRateLimitWindow)
	}
	return nil
}

// validateLogging validates log level and format
func (c *Config) validateLogging() error {
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("LOG_LEVEL must be one of: trace, debug, info, warn, error")
	}
	if c.Logging.Format != "" && !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("LOG_FORMAT must be one of: json, console")
	}
	return nil
}
