// ArcGIS Catalog - ArcGIS Server Service Discovery and Caching
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/arcgis-catalog

package config

import (
	"fmt"
	"net/url"
	"strings"
)

// validateHTTPURL validates that a URL is an absolute HTTP/HTTPS URL with a host.
func validateHTTPURL(rawURL, fieldName string) (*url.URL, error) {
	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%s failed to parse URL: %w", fieldName, err)
	}

	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return nil, fmt.Errorf("%s scheme must be http or https, got: %s", fieldName, parsedURL.Scheme)
	}

	if parsedURL.Host == "" {
		return nil, fmt.Errorf("%s host is required", fieldName)
	}

	return parsedURL, nil
}

// validateProxyURL validates a proxy page URL. Requests are sent as
// {proxy}?{target}, so the proxy itself must not carry a query string.
func validateProxyURL(rawURL, fieldName string) error {
	parsedURL, err := validateHTTPURL(rawURL, fieldName)
	if err != nil {
		return err
	}
	if parsedURL.RawQuery != "" {
		return fmt.Errorf("%s should not contain query parameters, remove: ?%s", fieldName, parsedURL.RawQuery)
	}
	return nil
}

// validateServiceRootURL validates a catalog URL such as
// https://host/arcgis/rest/services or a folder beneath it.
func validateServiceRootURL(rawURL, fieldName string) error {
	parsedURL, err := validateHTTPURL(rawURL, fieldName)
	if err != nil {
		return err
	}
	if !strings.Contains(parsedURL.Path, "/rest/services") {
		return fmt.Errorf("%s must point at a REST services directory (.../rest/services), got: %s", fieldName, rawURL)
	}
	return nil
}
