// ArcGIS Catalog - ArcGIS Server Service Discovery and Caching
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/arcgis-catalog

package arcgis

import (
	"fmt"
	"net/url"
	"strings"
)

// CanonicalRootURL returns scheme://host/path of rawURL with the query,
// fragment and any trailing slash removed.
func CanonicalRootURL(rawURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", fmt.Errorf("invalid url %q: %w", rawURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("invalid url %q: scheme and host are required", rawURL)
	}
	path := strings.TrimRight(u.EscapedPath(), "/")
	return u.Scheme + "://" + u.Host + path, nil
}

// StripQuery drops everything from the first '?' or '#'.
func StripQuery(rawURL string) string {
	if i := strings.IndexAny(rawURL, "?#"); i >= 0 {
		return rawURL[:i]
	}
	return rawURL
}

// EnsureJSONFormat makes rawURL request f=json. An existing f=json or
// f=pjson is kept; any other format (html, kmz) is replaced so the response
// can be decoded. Other query parameters keep their order.
func EnsureJSONFormat(rawURL string) string {
	base, query, hasQuery := strings.Cut(rawURL, "?")
	if !hasQuery || query == "" {
		return base + "?f=json"
	}

	pairs := strings.Split(query, "&")
	found := false
	for i, pair := range pairs {
		key, value, _ := strings.Cut(pair, "=")
		if !strings.EqualFold(key, "f") {
			continue
		}
		found = true
		if !isJSONFormat(value) {
			pairs[i] = "f=json"
		}
	}
	if !found {
		return strings.TrimSuffix(rawURL, "&") + "&f=json"
	}
	return base + "?" + strings.Join(pairs, "&")
}

func isJSONFormat(f string) bool {
	return strings.EqualFold(f, "json") || strings.EqualFold(f, "pjson")
}

// ServiceNameFromURL returns the second-to-last path segment, which for
// .../services/Folder/Name/MapServer is "Name".
func ServiceNameFromURL(rawURL string) string {
	path := StripQuery(rawURL)
	if u, err := url.Parse(path); err == nil && u.Path != "" {
		path = u.Path
	}
	segments := strings.Split(strings.Trim(path, "/"), "/")
	if len(segments) < 2 {
		return ""
	}
	name, err := url.PathUnescape(segments[len(segments)-2])
	if err != nil {
		return segments[len(segments)-2]
	}
	return name
}

// ServiceURL builds {root}/{name}/{type} with name path-escaped. Folder
// catalogs report nested services as "Folder/Name"; the folder prefix is
// dropped because root already points at the folder.
func ServiceURL(root, serviceName string, serviceType string) string {
	if i := strings.LastIndex(serviceName, "/"); i >= 0 {
		serviceName = serviceName[i+1:]
	}
	return root + "/" + url.PathEscape(serviceName) + "/" + serviceType
}

// NormalizeKey is the cache key form of a URL: trimmed, lower-cased, with
// inner spaces written as %20 so raw and escaped spellings share a key.
func NormalizeKey(rawURL string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(rawURL), " ", "%20"))
}

// WithProxy wraps target in the {proxy}?{target} form used by ArcGIS proxy pages.
func WithProxy(proxyURL, target string) string {
	if proxyURL == "" {
		return target
	}
	return proxyURL + "?" + target
}

// AddQueryParam appends key=value to rawURL, keeping the existing query untouched.
func AddQueryParam(rawURL, key, value string) string {
	sep := "?"
	if strings.Contains(rawURL, "?") {
		sep = "&"
		if strings.HasSuffix(rawURL, "?") || strings.HasSuffix(rawURL, "&") {
			sep = ""
		}
	}
	return rawURL + sep + url.QueryEscape(key) + "=" + url.QueryEscape(value)
}
