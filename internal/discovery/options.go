// ArcGIS Catalog - ArcGIS Server Service Discovery and Caching
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/arcgis-catalog

package discovery

import "github.com/tomtom215/arcgis-catalog/internal/arcgis"

// Options are the per-call discovery settings.
type Options struct {
	// ProxyURL wraps every request as {proxy}?{target}. Empty for direct access.
	ProxyURL string

	// Token is attached to every request when set.
	Token arcgis.Token

	// Credentials are exchanged for a token before the first request
	// when Token is empty.
	Credentials arcgis.Credentials

	// CurrentVersion overrides the version reported by hydrated services.
	// CreateCatalog passes the catalog's version down to its services.
	CurrentVersion float64
}

// Result is the outcome of hydrating one discovery item. The caller decides
// whether an error skips the item or aborts the pass.
type Result[T any] struct {
	Value T
	Err   error

	// Failures are nested items skipped while producing Value.
	Failures []arcgis.DiscoveryFailure
}

// OK reports whether the item was produced.
func (r Result[T]) OK() bool {
	return r.Err == nil
}
