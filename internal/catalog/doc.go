// ArcGIS Catalog - ArcGIS Server Service Discovery and Caching
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/arcgis-catalog

/*
Package catalog provides the process-wide cache of discovered ArcGIS catalogs
and services.

A Cache is constructed once at start-up and injected where it is needed:

	factory := discovery.NewFactory(client, tokens, &cfg.Discovery)
	c := catalog.New(factory, tokens, catalog.Settings{RefreshSkew: cfg.Tokens.RefreshSkew})

	cat, err := c.GetCatalog(ctx, "https://gis.example.com/arcgis/rest/services")
	svc, err := c.GetService(ctx, "https://gis.example.com/arcgis/rest/services/Parcels/MapServer")

# Indexes

Two indexes are kept, catalogs by URL and services by URL. Keys are
case-insensitive. Every service of a newly stored catalog is indexed by its own
URL (last write wins), so GetService on a discovered service never goes back
to the network.

# Tokens

Anonymous lookups never check freshness. Credentialed lookups check the cached
token and, when it is missing or about to expire, exchange the credentials for
a new one. For catalogs the new token is propagated to every service, the
services are re-indexed and the entry is replaced with a compare-and-swap; if
another writer replaced the entry first, the swap is dropped and the caller
still receives the refreshed catalog.

# Concurrency

Concurrent misses for the same URL each run their own discovery and the last
to finish wins the index. Settings.SingleFlight collapses them into one.

Entries are never evicted.
*/
package catalog
