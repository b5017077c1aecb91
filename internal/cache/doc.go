// ArcGIS Catalog - ArcGIS Server Service Discovery and Caching
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/arcgis-catalog

/*
Package cache provides the thread-safe in-memory structures behind the catalog
cache.

# Index

Index[T] is a URL-keyed map with case-insensitive keys and no expiry. The
catalog cache keeps two of them, one for catalogs and one for services.
Besides Get and Set it offers CompareAndSwap, used for optimistic replacement
when a token refresh races with another writer:

	idx := cache.NewIndex[*arcgis.Catalog]()
	idx.Set("HTTP://gis.example.com/arcgis/rest/services", cat)

	old, _ := idx.Get("http://gis.example.com/arcgis/rest/services")
	if !idx.CompareAndSwap(url, old, refreshed) {
	    // another writer won; refreshed is still returned to this caller
	}

There is no TTL, capacity bound or eviction. Catalogs are assumed small and
stable for the life of the process.

# LRU

LRU[V] is a bounded cache with TTL for short-lived records, such as finished
geoprocessing jobs kept around for status and result lookups.

# Thread Safety

All types are safe for concurrent use. Index uses a sync.RWMutex, LRU a
sync.Mutex since every Get reorders the list.
*/
package cache
