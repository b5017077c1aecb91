// ArcGIS Catalog - ArcGIS Server Service Discovery and Caching
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/arcgis-catalog

/*
Package discovery walks ArcGIS Server REST catalogs and hydrates the services
they contain.

A Factory turns a root URL into a fully populated arcgis.Catalog:

	factory := discovery.NewFactory(client, tokens, &cfg.Discovery)
	cat, err := factory.CreateCatalog(ctx, "https://gis.example.com/arcgis/rest/services", discovery.Options{})

Only the root fetch is fatal. Folders, services and geoprocessing tasks that
fail to hydrate are recorded in Catalog.Failures and discovery continues with
their siblings. Services are ordered folders first, in the order the server
lists them, followed by the services of the node itself.

Proxy, token and credentials are passed per call through Options, so one
Factory can serve concurrent callers using different proxies.

Services within a folder are hydrated concurrently up to
discovery.max_concurrency; results are written into indexed slots so the
flattened order does not depend on scheduling.
*/
package discovery
