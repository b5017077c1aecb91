// ArcGIS Catalog - ArcGIS Server Service Discovery and Caching
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/arcgis-catalog

/*
Package arcgis defines the typed representations of an ArcGIS Server REST catalog.

A Catalog is one folder node of the REST hierarchy. Services are hydrated
records for the six supported service kinds:

  - MapServer:      MapService
  - GeocodeServer:  GeocodeService
  - GPServer:       GeoprocessingService (with GPTask children)
  - GeometryServer: GeometryService
  - FeatureServer:  FeatureService
  - MobileServer:   MobileService

Records are immutable after hydration except for their security token, which
is refreshed in place by the catalog cache. Identity is the canonical URL: it
never carries the f=json parameter, the token or the proxy wrapping used to
fetch it.

URL helpers in urls.go implement the canonicalisation rules shared by the
discovery factory and the cache.
*/
package arcgis
