// ArcGIS Catalog - ArcGIS Server Service Discovery and Caching
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/arcgis-catalog

/*
Package services provides suture.Service wrappers for the catalog service's
long-running components.

Each wrapper translates a component lifecycle into suture's context-aware
Serve pattern and names itself via fmt.Stringer for supervisor logs.

API server (HTTPServerService):
  - Binds the configured address itself and logs the bound address
  - Returns *ListenError when the port is taken, so the supervisor retries with backoff
  - Drains in-flight requests on shutdown

Cache preload (PreloadService):
  - Discovers the configured catalogs once at start-up
  - Returns suture.ErrDoNotRestart after a successful pass

Runner registry (RegistryService):
  - Closes every geoprocessing runner on shutdown so no poll outlives the process
*/
package services
