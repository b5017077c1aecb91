// ArcGIS Catalog - ArcGIS Server Service Discovery and Caching
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/arcgis-catalog

/*
Package supervisor provides suture v4 process supervision for the catalog
service.

# Tree Layout

	arcgis-catalog (root)
	├── catalog-layer    cache preload
	├── messaging-layer  geoprocessing event log consumer, runner registry
	└── api-layer        HTTP server

Each layer is its own supervisor, so a consumer crash loop in the messaging
layer does not restart the HTTP server. Supervisor events are logged through
sutureslog and the zerolog slog adapter.

# Usage

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	tree.AddCatalogService(services.NewPreloadService(cache, cfg.Catalog.PreloadURLs))
	tree.AddMessagingService(events.NewLogConsumer(bus))
	tree.AddAPIService(services.NewHTTPServerService(server.Addr, server, cfg.Server.ShutdownTimeout))
	err = tree.Serve(ctx)
*/
package supervisor
