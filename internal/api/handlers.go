// ArcGIS Catalog - ArcGIS Server Service Discovery and Caching
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/arcgis-catalog

package api

import (
	"context"
	"time"

	"github.com/tomtom215/arcgis-catalog/internal/arcgis"
	"github.com/tomtom215/arcgis-catalog/internal/catalog"
	"github.com/tomtom215/arcgis-catalog/internal/geoprocessing"
)

// CatalogStore is the catalog cache surface served by the API.
// *catalog.Cache implements it.
type CatalogStore interface {
	GetCatalog(ctx context.Context, rawURL string) (*arcgis.Catalog, error)
	GetCatalogViaProxy(ctx context.Context, rawURL, proxyURL string) (*arcgis.Catalog, error)
	GetCatalogWithCredentials(ctx context.Context, rawURL, username, password string) (*arcgis.Catalog, error)
	GetService(ctx context.Context, rawURL string) (arcgis.Service, error)
	GetServiceWithCredentials(ctx context.Context, rawURL, username, password string) (arcgis.Service, error)
	Stats() catalog.Stats
}

// RunnerRegistry resolves geoprocessing task runners and their jobs.
// *geoprocessing.Registry implements it.
type RunnerRegistry interface {
	Runner(ctx context.Context, taskURL string) (*geoprocessing.Runner, error)
	FindJob(jobID string) (*geoprocessing.Runner, geoprocessing.Job, bool)
	ActiveJobs() []geoprocessing.Job
}

// Handler contains dependencies for API handlers
//
// Handler methods are split across files:
//   - handlers.go: Handler struct and constructor (this file)
//   - handlers_helpers.go: body decoding and validation helpers
//   - handlers_health.go: liveness and cache statistics
//   - handlers_catalog.go: catalog and service lookups
//   - handlers_gp.go: geoprocessing execute, jobs and results
type Handler struct {
	catalogs  CatalogStore
	runners   RunnerRegistry
	startTime time.Time
}

// NewHandler creates a new API handler.
//
// Example:
//
//	handler := api.NewHandler(catalogCache, gpRegistry)
//	router := api.NewRouter(handler, api.NewChiMiddleware(nil))
//	srv := &http.Server{Addr: ":8080", Handler: router.SetupChi()}
func NewHandler(catalogs CatalogStore, runners RunnerRegistry) *Handler {
	return &Handler{
		catalogs:  catalogs,
		runners:   runners,
		startTime: time.Now(),
	}
}

var (
	_ CatalogStore   = (*catalog.Cache)(nil)
	_ RunnerRegistry = (*geoprocessing.Registry)(nil)
)
