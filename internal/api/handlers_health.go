// ArcGIS Catalog - ArcGIS Server Service Discovery and Caching
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/arcgis-catalog

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/arcgis-catalog/internal/catalog"
)

// LiveStatus is the liveness payload.
type LiveStatus struct {
	Status string  `json:"status"`
	Uptime float64 `json:"uptime_seconds"`
}

// CacheStatus is the cache statistics payload.
type CacheStatus struct {
	catalog.Stats
	ActiveJobs int `json:"active_jobs"`
}

// HealthLive reports that the process is serving requests. It never touches
// ArcGIS Server.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	NewResponseWriter(w, r).Success(LiveStatus{
		Status: "alive",
		Uptime: time.Since(h.startTime).Seconds(),
	})
}

// CacheStats returns catalog and service index statistics along with the
// number of geoprocessing jobs still being polled.
func (h *Handler) CacheStats(w http.ResponseWriter, r *http.Request) {
	NewResponseWriter(w, r).Success(CacheStatus{
		Stats:      h.catalogs.Stats(),
		ActiveJobs: len(h.runners.ActiveJobs()),
	})
}
