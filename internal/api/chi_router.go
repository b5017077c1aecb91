// ArcGIS Catalog - ArcGIS Server Service Discovery and Caching
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/arcgis-catalog

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/arcgis-catalog/internal/middleware"
)

// Router sets up HTTP routes using the Chi router.
type Router struct {
	handler       *Handler
	chiMiddleware *ChiMiddleware
}

// NewRouter creates a router. A nil middleware factory uses the defaults.
func NewRouter(handler *Handler, chiMiddleware *ChiMiddleware) *Router {
	if chiMiddleware == nil {
		chiMiddleware = NewChiMiddleware(nil)
	}
	return &Router{
		handler:       handler,
		chiMiddleware: chiMiddleware,
	}
}

// SetupChi configures all HTTP routes.
func (router *Router) SetupChi() http.Handler {
	r := chi.NewRouter()

	// ========================
	// Global Middleware Stack
	// ========================
	r.Use(RequestIDWithLogging())      // X-Request-ID with logging context
	r.Use(chimiddleware.RealIP)        // Extract real IP from X-Forwarded-For
	r.Use(chimiddleware.Recoverer)     // Recover from panics
	r.Use(RequestLogging())            // Debug-level access log
	r.Use(router.chiMiddleware.CORS()) // CORS must be global to handle OPTIONS preflight

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, r, http.StatusNotFound, ErrCodeNotFound, "Route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, r, http.StatusMethodNotAllowed, ErrCodeMethodNotAllowed, "Method not allowed")
	})

	// ========================
	// Health Endpoints
	// ========================
	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimitHealth())
		r.Use(APISecurityHeaders())
		r.Get("/live", router.handler.HealthLive)
	})

	// ========================
	// Catalog Endpoints
	// ========================
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit())
		r.Use(APISecurityHeaders())
		r.Use(middleware.PrometheusMetrics)
		r.Use(chimiddleware.Compress(5, "application/json"))

		r.Get("/catalog", router.handler.GetCatalog)
		r.With(router.chiMiddleware.RateLimitCredentials()).Post("/catalog", router.handler.PostCatalog)
		r.Get("/service", router.handler.GetService)
		r.With(router.chiMiddleware.RateLimitCredentials()).Post("/service", router.handler.PostService)
		r.Get("/cache/stats", router.handler.CacheStats)

		// ========================
		// Geoprocessing Endpoints
		// ========================
		r.Route("/gp", func(r chi.Router) {
			r.With(router.chiMiddleware.RateLimitGeoprocessing()).Post("/execute", router.handler.ExecuteTask)
			r.With(router.chiMiddleware.RateLimitGeoprocessing()).Post("/jobs", router.handler.SubmitJob)
			r.Get("/jobs", router.handler.ListJobs)
			r.Get("/jobs/{jobID}", router.handler.GetJob)
			r.Delete("/jobs/{jobID}", router.handler.CancelJob)
			r.Get("/jobs/{jobID}/results/{param}", router.handler.GetJobResult)
			r.Get("/jobs/{jobID}/results/{param}/image", router.handler.GetJobResultImage)
		})
	})

	// ========================
	// Prometheus Metrics
	// ========================
	r.Handle("/metrics", promhttp.Handler())

	return r
}
