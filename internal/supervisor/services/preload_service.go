// ArcGIS Catalog - ArcGIS Server Service Discovery and Caching
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/arcgis-catalog

package services

import (
	"context"
	"fmt"
	"time"

	"github.com/thejerf/suture/v4"

	"github.com/tomtom215/arcgis-catalog/internal/logging"
)

// Preloader warms a cache with catalogs. Satisfied by *catalog.Cache.
type Preloader interface {
	Preload(ctx context.Context, urls []string) error
}

// PreloadService discovers the configured catalogs once at start-up.
//
// A failed pass is returned as an error so the supervisor retries it with
// backoff; a successful pass ends the service for good.
type PreloadService struct {
	cache Preloader
	urls  []string
	name  string
}

// NewPreloadService creates a preload service for urls.
func NewPreloadService(cache Preloader, urls []string) *PreloadService {
	return &PreloadService{
		cache: cache,
		urls:  append([]string(nil), urls...),
		name:  "catalog-preload",
	}
}

// Serve implements suture.Service.
func (p *PreloadService) Serve(ctx context.Context) error {
	if len(p.urls) == 0 {
		return suture.ErrDoNotRestart
	}

	start := time.Now()
	if err := p.cache.Preload(ctx, p.urls); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("catalog preload failed: %w", err)
	}

	logging.Ctx(ctx).Info().
		Int("catalogs", len(p.urls)).
		Dur("elapsed", time.Since(start)).
		Msg("Catalog cache preloaded")
	return suture.ErrDoNotRestart
}

// String implements fmt.Stringer for supervisor logs.
func (p *PreloadService) String() string {
	return p.name
}
