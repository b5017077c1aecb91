// ArcGIS Catalog - ArcGIS Server Service Discovery and Caching
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/arcgis-catalog

package catalog

import (
	"context"
	"errors"
	"sort"

	"github.com/tomtom215/arcgis-catalog/internal/arcgis"
	"github.com/tomtom215/arcgis-catalog/internal/cache"
	"github.com/tomtom215/arcgis-catalog/internal/logging"
)

// Stats summarizes the cache contents.
type Stats struct {
	Catalogs     int         `json:"catalogs"`
	Services     int         `json:"services"`
	CatalogIndex cache.Stats `json:"catalog_index"`
	ServiceIndex cache.Stats `json:"service_index"`
	CatalogURLs  []string    `json:"catalog_urls"`
}

// Stats returns a snapshot of both indexes.
func (c *Cache) Stats() Stats {
	urls := make([]string, 0, c.catalogs.Len())
	c.catalogs.Range(func(_ string, cat *arcgis.Catalog) bool {
		urls = append(urls, cat.RootURL)
		return true
	})
	sort.Strings(urls)

	return Stats{
		Catalogs:     c.catalogs.Len(),
		Services:     c.services.Len(),
		CatalogIndex: c.catalogs.GetStats(),
		ServiceIndex: c.services.GetStats(),
		CatalogURLs:  urls,
	}
}

// ServiceCount returns the number of indexed services.
func (c *Cache) ServiceCount() int {
	return c.services.Len()
}

// Preload discovers each URL once. Failures are logged and returned joined;
// the catalogs that did load stay cached.
func (c *Cache) Preload(ctx context.Context, urls []string) error {
	var errs []error
	for _, u := range urls {
		if err := ctx.Err(); err != nil {
			return err
		}
		cat, err := c.GetCatalog(ctx, u)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		logging.Ctx(ctx).Info().Str("url", cat.RootURL).Int("services", len(cat.Services)).Msg("Preloaded catalog")
	}
	return errors.Join(errs...)
}
