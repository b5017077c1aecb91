// ArcGIS Catalog - ArcGIS Server Service Discovery and Caching
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/arcgis-catalog

package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/tomtom215/arcgis-catalog/internal/arcgis"
	"github.com/tomtom215/arcgis-catalog/internal/cache"
	"github.com/tomtom215/arcgis-catalog/internal/discovery"
	"github.com/tomtom215/arcgis-catalog/internal/hydrator"
	"github.com/tomtom215/arcgis-catalog/internal/logging"
	"github.com/tomtom215/arcgis-catalog/internal/metrics"
)

var (
	// ErrCreateCatalog is returned when a catalog miss cannot be discovered.
	ErrCreateCatalog = errors.New("unable to create catalog")

	// ErrCreateService is returned when a service miss cannot be hydrated.
	ErrCreateService = errors.New("unable to create service")
)

// Factory is the discovery capability the cache delegates misses to.
// *discovery.Factory implements it.
type Factory interface {
	CreateCatalog(ctx context.Context, rawURL string, opts discovery.Options) (*arcgis.Catalog, error)
	CreateService(ctx context.Context, rawURL string, opts discovery.Options) (arcgis.Service, error)
}

// Settings configure a Cache.
type Settings struct {
	// SingleFlight collapses concurrent misses for the same URL.
	SingleFlight bool

	// RefreshSkew is how long before expiry a token is treated as stale.
	RefreshSkew time.Duration

	// DefaultProxyURL is used by lookups that do not name a proxy.
	DefaultProxyURL string
}

// Cache is the URL-keyed store of catalogs and services.
//
// Thread Safety: Safe for concurrent use. Callers need no external locking.
type Cache struct {
	factory Factory
	tokens  hydrator.TokenGenerator

	catalogs *cache.Index[*arcgis.Catalog]
	services *cache.Index[arcgis.Service]

	skew         time.Duration
	defaultProxy string
	flight       *singleflight.Group // nil unless Settings.SingleFlight
	audit        *logging.SecurityLogger
	now          func() time.Time
}

// New creates an empty cache. tokens may be nil if no caller uses credentials.
func New(factory Factory, tokens hydrator.TokenGenerator, settings Settings) *Cache {
	skew := settings.RefreshSkew
	if skew <= 0 {
		skew = arcgis.DefaultTokenSkew
	}
	c := &Cache{
		factory:      factory,
		tokens:       tokens,
		catalogs:     cache.NewIndex[*arcgis.Catalog](),
		services:     cache.NewIndex[arcgis.Service](),
		skew:         skew,
		defaultProxy: settings.DefaultProxyURL,
		audit:        logging.NewSecurityLogger(),
		now:          time.Now,
	}
	if settings.SingleFlight {
		c.flight = &singleflight.Group{}
	}
	return c
}

// GetCatalog returns the catalog at rawURL, discovering it on a miss.
// Cached anonymous catalogs are returned without any freshness check.
func (c *Cache) GetCatalog(ctx context.Context, rawURL string) (*arcgis.Catalog, error) {
	return c.GetCatalogViaProxy(ctx, rawURL, "")
}

// GetCatalogViaProxy is GetCatalog with discovery routed through proxyURL.
// The proxy applies to this call only; it is not part of the cache key.
func (c *Cache) GetCatalogViaProxy(ctx context.Context, rawURL, proxyURL string) (*arcgis.Catalog, error) {
	if cat, ok := c.lookupCatalog(rawURL); ok {
		return cat, nil
	}

	opts := discovery.Options{ProxyURL: c.proxy(proxyURL)}
	return c.createCatalog(ctx, rawURL, opts)
}

// GetCatalogWithCredentials returns the catalog at rawURL using a token
// obtained from username and password. A cached catalog whose token is
// missing or stale gets a fresh token, propagated to all of its services.
func (c *Cache) GetCatalogWithCredentials(ctx context.Context, rawURL, username, password string) (*arcgis.Catalog, error) {
	creds := arcgis.Credentials{Username: username, Password: password}
	if creds.IsZero() {
		return c.GetCatalog(ctx, rawURL)
	}

	cat, ok := c.lookupCatalog(rawURL)
	if !ok {
		opts := discovery.Options{ProxyURL: c.proxy(""), Credentials: creds}
		return c.createCatalog(ctx, rawURL, opts)
	}

	if cat.IsTokenValid(c.now(), c.skew) {
		return cat, nil
	}
	return c.refreshCatalog(ctx, rawURL, cat, creds)
}

// GetService returns the service at rawURL, hydrating it on a miss. Services
// indexed by an earlier catalog discovery are served without a fetch.
func (c *Cache) GetService(ctx context.Context, rawURL string) (arcgis.Service, error) {
	if svc, ok := c.lookupService(rawURL); ok {
		return svc, nil
	}
	return c.createService(ctx, rawURL, discovery.Options{ProxyURL: c.proxy("")})
}

// GetServiceWithCredentials returns the service at rawURL using a token
// obtained from username and password. A stale cached service has its token
// refreshed in place.
func (c *Cache) GetServiceWithCredentials(ctx context.Context, rawURL, username, password string) (arcgis.Service, error) {
	creds := arcgis.Credentials{Username: username, Password: password}
	if creds.IsZero() {
		return c.GetService(ctx, rawURL)
	}

	svc, ok := c.lookupService(rawURL)
	if !ok {
		return c.createService(ctx, rawURL, discovery.Options{ProxyURL: c.proxy(""), Credentials: creds})
	}

	base := svc.Base()
	if base.IsTokenValid(c.now(), c.skew) {
		return svc, nil
	}

	token, err := c.generateToken(ctx, "service", base.URL, creds, base.ProxyURL)
	if err != nil {
		return nil, err
	}
	base.SetToken(token)
	return svc, nil
}

func (c *Cache) lookupCatalog(rawURL string) (*arcgis.Catalog, bool) {
	cat, ok := c.catalogs.Get(rawURL)
	metrics.RecordCacheLookup(metrics.IndexCatalogs, ok)
	return cat, ok
}

func (c *Cache) lookupService(rawURL string) (arcgis.Service, bool) {
	svc, ok := c.services.Get(rawURL)
	metrics.RecordCacheLookup(metrics.IndexServices, ok)
	return svc, ok
}

func (c *Cache) proxy(proxyURL string) string {
	if proxyURL != "" {
		return proxyURL
	}
	return c.defaultProxy
}

// createCatalog discovers rawURL, stores it and indexes its services.
func (c *Cache) createCatalog(ctx context.Context, rawURL string, opts discovery.Options) (*arcgis.Catalog, error) {
	if strings.TrimSpace(rawURL) == "" {
		return nil, fmt.Errorf("%w: %w", ErrCreateCatalog, discovery.ErrEmptyURL)
	}

	create := func() (*arcgis.Catalog, error) {
		cat, err := c.factory.CreateCatalog(ctx, rawURL, opts)
		if err != nil {
			return nil, err
		}
		if cat == nil {
			return nil, errors.New("factory returned no catalog")
		}
		c.catalogs.Set(rawURL, cat)
		c.indexServices(cat)
		metrics.CacheSize.WithLabelValues(metrics.IndexCatalogs).Set(float64(c.catalogs.Len()))
		return cat, nil
	}

	cat, err := flight(c.flight, "catalog|"+cache.Key(rawURL)+"|"+opts.ProxyURL+"|"+opts.Credentials.Username, create)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("url", arcgis.StripQuery(rawURL)).Msg("Catalog discovery failed")
		return nil, fmt.Errorf("%w from url '%s': %w", ErrCreateCatalog, rawURL, err)
	}
	return cat, nil
}

// createService hydrates rawURL and stores it.
func (c *Cache) createService(ctx context.Context, rawURL string, opts discovery.Options) (arcgis.Service, error) {
	if strings.TrimSpace(rawURL) == "" {
		return nil, fmt.Errorf("%w: %w", ErrCreateService, discovery.ErrEmptyURL)
	}

	create := func() (arcgis.Service, error) {
		svc, err := c.factory.CreateService(ctx, rawURL, opts)
		if err != nil {
			return nil, err
		}
		if svc == nil {
			return nil, errors.New("factory returned no service")
		}
		c.services.Set(rawURL, svc)
		metrics.CacheSize.WithLabelValues(metrics.IndexServices).Set(float64(c.services.Len()))
		return svc, nil
	}

	svc, err := flight(c.flight, "service|"+cache.Key(rawURL)+"|"+opts.ProxyURL+"|"+opts.Credentials.Username, create)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("url", arcgis.StripQuery(rawURL)).Msg("Service hydration failed")
		return nil, fmt.Errorf("%w from url '%s': %w", ErrCreateService, rawURL, err)
	}
	return svc, nil
}

// refreshCatalog replaces cat's token everywhere and swaps the cache entry.
func (c *Cache) refreshCatalog(ctx context.Context, rawURL string, cat *arcgis.Catalog, creds arcgis.Credentials) (*arcgis.Catalog, error) {
	token, err := c.generateToken(ctx, "catalog", cat.RootURL, creds, cat.ProxyURL)
	if err != nil {
		return nil, err
	}

	refreshed := cat.WithToken(token)
	for _, svc := range refreshed.Services {
		svc.Base().SetToken(token)
	}
	c.indexServices(refreshed)

	if !c.catalogs.CompareAndSwap(rawURL, cat, refreshed) {
		metrics.CacheSwapConflicts.Inc()
		logging.Ctx(ctx).Debug().Str("url", cat.RootURL).Msg("Catalog replaced concurrently, dropping refreshed entry")
	}
	return refreshed, nil
}

func (c *Cache) generateToken(ctx context.Context, target, rawURL string, creds arcgis.Credentials, proxyURL string) (arcgis.Token, error) {
	if c.tokens == nil {
		return arcgis.Token{}, discovery.ErrNoTokenGenerator
	}
	token, err := c.tokens.GenerateToken(ctx, rawURL, creds, proxyURL)
	metrics.RecordTokenRefresh(target, err)
	if err != nil {
		c.audit.LogTokenFailure(target, arcgis.StripQuery(rawURL), creds.Username, err.Error())
		return arcgis.Token{}, fmt.Errorf("refresh token for %s: %w", arcgis.StripQuery(rawURL), err)
	}

	c.audit.LogTokenIssued(target, arcgis.StripQuery(rawURL), creds.Username, token.Value)
	return token, nil
}

// indexServices stores every service of cat under its own URL.
func (c *Cache) indexServices(cat *arcgis.Catalog) {
	for _, svc := range cat.Services {
		c.services.Set(svc.Base().URL, svc)
	}
	metrics.CacheSize.WithLabelValues(metrics.IndexServices).Set(float64(c.services.Len()))
}

// flight runs fn through group when one is configured.
func flight[T any](group *singleflight.Group, key string, fn func() (T, error)) (T, error) {
	if group == nil {
		return fn()
	}
	v, err, _ := group.Do(key, func() (any, error) {
		return fn()
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}
