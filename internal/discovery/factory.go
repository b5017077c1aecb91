// ArcGIS Catalog - ArcGIS Server Service Discovery and Caching
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/arcgis-catalog

package discovery

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/arcgis-catalog/internal/arcgis"
	"github.com/tomtom215/arcgis-catalog/internal/config"
	"github.com/tomtom215/arcgis-catalog/internal/hydrator"
	"github.com/tomtom215/arcgis-catalog/internal/logging"
	"github.com/tomtom215/arcgis-catalog/internal/metrics"
)

var (
	// ErrEmptyURL is returned when discovery is asked for an empty URL.
	ErrEmptyURL = errors.New("url is required")

	// ErrUnsupportedServiceType is returned for URLs that name none of the
	// supported service type tags. Catalog discovery skips such services
	// without recording a failure.
	ErrUnsupportedServiceType = errors.New("unsupported service type")

	// ErrNoTokenGenerator is returned when credentials are supplied to a
	// Factory built without a token generator.
	ErrNoTokenGenerator = errors.New("credentials supplied but no token generator configured")
)

// defaultMaxConcurrency applies when the configuration leaves it unset.
const defaultMaxConcurrency = 4

// Factory discovers catalogs and services through a Hydrator.
//
// Thread Safety: Factory holds no per-call state and is safe for concurrent use.
type Factory struct {
	hydrator       hydrator.Hydrator
	tokens         hydrator.TokenGenerator
	maxConcurrency int
}

// NewFactory creates a Factory. tokens may be nil when no caller supplies credentials.
func NewFactory(h hydrator.Hydrator, tokens hydrator.TokenGenerator, cfg *config.DiscoveryConfig) *Factory {
	maxConcurrency := defaultMaxConcurrency
	if cfg != nil && cfg.MaxConcurrency > 0 {
		maxConcurrency = cfg.MaxConcurrency
	}
	return &Factory{
		hydrator:       h,
		tokens:         tokens,
		maxConcurrency: maxConcurrency,
	}
}

// CreateCatalog fetches the catalog at rawURL and recursively discovers every
// folder and service beneath it. Only a failure of the root fetch is returned
// as an error.
func (f *Factory) CreateCatalog(ctx context.Context, rawURL string, opts Options) (*arcgis.Catalog, error) {
	if strings.TrimSpace(rawURL) == "" {
		return nil, ErrEmptyURL
	}

	opts, err := f.authorize(ctx, rawURL, opts)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	logger := logging.Ctx(ctx).With().Str("component", "discovery").Str("root", arcgis.StripQuery(rawURL)).Logger()

	cat, err := f.walk(ctx, rawURL, opts)
	if err != nil {
		return nil, fmt.Errorf("create catalog %s: %w", arcgis.StripQuery(rawURL), err)
	}

	folders, services, tasks := countFailures(cat.Failures)
	metrics.RecordDiscovery(time.Since(start), folders, services, tasks)

	logger.Info().
		Int("services", len(cat.Services)).
		Int("folders", len(cat.Folders)).
		Int("skipped", len(cat.Failures)).
		Dur("duration", time.Since(start)).
		Msg("Catalog discovery complete")

	return cat, nil
}

// CreateService hydrates the single service at rawURL. The service type is
// detected from the URL.
func (f *Factory) CreateService(ctx context.Context, rawURL string, opts Options) (arcgis.Service, error) {
	if strings.TrimSpace(rawURL) == "" {
		return nil, ErrEmptyURL
	}

	opts, err := f.authorize(ctx, rawURL, opts)
	if err != nil {
		return nil, err
	}

	res := f.createService(ctx, rawURL, opts)
	for _, failure := range res.Failures {
		logging.Ctx(ctx).Warn().Str("url", failure.URL).Str("error", failure.Error).Msg("Skipped geoprocessing task")
	}
	if !res.OK() {
		return nil, res.Err
	}
	return res.Value, nil
}

// authorize exchanges credentials for a token when the caller has none.
func (f *Factory) authorize(ctx context.Context, rawURL string, opts Options) (Options, error) {
	if opts.Credentials.IsZero() || opts.Token.Value != "" {
		return opts, nil
	}
	if f.tokens == nil {
		return opts, ErrNoTokenGenerator
	}
	token, err := f.tokens.GenerateToken(ctx, rawURL, opts.Credentials, opts.ProxyURL)
	if err != nil {
		return opts, fmt.Errorf("authenticate %s: %w", arcgis.StripQuery(rawURL), err)
	}
	opts.Token = token
	return opts, nil
}

// walk hydrates one catalog node and everything beneath it.
func (f *Factory) walk(ctx context.Context, rawURL string, opts Options) (*arcgis.Catalog, error) {
	root, err := arcgis.CanonicalRootURL(rawURL)
	if err != nil {
		return nil, err
	}

	cat := &arcgis.Catalog{}
	req := hydrator.Get(arcgis.EnsureJSONFormat(rawURL), opts.ProxyURL, opts.Token.Value)
	if err := f.hydrator.Hydrate(ctx, req, cat); err != nil {
		return nil, err
	}
	cat.RootURL = root
	cat.ProxyURL = opts.ProxyURL
	cat.SetToken(opts.Token)

	var (
		services []arcgis.Service
		failures []arcgis.DiscoveryFailure
	)

	for _, folder := range cat.Folders {
		folderURL := root + "/" + folderName(folder)
		sub, err := f.walk(ctx, folderURL, opts)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			logging.Ctx(ctx).Warn().Err(err).Str("folder", folderURL).Msg("Skipped catalog folder")
			failures = append(failures, arcgis.DiscoveryFailure{Kind: arcgis.FailureFolder, URL: folderURL, Error: err.Error()})
			continue
		}
		services = append(services, sub.Services...)
		failures = append(failures, sub.Failures...)
	}

	svcOpts := opts
	if svcOpts.CurrentVersion == 0 {
		svcOpts.CurrentVersion = cat.CurrentVersion
	}
	results := f.createServices(ctx, root, cat.ServiceInfos, svcOpts)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	for i, res := range results {
		failures = append(failures, res.Failures...)
		if res.OK() {
			services = append(services, res.Value)
			continue
		}
		if errors.Is(res.Err, ErrUnsupportedServiceType) {
			logging.Ctx(ctx).Debug().Str("type", cat.ServiceInfos[i].Type).Str("name", cat.ServiceInfos[i].Name).Msg("Ignoring unsupported service type")
			continue
		}
		serviceURL := arcgis.ServiceURL(root, cat.ServiceInfos[i].Name, cat.ServiceInfos[i].Type)
		logging.Ctx(ctx).Warn().Err(res.Err).Str("service", serviceURL).Msg("Skipped service")
		failures = append(failures, arcgis.DiscoveryFailure{Kind: arcgis.FailureService, URL: serviceURL, Error: res.Err.Error()})
	}

	cat.Services = services
	cat.Failures = failures
	return cat, nil
}

// createServices hydrates the services listed directly in one node. Results
// are positionally aligned with infos.
func (f *Factory) createServices(ctx context.Context, root string, infos []arcgis.ServiceInfo, opts Options) []Result[arcgis.Service] {
	results := make([]Result[arcgis.Service], len(infos))

	var g errgroup.Group
	g.SetLimit(f.maxConcurrency)
	for i, info := range infos {
		serviceURL := arcgis.ServiceURL(root, info.Name, info.Type)
		g.Go(func() error {
			results[i] = f.createService(ctx, serviceURL, opts)
			return nil
		})
	}
	_ = g.Wait() // goroutines report through results

	return results
}

// createService detects the type of rawURL and hydrates it.
func (f *Factory) createService(ctx context.Context, rawURL string, opts Options) Result[arcgis.Service] {
	serviceType, ok := arcgis.DetectServiceType(rawURL)
	if !ok {
		return Result[arcgis.Service]{Err: fmt.Errorf("%w: %s", ErrUnsupportedServiceType, arcgis.StripQuery(rawURL))}
	}

	svc := arcgis.NewService(serviceType)
	req := hydrator.Get(arcgis.EnsureJSONFormat(rawURL), opts.ProxyURL, opts.Token.Value)
	if err := f.hydrator.Hydrate(ctx, req, svc); err != nil {
		return Result[arcgis.Service]{Err: err}
	}

	base := svc.Base()
	base.URL = arcgis.StripQuery(rawURL)
	base.Name = arcgis.ServiceNameFromURL(rawURL)
	base.ServiceType = serviceType
	if opts.CurrentVersion != 0 {
		base.CurrentVersion = opts.CurrentVersion
	}
	base.ProxyURL = opts.ProxyURL
	base.SetToken(opts.Token)

	var failures []arcgis.DiscoveryFailure
	if gp, ok := svc.(*arcgis.GeoprocessingService); ok {
		failures = f.discoverTasks(ctx, gp, opts)
	}

	metrics.DiscoveryServices.WithLabelValues(serviceType.String()).Inc()
	return Result[arcgis.Service]{Value: svc, Failures: failures}
}

// folderName drops the parent path that nested folder listings carry.
func folderName(name string) string {
	if i := strings.LastIndex(name, "/"); i >= 0 {
		return name[i+1:]
	}
	return name
}

func countFailures(failures []arcgis.DiscoveryFailure) (folders, services, tasks int) {
	for _, f := range failures {
		switch f.Kind {
		case arcgis.FailureFolder:
			folders++
		case arcgis.FailureService:
			services++
		case arcgis.FailureTask:
			tasks++
		}
	}
	return folders, services, tasks
}
