// ArcGIS Catalog - ArcGIS Server Service Discovery and Caching
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/arcgis-catalog

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/arcgis-catalog/internal/api"
	"github.com/tomtom215/arcgis-catalog/internal/catalog"
	"github.com/tomtom215/arcgis-catalog/internal/config"
	"github.com/tomtom215/arcgis-catalog/internal/discovery"
	"github.com/tomtom215/arcgis-catalog/internal/events"
	"github.com/tomtom215/arcgis-catalog/internal/geoprocessing"
	"github.com/tomtom215/arcgis-catalog/internal/hydrator"
	"github.com/tomtom215/arcgis-catalog/internal/logging"
	"github.com/tomtom215/arcgis-catalog/internal/supervisor"
	"github.com/tomtom215/arcgis-catalog/internal/supervisor/services"
)

func main() {
	// Load configuration first to get logging settings
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Int("port", cfg.Server.Port).
		Bool("single_flight", cfg.Catalog.SingleFlight).
		Int("preload_urls", len(cfg.Catalog.PreloadURLs)).
		Bool("events", cfg.Events.Enabled).
		Msg("Starting ArcGIS catalog server")

	if cfg.Security.RateLimitDisabled {
		logging.Warn().Msg("Rate limiting is DISABLED (DISABLE_RATE_LIMIT=true)")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	app := build(cfg)

	// The HTTP server must be able to drain before suture gives up on it.
	treeConfig := supervisor.DefaultTreeConfig()
	treeConfig.ShutdownTimeout = cfg.Server.ShutdownTimeout + 5*time.Second

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), treeConfig)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	// Catalog layer: one-shot cache warm-up and runner shutdown.
	tree.AddCatalogService(services.NewPreloadService(app.cache, cfg.Catalog.PreloadURLs))
	tree.AddCatalogService(services.NewRegistryService(app.registry))

	// Messaging layer: geoprocessing event log.
	if app.consumer != nil {
		tree.AddMessagingService(app.consumer)
	}

	// API layer: HTTP server with graceful shutdown.
	tree.AddAPIService(services.NewHTTPServerService(app.server.Addr, app.server, cfg.Server.ShutdownTimeout))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Str("addr", app.server.Addr).Msg("Starting supervisor tree")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish...")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	if len(unstopped) > 0 {
		logging.Warn().Int("count", len(unstopped)).Msg("Services failed to stop within timeout")
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
		}
	}

	app.shutdown()
	logging.Info().Msg("Application stopped gracefully")
}

// application holds the wired components.
type application struct {
	cache     *catalog.Cache
	registry  *geoprocessing.Registry
	bus       *events.Bus
	publisher *events.Publisher
	consumer  *events.LogConsumer
	server    *http.Server
}

// build wires the hydrator, catalog cache, geoprocessing registry, event bus
// and HTTP server from cfg.
func build(cfg *config.Config) *application {
	app := &application{}

	client := hydrator.NewClient(&cfg.ArcGIS, &cfg.Breaker)
	tokens := hydrator.NewTokenProvider(client, &cfg.Tokens)
	factory := discovery.NewFactory(client, tokens, &cfg.Discovery)

	app.cache = catalog.New(factory, tokens, catalog.Settings{
		SingleFlight:    cfg.Catalog.SingleFlight,
		RefreshSkew:     cfg.Tokens.RefreshSkew,
		DefaultProxyURL: cfg.ArcGIS.DefaultProxyURL,
	})

	var observer geoprocessing.Observer
	if cfg.Events.Enabled {
		app.bus = events.NewBus(&cfg.Events)
		app.publisher = events.NewPublisher(app.bus)
		app.consumer = events.NewLogConsumer(app.bus)
		observer = app.publisher
	}

	app.registry = geoprocessing.NewRegistry(app.cache, client, observer, geoprocessing.Settings{
		PollInterval:    cfg.Geoprocessing.PollInterval,
		MaxURLLength:    cfg.Geoprocessing.MaxURLLength,
		ExecuteTimeout:  cfg.Geoprocessing.ExecuteTimeout,
		MaxPollFailures: cfg.Geoprocessing.MaxPollFailures,
	})

	handler := api.NewHandler(app.cache, app.registry)
	router := api.NewRouter(handler, api.NewChiMiddleware(api.ChiMiddlewareConfigFromSecurity(&cfg.Security)))

	app.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router.SetupChi(),
		ReadHeaderTimeout: cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       2 * cfg.Server.Timeout,
	}
	return app
}

// shutdown releases what the supervisor does not own. The registry service
// has already closed the runners, so no new events are published.
func (a *application) shutdown() {
	if a.publisher != nil {
		a.publisher.Close()
	}
	if a.bus != nil {
		if err := a.bus.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing event bus")
		}
	}
}
