// ArcGIS Catalog - ArcGIS Server Service Discovery and Caching
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/arcgis-catalog

package services

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/tomtom215/arcgis-catalog/internal/logging"
)

// HTTPServer is the lifecycle subset of *http.Server.
type HTTPServer interface {
	Serve(ln net.Listener) error
	Shutdown(ctx context.Context) error
}

// ListenError reports that the API address could not be bound. The
// supervisor restarts the service, so a port held by a previous process
// is retried with backoff.
type ListenError struct {
	Addr string
	Err  error
}

func (e *ListenError) Error() string {
	return fmt.Sprintf("listen on %s: %v", e.Addr, e.Err)
}

func (e *ListenError) Unwrap() error { return e.Err }

// HTTPServerService binds the API address and serves on it as a supervised
// service.
//
//	server := &http.Server{Addr: ":8080", Handler: router}
//	tree.AddAPIService(services.NewHTTPServerService(server.Addr, server, 30*time.Second))
type HTTPServerService struct {
	addr            string
	server          HTTPServer
	shutdownTimeout time.Duration
	bound           atomic.Pointer[string]
}

// NewHTTPServerService creates a service serving server on addr.
// shutdownTimeout bounds how long in-flight catalog and job requests get to
// finish.
func NewHTTPServerService(addr string, server HTTPServer, shutdownTimeout time.Duration) *HTTPServerService {
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}
	return &HTTPServerService{
		addr:            addr,
		server:          server,
		shutdownTimeout: shutdownTimeout,
	}
}

// Addr returns the address actually bound, which differs from the configured
// one for ":0". It is empty until the listener is up.
func (h *HTTPServerService) Addr() string {
	if p := h.bound.Load(); p != nil {
		return *p
	}
	return ""
}

// Serve implements suture.Service. It returns ctx.Err() after a graceful
// shutdown, a *ListenError when addr cannot be bound, and any other serve
// or shutdown failure wrapped.
func (h *HTTPServerService) Serve(ctx context.Context) error {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", h.addr)
	if err != nil {
		return &ListenError{Addr: h.addr, Err: err}
	}
	bound := ln.Addr().String()
	h.bound.Store(&bound)
	logging.Info().Str("addr", bound).Msg("API server listening")

	errCh := make(chan error, 1)
	go func() {
		if err := h.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("api server on %s failed: %w", bound, err)
		}
		return nil

	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), h.shutdownTimeout)
		defer cancel()

		logging.Info().Str("addr", bound).Dur("timeout", h.shutdownTimeout).Msg("Draining API requests")
		if err := h.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("api server shutdown on %s: %w", bound, err)
		}

		<-errCh
		return ctx.Err()
	}
}

// String implements fmt.Stringer for supervisor logs.
func (h *HTTPServerService) String() string {
	return "api-server"
}
