// ArcGIS Catalog - ArcGIS Server Service Discovery and Caching
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/arcgis-catalog

package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/thejerf/suture/v4"
)

type fakePreloader struct {
	calls    atomic.Int32
	failures int32
	urls     []string
}

func (f *fakePreloader) Preload(_ context.Context, urls []string) error {
	f.urls = urls
	if f.calls.Add(1) <= f.failures {
		return errors.New("connection refused")
	}
	return nil
}

func TestPreloadService(t *testing.T) {
	t.Parallel()

	urls := []string{"https://gis.example.com/arcgis/rest/services"}

	t.Run("success ends the service", func(t *testing.T) {
		cache := &fakePreloader{}
		err := NewPreloadService(cache, urls).Serve(context.Background())
		if !errors.Is(err, suture.ErrDoNotRestart) {
			t.Errorf("Serve() error = %v, want ErrDoNotRestart", err)
		}
		if cache.calls.Load() != 1 || len(cache.urls) != 1 {
			t.Errorf("calls = %d, urls = %v", cache.calls.Load(), cache.urls)
		}
	})

	t.Run("no urls is a no-op", func(t *testing.T) {
		cache := &fakePreloader{}
		err := NewPreloadService(cache, nil).Serve(context.Background())
		if !errors.Is(err, suture.ErrDoNotRestart) || cache.calls.Load() != 0 {
			t.Errorf("Serve() error = %v, calls = %d", err, cache.calls.Load())
		}
	})

	t.Run("failure is returned for restart", func(t *testing.T) {
		cache := &fakePreloader{failures: 1}
		err := NewPreloadService(cache, urls).Serve(context.Background())
		if err == nil || errors.Is(err, suture.ErrDoNotRestart) {
			t.Errorf("Serve() error = %v, want a restartable error", err)
		}
	})
}

func TestPreloadServiceRetriesUnderSupervisor(t *testing.T) {
	t.Parallel()

	cache := &fakePreloader{failures: 2}
	sup := suture.New("catalog-layer", suture.Spec{
		FailureThreshold: 10,
		FailureBackoff:   10 * time.Millisecond,
		Timeout:          time.Second,
	})
	sup.Add(NewPreloadService(cache, []string{"https://gis.example.com/arcgis/rest/services"}))

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	errCh := sup.ServeBackground(ctx)

	deadline := time.Now().Add(400 * time.Millisecond)
	for cache.calls.Load() < 3 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if got := cache.calls.Load(); got != 3 {
		t.Errorf("preload attempts = %d, want 3", got)
	}

	cancel()
	<-errCh
}

func TestRegistryService(t *testing.T) {
	t.Parallel()

	registry := &fakeRegistry{}
	svc := NewRegistryService(registry)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- svc.Serve(ctx) }()

	if registry.closed.Load() {
		t.Fatal("registry closed before shutdown")
	}
	cancel()

	if err := <-errCh; !errors.Is(err, context.Canceled) {
		t.Errorf("Serve() error = %v, want context.Canceled", err)
	}
	if !registry.closed.Load() {
		t.Error("registry was not closed on shutdown")
	}
	if svc.String() != "gp-runner-registry" {
		t.Errorf("String() = %q", svc.String())
	}
}

type fakeRegistry struct {
	closed atomic.Bool
}

func (f *fakeRegistry) Close() { f.closed.Store(true) }
