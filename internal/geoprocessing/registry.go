// ArcGIS Catalog - ArcGIS Server Service Discovery and Caching
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/arcgis-catalog

package geoprocessing

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/tomtom215/arcgis-catalog/internal/arcgis"
	"github.com/tomtom215/arcgis-catalog/internal/cache"
	"github.com/tomtom215/arcgis-catalog/internal/hydrator"
)

var (
	// ErrNotGeoprocessing is returned when a task URL does not belong to a GPServer.
	ErrNotGeoprocessing = errors.New("not a geoprocessing service")

	// ErrUnknownTask is returned when the service does not list the task.
	ErrUnknownTask = errors.New("unknown task")
)

// ServiceLookup resolves a service URL, typically through the catalog cache.
type ServiceLookup interface {
	GetService(ctx context.Context, rawURL string) (arcgis.Service, error)
}

// Registry keeps one Runner per task URL, creating them on first use from
// services resolved through a ServiceLookup.
type Registry struct {
	services ServiceLookup
	hydrator hydrator.Hydrator
	observer Observer
	settings Settings

	mu      sync.Mutex
	runners map[string]*Runner
}

// NewRegistry creates an empty registry.
func NewRegistry(services ServiceLookup, h hydrator.Hydrator, observer Observer, settings Settings) *Registry {
	return &Registry{
		services: services,
		hydrator: h,
		observer: observer,
		settings: settings,
		runners:  make(map[string]*Runner),
	}
}

// Runner returns the runner for taskURL ({service}/GPServer/{task}).
func (g *Registry) Runner(ctx context.Context, taskURL string) (*Runner, error) {
	taskURL = strings.TrimRight(arcgis.StripQuery(strings.TrimSpace(taskURL)), "/")
	key := cache.Key(taskURL)

	g.mu.Lock()
	runner, ok := g.runners[key]
	g.mu.Unlock()
	if ok {
		return runner, nil
	}

	i := strings.LastIndex(taskURL, "/")
	if i <= 0 {
		return nil, fmt.Errorf("%w: %q is not a task url", ErrUnknownTask, taskURL)
	}
	serviceURL, escapedName := taskURL[:i], taskURL[i+1:]
	taskName, err := url.PathUnescape(escapedName)
	if err != nil {
		taskName = escapedName
	}

	svc, err := g.services.GetService(ctx, serviceURL)
	if err != nil {
		return nil, err
	}
	gp, ok := svc.(*arcgis.GeoprocessingService)
	if !ok {
		return nil, fmt.Errorf("%w: %s is a %s", ErrNotGeoprocessing, serviceURL, svc.Type())
	}
	task, ok := gp.Task(taskName)
	if !ok {
		return nil, fmt.Errorf("%w: %s on %s", ErrUnknownTask, taskName, serviceURL)
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if existing, ok := g.runners[key]; ok {
		return existing, nil
	}
	runner = NewRunner(gp, task, g.hydrator, g.observer, g.settings)
	g.runners[key] = runner
	return runner, nil
}

// FindJob locates the runner tracking jobID, active or recently finished.
func (g *Registry) FindJob(jobID string) (*Runner, Job, bool) {
	g.mu.Lock()
	runners := make([]*Runner, 0, len(g.runners))
	for _, r := range g.runners {
		runners = append(runners, r)
	}
	g.mu.Unlock()

	for _, r := range runners {
		if job, ok := r.Job(jobID); ok {
			return r, job, true
		}
	}
	return nil, Job{}, false
}

// ActiveJobs returns the active jobs of every runner.
func (g *Registry) ActiveJobs() []Job {
	g.mu.Lock()
	defer g.mu.Unlock()

	var jobs []Job
	for _, r := range g.runners {
		jobs = append(jobs, r.ActiveJobs()...)
	}
	return jobs
}

// Close closes every runner.
func (g *Registry) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()

	for key, r := range g.runners {
		r.Close()
		delete(g.runners, key)
	}
}
