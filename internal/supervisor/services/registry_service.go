// ArcGIS Catalog - ArcGIS Server Service Discovery and Caching
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/arcgis-catalog

package services

import (
	"context"
)

// Closer is a component with no run loop of its own that must be closed on
// shutdown. Satisfied by *geoprocessing.Registry.
type Closer interface {
	Close()
}

// RegistryService ties the runner registry to the supervisor lifecycle:
// Serve blocks until shutdown and then closes every runner, cancelling any
// scheduled job polls.
type RegistryService struct {
	registry Closer
	name     string
}

// NewRegistryService creates a new registry service wrapper.
func NewRegistryService(registry Closer) *RegistryService {
	return &RegistryService{
		registry: registry,
		name:     "gp-runner-registry",
	}
}

// Serve implements suture.Service.
func (r *RegistryService) Serve(ctx context.Context) error {
	<-ctx.Done()
	r.registry.Close()
	return ctx.Err()
}

// String implements fmt.Stringer for supervisor logs.
func (r *RegistryService) String() string {
	return r.name
}
