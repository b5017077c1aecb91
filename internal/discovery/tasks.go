// ArcGIS Catalog - ArcGIS Server Service Discovery and Caching
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/arcgis-catalog

package discovery

import (
	"context"
	"net/url"

	"github.com/tomtom215/arcgis-catalog/internal/arcgis"
	"github.com/tomtom215/arcgis-catalog/internal/hydrator"
	"github.com/tomtom215/arcgis-catalog/internal/logging"
)

// discoverTasks hydrates every task named by svc.TaskNames into svc.Tasks.
//
// A task that fails to hydrate leaves a nil entry so Tasks stays positionally
// aligned with TaskNames. Services that fail are dropped instead; see
// GeoprocessingService.Task for lookups that skip the placeholders.
func (f *Factory) discoverTasks(ctx context.Context, svc *arcgis.GeoprocessingService, opts Options) []arcgis.DiscoveryFailure {
	var failures []arcgis.DiscoveryFailure

	svc.Tasks = make([]*arcgis.GPTask, 0, len(svc.TaskNames))
	for _, name := range svc.TaskNames {
		taskURL := svc.URL + "/" + url.PathEscape(name)

		task, err := hydrator.Hydrate[arcgis.GPTask](ctx, f.hydrator,
			hydrator.Get(arcgis.EnsureJSONFormat(taskURL), opts.ProxyURL, opts.Token.Value))
		if err != nil {
			logging.Ctx(ctx).Warn().Err(err).Str("task", taskURL).Msg("Geoprocessing task hydration failed, keeping placeholder")
			failures = append(failures, arcgis.DiscoveryFailure{Kind: arcgis.FailureTask, URL: taskURL, Error: err.Error()})
			svc.Tasks = append(svc.Tasks, nil)
			continue
		}

		task.URL = taskURL
		if task.Name == "" {
			task.Name = name
		}
		svc.Tasks = append(svc.Tasks, task)
	}

	return failures
}
