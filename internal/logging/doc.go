// ArcGIS Catalog - ArcGIS Server Service Discovery and Caching
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/arcgis-catalog

// Package logging provides the zerolog-based structured logging used across
// the catalog service.
//
// # Overview
//
// The package provides:
//   - A global zerolog logger configured once from main
//   - Context-aware logging: request, correlation, task and job IDs ride
//     on the context and are added by Ctx
//   - An slog adapter for suture and watermill, which log through slog
//   - A credential audit logger that masks usernames and tokens
//   - An event bus logger for geoprocessing events
//
// # Quick Start
//
//	import "github.com/tomtom215/arcgis-catalog/internal/logging"
//
//	logging.Init(logging.Config{Level: "info", Format: "json"})
//
//	logging.Info().Str("root", rootURL).Msg("Catalog discovered")
//	logging.Ctx(ctx).Warn().Err(err).Str("service", svcURL).Msg("Skipped service")
//
// Polls run long after the submitting request has returned, so the runner
// copies the correlation ID into the poll context and tags it with the job:
//
//	ctx = logging.ContextWithJob(ctx, task.URL, jobID)
//	logging.Ctx(ctx).Info().Msg("Geoprocessing job finished") // task_url, job_id
//
// # Configuration
//
// Environment Variables (read by internal/config):
//
//	LOG_LEVEL   - Minimum log level: trace, debug, info, warn, error (default: info)
//	LOG_FORMAT  - Output format: json, console (default: json)
//	LOG_CALLER  - Include caller file:line: true, false (default: false)
//
// # Credentials
//
// Never log a raw token or username. Use SanitizeToken and SanitizeUsername,
// or SecurityLogger, which applies them:
//
//	audit := logging.NewSecurityLogger()
//	audit.LogTokenIssued("catalog", rootURL, creds.Username, token.Value)
//
// # Testing
//
// Create test loggers that capture output:
//
//	var buf bytes.Buffer
//	logger := logging.NewTestLogger(&buf)
//	logging.SetLogger(logger)
package logging
