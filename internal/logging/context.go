// ArcGIS Catalog - ArcGIS Server Service Discovery and Caching
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/arcgis-catalog

package logging

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type fieldsKey struct{}

// fields are the log fields carried by a context. They are copied on every
// change so a derived context never mutates its parent's view.
type fields struct {
	logger        *zerolog.Logger
	requestID     string
	correlationID string // follows work across goroutines, e.g. from submitJob into its polls
	taskURL       string
	jobID         string
}

func fromContext(ctx context.Context) fields {
	f, _ := ctx.Value(fieldsKey{}).(fields)
	return f
}

func withFields(ctx context.Context, update func(*fields)) context.Context {
	f := fromContext(ctx)
	update(&f)
	return context.WithValue(ctx, fieldsKey{}, f)
}

// GenerateCorrelationID returns the first 8 characters of a random UUID.
func GenerateCorrelationID() string {
	return uuid.New().String()[:8]
}

// GenerateRequestID returns a random UUID.
func GenerateRequestID() string {
	return uuid.New().String()
}

// ContextWithRequestID attaches an HTTP request ID.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return withFields(ctx, func(f *fields) { f.requestID = id })
}

// RequestIDFromContext returns the request ID, or "".
func RequestIDFromContext(ctx context.Context) string {
	return fromContext(ctx).requestID
}

// ContextWithCorrelationID attaches a correlation ID.
func ContextWithCorrelationID(ctx context.Context, id string) context.Context {
	return withFields(ctx, func(f *fields) { f.correlationID = id })
}

// ContextWithNewCorrelationID attaches a freshly generated correlation ID.
func ContextWithNewCorrelationID(ctx context.Context) context.Context {
	return ContextWithCorrelationID(ctx, GenerateCorrelationID())
}

// CorrelationIDFromContext returns the correlation ID, or "".
func CorrelationIDFromContext(ctx context.Context) string {
	return fromContext(ctx).correlationID
}

// ContextWithJob tags logs with a geoprocessing task URL and, once known,
// its job ID. An empty jobID keeps any job ID already present.
func ContextWithJob(ctx context.Context, taskURL, jobID string) context.Context {
	return withFields(ctx, func(f *fields) {
		f.taskURL = taskURL
		if jobID != "" {
			f.jobID = jobID
		}
	})
}

// ContextWithLogger makes Ctx use logger instead of the global one.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func ContextWithLogger(ctx context.Context, logger zerolog.Logger) context.Context {
	return withFields(ctx, func(f *fields) { f.logger = &logger })
}

// Ctx returns a logger carrying every field attached to ctx.
//
//	logging.Ctx(ctx).Info().Msg("Geoprocessing job submitted")
func Ctx(ctx context.Context) *zerolog.Logger {
	f := fromContext(ctx)

	var base zerolog.Logger
	if f.logger != nil {
		base = *f.logger
	} else {
		base = Logger()
	}

	logger := f.apply(base)
	return &logger
}

//nolint:gocritic // zerolog.Logger is designed to be passed by value
func (f fields) apply(base zerolog.Logger) zerolog.Logger {
	logCtx := base.With()
	for _, kv := range [...]struct{ key, value string }{
		{"request_id", f.requestID},
		{"correlation_id", f.correlationID},
		{"task_url", f.taskURL},
		{"job_id", f.jobID},
	} {
		if kv.value != "" {
			logCtx = logCtx.Str(kv.key, kv.value)
		}
	}
	return logCtx.Logger()
}
