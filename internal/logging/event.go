// ArcGIS Catalog - ArcGIS Server Service Discovery and Caching
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/arcgis-catalog

package logging

import (
	"context"

	"github.com/rs/zerolog"
)

// EventLogger logs the geoprocessing event bus: publishing, subscriptions
// and the events themselves.
type EventLogger struct {
	logger zerolog.Logger
}

// NewEventLogger creates an event logger on the global logger.
func NewEventLogger() *EventLogger {
	return &EventLogger{logger: WithComponent("events")}
}

// NewEventLoggerWithLogger creates an event logger on logger.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewEventLoggerWithLogger(logger zerolog.Logger) *EventLogger {
	return &EventLogger{logger: logger.With().Str("component", "events").Logger()}
}

func (e *EventLogger) ctx(ctx context.Context) zerolog.Logger {
	return fromContext(ctx).apply(e.logger)
}

// LogEventReceived logs one event taken off the bus. Job fields come from
// the message, so ctx is only expected to carry the correlation ID.
func (e *EventLogger) LogEventReceived(ctx context.Context, kind, taskURL, jobID, status string) {
	l := e.ctx(ctx)
	ev := l.Info().Str("kind", kind).Str("task_url", taskURL)
	if jobID != "" {
		ev = ev.Str("job_id", jobID)
	}
	if status != "" {
		ev = ev.Str("status", status)
	}
	ev.Msg("geoprocessing event")
}

// LogEventFailed logs a task_failed event taken off the bus.
func (e *EventLogger) LogEventFailed(ctx context.Context, taskURL, operation, jobID, errMsg string) {
	l := e.ctx(ctx)
	ev := l.Warn().Str("task_url", taskURL).Str("operation", operation)
	if jobID != "" {
		ev = ev.Str("job_id", jobID)
	}
	ev.Str("error", SanitizeError(errMsg)).Msg("geoprocessing operation failed")
}

// LogEventPublished logs a message handed to the bus.
func (e *EventLogger) LogEventPublished(ctx context.Context, messageID, topic string) {
	l := e.ctx(ctx)
	l.Debug().Str("message_id", messageID).Str("topic", topic).Msg("event published")
}

// LogPublishFailed logs a message the bus refused.
func (e *EventLogger) LogPublishFailed(ctx context.Context, topic string, err error) {
	l := e.ctx(ctx)
	l.Error().Err(err).Str("topic", topic).Msg("event publish failed")
}

// LogMalformed logs a message whose payload could not be decoded.
func (e *EventLogger) LogMalformed(messageID string, err error) {
	e.logger.Warn().Err(err).Str("message_id", messageID).Msg("malformed event skipped")
}

// LogSubscriptionStarted logs the consumer attaching to topic.
func (e *EventLogger) LogSubscriptionStarted(topic string) {
	e.logger.Info().Str("topic", topic).Msg("subscription started")
}

// LogSubscriptionStopped logs the consumer detaching, with the number of
// messages drained on the way out.
func (e *EventLogger) LogSubscriptionStopped(topic string, drained int) {
	e.logger.Info().Str("topic", topic).Int("drained", drained).Msg("subscription stopped")
}
