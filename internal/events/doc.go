// ArcGIS Catalog - ArcGIS Server Service Discovery and Caching
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/arcgis-catalog

// Package events carries geoprocessing runner signals over an in-process
// Watermill Pub/Sub.
//
// Publisher implements geoprocessing.Observer. Each event is encoded as a JSON
// Message and published to TopicGeoprocessing with kind, task_url and job_id
// metadata. LogConsumer subscribes to the topic and writes each event to the
// structured log; it runs as a supervised service.
//
// The bus is a gochannel Pub/Sub: messages published while nobody is
// subscribed are dropped, and delivery does not survive a restart.
package events
