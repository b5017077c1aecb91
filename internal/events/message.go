// ArcGIS Catalog - ArcGIS Server Service Discovery and Caching
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/arcgis-catalog

package events

import (
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/goccy/go-json"

	"github.com/tomtom215/arcgis-catalog/internal/arcgis"
	"github.com/tomtom215/arcgis-catalog/internal/geoprocessing"
)

// TopicGeoprocessing is the topic runner events are published to.
const TopicGeoprocessing = "geoprocessing.events"

// Metadata keys set on every published message.
const (
	MetadataKind          = "kind"
	MetadataTaskURL       = "task_url"
	MetadataJobID         = "job_id"
	MetadataCorrelationID = "correlation_id"
)

// Message is the wire form of a geoprocessing.Event.
type Message struct {
	Kind      geoprocessing.EventKind `json:"kind"`
	TaskURL   string                  `json:"task_url"`
	Operation string                  `json:"operation,omitempty"`
	JobID     string                  `json:"job_id,omitempty"`
	Status    arcgis.JobStatus        `json:"status,omitempty"`
	Execute   *arcgis.ExecuteResult   `json:"execute,omitempty"`
	Job       *arcgis.JobInfo         `json:"job,omitempty"`
	Result    *arcgis.ResultValue     `json:"result,omitempty"`
	Image     *geoprocessing.MapImage `json:"image,omitempty"`
	Error     string                  `json:"error,omitempty"`
	Time      time.Time               `json:"time"`
}

// NewMessage converts ev to its wire form. Errors travel as strings.
func NewMessage(ev geoprocessing.Event) Message {
	m := Message{
		Kind:      ev.Kind,
		TaskURL:   ev.TaskURL,
		Operation: ev.Operation,
		JobID:     ev.JobID,
		Status:    ev.Status,
		Execute:   ev.Execute,
		Job:       ev.Job,
		Result:    ev.Result,
		Image:     ev.Image,
		Time:      ev.Time,
	}
	if ev.Err != nil {
		m.Error = ev.Err.Error()
	}
	return m
}

// encode builds the watermill message for m.
func encode(m Message, correlationID string) (*message.Message, error) {
	payload, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("encode %s event: %w", m.Kind, err)
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.Metadata.Set(MetadataKind, string(m.Kind))
	msg.Metadata.Set(MetadataTaskURL, m.TaskURL)
	if m.JobID != "" {
		msg.Metadata.Set(MetadataJobID, m.JobID)
	}
	if correlationID != "" {
		msg.Metadata.Set(MetadataCorrelationID, correlationID)
	}
	return msg, nil
}

// Decode parses a message published by Publisher.
func Decode(msg *message.Message) (Message, error) {
	var m Message
	if err := json.Unmarshal(msg.Payload, &m); err != nil {
		return Message{}, fmt.Errorf("decode message %s: %w", msg.UUID, err)
	}
	return m, nil
}
