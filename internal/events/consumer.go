// ArcGIS Catalog - ArcGIS Server Service Discovery and Caching
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/arcgis-catalog

package events

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/tomtom215/arcgis-catalog/internal/geoprocessing"
	"github.com/tomtom215/arcgis-catalog/internal/logging"
	"github.com/tomtom215/arcgis-catalog/internal/metrics"
)

// LogConsumer writes every geoprocessing event on the bus to the log.
type LogConsumer struct {
	subscriber message.Subscriber
	topic      string
	logger     *logging.EventLogger

	received  atomic.Int64
	malformed atomic.Int64
}

// ConsumerStats reports LogConsumer counters.
type ConsumerStats struct {
	Received  int64
	Malformed int64
}

// NewLogConsumer creates a consumer for TopicGeoprocessing on bus.
func NewLogConsumer(bus *Bus) *LogConsumer {
	return &LogConsumer{
		subscriber: bus.Subscriber(),
		topic:      TopicGeoprocessing,
		logger:     logging.NewEventLogger(),
	}
}

// Serve subscribes and consumes until ctx is cancelled. It implements
// suture.Service.
func (c *LogConsumer) Serve(ctx context.Context) error {
	messages, err := c.subscriber.Subscribe(ctx, c.topic)
	if err != nil {
		return fmt.Errorf("subscribe to %s: %w", c.topic, err)
	}
	c.logger.LogSubscriptionStarted(c.topic)

	for {
		select {
		case <-ctx.Done():
			drained := c.drain(messages)
			c.logger.LogSubscriptionStopped(c.topic, drained)
			return ctx.Err()
		case msg, ok := <-messages:
			if !ok {
				c.logger.LogSubscriptionStopped(c.topic, 0)
				return nil
			}
			c.process(msg)
		}
	}
}

// String names the service in supervisor logs.
func (c *LogConsumer) String() string {
	return "geoprocessing-event-log"
}

// Stats returns the consumer counters.
func (c *LogConsumer) Stats() ConsumerStats {
	return ConsumerStats{
		Received:  c.received.Load(),
		Malformed: c.malformed.Load(),
	}
}

// drain processes messages already buffered at shutdown.
func (c *LogConsumer) drain(messages <-chan *message.Message) int {
	deadline := time.After(100 * time.Millisecond)
	drained := 0
	for {
		select {
		case <-deadline:
			return drained
		case msg, ok := <-messages:
			if !ok {
				return drained
			}
			c.process(msg)
			drained++
		default:
			return drained
		}
	}
}

func (c *LogConsumer) process(msg *message.Message) {
	c.received.Add(1)
	metrics.EventsConsumed.WithLabelValues(c.topic).Inc()

	m, err := Decode(msg)
	if err != nil {
		c.malformed.Add(1)
		c.logger.LogMalformed(msg.UUID, err)
		msg.Ack() // redelivery cannot fix a malformed payload
		return
	}

	ctx := context.Background()
	if id := msg.Metadata.Get(MetadataCorrelationID); id != "" {
		ctx = logging.ContextWithCorrelationID(ctx, id)
	}

	if m.Kind == geoprocessing.EventTaskFailed {
		c.logger.LogEventFailed(ctx, m.TaskURL, m.Operation, m.JobID, m.Error)
	} else {
		c.logger.LogEventReceived(ctx, string(m.Kind), m.TaskURL, m.JobID, string(m.Status))
	}
	msg.Ack()
}
