// ArcGIS Catalog - ArcGIS Server Service Discovery and Caching
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/arcgis-catalog

package events

import (
	"context"
	"errors"
	"sync"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"github.com/tomtom215/arcgis-catalog/internal/config"
	"github.com/tomtom215/arcgis-catalog/internal/geoprocessing"
	"github.com/tomtom215/arcgis-catalog/internal/logging"
	"github.com/tomtom215/arcgis-catalog/internal/metrics"
)

// ErrPublisherClosed is returned when publishing after Close.
var ErrPublisherClosed = errors.New("publisher is closed")

// Bus is the in-process Pub/Sub shared by publishers and consumers.
type Bus struct {
	pubsub *gochannel.GoChannel
}

// NewBus creates a gochannel Pub/Sub that logs through zerolog.
func NewBus(cfg *config.EventsConfig) *Bus {
	buffer := int64(256)
	if cfg != nil && cfg.BufferSize > 0 {
		buffer = cfg.BufferSize
	}

	logger := watermill.NewSlogLogger(logging.NewComponentSlogLogger("watermill"))
	return &Bus{
		pubsub: gochannel.NewGoChannel(gochannel.Config{
			OutputChannelBuffer: buffer,
		}, logger),
	}
}

// Subscriber exposes the subscribing side of the bus.
func (b *Bus) Subscriber() message.Subscriber {
	return b.pubsub
}

// Close closes the bus; subscriber channels are closed.
func (b *Bus) Close() error {
	return b.pubsub.Close()
}

// Publisher publishes runner events to the bus. It implements
// geoprocessing.Observer.
type Publisher struct {
	publisher message.Publisher
	topic     string
	logger    *logging.EventLogger

	mu     sync.RWMutex
	closed bool
}

// NewPublisher creates a publisher on bus for TopicGeoprocessing.
func NewPublisher(bus *Bus) *Publisher {
	return newPublisher(bus.pubsub, TopicGeoprocessing)
}

func newPublisher(pub message.Publisher, topic string) *Publisher {
	return &Publisher{
		publisher: pub,
		topic:     topic,
		logger:    logging.NewEventLogger(),
	}
}

// Notify publishes ev. Failures are logged and counted, never returned to the
// runner.
func (p *Publisher) Notify(ctx context.Context, ev geoprocessing.Event) {
	if err := p.Publish(ctx, NewMessage(ev)); err != nil {
		p.logger.LogPublishFailed(ctx, p.topic, err)
	}
}

// Publish encodes and publishes m.
func (p *Publisher) Publish(ctx context.Context, m Message) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		metrics.EventsPublished.WithLabelValues(p.topic, "closed").Inc()
		return ErrPublisherClosed
	}

	msg, err := encode(m, logging.CorrelationIDFromContext(ctx))
	if err != nil {
		metrics.EventsPublished.WithLabelValues(p.topic, "error").Inc()
		return err
	}

	if err := p.publisher.Publish(p.topic, msg); err != nil {
		metrics.EventsPublished.WithLabelValues(p.topic, "error").Inc()
		return err
	}

	metrics.EventsPublished.WithLabelValues(p.topic, "success").Inc()
	p.logger.LogEventPublished(ctx, msg.UUID, p.topic)
	return nil
}

// Close stops publishing. The bus itself is closed separately.
func (p *Publisher) Close() {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
}

var _ geoprocessing.Observer = (*Publisher)(nil)
