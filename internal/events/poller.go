// Package events pushes order lifecycle events out over Kafka. Events are
// written to an outbox table in the same transaction as the order itself, so
// the request path stays synchronous and nothing is lost if the broker is
// down; this poller drains the outbox in the background.
package events

import (
	"context"
	"log"
	"time"

	"github.com/segmentio/kafka-go"
)

type Event struct {
	ID        int64
	OrderID   string
	EventType string
	Payload   []byte
}

// Source is the outbox side of the orders repository.
type Source interface {
	UnpublishedEvents(ctx context.Context, limit int) ([]*Event, error)
	MarkEventPublished(ctx context.Context, id int64) error
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

type Poller struct {
	tick   time.Duration
	source Source
	writer messageWriter
}

func NewPoller(source Source, brokers ...string) *Poller {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  "order-events",
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
	}
	return &Poller{tick: time.Second, source: source, writer: w}
}

func (p *Poller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.tick)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			p.processUnpublishedEvents(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (p *Poller) processUnpublishedEvents(ctx context.Context) {
	events, err := p.source.UnpublishedEvents(ctx, 100)
	if err != nil {
		log.Printf("failed to fetch outbox events: %v", err)
		return
	}

	for _, event := range events {
		if errPublish := p.publish(ctx, event); errPublish != nil {
			log.Printf("failed to publish event id = %v with error %v", event.ID, errPublish)
			continue
		}

		if errMark := p.source.MarkEventPublished(ctx, event.ID); errMark != nil {
			log.Printf("failed to mark event as published id = %v with error %v", event.ID, errMark)
			continue
		}
	}
}

func (p *Poller) publish(ctx context.Context, event *Event) error {
	msg := kafka.Message{
		Key:   []byte(event.OrderID), // order_id for ordering
		Value: event.Payload,         // Already JSON from database
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.EventType)},
		},
	}

	return p.writer.WriteMessages(ctx, msg)
}
