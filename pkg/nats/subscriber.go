package nats

import (
	"context"
	"fmt"
	"log"

	"ai-medical-chat-be/pkg/events"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// Subscriber consumes events from the EVENTS stream with durable consumers,
// one per (group, event type).
type Subscriber struct {
	nc    *nats.Conn
	js    jetstream.JetStream
	group string
}

var _ events.Subscriber = (*Subscriber)(nil)

func NewSubscriber(url, group string) (*Subscriber, error) {
	nc, js, err := connect(url)
	if err != nil {
		return nil, err
	}
	return &Subscriber{nc: nc, js: js, group: group}, nil
}

func (s *Subscriber) Subscribe(ctx context.Context, eventType string, handler events.Handler) error {
	durable := fmt.Sprintf("%s-%s", s.group, eventType)
	consumer, err := s.js.CreateOrUpdateConsumer(ctx, StreamName, jetstream.ConsumerConfig{
		Durable:       durable,
		FilterSubject: events.Subject(eventType),
		AckPolicy:     jetstream.AckExplicitPolicy,
	})
	if err != nil {
		return fmt.Errorf("failed to create consumer: %w", err)
	}

	consumeCtx, err := consumer.Consume(func(msg jetstream.Msg) {
		event, err := events.Unmarshal(msg.Data())
		if err != nil {
			log.Printf("Error unmarshalling event data on %s: %v", msg.Subject(), err)
			_ = msg.Term()
			return
		}
		if err := handler(ctx, event); err != nil {
			log.Printf("Handler failed for event %s: %v", msg.Subject(), err)
			_ = msg.Nak()
			return
		}
		_ = msg.Ack()
	})
	if err != nil {
		return fmt.Errorf("failed to start consuming: %w", err)
	}

	go func() {
		<-ctx.Done()
		consumeCtx.Stop()
	}()

	log.Printf("Subscribed to %s with durable %s", events.Subject(eventType), durable)
	return nil
}

func (s *Subscriber) Close() {
	if s.nc != nil {
		s.nc.Close()
	}
}
