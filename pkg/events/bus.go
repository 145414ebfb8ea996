package events

import (
	"context"
	"fmt"
	"log"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// ChannelBus is an in-process bus on top of a watermill go channel. It is
// used when no NATS server is configured.
type ChannelBus struct {
	pubSub *gochannel.GoChannel
}

var (
	_ Publisher  = (*ChannelBus)(nil)
	_ Subscriber = (*ChannelBus)(nil)
)

func NewChannelBus() *ChannelBus {
	return &ChannelBus{
		pubSub: gochannel.NewGoChannel(
			gochannel.Config{OutputChannelBuffer: 256},
			watermill.NewStdLogger(false, false),
		),
	}
}

func (b *ChannelBus) Publish(ctx context.Context, event Event) error {
	payload, err := Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event payload: %w", err)
	}
	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.SetContext(ctx)
	return b.pubSub.Publish(Subject(event.EventType()), msg)
}

func (b *ChannelBus) Subscribe(ctx context.Context, eventType string, handler Handler) error {
	messages, err := b.pubSub.Subscribe(ctx, Subject(eventType))
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			event, err := Unmarshal(msg.Payload)
			if err != nil {
				log.Printf("[ERROR] Dropping undecodable event %s: %v", msg.UUID, err)
				msg.Ack()
				continue
			}
			if err := handler(ctx, event); err != nil {
				msg.Nack()
				continue
			}
			msg.Ack()
		}
	}()
	return nil
}

func (b *ChannelBus) Close() error {
	return b.pubSub.Close()
}
