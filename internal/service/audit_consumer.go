package service

import (
	"context"
	"fmt"

	"ai-medical-chat-be/internal/pkg/logger"
	"ai-medical-chat-be/pkg/events"
)

var auditedEvents = []string{
	events.TypeUserRegistered,
	events.TypeUserLoggedIn,
	events.TypeChatSessionCreated,
	events.TypeChatTurnCompleted,
}

type IAuditConsumer interface {
	Consume(ctx context.Context) error
}

// auditConsumer writes every domain event to the application log.
type auditConsumer struct {
	subscriber events.Subscriber
	logger     logger.ILogger
}

func NewAuditConsumer(subscriber events.Subscriber, log logger.ILogger) IAuditConsumer {
	return &auditConsumer{subscriber: subscriber, logger: log}
}

func (c *auditConsumer) Consume(ctx context.Context) error {
	for _, eventType := range auditedEvents {
		if err := c.subscriber.Subscribe(ctx, eventType, c.handle); err != nil {
			return fmt.Errorf("subscribe %s: %w", eventType, err)
		}
	}
	return nil
}

func (c *auditConsumer) handle(_ context.Context, event events.Event) error {
	details := make(map[string]interface{}, len(event.Payload())+2)
	for k, v := range event.Payload() {
		details[k] = v
	}
	details["event"] = event.EventType()
	details["occurred_at"] = event.Timestamp()

	c.logger.Info("AUDIT", "Domain event", details)
	return nil
}
