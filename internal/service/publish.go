package service

import (
	"context"

	"ai-medical-chat-be/internal/pkg/logger"
	"ai-medical-chat-be/pkg/events"
)

// publish is fire-and-forget: a broken bus never fails a request.
func publish(ctx context.Context, p events.Publisher, log logger.ILogger, event events.Event) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, event); err != nil {
		log.Warn("EVENTS", "Failed to publish event", map[string]interface{}{
			"type":  event.EventType(),
			"error": err,
		})
	}
}
