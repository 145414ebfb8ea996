package contract

import (
	"context"

	"ai-medical-chat-be/internal/entity"

	"github.com/google/uuid"
)

type ChatMessageRepository interface {
	Create(ctx context.Context, message *entity.ChatMessage) error
	// FindAllBySession returns the full history, oldest first.
	FindAllBySession(ctx context.Context, sessionId uuid.UUID) ([]*entity.ChatMessage, error)
	// FindLatestBySession returns at most limit messages, newest first.
	FindLatestBySession(ctx context.Context, sessionId uuid.UUID, limit int) ([]*entity.ChatMessage, error)
	CountBySession(ctx context.Context, sessionId uuid.UUID) (int64, error)
}
