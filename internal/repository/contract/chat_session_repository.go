package contract

import (
	"context"
	"time"

	"ai-medical-chat-be/internal/entity"

	"github.com/google/uuid"
)

type ChatSessionRepository interface {
	Create(ctx context.Context, session *entity.ChatSession) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.ChatSession, error)
	// FindAllByUser returns the user's sessions, newest first.
	FindAllByUser(ctx context.Context, userId uuid.UUID) ([]*entity.ChatSession, error)
	// AdvanceSequence reserves the next message slot of a session. The
	// returned timestamp is max(previous slot, at), so slots never go back
	// in time. Concurrent callers on the same session are serialized.
	// Returns ErrSessionMissing if the session does not exist.
	AdvanceSequence(ctx context.Context, id uuid.UUID, at time.Time) (*entity.MessageSlot, error)
	// SetTitleIfDefault replaces the title only while it is still the
	// default one. Reports whether the update happened.
	SetTitleIfDefault(ctx context.Context, id uuid.UUID, title string) (bool, error)
}
