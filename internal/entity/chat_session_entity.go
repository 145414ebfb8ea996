package entity

import (
	"time"

	"github.com/google/uuid"
)

type ChatSession struct {
	Id            uuid.UUID
	UserId        uuid.UUID
	Title         string
	MessageCount  int64
	LastMessageAt time.Time
	CreatedAt     time.Time
	UpdatedAt     *time.Time
}

// OwnedBy reports whether userId owns the session.
func (s *ChatSession) OwnedBy(userId uuid.UUID) bool {
	return s != nil && s.UserId == userId
}

// MessageSlot is what a session hands out to the next appended message:
// its ordinal and its timestamp, plus the session title at that moment.
type MessageSlot struct {
	Seq       int64
	CreatedAt time.Time
	Title     string
}
