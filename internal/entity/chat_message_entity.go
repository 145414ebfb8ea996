package entity

import (
	"time"

	"github.com/google/uuid"
)

type ChatMessage struct {
	Id            uuid.UUID
	ChatSessionId uuid.UUID
	UserId        uuid.UUID
	Seq           int64
	Role          string
	Content       string
	CreatedAt     time.Time
}
