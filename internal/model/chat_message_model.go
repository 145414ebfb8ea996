package model

import (
	"time"

	"github.com/google/uuid"
)

type ChatMessage struct {
	Id            uuid.UUID `gorm:"type:uuid;primaryKey"`
	ChatSessionId uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_chat_messages_session_seq"`
	UserId        uuid.UUID `gorm:"type:uuid;not null;index"`
	Seq           int64     `gorm:"not null;uniqueIndex:idx_chat_messages_session_seq"`
	Role          string    `gorm:"type:varchar(32);not null"`
	Content       string    `gorm:"type:text;not null"`
	CreatedAt     time.Time `gorm:"not null"`
}

func (ChatMessage) TableName() string {
	return "chat_messages"
}
