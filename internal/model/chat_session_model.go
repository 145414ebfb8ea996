package model

import (
	"time"

	"github.com/google/uuid"
)

type ChatSession struct {
	Id            uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserId        uuid.UUID `gorm:"type:uuid;not null;index"`
	Title         string    `gorm:"type:text;not null"`
	MessageCount  int64     `gorm:"not null"`
	LastMessageAt time.Time `gorm:"not null"`
	CreatedAt     time.Time `gorm:"not null"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime"`
}

func (ChatSession) TableName() string {
	return "chat_sessions"
}
