package dto

import (
	"time"

	"github.com/google/uuid"
)

type SessionResponse struct {
	Id        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
}

type ChatHistoryResponse struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type SendChatRequest struct {
	Message   string `json:"message"`
	SessionId string `json:"session_id"`
}

type SendChatResponse struct {
	Reply string `json:"reply"`
	Title string `json:"title"`
}

type ErrorResponse struct {
	Detail string `json:"detail"`
}
