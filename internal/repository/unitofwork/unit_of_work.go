package unitofwork

import (
	"context"

	"ai-medical-chat-be/internal/repository/contract"
)

// UnitOfWork groups repository calls into one transaction. Repositories
// obtained before Begin, or without calling Begin at all, run outside any
// transaction.
type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	UserRepository() contract.UserRepository
	ChatSessionRepository() contract.ChatSessionRepository
	ChatMessageRepository() contract.ChatMessageRepository
}
