package contract

import (
	"context"

	"ai-medical-chat-be/internal/entity"

	"github.com/google/uuid"
)

// UserRepository lookups return (nil, nil) when no row matches.
type UserRepository interface {
	// Create returns ErrDuplicateEmail when the email is already registered.
	Create(ctx context.Context, user *entity.User) error
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
	Count(ctx context.Context) (int64, error)
}
