package session

import (
	"context"
	"time"

	"ai-medical-chat-be/internal/constant"
	"ai-medical-chat-be/internal/entity"
	"ai-medical-chat-be/internal/repository/contract"
	"ai-medical-chat-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

// Registry creates, lists and titles chat sessions.
type Registry struct {
	uowFactory unitofwork.RepositoryFactory
	now        func() time.Time
}

func NewRegistry(uowFactory unitofwork.RepositoryFactory) *Registry {
	return &Registry{
		uowFactory: uowFactory,
		now:        time.Now,
	}
}

func (r *Registry) Create(ctx context.Context, ownerId uuid.UUID) (*entity.ChatSession, error) {
	now := r.now().UTC()
	session := &entity.ChatSession{
		Id:            uuid.New(),
		UserId:        ownerId,
		Title:         constant.DefaultChatSessionTitle,
		LastMessageAt: now,
		CreatedAt:     now,
		UpdatedAt:     &now,
	}

	uow := r.uowFactory.NewUnitOfWork(ctx)
	if err := uow.ChatSessionRepository().Create(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// List returns the owner's sessions, newest first.
func (r *Registry) List(ctx context.Context, ownerId uuid.UUID) ([]*entity.ChatSession, error) {
	uow := r.uowFactory.NewUnitOfWork(ctx)
	return uow.ChatSessionRepository().FindAllByUser(ctx, ownerId)
}

// MaybeSetTitle derives a title from firstMessage and stores it if the session
// still has the default title. It runs inside the caller's transaction and
// returns the title the session ends up with.
func (r *Registry) MaybeSetTitle(ctx context.Context, uow unitofwork.UnitOfWork, sessionId uuid.UUID, firstMessage string) (string, bool, error) {
	title := DeriveTitle(firstMessage)

	applied, err := uow.ChatSessionRepository().SetTitleIfDefault(ctx, sessionId, title)
	if err != nil {
		return "", false, err
	}
	if applied {
		return title, true, nil
	}

	current, err := uow.ChatSessionRepository().FindByID(ctx, sessionId)
	if err != nil {
		return "", false, err
	}
	if current == nil {
		return "", false, contract.ErrSessionMissing
	}
	return current.Title, false, nil
}
