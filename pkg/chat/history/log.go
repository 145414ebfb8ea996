package history

import (
	"context"
	"errors"
	"time"

	"ai-medical-chat-be/internal/constant"
	"ai-medical-chat-be/internal/entity"
	"ai-medical-chat-be/internal/pkg/apperror"
	"ai-medical-chat-be/internal/repository/contract"
	"ai-medical-chat-be/internal/repository/unitofwork"
	"ai-medical-chat-be/pkg/chat/session"

	"github.com/google/uuid"
)

var ErrSessionGone = apperror.New(apperror.ErrNotFound, "Session not found")

// Log is the append-only conversation history of chat sessions.
type Log struct {
	uowFactory unitofwork.RepositoryFactory
	registry   *session.Registry
	now        func() time.Time
}

func NewLog(uowFactory unitofwork.RepositoryFactory, registry *session.Registry) *Log {
	return &Log{
		uowFactory: uowFactory,
		registry:   registry,
		now:        time.Now,
	}
}

type AppendResult struct {
	Message *entity.ChatMessage
	// Title of the session after the append.
	Title string
	// TitleSet is true when this append gave the session its title.
	TitleSet bool
}

// Append stores one message at the end of the session. The message gets the
// next ordinal of the session and a timestamp no earlier than any message
// before it. The first user message of a session also titles the session,
// in the same transaction.
func (l *Log) Append(ctx context.Context, chatSession *entity.ChatSession, role, content string) (*AppendResult, error) {
	if !constant.IsChatRole(role) {
		return nil, apperror.Validation("unknown message role %q", role)
	}

	uow := l.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	slot, err := uow.ChatSessionRepository().AdvanceSequence(ctx, chatSession.Id, l.now().UTC())
	if err != nil {
		if errors.Is(err, contract.ErrSessionMissing) {
			return nil, ErrSessionGone
		}
		return nil, err
	}

	message := &entity.ChatMessage{
		Id:            uuid.New(),
		ChatSessionId: chatSession.Id,
		UserId:        chatSession.UserId,
		Seq:           slot.Seq,
		Role:          role,
		Content:       content,
		CreatedAt:     slot.CreatedAt,
	}
	if err := uow.ChatMessageRepository().Create(ctx, message); err != nil {
		return nil, err
	}

	result := &AppendResult{Message: message, Title: slot.Title}
	if slot.Seq == 1 && role == constant.ChatMessageRoleUser {
		title, applied, err := l.registry.MaybeSetTitle(ctx, uow, chatSession.Id, content)
		if err != nil {
			return nil, err
		}
		result.Title, result.TitleSet = title, applied
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}
	return result, nil
}

// Window returns the limit most recent messages of the session, oldest first.
func (l *Log) Window(ctx context.Context, sessionId uuid.UUID, limit int) ([]*entity.ChatMessage, error) {
	if limit <= 0 {
		return []*entity.ChatMessage{}, nil
	}

	uow := l.uowFactory.NewUnitOfWork(ctx)
	latest, err := uow.ChatMessageRepository().FindLatestBySession(ctx, sessionId, limit)
	if err != nil {
		return nil, err
	}

	window := make([]*entity.ChatMessage, 0, len(latest))
	for i := len(latest) - 1; i >= 0; i-- {
		window = append(window, latest[i])
	}
	return window, nil
}

// History returns every message of the session, oldest first.
func (l *Log) History(ctx context.Context, sessionId uuid.UUID) ([]*entity.ChatMessage, error) {
	uow := l.uowFactory.NewUnitOfWork(ctx)
	return uow.ChatMessageRepository().FindAllBySession(ctx, sessionId)
}
