package implementation

import (
	"context"

	"ai-medical-chat-be/internal/entity"
	"ai-medical-chat-be/internal/mapper"
	"ai-medical-chat-be/internal/model"
	"ai-medical-chat-be/internal/repository/contract"
	"ai-medical-chat-be/internal/repository/scope"
	"ai-medical-chat-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ChatMessageRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ChatMapper
}

func NewChatMessageRepository(db *gorm.DB) contract.ChatMessageRepository {
	return &ChatMessageRepositoryImpl{
		db:     db,
		mapper: mapper.NewChatMapper(),
	}
}

func (r *ChatMessageRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	return specification.ApplyAll(db, specs...)
}

func (r *ChatMessageRepositoryImpl) Create(ctx context.Context, message *entity.ChatMessage) error {
	m := r.mapper.ChatMessageToModel(message)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*message = *r.mapper.ChatMessageToEntity(m)
	return nil
}

func (r *ChatMessageRepositoryImpl) FindAllBySession(ctx context.Context, sessionId uuid.UUID) ([]*entity.ChatMessage, error) {
	return r.findAll(r.db.WithContext(ctx).Scopes(scope.Chronological),
		specification.ByChatSessionID{ChatSessionID: sessionId},
	)
}

func (r *ChatMessageRepositoryImpl) FindLatestBySession(ctx context.Context, sessionId uuid.UUID, limit int) ([]*entity.ChatMessage, error) {
	if limit <= 0 {
		return []*entity.ChatMessage{}, nil
	}
	return r.findAll(r.db.WithContext(ctx).Scopes(scope.ReverseChronological),
		specification.ByChatSessionID{ChatSessionID: sessionId},
		specification.Limit{N: limit},
	)
}

func (r *ChatMessageRepositoryImpl) CountBySession(ctx context.Context, sessionId uuid.UUID) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.ChatMessage{}),
		specification.ByChatSessionID{ChatSessionID: sessionId},
	)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *ChatMessageRepositoryImpl) findAll(db *gorm.DB, specs ...specification.Specification) ([]*entity.ChatMessage, error) {
	var models []*model.ChatMessage
	query := r.applySpecifications(db, specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ChatMessagesToEntities(models), nil
}
