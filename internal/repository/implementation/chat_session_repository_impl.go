package implementation

import (
	"context"
	"errors"
	"time"

	"ai-medical-chat-be/internal/constant"
	"ai-medical-chat-be/internal/entity"
	"ai-medical-chat-be/internal/mapper"
	"ai-medical-chat-be/internal/model"
	"ai-medical-chat-be/internal/repository/contract"
	"ai-medical-chat-be/internal/repository/scope"
	"ai-medical-chat-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ChatSessionRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ChatMapper
}

func NewChatSessionRepository(db *gorm.DB) contract.ChatSessionRepository {
	return &ChatSessionRepositoryImpl{
		db:     db,
		mapper: mapper.NewChatMapper(),
	}
}

func (r *ChatSessionRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	return specification.ApplyAll(db, specs...)
}

func (r *ChatSessionRepositoryImpl) Create(ctx context.Context, session *entity.ChatSession) error {
	m := r.mapper.ChatSessionToModel(session)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*session = *r.mapper.ChatSessionToEntity(m)
	return nil
}

func (r *ChatSessionRepositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*entity.ChatSession, error) {
	var m model.ChatSession
	query := r.applySpecifications(r.db.WithContext(ctx), specification.ByID{ID: id})
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ChatSessionToEntity(&m), nil
}

func (r *ChatSessionRepositoryImpl) FindAllByUser(ctx context.Context, userId uuid.UUID) ([]*entity.ChatSession, error) {
	var models []*model.ChatSession
	query := r.applySpecifications(r.db.WithContext(ctx).Scopes(scope.NewestFirst), specification.UserOwnedBy{UserID: userId})
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ChatSessionsToEntities(models), nil
}

type messageSlotRow struct {
	MessageCount  int64
	LastMessageAt time.Time
	Title         string
}

// AdvanceSequence relies on the row lock taken by UPDATE: a second append to
// the same session waits until the first transaction ends.
func (r *ChatSessionRepositoryImpl) AdvanceSequence(ctx context.Context, id uuid.UUID, at time.Time) (*entity.MessageSlot, error) {
	var rows []messageSlotRow
	err := r.db.WithContext(ctx).Raw(
		`UPDATE chat_sessions
		    SET message_count = message_count + 1,
		        last_message_at = GREATEST(last_message_at, ?),
		        updated_at = ?
		  WHERE id = ?
		RETURNING message_count, last_message_at, title`,
		at, at, id,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, contract.ErrSessionMissing
	}
	return &entity.MessageSlot{
		Seq:       rows[0].MessageCount,
		CreatedAt: rows[0].LastMessageAt,
		Title:     rows[0].Title,
	}, nil
}

func (r *ChatSessionRepositoryImpl) SetTitleIfDefault(ctx context.Context, id uuid.UUID, title string) (bool, error) {
	query := r.applySpecifications(
		r.db.WithContext(ctx).Model(&model.ChatSession{}),
		specification.ByID{ID: id},
		specification.WithDefaultTitle{Title: constant.DefaultChatSessionTitle},
	)
	result := query.Update("title", title)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
