package implementation

import (
	"context"
	"errors"

	"docinsight-be/internal/entity"
	"docinsight-be/internal/mapper"
	"docinsight-be/internal/model"
	"docinsight-be/internal/repository/contract"
	"docinsight-be/internal/repository/specification"

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
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *ChatMessageRepositoryImpl) Create(ctx context.Context, message *entity.ChatMessage) error {
	m := r.mapper.MessageToModel(message)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	sources := message.Sources
	*message = *r.mapper.MessageToEntity(m)
	message.Sources = sources
	return nil
}

func (r *ChatMessageRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.ChatMessage{}, id).Error
}

func (r *ChatMessageRepositoryImpl) DeleteBySessionId(ctx context.Context, sessionId uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("chat_session_id = ?", sessionId).
		Delete(&model.ChatMessage{}).Error
}

func (r *ChatMessageRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ChatMessage, error) {
	var m model.ChatMessage
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.MessageToEntity(&m), nil
}

func (r *ChatMessageRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatMessage, error) {
	var models []*model.ChatMessage
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.MessagesToEntities(models), nil
}

func (r *ChatMessageRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	err := query.Model(&model.ChatMessage{}).Count(&count).Error
	return count, err
}

// FindRecentBySession fetches newest first then reverses so callers get
// chronological order for prompt history. seq breaks created_at ties, so a
// user turn and its answer written in the same millisecond keep their order.
func (r *ChatMessageRepositoryImpl) FindRecentBySession(ctx context.Context, sessionId uuid.UUID, limit int) ([]*entity.ChatMessage, error) {
	if limit <= 0 {
		limit = 10
	}
	var models []*model.ChatMessage
	err := r.db.WithContext(ctx).
		Where("chat_session_id = ?", sessionId).
		Order("created_at DESC, seq DESC").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	for i, j := 0, len(models)-1; i < j; i, j = i+1, j-1 {
		models[i], models[j] = models[j], models[i]
	}
	return r.mapper.MessagesToEntities(models), nil
}
