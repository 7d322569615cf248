package implementation

import (
	"context"

	"docinsight-be/internal/entity"
	"docinsight-be/internal/mapper"
	"docinsight-be/internal/model"
	"docinsight-be/internal/repository/contract"
	"docinsight-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ChatSourceRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ChatMapper
}

func NewChatSourceRepository(db *gorm.DB) contract.ChatSourceRepository {
	return &ChatSourceRepositoryImpl{
		db:     db,
		mapper: mapper.NewChatMapper(),
	}
}

func (r *ChatSourceRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *ChatSourceRepositoryImpl) CreateBulk(ctx context.Context, sources []*entity.ChatSource) error {
	if len(sources) == 0 {
		return nil
	}
	models := make([]*model.ChatSource, len(sources))
	for i, s := range sources {
		models[i] = r.mapper.SourceToModel(s)
	}

	if err := r.db.WithContext(ctx).Create(models).Error; err != nil {
		return err
	}

	for i, m := range models {
		*sources[i] = *r.mapper.SourceToEntity(m)
	}
	return nil
}

func (r *ChatSourceRepositoryImpl) DeleteByMessageId(ctx context.Context, messageId uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("chat_message_id = ?", messageId).
		Delete(&model.ChatSource{}).Error
}

func (r *ChatSourceRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatSource, error) {
	var models []*model.ChatSource
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.SourcesToEntities(models), nil
}
