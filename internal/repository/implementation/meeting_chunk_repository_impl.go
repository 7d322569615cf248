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
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

type MeetingChunkRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.MeetingChunkMapper
}

func NewMeetingChunkRepository(db *gorm.DB) contract.MeetingChunkRepository {
	return &MeetingChunkRepositoryImpl{
		db:     db,
		mapper: mapper.NewMeetingChunkMapper(),
	}
}

func (r *MeetingChunkRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *MeetingChunkRepositoryImpl) Create(ctx context.Context, chunk *entity.MeetingChunk) error {
	m := r.mapper.ToModel(chunk)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*chunk = *r.mapper.ToEntity(m)
	return nil
}

func (r *MeetingChunkRepositoryImpl) CreateBulk(ctx context.Context, chunks []*entity.MeetingChunk) error {
	if len(chunks) == 0 {
		return nil
	}
	models := make([]*model.MeetingChunk, len(chunks))
	for i, c := range chunks {
		models[i] = r.mapper.ToModel(c)
	}

	if err := r.db.WithContext(ctx).Create(models).Error; err != nil {
		return err
	}

	for i, m := range models {
		*chunks[i] = *r.mapper.ToEntity(m)
	}
	return nil
}

func (r *MeetingChunkRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.MeetingChunk{}, id).Error
}

func (r *MeetingChunkRepositoryImpl) DeleteByMeetingId(ctx context.Context, meetingId uuid.UUID) error {
	return r.db.WithContext(ctx).Unscoped().
		Where("meeting_id = ?", meetingId).
		Delete(&model.MeetingChunk{}).Error
}

func (r *MeetingChunkRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.MeetingChunk, error) {
	var m model.MeetingChunk
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *MeetingChunkRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.MeetingChunk, error) {
	var models []*model.MeetingChunk
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *MeetingChunkRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	err := query.Model(&model.MeetingChunk{}).Count(&count).Error
	return count, err
}

func (r *MeetingChunkRepositoryImpl) SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int, projectId uuid.UUID, threshold float64) ([]*contract.ScoredMeetingChunk, error) {
	if limit <= 0 {
		limit = 5
	}

	type result struct {
		model.MeetingChunk
		Similarity float64
	}
	var results []result

	queryVector := pgvector.NewVector(embedding)

	err := r.db.WithContext(ctx).
		Table("meeting_chunks").
		Select("meeting_chunks.*, 1 - (embedding <=> ?) as similarity", queryVector).
		Joins("JOIN meetings ON meetings.id = meeting_chunks.meeting_id").
		Where("meetings.project_id = ?", projectId).
		Where("meeting_chunks.deleted_at IS NULL").
		Where("meetings.deleted_at IS NULL").
		Where("1 - (embedding <=> ?) > ?", queryVector, threshold).
		Order("similarity DESC").
		Limit(limit).
		Scan(&results).Error

	if err != nil {
		return nil, err
	}

	scored := make([]*contract.ScoredMeetingChunk, len(results))
	for i, res := range results {
		scored[i] = &contract.ScoredMeetingChunk{
			Chunk:      r.mapper.ToEntity(&res.MeetingChunk),
			Similarity: res.Similarity,
		}
	}
	return scored, nil
}
