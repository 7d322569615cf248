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

type DocumentChunkRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.DocumentChunkMapper
}

func NewDocumentChunkRepository(db *gorm.DB) contract.DocumentChunkRepository {
	return &DocumentChunkRepositoryImpl{
		db:     db,
		mapper: mapper.NewDocumentChunkMapper(),
	}
}

func (r *DocumentChunkRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *DocumentChunkRepositoryImpl) Create(ctx context.Context, chunk *entity.DocumentChunk) error {
	m := r.mapper.ToModel(chunk)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*chunk = *r.mapper.ToEntity(m)
	return nil
}

func (r *DocumentChunkRepositoryImpl) CreateBulk(ctx context.Context, chunks []*entity.DocumentChunk) error {
	if len(chunks) == 0 {
		return nil
	}
	models := make([]*model.DocumentChunk, len(chunks))
	for i, c := range chunks {
		models[i] = r.mapper.ToModel(c)
	}

	if err := r.db.WithContext(ctx).Create(models).Error; err != nil {
		return err
	}

	// Update IDs back to entities
	for i, m := range models {
		*chunks[i] = *r.mapper.ToEntity(m)
	}
	return nil
}

func (r *DocumentChunkRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.DocumentChunk{}, id).Error
}

func (r *DocumentChunkRepositoryImpl) DeleteByDocumentId(ctx context.Context, documentId uuid.UUID) error {
	// Hard delete so a re-ingestion starts from a clean slate
	return r.db.WithContext(ctx).Unscoped().
		Where("document_id = ?", documentId).
		Delete(&model.DocumentChunk{}).Error
}

func (r *DocumentChunkRepositoryImpl) DeleteByProjectId(ctx context.Context, projectId uuid.UUID) error {
	subQuery := r.db.Table("documents").Select("id").Where("project_id = ?", projectId)
	return r.db.WithContext(ctx).Unscoped().
		Where("document_id IN (?)", subQuery).
		Delete(&model.DocumentChunk{}).Error
}

func (r *DocumentChunkRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.DocumentChunk, error) {
	var m model.DocumentChunk
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *DocumentChunkRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.DocumentChunk, error) {
	var models []*model.DocumentChunk
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *DocumentChunkRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	err := query.Model(&model.DocumentChunk{}).Count(&count).Error
	return count, err
}

// SearchSimilarWithScore returns chunks with similarity scores, filtered by threshold
func (r *DocumentChunkRepositoryImpl) SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int, projectId uuid.UUID, threshold float64, documentIds []uuid.UUID) ([]*contract.ScoredDocumentChunk, error) {
	if limit <= 0 {
		limit = 5
	}

	// Cosine distance in pgvector is: 1 - cosine_similarity
	// So we compute: 1 - (embedding <=> query_vector) = cosine_similarity
	type result struct {
		model.DocumentChunk
		Similarity float64
	}
	var results []result

	queryVector := pgvector.NewVector(embedding)

	query := r.db.WithContext(ctx).
		Table("document_chunks").
		Select("document_chunks.*, 1 - (embedding <=> ?) as similarity", queryVector).
		Joins("JOIN documents ON documents.id = document_chunks.document_id").
		Where("documents.project_id = ?", projectId).
		Where("documents.status = ?", entity.DocumentStatusCompleted).
		Where("document_chunks.deleted_at IS NULL").
		Where("documents.deleted_at IS NULL").
		Where("1 - (embedding <=> ?) > ?", queryVector, threshold)

	if len(documentIds) > 0 {
		query = query.Where("document_chunks.document_id IN ?", documentIds)
	}

	err := query.
		Order("similarity DESC").
		Limit(limit).
		Scan(&results).Error

	if err != nil {
		return nil, err
	}

	scored := make([]*contract.ScoredDocumentChunk, len(results))
	for i, res := range results {
		scored[i] = &contract.ScoredDocumentChunk{
			Chunk:      r.mapper.ToEntity(&res.DocumentChunk),
			Similarity: res.Similarity,
		}
	}
	return scored, nil
}
