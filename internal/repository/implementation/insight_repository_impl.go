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
	"gorm.io/gorm/clause"
)

type InsightRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.InsightMapper
}

func NewInsightRepository(db *gorm.DB) contract.InsightRepository {
	return &InsightRepositoryImpl{
		db:     db,
		mapper: mapper.NewInsightMapper(),
	}
}

func (r *InsightRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

// CreateIgnoreDuplicates relies on the unique index on content_hash.
// ON CONFLICT DO NOTHING turns a duplicate into RowsAffected == 0.
func (r *InsightRepositoryImpl) CreateIgnoreDuplicates(ctx context.Context, insight *entity.Insight) (bool, error) {
	m := r.mapper.ToModel(insight)
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "content_hash"}},
			DoNothing: true,
		}).
		Create(m)
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		return false, nil
	}
	*insight = *r.mapper.ToEntity(m)
	return true, nil
}

func (r *InsightRepositoryImpl) CreateBulkIgnoreDuplicates(ctx context.Context, insights []*entity.Insight) (int64, error) {
	if len(insights) == 0 {
		return 0, nil
	}
	models := make([]*model.Insight, len(insights))
	for i, ins := range insights {
		models[i] = r.mapper.ToModel(ins)
	}

	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "content_hash"}},
			DoNothing: true,
		}).
		Create(models)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *InsightRepositoryImpl) Update(ctx context.Context, insight *entity.Insight) error {
	m := r.mapper.ToModel(insight)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*insight = *r.mapper.ToEntity(m)
	return nil
}

func (r *InsightRepositoryImpl) SetResolved(ctx context.Context, id uuid.UUID, resolved bool) error {
	return r.db.WithContext(ctx).
		Model(&model.Insight{}).
		Where("id = ?", id).
		Update("resolved", resolved).Error
}

func (r *InsightRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Insight{}, id).Error
}

func (r *InsightRepositoryImpl) DeleteByIds(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Where("id IN ?", ids).Delete(&model.Insight{}).Error
}

func (r *InsightRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Insight, error) {
	var m model.Insight
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *InsightRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Insight, error) {
	var models []*model.Insight
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *InsightRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	err := query.Model(&model.Insight{}).Count(&count).Error
	return count, err
}

// FindDuplicateGroups surfaces content hashes with more than one live row.
// Ids come back oldest first so callers keep the head and delete the rest.
func (r *InsightRepositoryImpl) FindDuplicateGroups(ctx context.Context, limit int) ([]*contract.DuplicateGroup, error) {
	if limit <= 0 {
		limit = 100
	}

	type hashRow struct {
		ContentHash string
	}
	var hashes []hashRow

	err := r.db.WithContext(ctx).
		Table("insights").
		Select("content_hash").
		Where("deleted_at IS NULL").
		Group("content_hash").
		Having("COUNT(*) > 1").
		Limit(limit).
		Scan(&hashes).Error
	if err != nil {
		return nil, err
	}

	groups := make([]*contract.DuplicateGroup, 0, len(hashes))
	for _, h := range hashes {
		var ids []uuid.UUID
		err := r.db.WithContext(ctx).
			Table("insights").
			Where("content_hash = ?", h.ContentHash).
			Where("deleted_at IS NULL").
			Order("created_at ASC").
			Pluck("id", &ids).Error
		if err != nil {
			return nil, err
		}
		groups = append(groups, &contract.DuplicateGroup{
			ContentHash: h.ContentHash,
			Ids:         ids,
		})
	}
	return groups, nil
}
