package mapper

import (
	"time"

	"docinsight-be/internal/entity"
	"docinsight-be/internal/model"

	"gorm.io/gorm"
)

type InsightMapper struct{}

func NewInsightMapper() *InsightMapper {
	return &InsightMapper{}
}

func (m *InsightMapper) ToEntity(i *model.Insight) *entity.Insight {
	if i == nil {
		return nil
	}

	var deletedAt *time.Time
	if i.DeletedAt.Valid {
		t := i.DeletedAt.Time
		deletedAt = &t
	}

	var updatedAt *time.Time
	if !i.UpdatedAt.IsZero() {
		t := i.UpdatedAt
		updatedAt = &t
	}

	return &entity.Insight{
		Id:              i.Id,
		ProjectId:       i.ProjectId,
		MeetingId:       i.MeetingId,
		DocumentId:      i.DocumentId,
		InsightType:     i.InsightType,
		Title:           i.Title,
		Description:     i.Description,
		Severity:        i.Severity,
		Assignee:        i.Assignee,
		DueDate:         i.DueDate,
		FinancialImpact: i.FinancialImpact,
		Confidence:      i.Confidence,
		Resolved:        i.Resolved,
		ContentHash:     i.ContentHash,
		CreatedAt:       i.CreatedAt,
		UpdatedAt:       updatedAt,
		DeletedAt:       deletedAt,
		IsDeleted:       i.DeletedAt.Valid,
	}
}

func (m *InsightMapper) ToModel(i *entity.Insight) *model.Insight {
	if i == nil {
		return nil
	}

	var deletedAt gorm.DeletedAt
	if i.DeletedAt != nil {
		deletedAt = gorm.DeletedAt{Time: *i.DeletedAt, Valid: true}
	} else if i.IsDeleted {
		deletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	}

	var updatedAt time.Time
	if i.UpdatedAt != nil {
		updatedAt = *i.UpdatedAt
	}

	return &model.Insight{
		Id:              i.Id,
		ProjectId:       i.ProjectId,
		MeetingId:       i.MeetingId,
		DocumentId:      i.DocumentId,
		InsightType:     i.InsightType,
		Title:           i.Title,
		Description:     i.Description,
		Severity:        i.Severity,
		Assignee:        i.Assignee,
		DueDate:         i.DueDate,
		FinancialImpact: i.FinancialImpact,
		Confidence:      i.Confidence,
		Resolved:        i.Resolved,
		ContentHash:     i.ContentHash,
		CreatedAt:       i.CreatedAt,
		UpdatedAt:       updatedAt,
		DeletedAt:       deletedAt,
	}
}

func (m *InsightMapper) ToEntities(insights []*model.Insight) []*entity.Insight {
	entities := make([]*entity.Insight, len(insights))
	for i, ins := range insights {
		entities[i] = m.ToEntity(ins)
	}
	return entities
}

func (m *InsightMapper) ToModels(insights []*entity.Insight) []*model.Insight {
	models := make([]*model.Insight, len(insights))
	for i, ins := range insights {
		models[i] = m.ToModel(ins)
	}
	return models
}
