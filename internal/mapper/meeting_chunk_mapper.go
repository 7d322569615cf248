package mapper

import (
	"time"

	"docinsight-be/internal/entity"
	"docinsight-be/internal/model"

	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

type MeetingChunkMapper struct{}

func NewMeetingChunkMapper() *MeetingChunkMapper {
	return &MeetingChunkMapper{}
}

func (m *MeetingChunkMapper) ToEntity(c *model.MeetingChunk) *entity.MeetingChunk {
	if c == nil {
		return nil
	}

	var deletedAt *time.Time
	if c.DeletedAt.Valid {
		t := c.DeletedAt.Time
		deletedAt = &t
	}

	var updatedAt *time.Time
	if !c.UpdatedAt.IsZero() {
		t := c.UpdatedAt
		updatedAt = &t
	}

	return &entity.MeetingChunk{
		Id:          c.Id,
		MeetingId:   c.MeetingId,
		Content:     c.Content,
		Speaker:     c.Speaker,
		StartOffset: c.StartOffset,
		EndOffset:   c.EndOffset,
		Embedding:   c.Embedding.Slice(),
		ChunkIndex:  c.ChunkIndex,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   updatedAt,
		DeletedAt:   deletedAt,
		IsDeleted:   c.DeletedAt.Valid,
	}
}

func (m *MeetingChunkMapper) ToModel(c *entity.MeetingChunk) *model.MeetingChunk {
	if c == nil {
		return nil
	}

	var deletedAt gorm.DeletedAt
	if c.DeletedAt != nil {
		deletedAt = gorm.DeletedAt{Time: *c.DeletedAt, Valid: true}
	} else if c.IsDeleted {
		deletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	}

	var updatedAt time.Time
	if c.UpdatedAt != nil {
		updatedAt = *c.UpdatedAt
	}

	return &model.MeetingChunk{
		Id:          c.Id,
		MeetingId:   c.MeetingId,
		Content:     c.Content,
		Speaker:     c.Speaker,
		StartOffset: c.StartOffset,
		EndOffset:   c.EndOffset,
		Embedding:   pgvector.NewVector(c.Embedding),
		ChunkIndex:  c.ChunkIndex,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   updatedAt,
		DeletedAt:   deletedAt,
	}
}

func (m *MeetingChunkMapper) ToEntities(chunks []*model.MeetingChunk) []*entity.MeetingChunk {
	entities := make([]*entity.MeetingChunk, len(chunks))
	for i, c := range chunks {
		entities[i] = m.ToEntity(c)
	}
	return entities
}

func (m *MeetingChunkMapper) ToModels(chunks []*entity.MeetingChunk) []*model.MeetingChunk {
	models := make([]*model.MeetingChunk, len(chunks))
	for i, c := range chunks {
		models[i] = m.ToModel(c)
	}
	return models
}
