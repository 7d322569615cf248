package entity

import (
	"time"

	"github.com/google/uuid"
)

type DocumentChunk struct {
	Id         uuid.UUID `gorm:"type:uuid;primaryKey"`
	DocumentId uuid.UUID `gorm:"type:uuid;index"`
	Content    string
	Embedding  []float32
	ChunkIndex int
	TokenCount int
	// Metadata denormalizes parent fields (title, source, file type,
	// project) so search hits render without a second lookup.
	Metadata  map[string]interface{}
	CreatedAt time.Time
	UpdatedAt *time.Time
	DeletedAt *time.Time
	IsDeleted bool
}
