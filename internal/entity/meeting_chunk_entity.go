package entity

import (
	"time"

	"github.com/google/uuid"
)

type MeetingChunk struct {
	Id          uuid.UUID `gorm:"type:uuid;primaryKey"`
	MeetingId   uuid.UUID `gorm:"type:uuid;index"`
	Content     string
	Speaker     string
	StartOffset int
	EndOffset   int
	Embedding   []float32
	ChunkIndex  int
	CreatedAt   time.Time
	UpdatedAt   *time.Time
	DeletedAt   *time.Time
	IsDeleted   bool
}
