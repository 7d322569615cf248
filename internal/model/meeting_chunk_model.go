package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

type MeetingChunk struct {
	Id          uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	MeetingId   uuid.UUID       `gorm:"type:uuid;not null;index"`
	Content     string          `gorm:"type:text;not null"`
	Speaker     string          `gorm:"type:varchar(255)"`
	StartOffset int             `gorm:"default:0"`
	EndOffset   int             `gorm:"default:0"`
	Embedding   pgvector.Vector `gorm:"type:vector(1536)"`
	ChunkIndex  int             `gorm:"default:0"`
	CreatedAt   time.Time       `gorm:"autoCreateTime"`
	UpdatedAt   time.Time       `gorm:"autoUpdateTime"`
	DeletedAt   gorm.DeletedAt  `gorm:"index"`
}

func (MeetingChunk) TableName() string {
	return "meeting_chunks"
}
