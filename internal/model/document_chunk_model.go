package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type DocumentChunk struct {
	Id         uuid.UUID         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	DocumentId uuid.UUID         `gorm:"type:uuid;not null;index"`
	Content    string            `gorm:"type:text;not null"`
	Embedding  pgvector.Vector   `gorm:"type:vector(1536)"` // text-embedding-3-small uses 1536 dimensions
	ChunkIndex int               `gorm:"default:0"`         // 0-based index for ordering
	TokenCount int               `gorm:"default:0"`
	Metadata   datatypes.JSONMap `gorm:"type:jsonb"`
	CreatedAt  time.Time         `gorm:"autoCreateTime"`
	UpdatedAt  time.Time         `gorm:"autoUpdateTime"`
	DeletedAt  gorm.DeletedAt    `gorm:"index"`
}

func (DocumentChunk) TableName() string {
	return "document_chunks"
}
