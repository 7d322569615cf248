package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Document struct {
	Id           uuid.UUID         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProjectId    uuid.UUID         `gorm:"type:uuid;not null;index"`
	Title        string            `gorm:"type:varchar(255);not null"`
	FileName     string            `gorm:"type:varchar(255)"`
	FileType     string            `gorm:"type:varchar(50)"`
	Source       string            `gorm:"type:varchar(500)"`
	Content      string            `gorm:"type:text"`
	Status       string            `gorm:"type:varchar(20);not null;default:'pending';index"`
	ErrorMessage string            `gorm:"type:text"`
	ChunkCount   int               `gorm:"default:0"`
	Metadata     datatypes.JSONMap `gorm:"type:jsonb"`
	ProcessedAt  *time.Time
	CreatedAt    time.Time      `gorm:"autoCreateTime"`
	UpdatedAt    time.Time      `gorm:"autoUpdateTime"`
	DeletedAt    gorm.DeletedAt `gorm:"index"`
}

func (Document) TableName() string {
	return "documents"
}
