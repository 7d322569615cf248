package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Insight rows carry a check constraint so exactly one of meeting_id and
// document_id is set, and a unique index on content_hash so duplicate
// extractions are rejected at the database level.
type Insight struct {
	Id              uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProjectId       uuid.UUID      `gorm:"type:uuid;not null;index"`
	MeetingId       *uuid.UUID     `gorm:"type:uuid;index"`
	DocumentId      *uuid.UUID     `gorm:"type:uuid;index"`
	InsightType     string         `gorm:"type:varchar(50);not null"`
	Title           string         `gorm:"type:varchar(500);not null"`
	Description     string         `gorm:"type:text"`
	Severity        string         `gorm:"type:varchar(20);default:'medium'"`
	Assignee        string         `gorm:"type:varchar(255)"`
	DueDate         *time.Time     `gorm:"type:date"`
	FinancialImpact *float64       `gorm:"type:numeric"`
	Confidence      float64        `gorm:"default:0"`
	Resolved        bool           `gorm:"default:false"`
	ContentHash     string         `gorm:"type:varchar(32);not null;uniqueIndex:idx_insights_content_hash"`
	CreatedAt       time.Time      `gorm:"autoCreateTime"`
	UpdatedAt       time.Time      `gorm:"autoUpdateTime"`
	DeletedAt       gorm.DeletedAt `gorm:"index"`
}

func (Insight) TableName() string {
	return "insights"
}
