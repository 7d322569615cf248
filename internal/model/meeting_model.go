package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Meeting struct {
	Id           uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProjectId    uuid.UUID      `gorm:"type:uuid;not null;index"`
	Title        string         `gorm:"type:varchar(255);not null"`
	Transcript   string         `gorm:"type:text"`
	MeetingDate  time.Time      `gorm:"index"`
	Participants datatypes.JSON `gorm:"type:jsonb"`
	Status       string         `gorm:"type:varchar(20);not null;default:'pending';index"`
	ErrorMessage string         `gorm:"type:text"`
	ChunkCount   int            `gorm:"default:0"`
	CreatedAt    time.Time      `gorm:"autoCreateTime"`
	UpdatedAt    time.Time      `gorm:"autoUpdateTime"`
	DeletedAt    gorm.DeletedAt `gorm:"index"`
}

func (Meeting) TableName() string {
	return "meetings"
}
