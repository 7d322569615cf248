package entity

import (
	"time"

	"github.com/google/uuid"
)

type Meeting struct {
	Id           uuid.UUID `gorm:"type:uuid;primaryKey"`
	ProjectId    uuid.UUID `gorm:"type:uuid;index"`
	Title        string
	Transcript   string
	MeetingDate  time.Time
	Participants []string
	Status       string
	ErrorMessage string
	ChunkCount   int
	CreatedAt    time.Time
	UpdatedAt    *time.Time
	DeletedAt    *time.Time
	IsDeleted    bool
}
