package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ChatMessage struct {
	Id            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Content       string    `gorm:"type:text;not null"`
	Role          string    `gorm:"type:varchar(20);not null"`
	ServedBy      string    `gorm:"type:varchar(20)"`
	ChatSessionId uuid.UUID `gorm:"type:uuid;not null;index"`
	// Seq is assigned by the database on insert. Two turns written in the
	// same millisecond still read back in write order.
	Seq       int64          `gorm:"autoIncrement;uniqueIndex"`
	CreatedAt time.Time      `gorm:"autoCreateTime"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (ChatMessage) TableName() string {
	return "chat_messages"
}
