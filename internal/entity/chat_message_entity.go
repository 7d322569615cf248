package entity

import (
	"time"

	"github.com/google/uuid"
)

const (
	ChatRoleUser      = "user"
	ChatRoleAssistant = "assistant"
)

type ChatMessage struct {
	Id            uuid.UUID `gorm:"type:uuid;primaryKey"`
	Content       string
	Role          string
	ServedBy      string // railway, fallback or error
	ChatSessionId uuid.UUID `gorm:"type:uuid;index"`
	Seq           int64     // database insertion order, breaks created_at ties
	Sources       []*ChatSource
	CreatedAt     time.Time
	UpdatedAt     *time.Time
	DeletedAt     *time.Time
	IsDeleted     bool
}
