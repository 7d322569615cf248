package model

import (
	"time"

	"github.com/google/uuid"
)

type ChatSource struct {
	Id            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ChatMessageId uuid.UUID `gorm:"type:uuid;not null;index"`
	DocumentId    uuid.UUID `gorm:"type:uuid;not null"`
	ChunkId       uuid.UUID `gorm:"type:uuid;not null"`
	DocumentTitle string    `gorm:"type:varchar(255)"`
	Excerpt       string    `gorm:"type:text"`
	Relevance     float64   `gorm:"type:double precision"`
	Position      int       `gorm:"default:0"`
	CreatedAt     time.Time `gorm:"autoCreateTime"`
}

func (ChatSource) TableName() string {
	return "chat_sources"
}
