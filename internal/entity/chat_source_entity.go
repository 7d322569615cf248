package entity

import (
	"time"

	"github.com/google/uuid"
)

// ChatSource records one retrieved chunk cited by an assistant answer.
// Position is the 1-based citation number used in the answer text.
type ChatSource struct {
	Id            uuid.UUID `gorm:"type:uuid;primaryKey"`
	ChatMessageId uuid.UUID `gorm:"type:uuid;index"`
	DocumentId    uuid.UUID
	ChunkId       uuid.UUID
	DocumentTitle string
	Excerpt       string
	Relevance     float64
	Position      int
	CreatedAt     time.Time
}
