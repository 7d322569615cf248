package entity

import (
	"time"

	"github.com/google/uuid"
)

// Document ingestion statuses. Transitions run pending -> processing ->
// completed or failed; a failed document can be requeued back to pending.
const (
	DocumentStatusPending    = "pending"
	DocumentStatusProcessing = "processing"
	DocumentStatusCompleted  = "completed"
	DocumentStatusFailed     = "failed"
)

type Document struct {
	Id        uuid.UUID `gorm:"type:uuid;primaryKey"`
	ProjectId uuid.UUID `gorm:"type:uuid;index"`
	Title     string
	FileName  string
	FileType  string
	// Source is where the content came from, a path or URL
	Source       string
	Content      string
	Status       string
	ErrorMessage string
	ChunkCount   int
	// Metadata carries open caller-supplied fields alongside the typed ones
	Metadata    map[string]interface{}
	ProcessedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   *time.Time
	DeletedAt   *time.Time
	IsDeleted   bool
}
