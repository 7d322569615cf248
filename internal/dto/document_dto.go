package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateDocumentRequest struct {
	ProjectId uuid.UUID              `json:"project_id" validate:"required"`
	Title     string                 `json:"title" validate:"required,max=255"`
	FileName  string                 `json:"file_name"`
	FileType  string                 `json:"file_type"`
	Source    string                 `json:"source" validate:"max=500"`
	Content   string                 `json:"content" validate:"required"`
	Metadata  map[string]interface{} `json:"metadata"`
}

// UpdateDocumentRequest uses pointers so absent fields are left untouched.
type UpdateDocumentRequest struct {
	Title    *string                `json:"title" validate:"omitempty,max=255"`
	Content  *string                `json:"content"`
	Source   *string                `json:"source" validate:"omitempty,max=500"`
	Metadata map[string]interface{} `json:"metadata"`
}

type UpdateDocumentResponse struct {
	Id         uuid.UUID `json:"id"`
	Status     string    `json:"status"`
	Reingested bool      `json:"reingested"`
}

type CreateDocumentResponse struct {
	Id     uuid.UUID `json:"id"`
	Status string    `json:"status"`
}

type ShowDocumentResponse struct {
	Id           uuid.UUID              `json:"id"`
	ProjectId    uuid.UUID              `json:"project_id"`
	Title        string                 `json:"title"`
	FileName     string                 `json:"file_name"`
	FileType     string                 `json:"file_type"`
	Source       string                 `json:"source,omitempty"`
	Status       string                 `json:"status"`
	ErrorMessage string                 `json:"error_message,omitempty"`
	ChunkCount   int                    `json:"chunk_count"`
	Metadata     map[string]interface{} `json:"metadata,omitempty"`
	ProcessedAt  *time.Time             `json:"processed_at,omitempty"`
	CreatedAt    time.Time              `json:"created_at"`
	UpdatedAt    *time.Time             `json:"updated_at"`
}

type ListDocumentsResponse struct {
	Documents []ShowDocumentResponse `json:"documents"`
	Total     int64                  `json:"total"`
}

type ReprocessDocumentResponse struct {
	Id     uuid.UUID `json:"id"`
	Status string    `json:"status"`
}

type DocumentStatusResponse struct {
	Id           uuid.UUID `json:"id"`
	Status       string    `json:"status"`
	ErrorMessage string    `json:"error_message,omitempty"`
	ChunkCount   int       `json:"chunk_count"`
}
