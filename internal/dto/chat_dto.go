package dto

import (
	"time"

	"github.com/google/uuid"
)

type ChatQueryRequest struct {
	ProjectId   uuid.UUID   `json:"project_id" validate:"required"`
	SessionId   *uuid.UUID  `json:"session_id,omitempty"`
	Query       string      `json:"query" validate:"required,max=4000"`
	DocumentIds []uuid.UUID `json:"document_ids,omitempty" validate:"max=20"` // Restrict retrieval to these documents
	MaxChunks   int         `json:"max_chunks,omitempty" validate:"gte=0,lte=20"`
	Temperature *float64    `json:"temperature,omitempty" validate:"omitempty,gte=0,lte=2"`
}

type ChatSourceDTO struct {
	DocumentId    uuid.UUID `json:"document_id"`
	ChunkId       uuid.UUID `json:"chunk_id"`
	DocumentTitle string    `json:"document_title"`
	Excerpt       string    `json:"excerpt"`
	Relevance     float64   `json:"relevance_score"`
	Position      int       `json:"position"`
}

type ChatQueryResponse struct {
	SessionId uuid.UUID       `json:"session_id"`
	MessageId uuid.UUID       `json:"message_id"`
	Answer    string          `json:"answer"`
	Sources   []ChatSourceDTO `json:"sources"`
	ServedBy  string          `json:"served_by"` // railway | fallback | error
	CreatedAt time.Time       `json:"created_at"`
}

type ChatSessionDTO struct {
	Id        uuid.UUID  `json:"id"`
	ProjectId uuid.UUID  `json:"project_id"`
	Title     string     `json:"title"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
}

type ChatHistoryMessageDTO struct {
	Id        uuid.UUID       `json:"id"`
	Role      string          `json:"role"`
	Content   string          `json:"content"`
	ServedBy  string          `json:"served_by,omitempty"`
	Sources   []ChatSourceDTO `json:"sources,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

type ChatHealthStats struct {
	Meetings int64 `json:"meetings"`
	Insights int64 `json:"insights"`
}

type ChatHealthResponse struct {
	Status    string           `json:"status"` // healthy | degraded | down
	Backend   string           `json:"backend,omitempty"`
	Stats     *ChatHealthStats `json:"stats,omitempty"`
	CheckedAt string           `json:"checked_at"`
}

// Stream events. The SSE stream emits sources first, then chunk events,
// then exactly one done or error event.
type StreamSourcesEvent struct {
	SessionId uuid.UUID       `json:"session_id"`
	Sources   []ChatSourceDTO `json:"sources"`
}

type StreamChunkEvent struct {
	Delta string `json:"delta"`
}

type StreamDoneEvent struct {
	SessionId uuid.UUID `json:"session_id"`
	MessageId uuid.UUID `json:"message_id"`
	ServedBy  string    `json:"served_by"`
}

type StreamErrorEvent struct {
	Message string `json:"message"`
}
