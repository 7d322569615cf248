package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateMeetingRequest struct {
	ProjectId    uuid.UUID `json:"project_id" validate:"required"`
	Title        string    `json:"title" validate:"required,max=255"`
	Transcript   string    `json:"transcript" validate:"required"`
	MeetingDate  time.Time `json:"meeting_date"`
	Participants []string  `json:"participants" validate:"max=100"`
}

type CreateMeetingResponse struct {
	Id     uuid.UUID `json:"id"`
	Status string    `json:"status"`
}

type ShowMeetingResponse struct {
	Id           uuid.UUID  `json:"id"`
	ProjectId    uuid.UUID  `json:"project_id"`
	Title        string     `json:"title"`
	MeetingDate  time.Time  `json:"meeting_date"`
	Participants []string   `json:"participants"`
	Status       string     `json:"status"`
	ErrorMessage string     `json:"error_message,omitempty"`
	ChunkCount   int        `json:"chunk_count"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    *time.Time `json:"updated_at"`
}

type ListMeetingsResponse struct {
	Meetings []ShowMeetingResponse `json:"meetings"`
	Total    int64                 `json:"total"`
}
