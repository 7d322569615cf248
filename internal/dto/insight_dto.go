package dto

import (
	"time"

	"github.com/google/uuid"
)

type InsightDTO struct {
	Id              uuid.UUID  `json:"id"`
	ProjectId       uuid.UUID  `json:"project_id"`
	MeetingId       *uuid.UUID `json:"meeting_id,omitempty"`
	DocumentId      *uuid.UUID `json:"document_id,omitempty"`
	InsightType     string     `json:"insight_type"`
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	Severity        string     `json:"severity"`
	Assignee        string     `json:"assignee,omitempty"`
	DueDate         *time.Time `json:"due_date,omitempty"`
	FinancialImpact *float64   `json:"financial_impact,omitempty"`
	Confidence      float64    `json:"confidence"`
	Resolved        bool       `json:"resolved"`
	CreatedAt       time.Time  `json:"created_at"`
}

type CreateInsightRequest struct {
	ProjectId       uuid.UUID  `json:"project_id" validate:"required"`
	MeetingId       *uuid.UUID `json:"meeting_id,omitempty"`
	DocumentId      *uuid.UUID `json:"document_id,omitempty"`
	InsightType     string     `json:"insight_type" validate:"required,oneof=decision risk action_item opportunity fact highlight"`
	Title           string     `json:"title" validate:"required,max=500"`
	Description     string     `json:"description"`
	Severity        string     `json:"severity" validate:"omitempty,oneof=low medium high critical"`
	Assignee        string     `json:"assignee" validate:"max=255"`
	DueDate         *time.Time `json:"due_date,omitempty"`
	FinancialImpact *float64   `json:"financial_impact,omitempty"`
	Confidence      float64    `json:"confidence" validate:"gte=0,lte=1"`
}

type CreateInsightResponse struct {
	Id       uuid.UUID `json:"id"`
	Inserted bool      `json:"inserted"` // false when the content hash already exists
}

type ResolveInsightRequest struct {
	Resolved bool `json:"resolved"`
}

type ListInsightsResponse struct {
	Insights []InsightDTO `json:"insights"`
	Total    int64        `json:"total"`
}

type CleanupInsightsResponse struct {
	GroupsFound int `json:"groups_found"`
	Deleted     int `json:"deleted"`
}
