package entity

import (
	"time"

	"github.com/google/uuid"
)

const (
	InsightTypeDecision    = "decision"
	InsightTypeRisk        = "risk"
	InsightTypeActionItem  = "action_item"
	InsightTypeOpportunity = "opportunity"
	InsightTypeFact        = "fact"
	InsightTypeHighlight   = "highlight"
)

const (
	InsightSeverityLow      = "low"
	InsightSeverityMedium   = "medium"
	InsightSeverityHigh     = "high"
	InsightSeverityCritical = "critical"
)

// Insight belongs to exactly one source: MeetingId or DocumentId is set,
// never both and never neither.
type Insight struct {
	Id          uuid.UUID `gorm:"type:uuid;primaryKey"`
	ProjectId   uuid.UUID `gorm:"type:uuid;index"`
	MeetingId   *uuid.UUID
	DocumentId  *uuid.UUID
	InsightType string
	Title       string
	Description string
	Severity    string
	Assignee    string
	DueDate     *time.Time
	// FinancialImpact is an estimated amount in the project currency
	FinancialImpact *float64
	// Confidence is the extractor's certainty, 0 to 1
	Confidence  float64
	Resolved    bool
	ContentHash string
	CreatedAt   time.Time
	UpdatedAt   *time.Time
	DeletedAt   *time.Time
	IsDeleted   bool
}

// ParentId returns whichever source id is set.
func (i *Insight) ParentId() uuid.UUID {
	if i.MeetingId != nil {
		return *i.MeetingId
	}
	if i.DocumentId != nil {
		return *i.DocumentId
	}
	return uuid.Nil
}

// HasValidParent reports whether exactly one of MeetingId and DocumentId is set.
func (i *Insight) HasValidParent() bool {
	return (i.MeetingId != nil) != (i.DocumentId != nil)
}
