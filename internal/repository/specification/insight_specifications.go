package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ByInsightType struct {
	InsightType string
}

func (s ByInsightType) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("insight_type = ?", s.InsightType)
}

type BySeverity struct {
	Severity string
}

func (s BySeverity) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("severity = ?", s.Severity)
}

// ByInsightParent filters by whichever source column the parent occupies.
type ByInsightParent struct {
	MeetingID  *uuid.UUID
	DocumentID *uuid.UUID
}

func (s ByInsightParent) Apply(db *gorm.DB) *gorm.DB {
	if s.MeetingID != nil {
		return db.Where("meeting_id = ?", *s.MeetingID)
	}
	if s.DocumentID != nil {
		return db.Where("document_id = ?", *s.DocumentID)
	}
	return db
}
