package specification

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ByMeetingID struct {
	MeetingID uuid.UUID
}

func (s ByMeetingID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("meeting_id = ?", s.MeetingID)
}

type ByMeetingDateRange struct {
	From time.Time
	To   time.Time
}

func (s ByMeetingDateRange) Apply(db *gorm.DB) *gorm.DB {
	if !s.From.IsZero() {
		db = db.Where("meeting_date >= ?", s.From)
	}
	if !s.To.IsZero() {
		db = db.Where("meeting_date <= ?", s.To)
	}
	return db
}
