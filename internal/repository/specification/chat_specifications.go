package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BySessionID struct {
	SessionID uuid.UUID
}

func (s BySessionID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("chat_session_id = ?", s.SessionID)
}

type ByMessageID struct {
	MessageID uuid.UUID
}

func (s ByMessageID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("chat_message_id = ?", s.MessageID)
}

// RecentFirst orders messages newest first for history windows.
type RecentFirst struct{}

func (s RecentFirst) Apply(db *gorm.DB) *gorm.DB {
	return db.Order("created_at DESC")
}
