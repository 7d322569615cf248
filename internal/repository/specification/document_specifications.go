package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ByProjectID struct {
	ProjectID uuid.UUID
}

func (s ByProjectID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("project_id = ?", s.ProjectID)
}

type ByDocumentID struct {
	DocumentID uuid.UUID
}

func (s ByDocumentID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("document_id = ?", s.DocumentID)
}

type ByDocumentIDs struct {
	DocumentIDs []uuid.UUID
}

func (s ByDocumentIDs) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("document_id IN ?", s.DocumentIDs)
}

type ByStatus struct {
	Status string
}

func (s ByStatus) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("status = ?", s.Status)
}

type ByChunkIndexOrder struct{}

func (s ByChunkIndexOrder) Apply(db *gorm.DB) *gorm.DB {
	return db.Order("chunk_index ASC")
}
