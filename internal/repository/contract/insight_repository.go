package contract

import (
	"context"

	"docinsight-be/internal/entity"
	"docinsight-be/internal/repository/specification"

	"github.com/google/uuid"
)

// DuplicateGroup describes a set of insights sharing one content hash.
// Ids are ordered oldest first so the head is the canonical survivor.
type DuplicateGroup struct {
	ContentHash string
	Ids         []uuid.UUID
}

type InsightRepository interface {
	// CreateIgnoreDuplicates inserts and reports whether a row was written.
	// A content_hash collision is not an error, it returns false.
	CreateIgnoreDuplicates(ctx context.Context, insight *entity.Insight) (bool, error)
	// CreateBulkIgnoreDuplicates inserts a batch and returns how many rows
	// survived the unique index.
	CreateBulkIgnoreDuplicates(ctx context.Context, insights []*entity.Insight) (int64, error)
	Update(ctx context.Context, insight *entity.Insight) error
	// SetResolved flips the only mutable field of a stored insight.
	SetResolved(ctx context.Context, id uuid.UUID, resolved bool) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByIds(ctx context.Context, ids []uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Insight, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Insight, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	// FindDuplicateGroups surfaces hashes held by more than one live row.
	// Only possible on databases predating the unique index.
	FindDuplicateGroups(ctx context.Context, limit int) ([]*DuplicateGroup, error)
}
