package contract

import (
	"context"

	"docinsight-be/internal/entity"
	"docinsight-be/internal/repository/specification"

	"github.com/google/uuid"
)

// ScoredDocumentChunk wraps DocumentChunk with its similarity score
type ScoredDocumentChunk struct {
	Chunk      *entity.DocumentChunk
	Similarity float64 // 0.0 to 1.0 (1.0 = identical)
}

type DocumentChunkRepository interface {
	Create(ctx context.Context, chunk *entity.DocumentChunk) error
	CreateBulk(ctx context.Context, chunks []*entity.DocumentChunk) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByDocumentId(ctx context.Context, documentId uuid.UUID) error
	DeleteByProjectId(ctx context.Context, projectId uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.DocumentChunk, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.DocumentChunk, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	// SearchSimilarWithScore returns chunks with similarity scores at or above
	// threshold, scoped to a project and optionally to specific documents.
	SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int, projectId uuid.UUID, threshold float64, documentIds []uuid.UUID) ([]*ScoredDocumentChunk, error)
}
