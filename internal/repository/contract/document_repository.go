package contract

import (
	"context"

	"docinsight-be/internal/entity"
	"docinsight-be/internal/repository/specification"

	"github.com/google/uuid"
)

type DocumentRepository interface {
	Create(ctx context.Context, document *entity.Document) error
	Update(ctx context.Context, document *entity.Document) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Document, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Document, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	// UpdateStatus writes status and error message without touching content
	UpdateStatus(ctx context.Context, id uuid.UUID, status string, errorMessage string) error
	// UpdateChunkCount records how many chunks an ingestion produced
	UpdateChunkCount(ctx context.Context, id uuid.UUID, count int) error
}
