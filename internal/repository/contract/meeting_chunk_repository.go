package contract

import (
	"context"

	"docinsight-be/internal/entity"
	"docinsight-be/internal/repository/specification"

	"github.com/google/uuid"
)

// ScoredMeetingChunk wraps MeetingChunk with its similarity score
type ScoredMeetingChunk struct {
	Chunk      *entity.MeetingChunk
	Similarity float64
}

type MeetingChunkRepository interface {
	Create(ctx context.Context, chunk *entity.MeetingChunk) error
	CreateBulk(ctx context.Context, chunks []*entity.MeetingChunk) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByMeetingId(ctx context.Context, meetingId uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.MeetingChunk, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.MeetingChunk, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int, projectId uuid.UUID, threshold float64) ([]*ScoredMeetingChunk, error)
}
