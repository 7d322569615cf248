package contract

import (
	"context"

	"docinsight-be/internal/entity"
	"docinsight-be/internal/repository/specification"

	"github.com/google/uuid"
)

type ChatMessageRepository interface {
	Create(ctx context.Context, message *entity.ChatMessage) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteBySessionId(ctx context.Context, sessionId uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ChatMessage, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatMessage, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	// FindRecentBySession returns up to limit messages, oldest first, for
	// conversation history windows.
	FindRecentBySession(ctx context.Context, sessionId uuid.UUID, limit int) ([]*entity.ChatMessage, error)
}
