package contract

import (
	"context"

	"docinsight-be/internal/entity"
	"docinsight-be/internal/repository/specification"

	"github.com/google/uuid"
)

type ChatSourceRepository interface {
	CreateBulk(ctx context.Context, sources []*entity.ChatSource) error
	DeleteByMessageId(ctx context.Context, messageId uuid.UUID) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatSource, error)
}
