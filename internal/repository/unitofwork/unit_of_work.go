package unitofwork

import (
	"context"

	"docinsight-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	DocumentRepository() contract.DocumentRepository
	DocumentChunkRepository() contract.DocumentChunkRepository
	MeetingRepository() contract.MeetingRepository
	MeetingChunkRepository() contract.MeetingChunkRepository
	InsightRepository() contract.InsightRepository

	ChatSessionRepository() contract.ChatSessionRepository
	ChatMessageRepository() contract.ChatMessageRepository
	ChatSourceRepository() contract.ChatSourceRepository
}
