package integration

import (
	"context"
	"log"
	"os"
	"testing"
	"time"

	"docinsight-be/internal/entity"
	"docinsight-be/internal/repository/specification"
	"docinsight-be/internal/repository/unitofwork"
	"docinsight-be/pkg/database"
	"docinsight-be/pkg/insight"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
)

func TestGormConnection(t *testing.T) {
	// Load .env from root
	err := godotenv.Load("../../.env")
	if err != nil {
		log.Println("No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}

	gormDB, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		t.Fatalf("Failed to connect to DB: %v", err)
	}

	// Verify Wiring
	uowFactory := unitofwork.NewRepositoryFactory(gormDB)
	uow := uowFactory.NewUnitOfWork(context.Background())

	assert.NotNil(t, uow.DocumentRepository())
	assert.NotNil(t, uow.InsightRepository())

	// Basic Ping
	sqlDB, _ := gormDB.DB()
	err = sqlDB.Ping()
	assert.NoError(t, err)
	t.Log("Successfully connected to DB and initialized UnitOfWork Factory")

	// Verify Data Access (implies columns exist)
	t.Run("Check Document Repository", func(t *testing.T) {
		count, err := uow.DocumentRepository().Count(context.Background())
		assert.NoError(t, err)
		t.Logf("Document count: %d", count)
	})

	t.Run("Check Document Chunk Repository", func(t *testing.T) {
		count, err := uow.DocumentChunkRepository().Count(context.Background())
		assert.NoError(t, err)
		t.Logf("DocumentChunk count: %d", count)
	})

	t.Run("Check Transactional Document Insert", func(t *testing.T) {
		ctx := context.Background()
		err := uow.Begin(ctx)
		assert.NoError(t, err)
		defer uow.Rollback()

		doc := &entity.Document{
			Id:        uuid.New(),
			ProjectId: uuid.New(),
			Title:     "Integration Test Document",
			FileName:  "integration.txt",
			FileType:  "txt",
			Content:   "Body for the integration round trip.",
			Status:    entity.DocumentStatusPending,
			CreatedAt: time.Now(),
		}
		err = uow.DocumentRepository().Create(ctx, doc)
		assert.NoError(t, err)

		found, err := uow.DocumentRepository().FindOne(ctx, specification.ByID{ID: doc.Id})
		assert.NoError(t, err)
		if assert.NotNil(t, found) {
			assert.Equal(t, doc.Title, found.Title)
		}
	})

	t.Run("Check Similarity Threshold Is Strict", func(t *testing.T) {
		ctx := context.Background()
		err := uow.Begin(ctx)
		assert.NoError(t, err)
		defer uow.Rollback()

		projectId := uuid.New()
		doc := &entity.Document{
			Id:        uuid.New(),
			ProjectId: projectId,
			Title:     "Similarity Fixture",
			Content:   "fixture",
			Status:    entity.DocumentStatusCompleted,
			CreatedAt: time.Now(),
		}
		err = uow.DocumentRepository().Create(ctx, doc)
		assert.NoError(t, err)

		// Orthogonal unit vectors: aligned scores 1, orthogonal scores 0
		aligned := make([]float32, 1536)
		aligned[0] = 1
		orthogonal := make([]float32, 1536)
		orthogonal[1] = 1

		err = uow.DocumentChunkRepository().CreateBulk(ctx, []*entity.DocumentChunk{
			{Id: uuid.New(), DocumentId: doc.Id, Content: "aligned", Embedding: aligned, ChunkIndex: 0, CreatedAt: time.Now()},
			{Id: uuid.New(), DocumentId: doc.Id, Content: "orthogonal", Embedding: orthogonal, ChunkIndex: 1, CreatedAt: time.Now()},
		})
		assert.NoError(t, err)

		// At threshold 0 the orthogonal chunk scores exactly 0 and must be
		// cut: the comparison is strictly greater-than
		scored, err := uow.DocumentChunkRepository().SearchSimilarWithScore(ctx, aligned, 10, projectId, 0, nil)
		assert.NoError(t, err)
		if assert.Len(t, scored, 1) {
			assert.Equal(t, "aligned", scored[0].Chunk.Content)
			assert.InDelta(t, 1.0, scored[0].Similarity, 0.001)
		}
	})

	t.Run("Check Message Order Survives Timestamp Ties", func(t *testing.T) {
		ctx := context.Background()
		err := uow.Begin(ctx)
		assert.NoError(t, err)
		defer uow.Rollback()

		sessionId := uuid.New()
		session := &entity.ChatSession{
			Id:        sessionId,
			ProjectId: uuid.New(),
			Title:     "Tie fixture",
			CreatedAt: time.Now(),
		}
		err = uow.ChatSessionRepository().Create(ctx, session)
		assert.NoError(t, err)

		// Both turns land in the same instant, as they do when a streamed
		// answer is persisted right after its question
		at := time.Now()
		question := &entity.ChatMessage{Id: uuid.New(), ChatSessionId: sessionId, Role: entity.ChatRoleUser, Content: "q", CreatedAt: at}
		answer := &entity.ChatMessage{Id: uuid.New(), ChatSessionId: sessionId, Role: entity.ChatRoleAssistant, Content: "a", ServedBy: "fallback", CreatedAt: at}
		assert.NoError(t, uow.ChatMessageRepository().Create(ctx, question))
		assert.NoError(t, uow.ChatMessageRepository().Create(ctx, answer))

		history, err := uow.ChatMessageRepository().FindRecentBySession(ctx, sessionId, 10)
		assert.NoError(t, err)
		if assert.Len(t, history, 2) {
			assert.Equal(t, entity.ChatRoleUser, history[0].Role)
			assert.Equal(t, entity.ChatRoleAssistant, history[1].Role)
		}
	})

	t.Run("Check Insight Dedup Index", func(t *testing.T) {
		ctx := context.Background()
		err := uow.Begin(ctx)
		assert.NoError(t, err)
		defer uow.Rollback()

		docId := uuid.New()
		doc := &entity.Document{
			Id:        docId,
			ProjectId: uuid.New(),
			Title:     "Insight Parent",
			Content:   "parent",
			Status:    entity.DocumentStatusCompleted,
			CreatedAt: time.Now(),
		}
		err = uow.DocumentRepository().Create(ctx, doc)
		assert.NoError(t, err)

		ins := &entity.Insight{
			Id:          uuid.New(),
			ProjectId:   doc.ProjectId,
			DocumentId:  &docId,
			InsightType: entity.InsightTypeRisk,
			Title:       "Integration duplicate check",
			Severity:    entity.InsightSeverityLow,
			CreatedAt:   time.Now(),
		}
		ins.ContentHash = insight.ContentHash(ins.ParentId(), ins.InsightType, ins.Title)

		inserted, err := uow.InsightRepository().CreateIgnoreDuplicates(ctx, ins)
		assert.NoError(t, err)
		assert.True(t, inserted)

		// Same hash again must be silently skipped
		dup := *ins
		dup.Id = uuid.New()
		inserted, err = uow.InsightRepository().CreateIgnoreDuplicates(ctx, &dup)
		assert.NoError(t, err)
		assert.False(t, inserted)
	})
}
