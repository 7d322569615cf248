package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"docinsight-be/internal/entity"
	"docinsight-be/internal/pkg/logger"
	"docinsight-be/internal/repository/contract"
	"docinsight-be/internal/repository/specification"
	"docinsight-be/internal/repository/unitofwork"
	"docinsight-be/pkg/embedding"
	"docinsight-be/pkg/events"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// noopLogger satisfies ILogger without output noise in tests.
type noopLogger struct{}

func (noopLogger) Debug(string, string, map[string]interface{}) {}
func (noopLogger) Info(string, string, map[string]interface{})  {}
func (noopLogger) Warn(string, string, map[string]interface{})  {}
func (noopLogger) Error(string, string, map[string]interface{}) {}
func (noopLogger) Sync() error                                  { return nil }

var _ logger.ILogger = noopLogger{}

type fakeDocumentRepo struct {
	contract.DocumentRepository
	document   *entity.Document
	statuses   []string
	lastError  string
	chunkCount int
}

func (f *fakeDocumentRepo) FindOne(_ context.Context, _ ...specification.Specification) (*entity.Document, error) {
	return f.document, nil
}

func (f *fakeDocumentRepo) UpdateStatus(_ context.Context, _ uuid.UUID, status string, errorMessage string) error {
	f.statuses = append(f.statuses, status)
	f.lastError = errorMessage
	return nil
}

func (f *fakeDocumentRepo) UpdateChunkCount(_ context.Context, _ uuid.UUID, count int) error {
	f.chunkCount = count
	return nil
}

type fakeChunkRepo struct {
	contract.DocumentChunkRepository
	deleted []uuid.UUID
	created []*entity.DocumentChunk
}

func (f *fakeChunkRepo) DeleteByDocumentId(_ context.Context, documentId uuid.UUID) error {
	f.deleted = append(f.deleted, documentId)
	return nil
}

func (f *fakeChunkRepo) CreateBulk(_ context.Context, chunks []*entity.DocumentChunk) error {
	f.created = append(f.created, chunks...)
	return nil
}

type fakeUow struct {
	unitofwork.UnitOfWork
	docs   *fakeDocumentRepo
	chunks *fakeChunkRepo
}

func (f *fakeUow) Begin(_ context.Context) error { return nil }
func (f *fakeUow) Commit() error                 { return nil }
func (f *fakeUow) Rollback() error               { return nil }

func (f *fakeUow) DocumentRepository() contract.DocumentRepository {
	return f.docs
}

func (f *fakeUow) DocumentChunkRepository() contract.DocumentChunkRepository {
	return f.chunks
}

type fakeUowFactory struct {
	uow unitofwork.UnitOfWork
}

func (f *fakeUowFactory) NewUnitOfWork(_ context.Context) unitofwork.UnitOfWork {
	return f.uow
}

type stubEmbedProvider struct {
	failContaining string
}

func (p *stubEmbedProvider) Embed(_ context.Context, text string) ([]float32, error) {
	if p.failContaining != "" && strings.Contains(text, p.failContaining) {
		return nil, errors.New("provider rejected text")
	}
	return []float32{0.1, 0.2, 0.3}, nil
}

func (p *stubEmbedProvider) Dimensions() int { return 3 }

type recordingPublisher struct {
	published []events.Event
}

func (r *recordingPublisher) Publish(_ context.Context, event events.Event) error {
	r.published = append(r.published, event)
	return nil
}

func newTestIngestion(doc *entity.Document, provider embedding.Provider, pub EventPublisher) (IIngestionService, *fakeUow) {
	uow := &fakeUow{
		docs:   &fakeDocumentRepo{document: doc},
		chunks: &fakeChunkRepo{},
	}
	svc := NewIngestionService(
		&fakeUowFactory{uow: uow},
		embedding.NewBatchEmbedder(provider, 1000),
		pub,
		1000,
		200,
		nil,
		noopLogger{},
	)
	return svc, uow
}

func TestProcessDocumentHappyPath(t *testing.T) {
	doc := &entity.Document{
		Id:        uuid.New(),
		ProjectId: uuid.New(),
		Title:     "Quarterly report",
		Content:   strings.Repeat("The project is on track. ", 120),
		Status:    entity.DocumentStatusPending,
	}
	pub := &recordingPublisher{}
	svc, uow := newTestIngestion(doc, &stubEmbedProvider{}, pub)

	err := svc.ProcessDocument(context.Background(), doc.Id)
	require.NoError(t, err)

	assert.Equal(t, []string{entity.DocumentStatusProcessing, entity.DocumentStatusCompleted}, uow.docs.statuses)
	assert.NotEmpty(t, uow.chunks.created)
	assert.Equal(t, len(uow.chunks.created), uow.docs.chunkCount)

	// Old chunks are cleared before the new set lands
	require.Len(t, uow.chunks.deleted, 1)
	assert.Equal(t, doc.Id, uow.chunks.deleted[0])

	// Chunk indexes are sequential from zero and metadata denormalizes the
	// parent document
	for i, c := range uow.chunks.created {
		assert.Equal(t, i, c.ChunkIndex)
		assert.NotEmpty(t, c.Embedding)
		assert.Equal(t, i, c.Metadata["position"])
		assert.Equal(t, len(uow.chunks.created), c.Metadata["total"])
		assert.Equal(t, "Quarterly report", c.Metadata["title"])
		assert.Equal(t, doc.ProjectId.String(), c.Metadata["project_id"])
	}

	require.Len(t, pub.published, 1)
	assert.Equal(t, events.TypeDocumentIngested, pub.published[0].EventType())
}

func TestProcessDocumentEmbeddingFailureMarksFailed(t *testing.T) {
	doc := &entity.Document{
		Id:      uuid.New(),
		Title:   "Bad doc",
		Content: "This sentence embeds fine. POISON makes the provider fail. Another fine sentence here.",
		Status:  entity.DocumentStatusPending,
	}
	svc, uow := newTestIngestion(doc, &stubEmbedProvider{failContaining: "POISON"}, nil)

	err := svc.ProcessDocument(context.Background(), doc.Id)
	require.Error(t, err)

	assert.Equal(t, entity.DocumentStatusFailed, uow.docs.statuses[len(uow.docs.statuses)-1])
	assert.Contains(t, uow.docs.lastError, "failed embedding")
	// Nothing persisted on failure
	assert.Empty(t, uow.chunks.created)
}

func TestProcessDocumentMissingIsNoop(t *testing.T) {
	svc, uow := newTestIngestion(nil, &stubEmbedProvider{}, nil)

	err := svc.ProcessDocument(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Empty(t, uow.docs.statuses)
}

func TestProcessDocumentEmptyContentFails(t *testing.T) {
	doc := &entity.Document{
		Id:      uuid.New(),
		Title:   "Empty",
		Content: "   ",
		Status:  entity.DocumentStatusPending,
	}
	svc, uow := newTestIngestion(doc, &stubEmbedProvider{}, nil)

	err := svc.ProcessDocument(context.Background(), doc.Id)
	require.Error(t, err)
	assert.Equal(t, entity.DocumentStatusFailed, uow.docs.statuses[len(uow.docs.statuses)-1])
}

func TestParseTranscriptSpeakers(t *testing.T) {
	transcript := "Alice: We need to ship by Friday.\nBob: The database migration is risky.\nIt touches every table.\nAlice: Let's schedule it for the weekend."

	segments := parseTranscript(transcript)
	require.Len(t, segments, 3)

	assert.Equal(t, "Alice", segments[0].Speaker)
	assert.Equal(t, "Bob", segments[1].Speaker)
	// Continuation line without a speaker prefix extends Bob's segment
	assert.Contains(t, segments[1].Text, "every table")
	assert.Equal(t, "Alice", segments[2].Speaker)

	// Offsets advance monotonically
	assert.Less(t, segments[0].StartOffset, segments[1].StartOffset)
	assert.Less(t, segments[1].StartOffset, segments[2].StartOffset)
}

func TestParseTranscriptNoSpeakers(t *testing.T) {
	segments := parseTranscript("Just raw notes.\nNo speakers at all.")
	require.Len(t, segments, 1)
	assert.Empty(t, segments[0].Speaker)
	assert.Contains(t, segments[0].Text, "raw notes")
}

func TestProcessDocumentReportsEmbeddingProgress(t *testing.T) {
	doc := &entity.Document{
		Id:        uuid.New(),
		ProjectId: uuid.New(),
		Title:     "Long doc",
		Content:   strings.Repeat("Progress is reported per chunk. ", 200),
		Status:    entity.DocumentStatusPending,
	}
	uow := &fakeUow{
		docs:   &fakeDocumentRepo{document: doc},
		chunks: &fakeChunkRepo{},
	}

	var mu sync.Mutex
	var steps []int
	total := 0
	svc := NewIngestionService(
		&fakeUowFactory{uow: uow},
		embedding.NewBatchEmbedder(&stubEmbedProvider{}, 1000),
		nil,
		1000,
		200,
		func(id uuid.UUID, done, n int) {
			mu.Lock()
			defer mu.Unlock()
			assert.Equal(t, doc.Id, id)
			steps = append(steps, done)
			total = n
		},
		noopLogger{},
	)

	err := svc.ProcessDocument(context.Background(), doc.Id)
	require.NoError(t, err)

	require.NotEmpty(t, steps)
	assert.Equal(t, len(uow.chunks.created), total)
	// Every chunk reports exactly once, in order
	for i, done := range steps {
		assert.Equal(t, i+1, done)
	}
	assert.Equal(t, total, steps[len(steps)-1])
}

// Concurrency-safe fakes for batch ingestion, keyed by document id.
type fakeBatchDocRepo struct {
	contract.DocumentRepository
	mu       sync.Mutex
	docs     map[uuid.UUID]*entity.Document
	statuses map[uuid.UUID][]string
}

func (f *fakeBatchDocRepo) FindOne(_ context.Context, specs ...specification.Specification) (*entity.Document, error) {
	var id uuid.UUID
	for _, s := range specs {
		if byId, ok := s.(specification.ByID); ok {
			id = byId.ID
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.docs[id], nil
}

func (f *fakeBatchDocRepo) UpdateStatus(_ context.Context, id uuid.UUID, status string, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statuses[id] = append(f.statuses[id], status)
	return nil
}

func (f *fakeBatchDocRepo) UpdateChunkCount(_ context.Context, _ uuid.UUID, _ int) error {
	return nil
}

func (f *fakeBatchDocRepo) lastStatus(id uuid.UUID) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	statuses := f.statuses[id]
	if len(statuses) == 0 {
		return ""
	}
	return statuses[len(statuses)-1]
}

type fakeBatchChunkRepo struct {
	contract.DocumentChunkRepository
	mu      sync.Mutex
	created map[uuid.UUID]int
}

func (f *fakeBatchChunkRepo) DeleteByDocumentId(_ context.Context, _ uuid.UUID) error {
	return nil
}

func (f *fakeBatchChunkRepo) CreateBulk(_ context.Context, chunks []*entity.DocumentChunk) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range chunks {
		f.created[c.DocumentId]++
	}
	return nil
}

func (f *fakeBatchChunkRepo) countFor(id uuid.UUID) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.created[id]
}

type fakeBatchUow struct {
	unitofwork.UnitOfWork
	docs   *fakeBatchDocRepo
	chunks *fakeBatchChunkRepo
}

func (f *fakeBatchUow) Begin(_ context.Context) error { return nil }
func (f *fakeBatchUow) Commit() error                 { return nil }
func (f *fakeBatchUow) Rollback() error               { return nil }

func (f *fakeBatchUow) DocumentRepository() contract.DocumentRepository {
	return f.docs
}

func (f *fakeBatchUow) DocumentChunkRepository() contract.DocumentChunkRepository {
	return f.chunks
}

func TestIngestBatchIsolatesFailures(t *testing.T) {
	first := &entity.Document{Id: uuid.New(), ProjectId: uuid.New(), Title: "First", Content: "Plenty of healthy content in the first document.", Status: entity.DocumentStatusPending}
	second := &entity.Document{Id: uuid.New(), ProjectId: uuid.New(), Title: "Second", Content: "POISON sits in the middle of this one.", Status: entity.DocumentStatusPending}
	third := &entity.Document{Id: uuid.New(), ProjectId: uuid.New(), Title: "Third", Content: "And the third document is healthy again.", Status: entity.DocumentStatusPending}

	uow := &fakeBatchUow{
		docs: &fakeBatchDocRepo{
			docs: map[uuid.UUID]*entity.Document{
				first.Id:  first,
				second.Id: second,
				third.Id:  third,
			},
			statuses: make(map[uuid.UUID][]string),
		},
		chunks: &fakeBatchChunkRepo{created: make(map[uuid.UUID]int)},
	}
	svc := NewIngestionService(
		&fakeUowFactory{uow: uow},
		embedding.NewBatchEmbedder(&stubEmbedProvider{failContaining: "POISON"}, 1000),
		nil,
		1000,
		200,
		nil,
		noopLogger{},
	)

	errs := svc.IngestBatch(context.Background(), []uuid.UUID{first.Id, second.Id, third.Id})
	require.Len(t, errs, 3)

	// The failing document reports at its own index and does not stop the rest
	assert.NoError(t, errs[0])
	assert.Error(t, errs[1])
	assert.NoError(t, errs[2])

	assert.Equal(t, entity.DocumentStatusCompleted, uow.docs.lastStatus(first.Id))
	assert.Equal(t, entity.DocumentStatusFailed, uow.docs.lastStatus(second.Id))
	assert.Equal(t, entity.DocumentStatusCompleted, uow.docs.lastStatus(third.Id))

	assert.NotZero(t, uow.chunks.countFor(first.Id))
	assert.Zero(t, uow.chunks.countFor(second.Id))
	assert.NotZero(t, uow.chunks.countFor(third.Id))
}
