package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"docinsight-be/internal/dto"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingIngestion struct {
	mu        sync.Mutex
	documents []uuid.UUID
	meetings  []uuid.UUID
	deletes   []uuid.UUID
	block     chan struct{} // when set, ProcessDocument waits on it
}

func (r *recordingIngestion) ProcessDocument(_ context.Context, id uuid.UUID) error {
	if r.block != nil {
		<-r.block
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.documents = append(r.documents, id)
	return nil
}

func (r *recordingIngestion) ProcessMeeting(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.meetings = append(r.meetings, id)
	return nil
}

func (r *recordingIngestion) IngestBatch(ctx context.Context, ids []uuid.UUID) []error {
	errs := make([]error, len(ids))
	for i, id := range ids {
		errs[i] = r.ProcessDocument(ctx, id)
	}
	return errs
}

func (r *recordingIngestion) DeleteDocumentChunks(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deletes = append(r.deletes, id)
	return nil
}

func (r *recordingIngestion) DeleteMeetingChunks(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deletes = append(r.deletes, id)
	return nil
}

func (r *recordingIngestion) documentCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.documents)
}

func TestProcessorDedupesQueuedTasks(t *testing.T) {
	ingestion := &recordingIngestion{}
	p := NewProcessorService(ingestion, noopLogger{}, time.Hour, 5)

	id := uuid.New()
	task := dto.IngestTaskMessage{Id: id, Kind: dto.IngestKindDocument, Action: dto.IngestActionProcess}
	p.Enqueue(task)
	p.Enqueue(task)
	p.Enqueue(task)

	assert.Equal(t, 1, p.QueueDepth())

	p.drainOnce(context.Background())
	assert.Equal(t, 1, ingestion.documentCount())
	assert.Equal(t, 0, p.QueueDepth())
}

func TestProcessorDistinctActionsAreNotDeduped(t *testing.T) {
	ingestion := &recordingIngestion{}
	p := NewProcessorService(ingestion, noopLogger{}, time.Hour, 5)

	id := uuid.New()
	p.Enqueue(dto.IngestTaskMessage{Id: id, Kind: dto.IngestKindDocument, Action: dto.IngestActionProcess})
	p.Enqueue(dto.IngestTaskMessage{Id: id, Kind: dto.IngestKindDocument, Action: dto.IngestActionDelete})

	assert.Equal(t, 2, p.QueueDepth())

	p.drainOnce(context.Background())
	assert.Equal(t, 1, ingestion.documentCount())
	assert.Len(t, ingestion.deletes, 1)
}

func TestProcessorRespectsBatchSize(t *testing.T) {
	ingestion := &recordingIngestion{}
	p := NewProcessorService(ingestion, noopLogger{}, time.Hour, 2)

	for i := 0; i < 5; i++ {
		p.Enqueue(dto.IngestTaskMessage{Id: uuid.New(), Kind: dto.IngestKindDocument, Action: dto.IngestActionProcess})
	}

	p.drainOnce(context.Background())
	assert.Equal(t, 2, ingestion.documentCount())
	assert.Equal(t, 3, p.QueueDepth())

	p.drainOnce(context.Background())
	p.drainOnce(context.Background())
	assert.Equal(t, 5, ingestion.documentCount())
	assert.Equal(t, 0, p.QueueDepth())
}

func TestProcessorRequeueAfterDrainAllowed(t *testing.T) {
	ingestion := &recordingIngestion{}
	p := NewProcessorService(ingestion, noopLogger{}, time.Hour, 5)

	id := uuid.New()
	task := dto.IngestTaskMessage{Id: id, Kind: dto.IngestKindDocument, Action: dto.IngestActionProcess}

	p.Enqueue(task)
	p.drainOnce(context.Background())

	// After the first run completes, the same task may be queued again
	p.Enqueue(task)
	assert.Equal(t, 1, p.QueueDepth())

	p.drainOnce(context.Background())
	assert.Equal(t, 2, ingestion.documentCount())
}

func TestProcessorRequeueMidDrainIsKept(t *testing.T) {
	gate := make(chan struct{})
	ingestion := &recordingIngestion{block: gate}
	p := NewProcessorService(ingestion, noopLogger{}, time.Hour, 5)

	id := uuid.New()
	task := dto.IngestTaskMessage{Id: id, Kind: dto.IngestKindDocument, Action: dto.IngestActionProcess}
	p.Enqueue(task)

	done := make(chan struct{})
	go func() {
		p.drainOnce(context.Background())
		close(done)
	}()

	// Wait until the task has been dequeued and is blocked inside the drain
	require.Eventually(t, func() bool {
		return p.QueueDepth() == 0
	}, time.Second, time.Millisecond)

	// The document changed again while its previous version is mid-ingestion;
	// the new request must survive the drain in progress
	p.Enqueue(task)
	assert.Equal(t, 1, p.QueueDepth())

	close(gate)
	<-done

	require.Equal(t, 1, p.QueueDepth())
	p.drainOnce(context.Background())
	assert.Equal(t, 2, ingestion.documentCount())
	assert.Equal(t, 0, p.QueueDepth())
}

func TestProcessorStopDiscardsQueue(t *testing.T) {
	ingestion := &recordingIngestion{}
	p := NewProcessorService(ingestion, noopLogger{}, time.Hour, 5)

	p.Enqueue(dto.IngestTaskMessage{Id: uuid.New(), Kind: dto.IngestKindDocument, Action: dto.IngestActionProcess})
	p.Start(context.Background())
	p.Stop()

	assert.Equal(t, 0, p.QueueDepth())
	assert.Equal(t, 0, ingestion.documentCount())
}

func TestProcessorStartAndStop(t *testing.T) {
	ingestion := &recordingIngestion{}
	p := NewProcessorService(ingestion, noopLogger{}, 10*time.Millisecond, 5)

	p.Enqueue(dto.IngestTaskMessage{Id: uuid.New(), Kind: dto.IngestKindMeeting, Action: dto.IngestActionProcess})

	p.Start(context.Background())

	require.Eventually(t, func() bool {
		ingestion.mu.Lock()
		defer ingestion.mu.Unlock()
		return len(ingestion.meetings) == 1
	}, time.Second, 5*time.Millisecond)

	p.Stop()
	p.Stop() // Stop is idempotent
}
