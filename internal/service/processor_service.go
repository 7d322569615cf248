package service

import (
	"context"
	"sync"
	"time"

	"docinsight-be/internal/dto"
	"docinsight-be/internal/pkg/logger"

	"golang.org/x/sync/errgroup"
)

type taskKey struct {
	id     string
	kind   string
	action string
}

// ProcessorService drains the ingestion queue on a fixed tick. Tasks are
// deduplicated while queued, so creating and immediately updating a document
// processes it once. A drain in progress is never overlapped by the next
// tick.
type ProcessorService struct {
	ingestion IIngestionService
	log       logger.ILogger
	interval  time.Duration
	batchSize int

	mu       sync.Mutex
	queue    []dto.IngestTaskMessage
	queued   map[taskKey]struct{}
	draining bool

	stopOnce sync.Once
	stopCh   chan struct{}
	doneCh   chan struct{}
}

func NewProcessorService(
	ingestion IIngestionService,
	log logger.ILogger,
	interval time.Duration,
	batchSize int,
) *ProcessorService {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	if batchSize <= 0 {
		batchSize = 5
	}
	return &ProcessorService{
		ingestion: ingestion,
		log:       log,
		interval:  interval,
		batchSize: batchSize,
		queued:    make(map[taskKey]struct{}),
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
	}
}

// Enqueue adds a task unless an identical one is already waiting.
func (p *ProcessorService) Enqueue(task dto.IngestTaskMessage) {
	key := taskKey{id: task.Id.String(), kind: task.Kind, action: task.Action}

	p.mu.Lock()
	defer p.mu.Unlock()
	if _, exists := p.queued[key]; exists {
		return
	}
	p.queued[key] = struct{}{}
	p.queue = append(p.queue, task)
}

// Start runs the drain loop until Stop is called.
func (p *ProcessorService) Start(ctx context.Context) {
	go func() {
		defer close(p.doneCh)
		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				p.drainOnce(ctx)
			case <-p.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop is idempotent and waits for the loop to exit. A drain already running
// finishes its current batch; whatever is still waiting is discarded.
func (p *ProcessorService) Stop() {
	p.stopOnce.Do(func() {
		close(p.stopCh)
	})
	<-p.doneCh

	p.mu.Lock()
	p.queue = nil
	p.queued = make(map[taskKey]struct{})
	p.mu.Unlock()
}

// drainOnce takes up to batchSize tasks and runs them concurrently. Only one
// drain runs at a time; a tick firing mid-drain is skipped. Dedup keys are
// released the moment a task is dequeued, so a document updated while its
// previous version is still being ingested queues a fresh run instead of
// being swallowed.
func (p *ProcessorService) drainOnce(ctx context.Context) {
	p.mu.Lock()
	if p.draining || len(p.queue) == 0 {
		p.mu.Unlock()
		return
	}
	p.draining = true

	n := p.batchSize
	if n > len(p.queue) {
		n = len(p.queue)
	}
	batch := make([]dto.IngestTaskMessage, n)
	copy(batch, p.queue[:n])
	p.queue = p.queue[n:]
	for _, task := range batch {
		delete(p.queued, taskKey{id: task.Id.String(), kind: task.Kind, action: task.Action})
	}
	p.mu.Unlock()

	// Released in a defer so a panicking task cannot wedge the flag.
	defer func() {
		p.mu.Lock()
		p.draining = false
		p.mu.Unlock()
	}()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.batchSize)
	for _, task := range batch {
		task := task
		g.Go(func() error {
			p.runTask(gctx, task)
			return nil
		})
	}
	g.Wait()
}

func (p *ProcessorService) runTask(ctx context.Context, task dto.IngestTaskMessage) {
	var err error
	switch {
	case task.Kind == dto.IngestKindDocument && task.Action == dto.IngestActionProcess:
		err = p.ingestion.ProcessDocument(ctx, task.Id)
	case task.Kind == dto.IngestKindDocument && task.Action == dto.IngestActionDelete:
		err = p.ingestion.DeleteDocumentChunks(ctx, task.Id)
	case task.Kind == dto.IngestKindMeeting && task.Action == dto.IngestActionProcess:
		err = p.ingestion.ProcessMeeting(ctx, task.Id)
	case task.Kind == dto.IngestKindMeeting && task.Action == dto.IngestActionDelete:
		err = p.ingestion.DeleteMeetingChunks(ctx, task.Id)
	default:
		p.log.Warn("processor", "unknown task", map[string]interface{}{
			"kind":   task.Kind,
			"action": task.Action,
		})
		return
	}

	if err != nil {
		// The ingestion service already stamped the failed status; the task
		// is not requeued, a reprocess request starts it over.
		p.log.Error("processor", "task failed", map[string]interface{}{
			"id":     task.Id,
			"kind":   task.Kind,
			"action": task.Action,
			"error":  err.Error(),
		})
	}
}

// QueueDepth reports how many tasks are waiting. Used by health endpoints.
func (p *ProcessorService) QueueDepth() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.queue)
}
