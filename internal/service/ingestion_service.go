package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"docinsight-be/internal/entity"
	"docinsight-be/internal/pkg/logger"
	"docinsight-be/internal/repository/specification"
	"docinsight-be/internal/repository/unitofwork"
	"docinsight-be/pkg/chunker"
	"docinsight-be/pkg/embedding"
	"docinsight-be/pkg/events"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

type IIngestionService interface {
	ProcessDocument(ctx context.Context, id uuid.UUID) error
	ProcessMeeting(ctx context.Context, id uuid.UUID) error
	IngestBatch(ctx context.Context, ids []uuid.UUID) []error
	DeleteDocumentChunks(ctx context.Context, id uuid.UUID) error
	DeleteMeetingChunks(ctx context.Context, id uuid.UUID) error
}

// EmbedProgressFunc observes per-chunk embedding progress for one parent id.
type EmbedProgressFunc func(id uuid.UUID, done, total int)

// EventPublisher decouples the ingestion pipeline from the concrete NATS
// client so ingestion keeps working when the bus is absent.
type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

type ingestionService struct {
	uowFactory     unitofwork.RepositoryFactory
	embedder       *embedding.BatchEmbedder
	eventPublisher EventPublisher
	chunkSize      int
	chunkOverlap   int
	embedProgress  EmbedProgressFunc
	log            logger.ILogger
}

func NewIngestionService(
	uowFactory unitofwork.RepositoryFactory,
	embedder *embedding.BatchEmbedder,
	eventPublisher EventPublisher,
	chunkSize int,
	chunkOverlap int,
	embedProgress EmbedProgressFunc,
	log logger.ILogger,
) IIngestionService {
	return &ingestionService{
		uowFactory:     uowFactory,
		embedder:       embedder,
		eventPublisher: eventPublisher,
		chunkSize:      chunkSize,
		chunkOverlap:   chunkOverlap,
		embedProgress:  embedProgress,
		log:            log,
	}
}

func (s *ingestionService) progressFor(id uuid.UUID) embedding.ProgressFunc {
	if s.embedProgress == nil {
		return nil
	}
	return func(done, total int) {
		s.embedProgress(id, done, total)
	}
}

func (s *ingestionService) splitOptions() []chunker.Option {
	var opts []chunker.Option
	if s.chunkSize > 0 {
		opts = append(opts, chunker.WithMaxChunkSize(s.chunkSize))
	}
	if s.chunkOverlap > 0 {
		opts = append(opts, chunker.WithOverlap(s.chunkOverlap))
	}
	return opts
}

// ProcessDocument runs the full pipeline for one document: chunk, embed,
// replace stored chunks, publish the ingested event. Chunks are replaced
// wholesale inside one transaction so a re-ingestion never leaves a mix of
// old and new rows.
func (s *ingestionService) ProcessDocument(ctx context.Context, id uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	document, err := uow.DocumentRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return err
	}
	if document == nil {
		// Deleted while queued, nothing to do
		return nil
	}

	if err := uow.DocumentRepository().UpdateStatus(ctx, id, entity.DocumentStatusProcessing, ""); err != nil {
		return err
	}

	pieces := chunker.Split(document.Content, s.splitOptions()...)
	if len(pieces) == 0 {
		return s.failDocument(ctx, uow, id, "document has no content to index")
	}

	started := time.Now()
	vectors, errs := s.embedder.EmbedBatch(ctx, pieces, s.progressFor(id))
	if failed := countErrs(errs); failed > 0 {
		msg := fmt.Sprintf("%d of %d chunks failed embedding", failed, len(pieces))
		s.log.Error("ingestion", "document embedding failed", map[string]interface{}{
			"document_id": id,
			"error":       firstErr(errs).Error(),
			"failed":      failed,
		})
		return s.failDocument(ctx, uow, id, msg)
	}

	chunks := make([]*entity.DocumentChunk, len(pieces))
	for i, piece := range pieces {
		chunks[i] = &entity.DocumentChunk{
			Id:         uuid.New(),
			DocumentId: id,
			Content:    piece,
			Embedding:  vectors[i],
			ChunkIndex: i,
			TokenCount: chunker.EstimateTokens(piece),
			Metadata: map[string]interface{}{
				"position":   i,
				"total":      len(pieces),
				"title":      document.Title,
				"source":     document.Source,
				"file_type":  document.FileType,
				"project_id": document.ProjectId.String(),
			},
			CreatedAt: time.Now(),
		}
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	if err := uow.DocumentChunkRepository().DeleteByDocumentId(ctx, id); err != nil {
		uow.Rollback()
		return s.failDocument(ctx, uow, id, err.Error())
	}
	if err := uow.DocumentChunkRepository().CreateBulk(ctx, chunks); err != nil {
		uow.Rollback()
		return s.failDocument(ctx, uow, id, err.Error())
	}
	if err := uow.DocumentRepository().UpdateChunkCount(ctx, id, len(chunks)); err != nil {
		uow.Rollback()
		return s.failDocument(ctx, uow, id, err.Error())
	}
	if err := uow.DocumentRepository().UpdateStatus(ctx, id, entity.DocumentStatusCompleted, ""); err != nil {
		uow.Rollback()
		return s.failDocument(ctx, uow, id, err.Error())
	}
	if err := uow.Commit(); err != nil {
		return s.failDocument(ctx, uow, id, err.Error())
	}

	s.log.Info("ingestion", "document ingested", map[string]interface{}{
		"document_id": id,
		"chunks":      len(chunks),
		"elapsed_ms":  time.Since(started).Milliseconds(),
	})

	// Insight extraction is auxiliary, a publish failure must not fail the
	// ingestion itself.
	if s.eventPublisher != nil {
		evt := events.NewDocumentIngestedEvent(id.String(), document.ProjectId.String(), len(chunks))
		if err := s.eventPublisher.Publish(ctx, evt); err != nil {
			s.log.Warn("ingestion", "failed to publish document.ingested event", map[string]interface{}{
				"document_id": id,
				"error":       err.Error(),
			})
		}
	}

	return nil
}

func (s *ingestionService) failDocument(ctx context.Context, uow unitofwork.UnitOfWork, id uuid.UUID, msg string) error {
	if err := uow.DocumentRepository().UpdateStatus(ctx, id, entity.DocumentStatusFailed, msg); err != nil {
		return err
	}
	return fmt.Errorf("document %s ingestion failed: %s", id, msg)
}

// transcriptLine matches "Speaker Name: said something" at the start of a line.
var transcriptLine = regexp.MustCompile(`^([A-Za-z][\w .'-]{0,80}):\s+(.*)$`)

type transcriptSegment struct {
	Speaker     string
	Text        string
	StartOffset int
	EndOffset   int
}

// parseTranscript groups consecutive lines by speaker. Lines without a
// speaker prefix extend the current segment; leading unattributed text forms
// a segment with an empty speaker.
func parseTranscript(transcript string) []transcriptSegment {
	var segments []transcriptSegment
	var current *transcriptSegment

	offset := 0
	for _, line := range strings.Split(transcript, "\n") {
		lineLen := len(line) + 1 // account for the stripped newline
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			offset += lineLen
			continue
		}

		if m := transcriptLine.FindStringSubmatch(trimmed); m != nil {
			if current != nil {
				segments = append(segments, *current)
			}
			current = &transcriptSegment{
				Speaker:     strings.TrimSpace(m[1]),
				Text:        m[2],
				StartOffset: offset,
				EndOffset:   offset + len(line),
			}
		} else if current != nil {
			current.Text += " " + trimmed
			current.EndOffset = offset + len(line)
		} else {
			current = &transcriptSegment{
				Text:        trimmed,
				StartOffset: offset,
				EndOffset:   offset + len(line),
			}
		}
		offset += lineLen
	}
	if current != nil {
		segments = append(segments, *current)
	}
	return segments
}

// ProcessMeeting mirrors ProcessDocument for transcripts, preserving speaker
// attribution and character offsets on every chunk.
func (s *ingestionService) ProcessMeeting(ctx context.Context, id uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	meeting, err := uow.MeetingRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return err
	}
	if meeting == nil {
		return nil
	}

	if err := uow.MeetingRepository().UpdateStatus(ctx, id, entity.DocumentStatusProcessing, ""); err != nil {
		return err
	}

	segments := parseTranscript(meeting.Transcript)
	if len(segments) == 0 {
		return s.failMeeting(ctx, uow, id, "transcript has no content to index")
	}

	// A long segment is split further; each piece keeps its speaker and the
	// segment's offsets.
	var chunks []*entity.MeetingChunk
	var texts []string
	for _, seg := range segments {
		for _, piece := range chunker.Split(seg.Text, s.splitOptions()...) {
			chunks = append(chunks, &entity.MeetingChunk{
				Id:          uuid.New(),
				MeetingId:   id,
				Content:     piece,
				Speaker:     seg.Speaker,
				StartOffset: seg.StartOffset,
				EndOffset:   seg.EndOffset,
				ChunkIndex:  len(chunks),
				CreatedAt:   time.Now(),
			})
			texts = append(texts, piece)
		}
	}

	vectors, errs := s.embedder.EmbedBatch(ctx, texts, s.progressFor(id))
	if failed := countErrs(errs); failed > 0 {
		msg := fmt.Sprintf("%d of %d chunks failed embedding", failed, len(texts))
		s.log.Error("ingestion", "meeting embedding failed", map[string]interface{}{
			"meeting_id": id,
			"error":      firstErr(errs).Error(),
			"failed":     failed,
		})
		return s.failMeeting(ctx, uow, id, msg)
	}
	for i := range chunks {
		chunks[i].Embedding = vectors[i]
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	if err := uow.MeetingChunkRepository().DeleteByMeetingId(ctx, id); err != nil {
		uow.Rollback()
		return s.failMeeting(ctx, uow, id, err.Error())
	}
	if err := uow.MeetingChunkRepository().CreateBulk(ctx, chunks); err != nil {
		uow.Rollback()
		return s.failMeeting(ctx, uow, id, err.Error())
	}
	if err := uow.MeetingRepository().UpdateChunkCount(ctx, id, len(chunks)); err != nil {
		uow.Rollback()
		return s.failMeeting(ctx, uow, id, err.Error())
	}
	if err := uow.MeetingRepository().UpdateStatus(ctx, id, entity.DocumentStatusCompleted, ""); err != nil {
		uow.Rollback()
		return s.failMeeting(ctx, uow, id, err.Error())
	}
	if err := uow.Commit(); err != nil {
		return s.failMeeting(ctx, uow, id, err.Error())
	}

	s.log.Info("ingestion", "meeting ingested", map[string]interface{}{
		"meeting_id": id,
		"chunks":     len(chunks),
	})

	if s.eventPublisher != nil {
		evt := events.NewMeetingIngestedEvent(id.String(), meeting.ProjectId.String(), len(chunks))
		if err := s.eventPublisher.Publish(ctx, evt); err != nil {
			s.log.Warn("ingestion", "failed to publish meeting.ingested event", map[string]interface{}{
				"meeting_id": id,
				"error":      err.Error(),
			})
		}
	}

	return nil
}

func (s *ingestionService) failMeeting(ctx context.Context, uow unitofwork.UnitOfWork, id uuid.UUID, msg string) error {
	if err := uow.MeetingRepository().UpdateStatus(ctx, id, entity.DocumentStatusFailed, msg); err != nil {
		return err
	}
	return fmt.Errorf("meeting %s ingestion failed: %s", id, msg)
}

// bulkIngestConcurrency caps how many documents a batch ingests at once.
const bulkIngestConcurrency = 5

// IngestBatch runs the document pipeline for every id with bounded
// concurrency. Failures are isolated per document: errs[i] reports ids[i] and
// a failing document never stops its siblings.
func (s *ingestionService) IngestBatch(ctx context.Context, ids []uuid.UUID) []error {
	errs := make([]error, len(ids))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(bulkIngestConcurrency)
	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			// The error lands at its own index, not in the group, so the rest
			// of the batch keeps running.
			errs[i] = s.ProcessDocument(gctx, id)
			return nil
		})
	}
	g.Wait()

	return errs
}

func (s *ingestionService) DeleteDocumentChunks(ctx context.Context, id uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	return uow.DocumentChunkRepository().DeleteByDocumentId(ctx, id)
}

func (s *ingestionService) DeleteMeetingChunks(ctx context.Context, id uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	return uow.MeetingChunkRepository().DeleteByMeetingId(ctx, id)
}

func countErrs(errs []error) int {
	n := 0
	for _, err := range errs {
		if err != nil {
			n++
		}
	}
	return n
}

func firstErr(errs []error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
