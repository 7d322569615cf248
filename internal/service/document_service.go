package service

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"docinsight-be/internal/dto"
	"docinsight-be/internal/entity"
	"docinsight-be/internal/pkg/logger"
	"docinsight-be/internal/repository/specification"
	"docinsight-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

type IDocumentService interface {
	Create(ctx context.Context, req *dto.CreateDocumentRequest) (*dto.CreateDocumentResponse, error)
	// Update edits document fields. Only a change to the content triggers a
	// re-ingestion, title or metadata edits are saved in place.
	Update(ctx context.Context, id uuid.UUID, req *dto.UpdateDocumentRequest) (*dto.UpdateDocumentResponse, error)
	Show(ctx context.Context, id uuid.UUID) (*dto.ShowDocumentResponse, error)
	List(ctx context.Context, projectId uuid.UUID) (*dto.ListDocumentsResponse, error)
	Status(ctx context.Context, id uuid.UUID) (*dto.DocumentStatusResponse, error)
	Reprocess(ctx context.Context, id uuid.UUID) (*dto.ReprocessDocumentResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type documentService struct {
	uowFactory       unitofwork.RepositoryFactory
	publisherService IPublisherService
	log              logger.ILogger
}

func NewDocumentService(
	uowFactory unitofwork.RepositoryFactory,
	publisherService IPublisherService,
	log logger.ILogger,
) IDocumentService {
	return &documentService{
		uowFactory:       uowFactory,
		publisherService: publisherService,
		log:              log,
	}
}

// sniffFileType falls back to the file extension when the request omits an
// explicit type.
func sniffFileType(fileName, declared string) string {
	if declared != "" {
		return declared
	}
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(fileName)), ".")
	switch ext {
	case "md", "markdown":
		return "markdown"
	case "txt", "":
		return "text"
	default:
		return ext
	}
}

func (s *documentService) Create(ctx context.Context, req *dto.CreateDocumentRequest) (*dto.CreateDocumentResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	document := entity.Document{
		Id:        uuid.New(),
		ProjectId: req.ProjectId,
		Title:     req.Title,
		FileName:  req.FileName,
		FileType:  sniffFileType(req.FileName, req.FileType),
		Source:    req.Source,
		Content:   req.Content,
		Status:    entity.DocumentStatusPending,
		Metadata:  req.Metadata,
		CreatedAt: time.Now(),
	}

	err := uow.DocumentRepository().Create(ctx, &document)
	if err != nil {
		return nil, err
	}

	if err := s.enqueue(ctx, document.Id, dto.IngestActionProcess); err != nil {
		return nil, err
	}

	s.log.Info("document", "document queued for ingestion", map[string]interface{}{
		"document_id": document.Id,
		"project_id":  document.ProjectId,
	})

	return &dto.CreateDocumentResponse{
		Id:     document.Id,
		Status: document.Status,
	}, nil
}

func (s *documentService) enqueue(ctx context.Context, id uuid.UUID, action string) error {
	msgPayload := dto.IngestTaskMessage{
		Id:     id,
		Kind:   dto.IngestKindDocument,
		Action: action,
	}
	msgJson, err := json.Marshal(msgPayload)
	if err != nil {
		return err
	}
	return s.publisherService.Publish(ctx, msgJson)
}

func (s *documentService) Update(ctx context.Context, id uuid.UUID, req *dto.UpdateDocumentRequest) (*dto.UpdateDocumentResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	document, err := uow.DocumentRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if document == nil {
		return nil, nil
	}

	if req.Title != nil {
		document.Title = *req.Title
	}
	if req.Source != nil {
		document.Source = *req.Source
	}
	if req.Metadata != nil {
		document.Metadata = req.Metadata
	}

	// Re-embedding is expensive, so an update that sends the same content
	// back does not requeue the document.
	contentChanged := req.Content != nil && *req.Content != document.Content
	if contentChanged {
		document.Content = *req.Content
		document.Status = entity.DocumentStatusPending
		document.ErrorMessage = ""
	}

	if err := uow.DocumentRepository().Update(ctx, document); err != nil {
		return nil, err
	}

	if contentChanged {
		if err := s.enqueue(ctx, id, dto.IngestActionProcess); err != nil {
			return nil, err
		}
		s.log.Info("document", "document content changed, requeued", map[string]interface{}{
			"document_id": id,
		})
	}

	return &dto.UpdateDocumentResponse{
		Id:         id,
		Status:     document.Status,
		Reingested: contentChanged,
	}, nil
}

func (s *documentService) Show(ctx context.Context, id uuid.UUID) (*dto.ShowDocumentResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	document, err := uow.DocumentRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if document == nil {
		return nil, nil // Not found
	}

	res := toShowDocumentResponse(document)
	return &res, nil
}

func toShowDocumentResponse(d *entity.Document) dto.ShowDocumentResponse {
	return dto.ShowDocumentResponse{
		Id:           d.Id,
		ProjectId:    d.ProjectId,
		Title:        d.Title,
		FileName:     d.FileName,
		FileType:     d.FileType,
		Source:       d.Source,
		Status:       d.Status,
		ErrorMessage: d.ErrorMessage,
		ChunkCount:   d.ChunkCount,
		Metadata:     d.Metadata,
		ProcessedAt:  d.ProcessedAt,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

func (s *documentService) List(ctx context.Context, projectId uuid.UUID) (*dto.ListDocumentsResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	documents, err := uow.DocumentRepository().FindAll(ctx,
		specification.ByProjectID{ProjectID: projectId},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	res := dto.ListDocumentsResponse{
		Documents: make([]dto.ShowDocumentResponse, len(documents)),
		Total:     int64(len(documents)),
	}
	for i, d := range documents {
		res.Documents[i] = toShowDocumentResponse(d)
	}
	return &res, nil
}

func (s *documentService) Status(ctx context.Context, id uuid.UUID) (*dto.DocumentStatusResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	document, err := uow.DocumentRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if document == nil {
		return nil, nil
	}

	return &dto.DocumentStatusResponse{
		Id:           document.Id,
		Status:       document.Status,
		ErrorMessage: document.ErrorMessage,
		ChunkCount:   document.ChunkCount,
	}, nil
}

// Reprocess requeues a document. Only completed or failed documents are
// eligible, a document already in flight keeps its position.
func (s *documentService) Reprocess(ctx context.Context, id uuid.UUID) (*dto.ReprocessDocumentResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	document, err := uow.DocumentRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if document == nil {
		return nil, nil
	}
	if document.Status == entity.DocumentStatusProcessing {
		return nil, fmt.Errorf("document %s is already processing", id)
	}

	if err := uow.DocumentRepository().UpdateStatus(ctx, id, entity.DocumentStatusPending, ""); err != nil {
		return nil, err
	}

	if err := s.enqueue(ctx, id, dto.IngestActionProcess); err != nil {
		return nil, err
	}

	return &dto.ReprocessDocumentResponse{
		Id:     id,
		Status: entity.DocumentStatusPending,
	}, nil
}

func (s *documentService) Delete(ctx context.Context, id uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	document, err := uow.DocumentRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return err
	}
	if document == nil {
		return nil // Already gone
	}

	if err := uow.DocumentRepository().Delete(ctx, id); err != nil {
		return err
	}

	// Chunk removal runs in the background so large documents don't block
	// the request.
	return s.enqueue(ctx, id, dto.IngestActionDelete)
}
