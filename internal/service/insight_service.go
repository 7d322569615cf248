package service

import (
	"context"
	"fmt"
	"time"

	"docinsight-be/internal/dto"
	"docinsight-be/internal/entity"
	"docinsight-be/internal/pkg/logger"
	"docinsight-be/internal/repository/specification"
	"docinsight-be/internal/repository/unitofwork"
	"docinsight-be/pkg/insight"

	"github.com/google/uuid"
)

type IInsightService interface {
	Create(ctx context.Context, req *dto.CreateInsightRequest) (*dto.CreateInsightResponse, error)
	List(ctx context.Context, projectId uuid.UUID, insightType, severity string) (*dto.ListInsightsResponse, error)
	// Resolve flips the resolved flag, the only mutation insights allow.
	Resolve(ctx context.Context, id uuid.UUID, resolved bool) error
	Delete(ctx context.Context, id uuid.UUID) error
	// CleanupDuplicates removes redundant copies of insights sharing a
	// content hash, keeping the oldest row of each group. Needed for
	// databases populated before the unique index existed.
	CleanupDuplicates(ctx context.Context) (*dto.CleanupInsightsResponse, error)
}

type insightService struct {
	uowFactory unitofwork.RepositoryFactory
	log        logger.ILogger
}

func NewInsightService(uowFactory unitofwork.RepositoryFactory, log logger.ILogger) IInsightService {
	return &insightService{
		uowFactory: uowFactory,
		log:        log,
	}
}

func (s *insightService) Create(ctx context.Context, req *dto.CreateInsightRequest) (*dto.CreateInsightResponse, error) {
	ins := &entity.Insight{
		Id:              uuid.New(),
		ProjectId:       req.ProjectId,
		MeetingId:       req.MeetingId,
		DocumentId:      req.DocumentId,
		InsightType:     req.InsightType,
		Title:           req.Title,
		Description:     req.Description,
		Severity:        req.Severity,
		Assignee:        req.Assignee,
		DueDate:         req.DueDate,
		FinancialImpact: req.FinancialImpact,
		Confidence:      req.Confidence,
		CreatedAt:       time.Now(),
	}
	if ins.Severity == "" {
		ins.Severity = entity.InsightSeverityMedium
	}
	if !ins.HasValidParent() {
		return nil, fmt.Errorf("insight requires exactly one of meeting_id or document_id")
	}
	ins.ContentHash = insight.ContentHash(ins.ParentId(), ins.InsightType, ins.Title)

	uow := s.uowFactory.NewUnitOfWork(ctx)
	inserted, err := uow.InsightRepository().CreateIgnoreDuplicates(ctx, ins)
	if err != nil {
		return nil, err
	}

	return &dto.CreateInsightResponse{
		Id:       ins.Id,
		Inserted: inserted,
	}, nil
}

func (s *insightService) List(ctx context.Context, projectId uuid.UUID, insightType, severity string) (*dto.ListInsightsResponse, error) {
	specs := []specification.Specification{
		specification.ByProjectID{ProjectID: projectId},
		specification.OrderBy{Field: "created_at", Desc: true},
	}
	if insightType != "" {
		specs = append(specs, specification.ByInsightType{InsightType: insightType})
	}
	if severity != "" {
		specs = append(specs, specification.BySeverity{Severity: severity})
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	insights, err := uow.InsightRepository().FindAll(ctx, specs...)
	if err != nil {
		return nil, err
	}

	res := dto.ListInsightsResponse{
		Insights: make([]dto.InsightDTO, len(insights)),
		Total:    int64(len(insights)),
	}
	for i, ins := range insights {
		res.Insights[i] = dto.InsightDTO{
			Id:              ins.Id,
			ProjectId:       ins.ProjectId,
			MeetingId:       ins.MeetingId,
			DocumentId:      ins.DocumentId,
			InsightType:     ins.InsightType,
			Title:           ins.Title,
			Description:     ins.Description,
			Severity:        ins.Severity,
			Assignee:        ins.Assignee,
			DueDate:         ins.DueDate,
			FinancialImpact: ins.FinancialImpact,
			Confidence:      ins.Confidence,
			Resolved:        ins.Resolved,
			CreatedAt:       ins.CreatedAt,
		}
	}
	return &res, nil
}

func (s *insightService) Resolve(ctx context.Context, id uuid.UUID, resolved bool) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	return uow.InsightRepository().SetResolved(ctx, id, resolved)
}

func (s *insightService) Delete(ctx context.Context, id uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	return uow.InsightRepository().Delete(ctx, id)
}

const cleanupBatchSize = 100

func (s *insightService) CleanupDuplicates(ctx context.Context) (*dto.CleanupInsightsResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	totalGroups := 0
	totalDeleted := 0
	for {
		groups, err := uow.InsightRepository().FindDuplicateGroups(ctx, cleanupBatchSize)
		if err != nil {
			return nil, err
		}
		if len(groups) == 0 {
			break
		}
		totalGroups += len(groups)

		var doomed []uuid.UUID
		for _, g := range groups {
			if len(g.Ids) < 2 {
				continue
			}
			// Keep the oldest, delete the rest
			doomed = append(doomed, g.Ids[1:]...)
		}
		if len(doomed) == 0 {
			break
		}

		if err := uow.InsightRepository().DeleteByIds(ctx, doomed); err != nil {
			return nil, err
		}
		totalDeleted += len(doomed)

		s.log.Info("insight", "deduplicated insight batch", map[string]interface{}{
			"groups":  len(groups),
			"deleted": len(doomed),
		})
	}

	return &dto.CleanupInsightsResponse{
		GroupsFound: totalGroups,
		Deleted:     totalDeleted,
	}, nil
}
