package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"docinsight-be/internal/dto"
	"docinsight-be/internal/entity"
	"docinsight-be/internal/pkg/logger"
	"docinsight-be/internal/repository/specification"
	"docinsight-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

type IMeetingService interface {
	Create(ctx context.Context, req *dto.CreateMeetingRequest) (*dto.CreateMeetingResponse, error)
	Show(ctx context.Context, id uuid.UUID) (*dto.ShowMeetingResponse, error)
	List(ctx context.Context, projectId uuid.UUID) (*dto.ListMeetingsResponse, error)
	Reprocess(ctx context.Context, id uuid.UUID) (*dto.CreateMeetingResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type meetingService struct {
	uowFactory       unitofwork.RepositoryFactory
	publisherService IPublisherService
	log              logger.ILogger
}

func NewMeetingService(
	uowFactory unitofwork.RepositoryFactory,
	publisherService IPublisherService,
	log logger.ILogger,
) IMeetingService {
	return &meetingService{
		uowFactory:       uowFactory,
		publisherService: publisherService,
		log:              log,
	}
}

func (s *meetingService) Create(ctx context.Context, req *dto.CreateMeetingRequest) (*dto.CreateMeetingResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	meetingDate := req.MeetingDate
	if meetingDate.IsZero() {
		meetingDate = time.Now()
	}

	meeting := entity.Meeting{
		Id:           uuid.New(),
		ProjectId:    req.ProjectId,
		Title:        req.Title,
		Transcript:   req.Transcript,
		MeetingDate:  meetingDate,
		Participants: req.Participants,
		Status:       entity.DocumentStatusPending,
		CreatedAt:    time.Now(),
	}

	err := uow.MeetingRepository().Create(ctx, &meeting)
	if err != nil {
		return nil, err
	}

	if err := s.enqueue(ctx, meeting.Id, dto.IngestActionProcess); err != nil {
		return nil, err
	}

	s.log.Info("meeting", "meeting queued for ingestion", map[string]interface{}{
		"meeting_id": meeting.Id,
		"project_id": meeting.ProjectId,
	})

	return &dto.CreateMeetingResponse{
		Id:     meeting.Id,
		Status: meeting.Status,
	}, nil
}

func (s *meetingService) enqueue(ctx context.Context, id uuid.UUID, action string) error {
	msgPayload := dto.IngestTaskMessage{
		Id:     id,
		Kind:   dto.IngestKindMeeting,
		Action: action,
	}
	msgJson, err := json.Marshal(msgPayload)
	if err != nil {
		return err
	}
	return s.publisherService.Publish(ctx, msgJson)
}

func toShowMeetingResponse(m *entity.Meeting) dto.ShowMeetingResponse {
	return dto.ShowMeetingResponse{
		Id:           m.Id,
		ProjectId:    m.ProjectId,
		Title:        m.Title,
		MeetingDate:  m.MeetingDate,
		Participants: m.Participants,
		Status:       m.Status,
		ErrorMessage: m.ErrorMessage,
		ChunkCount:   m.ChunkCount,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

func (s *meetingService) Show(ctx context.Context, id uuid.UUID) (*dto.ShowMeetingResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	meeting, err := uow.MeetingRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if meeting == nil {
		return nil, nil
	}

	res := toShowMeetingResponse(meeting)
	return &res, nil
}

func (s *meetingService) List(ctx context.Context, projectId uuid.UUID) (*dto.ListMeetingsResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	meetings, err := uow.MeetingRepository().FindAll(ctx,
		specification.ByProjectID{ProjectID: projectId},
		specification.OrderBy{Field: "meeting_date", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	res := dto.ListMeetingsResponse{
		Meetings: make([]dto.ShowMeetingResponse, len(meetings)),
		Total:    int64(len(meetings)),
	}
	for i, m := range meetings {
		res.Meetings[i] = toShowMeetingResponse(m)
	}
	return &res, nil
}

func (s *meetingService) Reprocess(ctx context.Context, id uuid.UUID) (*dto.CreateMeetingResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	meeting, err := uow.MeetingRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if meeting == nil {
		return nil, nil
	}
	if meeting.Status == entity.DocumentStatusProcessing {
		return nil, fmt.Errorf("meeting %s is already processing", id)
	}

	if err := uow.MeetingRepository().UpdateStatus(ctx, id, entity.DocumentStatusPending, ""); err != nil {
		return nil, err
	}

	if err := s.enqueue(ctx, id, dto.IngestActionProcess); err != nil {
		return nil, err
	}

	return &dto.CreateMeetingResponse{
		Id:     id,
		Status: entity.DocumentStatusPending,
	}, nil
}

func (s *meetingService) Delete(ctx context.Context, id uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	meeting, err := uow.MeetingRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return err
	}
	if meeting == nil {
		return nil
	}

	if err := uow.MeetingRepository().Delete(ctx, id); err != nil {
		return err
	}

	return s.enqueue(ctx, id, dto.IngestActionDelete)
}
