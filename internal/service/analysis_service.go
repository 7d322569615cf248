package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"docinsight-be/internal/entity"
	"docinsight-be/internal/pkg/logger"
	"docinsight-be/internal/repository/specification"
	"docinsight-be/internal/repository/unitofwork"
	"docinsight-be/pkg/events"
	"docinsight-be/pkg/insight"
	"docinsight-be/pkg/llm"
	pkgNats "docinsight-be/pkg/nats"

	"github.com/google/uuid"
)

// IAnalysisService extracts insights from freshly ingested sources. It runs
// off the event bus so ingestion latency never includes an LLM call.
type IAnalysisService interface {
	Start() error
	HandleDocumentIngested(ctx context.Context, event events.Event) error
	HandleMeetingIngested(ctx context.Context, event events.Event) error
}

type analysisService struct {
	subscriber  *pkgNats.Subscriber
	uowFactory  unitofwork.RepositoryFactory
	llmProvider llm.Provider
	log         logger.ILogger
}

func NewAnalysisService(
	subscriber *pkgNats.Subscriber,
	uowFactory unitofwork.RepositoryFactory,
	llmProvider llm.Provider,
	log logger.ILogger,
) IAnalysisService {
	return &analysisService{
		subscriber:  subscriber,
		uowFactory:  uowFactory,
		llmProvider: llmProvider,
		log:         log,
	}
}

func (s *analysisService) Start() error {
	if s.subscriber == nil {
		return nil // Bus disabled, extraction only via explicit API calls
	}
	if err := s.subscriber.Subscribe("events."+events.TypeDocumentIngested, "insight-analyzer-documents", s.HandleDocumentIngested); err != nil {
		return err
	}
	return s.subscriber.Subscribe("events."+events.TypeMeetingIngested, "insight-analyzer-meetings", s.HandleMeetingIngested)
}

func payloadUUID(event events.Event, key string) (uuid.UUID, error) {
	raw, ok := event.Payload()[key]
	if !ok {
		return uuid.Nil, fmt.Errorf("event payload missing %s", key)
	}
	str, ok := raw.(string)
	if !ok {
		return uuid.Nil, fmt.Errorf("event payload %s is not a string", key)
	}
	return uuid.Parse(str)
}

func (s *analysisService) HandleDocumentIngested(ctx context.Context, event events.Event) error {
	documentId, err := payloadUUID(event, "document_id")
	if err != nil {
		s.log.Error("analysis", "malformed document event", map[string]interface{}{"error": err.Error()})
		return nil // Malformed events are dropped, not retried
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	document, err := uow.DocumentRepository().FindOne(ctx, specification.ByID{ID: documentId})
	if err != nil {
		return err
	}
	if document == nil {
		return nil
	}

	return s.extract(ctx, uow, document.ProjectId, nil, &documentId, document.Title, document.Content)
}

func (s *analysisService) HandleMeetingIngested(ctx context.Context, event events.Event) error {
	meetingId, err := payloadUUID(event, "meeting_id")
	if err != nil {
		s.log.Error("analysis", "malformed meeting event", map[string]interface{}{"error": err.Error()})
		return nil
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	meeting, err := uow.MeetingRepository().FindOne(ctx, specification.ByID{ID: meetingId})
	if err != nil {
		return err
	}
	if meeting == nil {
		return nil
	}

	return s.extract(ctx, uow, meeting.ProjectId, &meetingId, nil, meeting.Title, meeting.Transcript)
}

const extractionPrompt = `Extract the key insights from the following %s titled "%s".
Return a JSON array where each element has the fields:
  "type": one of "decision", "risk", "action_item", "opportunity", "fact"
  "title": a short one-line summary
  "description": one or two sentences of detail
  "severity": one of "low", "medium", "high", "critical"
  "confidence": how certain you are, 0.0 to 1.0
Return only the JSON array, no prose.

%s`

type extractedInsight struct {
	Type        string  `json:"type"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Severity    string  `json:"severity"`
	Confidence  float64 `json:"confidence"`
}

// stripCodeFence tolerates models wrapping JSON in markdown fences.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	return strings.TrimSpace(s)
}

var validInsightTypes = map[string]bool{
	entity.InsightTypeDecision:    true,
	entity.InsightTypeRisk:        true,
	entity.InsightTypeActionItem:  true,
	entity.InsightTypeOpportunity: true,
	entity.InsightTypeFact:        true,
	entity.InsightTypeHighlight:   true,
}

var validSeverities = map[string]bool{
	entity.InsightSeverityLow:      true,
	entity.InsightSeverityMedium:   true,
	entity.InsightSeverityHigh:     true,
	entity.InsightSeverityCritical: true,
}

func (s *analysisService) extract(ctx context.Context, uow unitofwork.UnitOfWork, projectId uuid.UUID, meetingId, documentId *uuid.UUID, title, content string) error {
	kind := "document"
	parentId := documentId
	if meetingId != nil {
		kind = "meeting transcript"
		parentId = meetingId
	}

	// Long sources are truncated; the opening of a document carries most of
	// its decisions and risks, and the model context is finite.
	const maxExtractionChars = 24000
	content = truncateRunes(content, maxExtractionChars)

	raw, err := s.llmProvider.Generate(ctx, fmt.Sprintf(extractionPrompt, kind, title, content), llm.WithTemperature(0.2))
	if err != nil {
		return fmt.Errorf("insight extraction call: %w", err)
	}

	var extracted []extractedInsight
	if err := json.Unmarshal([]byte(stripCodeFence(raw)), &extracted); err != nil {
		s.log.Warn("analysis", "model returned unparseable insights", map[string]interface{}{
			"parent_id": parentId,
			"error":     err.Error(),
		})
		return nil // Bad model output is not retriable
	}

	var insights []*entity.Insight
	for _, e := range extracted {
		if e.Title == "" || !validInsightTypes[e.Type] {
			continue
		}
		severity := e.Severity
		if !validSeverities[severity] {
			severity = entity.InsightSeverityMedium
		}
		confidence := e.Confidence
		if confidence < 0 || confidence > 1 {
			confidence = 0
		}
		ins := &entity.Insight{
			Id:          uuid.New(),
			ProjectId:   projectId,
			MeetingId:   meetingId,
			DocumentId:  documentId,
			InsightType: e.Type,
			Title:       e.Title,
			Description: e.Description,
			Severity:    severity,
			Confidence:  confidence,
			CreatedAt:   time.Now(),
		}
		ins.ContentHash = insight.ContentHash(ins.ParentId(), ins.InsightType, ins.Title)
		insights = append(insights, ins)
	}
	if len(insights) == 0 {
		return nil
	}

	inserted, err := uow.InsightRepository().CreateBulkIgnoreDuplicates(ctx, insights)
	if err != nil {
		return err
	}

	s.log.Info("analysis", "insights extracted", map[string]interface{}{
		"parent_id": parentId,
		"kind":      kind,
		"found":     len(insights),
		"inserted":  inserted,
		"skipped":   int64(len(insights)) - inserted,
	})
	return nil
}
