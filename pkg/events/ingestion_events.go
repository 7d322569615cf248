package events

import "time"

const (
	TypeDocumentIngested = "document.ingested"
	TypeMeetingIngested  = "meeting.ingested"
	TypeInsightExtracted = "insight.extracted"
)

// NewDocumentIngestedEvent is emitted after every chunk of a document has an
// embedding stored. Downstream consumers run insight extraction off it.
func NewDocumentIngestedEvent(documentId, projectId string, chunkCount int) BaseEvent {
	return BaseEvent{
		Type: TypeDocumentIngested,
		Data: map[string]interface{}{
			"document_id": documentId,
			"project_id":  projectId,
			"chunk_count": chunkCount,
		},
		OccurredAt: time.Now(),
	}
}

// NewMeetingIngestedEvent mirrors the document event for transcripts.
func NewMeetingIngestedEvent(meetingId, projectId string, chunkCount int) BaseEvent {
	return BaseEvent{
		Type: TypeMeetingIngested,
		Data: map[string]interface{}{
			"meeting_id":  meetingId,
			"project_id":  projectId,
			"chunk_count": chunkCount,
		},
		OccurredAt: time.Now(),
	}
}

// NewInsightExtractedEvent reports how many insights survived deduplication
// for a source.
func NewInsightExtractedEvent(parentId, parentKind string, inserted, skipped int) BaseEvent {
	return BaseEvent{
		Type: TypeInsightExtracted,
		Data: map[string]interface{}{
			"parent_id":   parentId,
			"parent_kind": parentKind,
			"inserted":    inserted,
			"skipped":     skipped,
		},
		OccurredAt: time.Now(),
	}
}
