package mapper

import (
	"encoding/json"
	"time"

	"docinsight-be/internal/entity"
	"docinsight-be/internal/model"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type MeetingMapper struct{}

func NewMeetingMapper() *MeetingMapper {
	return &MeetingMapper{}
}

func (m *MeetingMapper) ToEntity(mt *model.Meeting) *entity.Meeting {
	if mt == nil {
		return nil
	}

	var deletedAt *time.Time
	if mt.DeletedAt.Valid {
		t := mt.DeletedAt.Time
		deletedAt = &t
	}

	var updatedAt *time.Time
	if !mt.UpdatedAt.IsZero() {
		t := mt.UpdatedAt
		updatedAt = &t
	}

	var participants []string
	if len(mt.Participants) > 0 {
		// Malformed rows degrade to an empty list rather than failing the read
		_ = json.Unmarshal(mt.Participants, &participants)
	}

	return &entity.Meeting{
		Id:           mt.Id,
		ProjectId:    mt.ProjectId,
		Title:        mt.Title,
		Transcript:   mt.Transcript,
		MeetingDate:  mt.MeetingDate,
		Participants: participants,
		Status:       mt.Status,
		ErrorMessage: mt.ErrorMessage,
		ChunkCount:   mt.ChunkCount,
		CreatedAt:    mt.CreatedAt,
		UpdatedAt:    updatedAt,
		DeletedAt:    deletedAt,
		IsDeleted:    mt.DeletedAt.Valid,
	}
}

func (m *MeetingMapper) ToModel(mt *entity.Meeting) *model.Meeting {
	if mt == nil {
		return nil
	}

	var deletedAt gorm.DeletedAt
	if mt.DeletedAt != nil {
		deletedAt = gorm.DeletedAt{Time: *mt.DeletedAt, Valid: true}
	} else if mt.IsDeleted {
		deletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	}

	var updatedAt time.Time
	if mt.UpdatedAt != nil {
		updatedAt = *mt.UpdatedAt
	}

	var participants datatypes.JSON
	if mt.Participants != nil {
		if raw, err := json.Marshal(mt.Participants); err == nil {
			participants = raw
		}
	}

	return &model.Meeting{
		Id:           mt.Id,
		ProjectId:    mt.ProjectId,
		Title:        mt.Title,
		Transcript:   mt.Transcript,
		MeetingDate:  mt.MeetingDate,
		Participants: participants,
		Status:       mt.Status,
		ErrorMessage: mt.ErrorMessage,
		ChunkCount:   mt.ChunkCount,
		CreatedAt:    mt.CreatedAt,
		UpdatedAt:    updatedAt,
		DeletedAt:    deletedAt,
	}
}

func (m *MeetingMapper) ToEntities(meetings []*model.Meeting) []*entity.Meeting {
	entities := make([]*entity.Meeting, len(meetings))
	for i, mt := range meetings {
		entities[i] = m.ToEntity(mt)
	}
	return entities
}
