package mapper

import (
	"time"

	"docinsight-be/internal/entity"
	"docinsight-be/internal/model"

	"gorm.io/gorm"
)

type ChatMapper struct{}

func NewChatMapper() *ChatMapper {
	return &ChatMapper{}
}

func (m *ChatMapper) SessionToEntity(s *model.ChatSession) *entity.ChatSession {
	if s == nil {
		return nil
	}

	var deletedAt *time.Time
	if s.DeletedAt.Valid {
		t := s.DeletedAt.Time
		deletedAt = &t
	}

	var updatedAt *time.Time
	if !s.UpdatedAt.IsZero() {
		t := s.UpdatedAt
		updatedAt = &t
	}

	return &entity.ChatSession{
		Id:        s.Id,
		ProjectId: s.ProjectId,
		Title:     s.Title,
		CreatedAt: s.CreatedAt,
		UpdatedAt: updatedAt,
		DeletedAt: deletedAt,
		IsDeleted: s.DeletedAt.Valid,
	}
}

func (m *ChatMapper) SessionToModel(s *entity.ChatSession) *model.ChatSession {
	if s == nil {
		return nil
	}

	var deletedAt gorm.DeletedAt
	if s.DeletedAt != nil {
		deletedAt = gorm.DeletedAt{Time: *s.DeletedAt, Valid: true}
	} else if s.IsDeleted {
		deletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	}

	var updatedAt time.Time
	if s.UpdatedAt != nil {
		updatedAt = *s.UpdatedAt
	}

	return &model.ChatSession{
		Id:        s.Id,
		ProjectId: s.ProjectId,
		Title:     s.Title,
		CreatedAt: s.CreatedAt,
		UpdatedAt: updatedAt,
		DeletedAt: deletedAt,
	}
}

func (m *ChatMapper) SessionsToEntities(sessions []*model.ChatSession) []*entity.ChatSession {
	entities := make([]*entity.ChatSession, len(sessions))
	for i, s := range sessions {
		entities[i] = m.SessionToEntity(s)
	}
	return entities
}

func (m *ChatMapper) MessageToEntity(msg *model.ChatMessage) *entity.ChatMessage {
	if msg == nil {
		return nil
	}

	var deletedAt *time.Time
	if msg.DeletedAt.Valid {
		t := msg.DeletedAt.Time
		deletedAt = &t
	}

	var updatedAt *time.Time
	if !msg.UpdatedAt.IsZero() {
		t := msg.UpdatedAt
		updatedAt = &t
	}

	return &entity.ChatMessage{
		Id:            msg.Id,
		Content:       msg.Content,
		Role:          msg.Role,
		ServedBy:      msg.ServedBy,
		ChatSessionId: msg.ChatSessionId,
		Seq:           msg.Seq,
		CreatedAt:     msg.CreatedAt,
		UpdatedAt:     updatedAt,
		DeletedAt:     deletedAt,
		IsDeleted:     msg.DeletedAt.Valid,
	}
}

func (m *ChatMapper) MessageToModel(msg *entity.ChatMessage) *model.ChatMessage {
	if msg == nil {
		return nil
	}

	var deletedAt gorm.DeletedAt
	if msg.DeletedAt != nil {
		deletedAt = gorm.DeletedAt{Time: *msg.DeletedAt, Valid: true}
	} else if msg.IsDeleted {
		deletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	}

	var updatedAt time.Time
	if msg.UpdatedAt != nil {
		updatedAt = *msg.UpdatedAt
	}

	return &model.ChatMessage{
		Id:            msg.Id,
		Content:       msg.Content,
		Role:          msg.Role,
		ServedBy:      msg.ServedBy,
		ChatSessionId: msg.ChatSessionId,
		Seq:           msg.Seq,
		CreatedAt:     msg.CreatedAt,
		UpdatedAt:     updatedAt,
		DeletedAt:     deletedAt,
	}
}

func (m *ChatMapper) MessagesToEntities(messages []*model.ChatMessage) []*entity.ChatMessage {
	entities := make([]*entity.ChatMessage, len(messages))
	for i, msg := range messages {
		entities[i] = m.MessageToEntity(msg)
	}
	return entities
}

func (m *ChatMapper) SourceToEntity(s *model.ChatSource) *entity.ChatSource {
	if s == nil {
		return nil
	}
	return &entity.ChatSource{
		Id:            s.Id,
		ChatMessageId: s.ChatMessageId,
		DocumentId:    s.DocumentId,
		ChunkId:       s.ChunkId,
		DocumentTitle: s.DocumentTitle,
		Excerpt:       s.Excerpt,
		Relevance:     s.Relevance,
		Position:      s.Position,
		CreatedAt:     s.CreatedAt,
	}
}

func (m *ChatMapper) SourceToModel(s *entity.ChatSource) *model.ChatSource {
	if s == nil {
		return nil
	}
	return &model.ChatSource{
		Id:            s.Id,
		ChatMessageId: s.ChatMessageId,
		DocumentId:    s.DocumentId,
		ChunkId:       s.ChunkId,
		DocumentTitle: s.DocumentTitle,
		Excerpt:       s.Excerpt,
		Relevance:     s.Relevance,
		Position:      s.Position,
		CreatedAt:     s.CreatedAt,
	}
}

func (m *ChatMapper) SourcesToEntities(sources []*model.ChatSource) []*entity.ChatSource {
	entities := make([]*entity.ChatSource, len(sources))
	for i, s := range sources {
		entities[i] = m.SourceToEntity(s)
	}
	return entities
}

func (m *ChatMapper) SourcesToModels(sources []*entity.ChatSource) []*model.ChatSource {
	models := make([]*model.ChatSource, len(sources))
	for i, s := range sources {
		models[i] = m.SourceToModel(s)
	}
	return models
}
