package service

import (
	"context"
	"strings"
	"time"

	"docinsight-be/internal/dto"
	"docinsight-be/internal/entity"
	"docinsight-be/internal/pkg/logger"
	"docinsight-be/internal/repository/specification"
	"docinsight-be/internal/repository/unitofwork"
	"docinsight-be/pkg/llm"
	"docinsight-be/pkg/rag/prompt"
	"docinsight-be/pkg/ragclient"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
)

const (
	ServedByRailway  = "railway"
	ServedByFallback = "fallback"
	ServedByError    = "error"

	degradedAnswer = "I'm having trouble reaching the knowledge base right now. Please try again in a moment."

	// Health endpoints get polled, counting rows on every poll is wasteful.
	statsCacheTTL = 30 * time.Second
	statsCacheKey = "health_stats"
)

// StreamCallbacks receives the ordered stream events: OnSources once, then
// zero or more OnChunk, then exactly one of OnDone or OnError.
type StreamCallbacks struct {
	OnSources func(event dto.StreamSourcesEvent)
	OnChunk   func(delta string)
	OnDone    func(event dto.StreamDoneEvent)
	OnError   func(message string)
}

type IChatService interface {
	Query(ctx context.Context, req *dto.ChatQueryRequest) (*dto.ChatQueryResponse, error)
	StreamQuery(ctx context.Context, req *dto.ChatQueryRequest, callbacks StreamCallbacks)
	Health(ctx context.Context) *dto.ChatHealthResponse
	ListSessions(ctx context.Context, projectId uuid.UUID) ([]dto.ChatSessionDTO, error)
	History(ctx context.Context, sessionId uuid.UUID) ([]dto.ChatHistoryMessageDTO, error)
	DeleteSession(ctx context.Context, sessionId uuid.UUID) error
}

type chatService struct {
	uowFactory    unitofwork.RepositoryFactory
	retrieval     IRetrievalService
	llmProvider   llm.Provider
	railwayURL    string
	maxResults    int
	historyWindow int
	statsCache    *gocache.Cache
	log           logger.ILogger
}

func NewChatService(
	uowFactory unitofwork.RepositoryFactory,
	retrieval IRetrievalService,
	llmProvider llm.Provider,
	railwayURL string,
	maxResults int,
	historyWindow int,
	log logger.ILogger,
) IChatService {
	return &chatService{
		uowFactory:    uowFactory,
		retrieval:     retrieval,
		llmProvider:   llmProvider,
		railwayURL:    railwayURL,
		maxResults:    maxResults,
		historyWindow: historyWindow,
		statsCache:    gocache.New(statsCacheTTL, time.Minute),
		log:           log,
	}
}

// buildChain assembles the per-request backend order: hosted service first
// when configured, local pipeline second.
func (s *chatService) buildChain(projectId uuid.UUID) *ragclient.Chain {
	onError := func(backend string, err error) {
		s.log.Warn("chat", "backend failed, trying next", map[string]interface{}{
			"backend": backend,
			"error":   err.Error(),
		})
	}

	var backends []ragclient.Backend
	if s.railwayURL != "" {
		backends = append(backends, ragclient.NewRailwayBackend(s.railwayURL))
	}
	backends = append(backends, NewFallbackBackend(s.retrieval, s.llmProvider, projectId, s.maxResults))
	return ragclient.NewChain(onError, backends...)
}

// resultLimit honors a per-request chunk cap, falling back to the configured
// default.
func (s *chatService) resultLimit(requested int) int {
	if requested > 0 {
		return requested
	}
	return s.maxResults
}

// sessionTitle derives a session title from the opening question.
func sessionTitle(query string) string {
	title := truncateRunes(strings.TrimSpace(query), 80)
	if title == "" {
		title = "New chat"
	}
	return title
}

// truncateRunes bounds s to max runes without splitting a multibyte
// character.
func truncateRunes(s string, max int) string {
	if len(s) <= max {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

// resolveSession finds the requested session or creates one titled after the
// first question.
func (s *chatService) resolveSession(ctx context.Context, uow unitofwork.UnitOfWork, req *dto.ChatQueryRequest) (*entity.ChatSession, error) {
	if req.SessionId != nil {
		session, err := uow.ChatSessionRepository().FindOne(ctx,
			specification.ByID{ID: *req.SessionId},
			specification.ByProjectID{ProjectID: req.ProjectId},
		)
		if err != nil {
			return nil, err
		}
		if session != nil {
			return session, nil
		}
		// Unknown session id falls through to a fresh session
	}

	session := &entity.ChatSession{
		Id:        uuid.New(),
		ProjectId: req.ProjectId,
		Title:     sessionTitle(req.Query),
		CreatedAt: time.Now(),
	}
	if err := uow.ChatSessionRepository().Create(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *chatService) loadHistory(ctx context.Context, uow unitofwork.UnitOfWork, sessionId uuid.UUID) ([]ragclient.HistoryMessage, error) {
	messages, err := uow.ChatMessageRepository().FindRecentBySession(ctx, sessionId, s.historyWindow)
	if err != nil {
		return nil, err
	}
	history := make([]ragclient.HistoryMessage, len(messages))
	for i, m := range messages {
		history[i] = ragclient.HistoryMessage{Role: m.Role, Content: m.Content}
	}
	return history, nil
}

// persistUserTurn stores the question before any backend is consulted, so a
// failed answer still leaves the question in the history.
func (s *chatService) persistUserTurn(ctx context.Context, uow unitofwork.UnitOfWork, sessionId uuid.UUID, query string) (*entity.ChatMessage, error) {
	msg := &entity.ChatMessage{
		Id:            uuid.New(),
		Content:       query,
		Role:          entity.ChatRoleUser,
		ChatSessionId: sessionId,
		CreatedAt:     time.Now(),
	}
	if err := uow.ChatMessageRepository().Create(ctx, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

func (s *chatService) persistAssistantTurn(ctx context.Context, uow unitofwork.UnitOfWork, sessionId uuid.UUID, answer, servedBy string, sources []dto.ChatSourceDTO) (*entity.ChatMessage, error) {
	msg := &entity.ChatMessage{
		Id:            uuid.New(),
		Content:       answer,
		Role:          entity.ChatRoleAssistant,
		ServedBy:      servedBy,
		ChatSessionId: sessionId,
		CreatedAt:     time.Now(),
	}
	if err := uow.ChatMessageRepository().Create(ctx, msg); err != nil {
		return nil, err
	}

	if len(sources) > 0 {
		rows := make([]*entity.ChatSource, len(sources))
		for i, src := range sources {
			rows[i] = &entity.ChatSource{
				Id:            uuid.New(),
				ChatMessageId: msg.Id,
				DocumentId:    src.DocumentId,
				ChunkId:       src.ChunkId,
				DocumentTitle: src.DocumentTitle,
				Excerpt:       src.Excerpt,
				Relevance:     src.Relevance,
				Position:      src.Position,
				CreatedAt:     time.Now(),
			}
		}
		if err := uow.ChatSourceRepository().CreateBulk(ctx, rows); err != nil {
			return nil, err
		}
	}
	return msg, nil
}

func toSourceDTOs(sources []ragclient.Source) []dto.ChatSourceDTO {
	out := make([]dto.ChatSourceDTO, len(sources))
	for i, src := range sources {
		docId, _ := uuid.Parse(src.DocumentId)
		chunkId, _ := uuid.Parse(src.ChunkId)
		out[i] = dto.ChatSourceDTO{
			DocumentId:    docId,
			ChunkId:       chunkId,
			DocumentTitle: src.DocumentTitle,
			Relevance:     src.Relevance,
			Position:      i + 1,
		}
	}
	return out
}

func (s *chatService) Query(ctx context.Context, req *dto.ChatQueryRequest) (*dto.ChatQueryResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	session, err := s.resolveSession(ctx, uow, req)
	if err != nil {
		return nil, err
	}

	history, err := s.loadHistory(ctx, uow, session.Id)
	if err != nil {
		return nil, err
	}

	if _, err := s.persistUserTurn(ctx, uow, session.Id, req.Query); err != nil {
		return nil, err
	}

	chain := s.buildChain(req.ProjectId)
	result, err := chain.Query(ctx, ragclient.QueryRequest{
		Query:       req.Query,
		History:     history,
		MaxResults:  s.resultLimit(req.MaxChunks),
		Temperature: req.Temperature,
	})

	answer := degradedAnswer
	servedBy := ServedByError
	var sources []dto.ChatSourceDTO
	if err != nil {
		// Terminal degradation is an answer, not a 500. The turn is recorded
		// with the error tag so the client can surface degraded mode.
		s.log.Error("chat", "all backends failed", map[string]interface{}{
			"project_id": req.ProjectId,
			"error":      err.Error(),
		})
	} else {
		answer = result.Answer
		servedBy = result.Service
		sources = toSourceDTOs(result.Sources)
	}

	msg, err := s.persistAssistantTurn(ctx, uow, session.Id, answer, servedBy, sources)
	if err != nil {
		return nil, err
	}

	return &dto.ChatQueryResponse{
		SessionId: session.Id,
		MessageId: msg.Id,
		Answer:    answer,
		Sources:   sources,
		ServedBy:  servedBy,
		CreatedAt: msg.CreatedAt,
	}, nil
}

// StreamQuery runs the local pipeline with token streaming. Sources go out
// first, then deltas; the assistant turn is persisted only after the stream
// completes so an aborted stream leaves no partial answer.
func (s *chatService) StreamQuery(ctx context.Context, req *dto.ChatQueryRequest, callbacks StreamCallbacks) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	session, err := s.resolveSession(ctx, uow, req)
	if err != nil {
		callbacks.OnError("failed to resolve session")
		return
	}

	history, err := s.loadHistory(ctx, uow, session.Id)
	if err != nil {
		callbacks.OnError("failed to load history")
		return
	}

	if _, err := s.persistUserTurn(ctx, uow, session.Id, req.Query); err != nil {
		callbacks.OnError("failed to record question")
		return
	}

	chunks := s.retrieval.RetrieveBestEffort(ctx, req.ProjectId, req.Query, s.resultLimit(req.MaxChunks), req.DocumentIds)

	contextChunks := make([]prompt.ContextChunk, len(chunks))
	sources := make([]dto.ChatSourceDTO, len(chunks))
	for i, c := range chunks {
		contextChunks[i] = prompt.ContextChunk{Content: c.Content, Score: c.Similarity}
		excerpt := truncateRunes(c.Content, 200)
		sources[i] = dto.ChatSourceDTO{
			DocumentId:    c.DocumentId,
			ChunkId:       c.ChunkId,
			DocumentTitle: c.SourceTitle,
			Excerpt:       excerpt,
			Relevance:     c.Similarity,
			Position:      i + 1,
		}
	}

	callbacks.OnSources(dto.StreamSourcesEvent{
		SessionId: session.Id,
		Sources:   sources,
	})

	turns := make([]prompt.Turn, len(history))
	for i, h := range history {
		turns[i] = prompt.Turn{Role: h.Role, Content: h.Content}
	}
	messages := prompt.BuildHistory(turns, req.Query, contextChunks)

	llmMessages := make([]llm.Message, len(messages))
	for i, m := range messages {
		llmMessages[i] = llm.Message{Role: m.Role, Content: m.Content}
	}

	var opts []llm.Option
	if req.Temperature != nil {
		opts = append(opts, llm.WithTemperature(*req.Temperature))
	}
	stream, err := s.llmProvider.ChatStream(ctx, llmMessages, opts...)
	if err != nil {
		s.log.Error("chat", "stream start failed", map[string]interface{}{
			"session_id": session.Id,
			"error":      err.Error(),
		})
		callbacks.OnError("model is unavailable")
		return
	}

	var answer strings.Builder
	for chunk := range stream {
		if chunk.Err != nil {
			s.log.Error("chat", "stream aborted", map[string]interface{}{
				"session_id": session.Id,
				"error":      chunk.Err.Error(),
			})
			callbacks.OnError("stream interrupted")
			return
		}
		if chunk.Delta != "" {
			answer.WriteString(chunk.Delta)
			callbacks.OnChunk(chunk.Delta)
		}
		if chunk.Done {
			break
		}
	}

	msg, err := s.persistAssistantTurn(ctx, uow, session.Id, answer.String(), ServedByFallback, sources)
	if err != nil {
		callbacks.OnError("failed to record answer")
		return
	}

	callbacks.OnDone(dto.StreamDoneEvent{
		SessionId: session.Id,
		MessageId: msg.Id,
		ServedBy:  ServedByFallback,
	})
}

func (s *chatService) healthStats(ctx context.Context) *dto.ChatHealthStats {
	if cached, ok := s.statsCache.Get(statsCacheKey); ok {
		return cached.(*dto.ChatHealthStats)
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	meetings, err := uow.MeetingRepository().Count(ctx)
	if err != nil {
		return nil
	}
	insights, err := uow.InsightRepository().Count(ctx)
	if err != nil {
		return nil
	}

	stats := &dto.ChatHealthStats{Meetings: meetings, Insights: insights}
	s.statsCache.Set(statsCacheKey, stats, gocache.DefaultExpiration)
	return stats
}

func (s *chatService) Health(ctx context.Context) *dto.ChatHealthResponse {
	res := &dto.ChatHealthResponse{
		Status:    "down",
		Stats:     s.healthStats(ctx),
		CheckedAt: time.Now().Format(time.RFC3339),
	}

	if s.railwayURL != "" {
		railway := ragclient.NewRailwayBackend(s.railwayURL)
		if err := railway.Health(ctx); err == nil {
			res.Status = "healthy"
			res.Backend = ServedByRailway
			return res
		}
	}

	if _, err := s.llmProvider.Generate(ctx, "ping", llm.WithMaxTokens(1)); err == nil {
		res.Status = "degraded"
		res.Backend = ServedByFallback
	}
	return res
}

func (s *chatService) ListSessions(ctx context.Context, projectId uuid.UUID) ([]dto.ChatSessionDTO, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	sessions, err := uow.ChatSessionRepository().FindAll(ctx,
		specification.ByProjectID{ProjectID: projectId},
		specification.OrderBy{Field: "updated_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	out := make([]dto.ChatSessionDTO, len(sessions))
	for i, sess := range sessions {
		out[i] = dto.ChatSessionDTO{
			Id:        sess.Id,
			ProjectId: sess.ProjectId,
			Title:     sess.Title,
			CreatedAt: sess.CreatedAt,
			UpdatedAt: sess.UpdatedAt,
		}
	}
	return out, nil
}

func (s *chatService) History(ctx context.Context, sessionId uuid.UUID) ([]dto.ChatHistoryMessageDTO, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	messages, err := uow.ChatMessageRepository().FindAll(ctx,
		specification.BySessionID{SessionID: sessionId},
		specification.OrderBy{Field: "created_at", Desc: false},
		specification.OrderBy{Field: "seq", Desc: false},
	)
	if err != nil {
		return nil, err
	}

	out := make([]dto.ChatHistoryMessageDTO, len(messages))
	for i, m := range messages {
		item := dto.ChatHistoryMessageDTO{
			Id:        m.Id,
			Role:      m.Role,
			Content:   m.Content,
			ServedBy:  m.ServedBy,
			CreatedAt: m.CreatedAt,
		}

		if m.Role == entity.ChatRoleAssistant {
			sources, err := uow.ChatSourceRepository().FindAll(ctx,
				specification.ByMessageID{MessageID: m.Id},
				specification.OrderBy{Field: "position", Desc: false},
			)
			if err != nil {
				return nil, err
			}
			item.Sources = make([]dto.ChatSourceDTO, len(sources))
			for j, src := range sources {
				item.Sources[j] = dto.ChatSourceDTO{
					DocumentId:    src.DocumentId,
					ChunkId:       src.ChunkId,
					DocumentTitle: src.DocumentTitle,
					Excerpt:       src.Excerpt,
					Relevance:     src.Relevance,
					Position:      src.Position,
				}
			}
		}
		out[i] = item
	}
	return out, nil
}

func (s *chatService) DeleteSession(ctx context.Context, sessionId uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	if err := uow.ChatMessageRepository().DeleteBySessionId(ctx, sessionId); err != nil {
		uow.Rollback()
		return err
	}
	if err := uow.ChatSessionRepository().Delete(ctx, sessionId); err != nil {
		uow.Rollback()
		return err
	}
	return uow.Commit()
}
