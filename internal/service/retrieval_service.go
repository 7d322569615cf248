package service

import (
	"context"
	"crypto/md5"
	"fmt"
	"sort"
	"time"

	"docinsight-be/internal/pkg/logger"
	"docinsight-be/internal/repository/specification"
	"docinsight-be/internal/repository/unitofwork"
	"docinsight-be/pkg/embedding"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
)

// RetrievedChunk is one scored context chunk, document and meeting alike.
type RetrievedChunk struct {
	SourceKind  string // document | meeting
	DocumentId  uuid.UUID
	ChunkId     uuid.UUID
	SourceTitle string
	Content     string
	Similarity  float64
}

type IRetrievalService interface {
	// Retrieve returns the best matching chunks for a query, highest
	// similarity first, capped at limit and filtered by threshold.
	Retrieve(ctx context.Context, projectId uuid.UUID, query string, limit int, documentIds []uuid.UUID) ([]*RetrievedChunk, error)
	// RetrieveBestEffort is Retrieve degrading to an empty context when
	// embedding or search fails, so chat can still answer without sources.
	RetrieveBestEffort(ctx context.Context, projectId uuid.UUID, query string, limit int, documentIds []uuid.UUID) []*RetrievedChunk
}

type retrievalService struct {
	uowFactory unitofwork.RepositoryFactory
	provider   embedding.Provider
	threshold  float64
	// Query embeddings are cached briefly; repeated questions in a chat
	// session skip the embedding API round trip.
	embedCache *gocache.Cache
	log        logger.ILogger
}

func NewRetrievalService(
	uowFactory unitofwork.RepositoryFactory,
	provider embedding.Provider,
	threshold float64,
	log logger.ILogger,
) IRetrievalService {
	return &retrievalService{
		uowFactory: uowFactory,
		provider:   provider,
		threshold:  threshold,
		embedCache: gocache.New(10*time.Minute, 15*time.Minute),
		log:        log,
	}
}

func (s *retrievalService) embedQuery(ctx context.Context, query string) ([]float32, error) {
	cacheKey := fmt.Sprintf("%x", md5.Sum([]byte(query)))
	if cached, found := s.embedCache.Get(cacheKey); found {
		return cached.([]float32), nil
	}

	vec, err := s.provider.Embed(ctx, query)
	if err != nil {
		return nil, err
	}
	s.embedCache.Set(cacheKey, vec, gocache.DefaultExpiration)
	return vec, nil
}

func (s *retrievalService) Retrieve(ctx context.Context, projectId uuid.UUID, query string, limit int, documentIds []uuid.UUID) ([]*RetrievedChunk, error) {
	if limit <= 0 {
		limit = 5
	}

	queryVec, err := s.embedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)

	scoredDocs, err := uow.DocumentChunkRepository().SearchSimilarWithScore(ctx, queryVec, limit, projectId, s.threshold, documentIds)
	if err != nil {
		return nil, fmt.Errorf("search document chunks: %w", err)
	}

	var results []*RetrievedChunk
	docTitles := make(map[uuid.UUID]string)
	for _, sc := range scoredDocs {
		title, ok := docTitles[sc.Chunk.DocumentId]
		if !ok {
			doc, err := uow.DocumentRepository().FindOne(ctx, specification.ByID{ID: sc.Chunk.DocumentId})
			if err != nil {
				return nil, err
			}
			if doc != nil {
				title = doc.Title
			}
			docTitles[sc.Chunk.DocumentId] = title
		}
		results = append(results, &RetrievedChunk{
			SourceKind:  "document",
			DocumentId:  sc.Chunk.DocumentId,
			ChunkId:     sc.Chunk.Id,
			SourceTitle: title,
			Content:     sc.Chunk.Content,
			Similarity:  sc.Similarity,
		})
	}

	// Meeting chunks compete in the same ranking, but only when the caller
	// didn't pin retrieval to specific documents.
	if len(documentIds) == 0 {
		scoredMeetings, err := uow.MeetingChunkRepository().SearchSimilarWithScore(ctx, queryVec, limit, projectId, s.threshold)
		if err != nil {
			return nil, fmt.Errorf("search meeting chunks: %w", err)
		}
		meetingTitles := make(map[uuid.UUID]string)
		for _, sc := range scoredMeetings {
			title, ok := meetingTitles[sc.Chunk.MeetingId]
			if !ok {
				meeting, err := uow.MeetingRepository().FindOne(ctx, specification.ByID{ID: sc.Chunk.MeetingId})
				if err != nil {
					return nil, err
				}
				if meeting != nil {
					title = meeting.Title
				}
				meetingTitles[sc.Chunk.MeetingId] = title
			}
			results = append(results, &RetrievedChunk{
				SourceKind:  "meeting",
				DocumentId:  sc.Chunk.MeetingId,
				ChunkId:     sc.Chunk.Id,
				SourceTitle: title,
				Content:     sc.Chunk.Content,
				Similarity:  sc.Similarity,
			})
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Similarity > results[j].Similarity
	})
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

func (s *retrievalService) RetrieveBestEffort(ctx context.Context, projectId uuid.UUID, query string, limit int, documentIds []uuid.UUID) []*RetrievedChunk {
	results, err := s.Retrieve(ctx, projectId, query, limit, documentIds)
	if err != nil {
		s.log.Warn("retrieval", "retrieval failed, continuing without context", map[string]interface{}{
			"project_id": projectId,
			"error":      err.Error(),
		})
		return nil
	}
	return results
}
