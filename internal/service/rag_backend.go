package service

import (
	"context"

	"docinsight-be/pkg/llm"
	"docinsight-be/pkg/rag/prompt"
	"docinsight-be/pkg/ragclient"

	"github.com/google/uuid"
)

// fallbackBackend answers with local retrieval plus the configured LLM. It
// slots in behind the hosted RAG service so chat survives an outage.
type fallbackBackend struct {
	retrieval  IRetrievalService
	llm        llm.Provider
	projectId  uuid.UUID
	maxResults int
}

// NewFallbackBackend builds a per-request backend bound to one project.
func NewFallbackBackend(retrieval IRetrievalService, provider llm.Provider, projectId uuid.UUID, maxResults int) ragclient.Backend {
	return &fallbackBackend{
		retrieval:  retrieval,
		llm:        provider,
		projectId:  projectId,
		maxResults: maxResults,
	}
}

func (b *fallbackBackend) Name() string {
	return "fallback"
}

func (b *fallbackBackend) Query(ctx context.Context, req ragclient.QueryRequest) (*ragclient.QueryResult, error) {
	maxResults := req.MaxResults
	if maxResults <= 0 {
		maxResults = b.maxResults
	}
	chunks := b.retrieval.RetrieveBestEffort(ctx, b.projectId, req.Query, maxResults, nil)

	contextChunks := make([]prompt.ContextChunk, len(chunks))
	sources := make([]ragclient.Source, len(chunks))
	for i, c := range chunks {
		contextChunks[i] = prompt.ContextChunk{
			Content: c.Content,
			Score:   c.Similarity,
		}
		sources[i] = ragclient.Source{
			DocumentId:    c.DocumentId.String(),
			DocumentTitle: c.SourceTitle,
			ChunkId:       c.ChunkId.String(),
			Relevance:     c.Similarity,
		}
	}

	history := make([]prompt.Turn, len(req.History))
	for i, h := range req.History {
		history[i] = prompt.Turn{Role: h.Role, Content: h.Content}
	}

	messages := prompt.BuildHistory(history, req.Query, contextChunks)

	llmMessages := make([]llm.Message, len(messages))
	for i, m := range messages {
		llmMessages[i] = llm.Message{Role: m.Role, Content: m.Content}
	}

	var opts []llm.Option
	if req.Temperature != nil {
		opts = append(opts, llm.WithTemperature(*req.Temperature))
	}
	answer, err := b.llm.Chat(ctx, llmMessages, opts...)
	if err != nil {
		return nil, err
	}

	return &ragclient.QueryResult{
		Answer:  answer,
		Sources: sources,
	}, nil
}

func (b *fallbackBackend) Health(ctx context.Context) error {
	// The local pipeline is as healthy as its LLM provider.
	_, err := b.llm.Generate(ctx, "ping", llm.WithMaxTokens(1))
	return err
}
