package ragclient

import "context"

// HistoryMessage is one prior conversation turn forwarded to a backend.
type HistoryMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// QueryRequest is the uniform input every backend accepts.
type QueryRequest struct {
	Query       string
	History     []HistoryMessage // last turns, newest last
	MaxResults  int
	Temperature *float64 // nil means backend default
}

// Source is a retrieved reference attached to a backend answer.
type Source struct {
	DocumentId    string  `json:"document_id"`
	DocumentTitle string  `json:"document_title"`
	ChunkId       string  `json:"chunk_id"`
	Relevance     float64 `json:"relevance_score"`
}

// QueryResult is the uniform output of a backend attempt. Service names the
// backend that produced the answer so clients can surface degraded mode.
type QueryResult struct {
	Answer  string
	Sources []Source
	Service string
}

// Backend is one uniform attempt in the fallback chain.
type Backend interface {
	Name() string
	Query(ctx context.Context, req QueryRequest) (*QueryResult, error)
	Health(ctx context.Context) error
}
