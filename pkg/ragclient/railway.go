package ragclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// RailwayBackend talks to the hosted RAG service over HTTPS. Every call is
// bounded by the client timeout so a wedged service degrades to the next
// backend instead of hanging the request.
type RailwayBackend struct {
	BaseURL string
	Client  *http.Client
}

const (
	railwayTimeout    = 30 * time.Second
	railwayHistoryMax = 5
)

func NewRailwayBackend(baseURL string) *RailwayBackend {
	return &RailwayBackend{
		BaseURL: baseURL,
		Client: &http.Client{
			Timeout: railwayTimeout,
		},
	}
}

func (b *RailwayBackend) Name() string {
	return "railway"
}

type railwayQueryRequest struct {
	Query   string           `json:"query"`
	Context []HistoryMessage `json:"context"`
	Options railwayOptions   `json:"options"`
}

type railwayOptions struct {
	MaxResults     int      `json:"max_results"`
	IncludeSources bool     `json:"include_sources"`
	SearchType     string   `json:"search_type"`
	Temperature    *float64 `json:"temperature,omitempty"`
}

type railwayQueryResponse struct {
	Answer  string   `json:"answer"`
	Sources []Source `json:"sources"`
}

func (b *RailwayBackend) Query(ctx context.Context, req QueryRequest) (*QueryResult, error) {
	history := req.History
	if len(history) > railwayHistoryMax {
		history = history[len(history)-railwayHistoryMax:]
	}
	maxResults := req.MaxResults
	if maxResults <= 0 {
		maxResults = 5
	}

	payload := railwayQueryRequest{
		Query:   req.Query,
		Context: history,
		Options: railwayOptions{
			MaxResults:     maxResults,
			IncludeSources: true,
			SearchType:     "hybrid",
			Temperature:    req.Temperature,
		},
	}
	jsonBody, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", b.BaseURL+"/query", bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := b.Client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("railway request failed: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("railway error: status %d, body: %s", resp.StatusCode, string(bodyBytes))
	}

	var parsed railwayQueryResponse
	if err := json.Unmarshal(bodyBytes, &parsed); err != nil {
		return nil, fmt.Errorf("railway response decode: %w", err)
	}

	return &QueryResult{
		Answer:  parsed.Answer,
		Sources: parsed.Sources,
	}, nil
}

func (b *RailwayBackend) Health(ctx context.Context) error {
	httpReq, err := http.NewRequestWithContext(ctx, "GET", b.BaseURL+"/health", nil)
	if err != nil {
		return err
	}

	resp, err := b.Client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("railway health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("railway unhealthy: status %d", resp.StatusCode)
	}
	return nil
}
