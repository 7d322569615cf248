package llm

import (
	"context"
)

// Message represents a chat message in a provider-agnostic format
type Message struct {
	Role    string // "user", "assistant", "system"
	Content string
}

// StreamChunk is one increment of a streamed completion. Err is set on the
// final chunk when the upstream call failed mid-stream; Done marks clean
// completion. Exactly one terminal chunk (Done or Err) closes every stream.
type StreamChunk struct {
	Delta string
	Done  bool
	Err   error
}

// Option allows for optional parameters like Temperature, MaxTokens, etc.
type Option func(*Options)

type Options struct {
	Temperature float64
	MaxTokens   int
	Model       string // Override default model
}

func WithTemperature(temp float64) Option {
	return func(o *Options) {
		o.Temperature = temp
	}
}

func WithMaxTokens(n int) Option {
	return func(o *Options) {
		o.MaxTokens = n
	}
}

func WithModel(model string) Option {
	return func(o *Options) {
		o.Model = model
	}
}

// BuildOptions folds functional options onto defaults.
func BuildOptions(opts ...Option) *Options {
	options := &Options{
		Temperature: 0.7,
	}
	for _, opt := range opts {
		opt(options)
	}
	return options
}

// Provider defines the contract for any LLM backend
type Provider interface {
	// Chat sends a chat history to the model and returns the full response
	Chat(ctx context.Context, history []Message, options ...Option) (string, error)

	// ChatStream sends a chat history and returns a channel of incremental
	// chunks. The channel is closed after a terminal chunk. Cancelling ctx
	// aborts the underlying model call, not just the consumer loop.
	ChatStream(ctx context.Context, history []Message, options ...Option) (<-chan StreamChunk, error)

	// Generate sends a single prompt to the model (convenience method)
	Generate(ctx context.Context, prompt string, options ...Option) (string, error)
}
