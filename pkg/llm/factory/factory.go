package factory

import (
	"fmt"

	"docinsight-be/pkg/llm"
	"docinsight-be/pkg/llm/ollama"
	"docinsight-be/pkg/llm/openai"
)

// NewProvider builds the configured LLM backend. Unknown providers are a
// startup error, not a silent default.
func NewProvider(provider, model, ollamaBaseURL, openAIKey, openAIBaseURL string) (llm.Provider, error) {
	switch provider {
	case "ollama":
		return ollama.NewOllamaProvider(ollamaBaseURL, model), nil
	case "openai":
		if openAIKey == "" {
			return nil, fmt.Errorf("openai provider requires an API key")
		}
		return openai.NewOpenAIProvider(openAIKey, openAIBaseURL, model), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider: %q", provider)
	}
}
