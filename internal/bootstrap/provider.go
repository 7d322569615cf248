package bootstrap

import (
	"fmt"

	"docinsight-be/internal/config"
	"docinsight-be/pkg/embedding"
)

// NewEmbeddingProvider selects the configured embedding backend. The OpenAI
// path demands a key up front so a misconfigured deployment fails at startup
// instead of halfway through an ingestion run.
func NewEmbeddingProvider(cfg *config.Config) (embedding.Provider, error) {
	switch cfg.Ai.EmbeddingProvider {
	case "ollama":
		// The chunk vector column is fixed at 1536 dimensions, so the local
		// model must be configured to produce the same width.
		return embedding.NewOllamaProvider(cfg.Ai.OllamaBaseURL, cfg.Ai.EmbeddingModel, 1536), nil
	case "openai":
		if cfg.Ai.OpenAIApiKey == "" {
			return nil, fmt.Errorf("openai embedding provider requires an API key")
		}
		return embedding.NewOpenAIProvider(cfg.Ai.OpenAIApiKey, cfg.Ai.OpenAIBaseURL, cfg.Ai.EmbeddingModel), nil
	default:
		return nil, fmt.Errorf("unknown embedding provider: %q", cfg.Ai.EmbeddingProvider)
	}
}
