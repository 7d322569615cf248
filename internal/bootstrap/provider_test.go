package bootstrap

import (
	"testing"

	"docinsight-be/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEmbeddingProviderOpenAIRequiresKey(t *testing.T) {
	cfg := &config.Config{}
	cfg.Ai.EmbeddingProvider = "openai"
	cfg.Ai.EmbeddingModel = "text-embedding-3-small"

	_, err := NewEmbeddingProvider(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API key")
}

func TestNewEmbeddingProviderOpenAIWithKey(t *testing.T) {
	cfg := &config.Config{}
	cfg.Ai.EmbeddingProvider = "openai"
	cfg.Ai.OpenAIApiKey = "sk-test"
	cfg.Ai.EmbeddingModel = "text-embedding-3-small"

	provider, err := NewEmbeddingProvider(cfg)
	require.NoError(t, err)
	assert.NotNil(t, provider)
}

func TestNewEmbeddingProviderOllamaNeedsNoKey(t *testing.T) {
	cfg := &config.Config{}
	cfg.Ai.EmbeddingProvider = "ollama"
	cfg.Ai.OllamaBaseURL = "http://localhost:11434"
	cfg.Ai.EmbeddingModel = "nomic-embed-text"

	provider, err := NewEmbeddingProvider(cfg)
	require.NoError(t, err)
	assert.NotNil(t, provider)
}

func TestNewEmbeddingProviderUnknown(t *testing.T) {
	cfg := &config.Config{}
	cfg.Ai.EmbeddingProvider = "carrier-pigeon"

	_, err := NewEmbeddingProvider(cfg)
	require.Error(t, err)
}
