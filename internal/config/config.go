package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Ai       AIConfig
	Rag      RagConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	ClientURL          string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	JwtSecret          string // empty leaves the API unauthenticated, dev only
}

type DatabaseConfig struct {
	Connection string
}

type AIConfig struct {
	EmbeddingProvider  string // "openai" or "ollama"
	EmbeddingModel     string
	EmbeddingRateLimit int // calls per second against the embedding API
	OpenAIApiKey       string
	OpenAIBaseURL      string
	OllamaBaseURL      string
	LLMProvider        string // "openai" or "ollama"
	LLMModel           string
}

type RagConfig struct {
	RailwayURL          string // Hosted RAG service; empty disables the primary backend
	SimilarityThreshold float64
	MaxResults          int
	ChunkSize           int
	ChunkOverlap        int
	HistoryWindow       int // messages of conversation context forwarded per query
	ProcessorIntervalMs int
	ProcessorBatchSize  int
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			ClientURL:          getEnv("CLIENT_URL", "http://localhost:5173"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
			JwtSecret:          getEnv("JWT_SECRET", ""),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Ai: AIConfig{
			EmbeddingProvider:  getEnv("EMBEDDING_PROVIDER", "openai"),
			EmbeddingModel:     getEnv("EMBEDDING_MODEL", "text-embedding-3-small"),
			EmbeddingRateLimit: getEnvAsInt("EMBEDDING_RATE_LIMIT", 10),
			OpenAIApiKey:       getEnv("OPENAI_API_KEY", ""),
			OpenAIBaseURL:      getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
			OllamaBaseURL:      getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			LLMProvider:        getEnv("LLM_PROVIDER", "openai"),
			LLMModel:           getEnv("LLM_MODEL", "gpt-4o-mini"),
		},
		Rag: RagConfig{
			RailwayURL:          getEnv("RAG_SERVICE_URL", ""),
			SimilarityThreshold: getEnvAsFloat("RAG_SIMILARITY_THRESHOLD", 0.3),
			MaxResults:          getEnvAsInt("RAG_MAX_RESULTS", 5),
			ChunkSize:           getEnvAsInt("RAG_CHUNK_SIZE", 1000),
			ChunkOverlap:        getEnvAsInt("RAG_CHUNK_OVERLAP", 200),
			HistoryWindow:       getEnvAsInt("RAG_HISTORY_WINDOW", 10),
			ProcessorIntervalMs: getEnvAsInt("PROCESSOR_INTERVAL_MS", 5000),
			ProcessorBatchSize:  getEnvAsInt("PROCESSOR_BATCH_SIZE", 5),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return fallback
}
