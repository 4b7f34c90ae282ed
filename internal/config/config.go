package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Keys      APIKeys
	Ai        AIConfig
	Ingestion IngestionConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
}

type DatabaseConfig struct {
	Connection string
}

type APIKeys struct {
	GoogleGemini string
	Jina         string
}

type AIConfig struct {
	EmbeddingProvider string // "ollama", "gemini" or "jina"
	OllamaBaseURL     string
	OllamaModel       string
}

type IngestionConfig struct {
	ChunkSize      int
	ChunkOverlap   int
	EmbedBatchSize int
	WorkerPoolSize int
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Keys: APIKeys{
			GoogleGemini: getEnv("GOOGLE_GEMINI_API_KEY", ""),
			Jina:         getEnv("JINA_API_KEY", ""),
		},
		Ai: AIConfig{
			EmbeddingProvider: getEnv("EMBEDDING_PROVIDER", "ollama"),
			OllamaBaseURL:     getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OllamaModel:       getEnv("OLLAMA_EMBEDDING_MODEL", "nomic-embed-text"),
		},
		Ingestion: IngestionConfig{
			// Chunk size and overlap are fixed configuration, not per-call parameters.
			ChunkSize:      getEnvAsInt("INGEST_CHUNK_SIZE", 1000),
			ChunkOverlap:   getEnvAsInt("INGEST_CHUNK_OVERLAP", 200),
			EmbedBatchSize: getEnvAsInt("INGEST_EMBED_BATCH_SIZE", 16),
			WorkerPoolSize: getEnvAsInt("INGEST_WORKER_POOL_SIZE", 4),
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
