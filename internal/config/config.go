package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// ErrMissingCredential is returned when the selected provider needs an API key
// that is not configured. The pipeline cannot start without it.
var ErrMissingCredential = errors.New("missing required credential")

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Keys      APIKeys
	Ai        AIConfig
	Embedding EmbeddingConfig
	Vector    VectorConfig
	Research  ResearchConfig
	Telemetry TelemetryConfig
}

type AppConfig struct {
	Port               string `validate:"required"`
	Environment        string `validate:"oneof=development production test"`
	LogFilePath        string `validate:"required"`
	CorsAllowedOrigins string
}

type DatabaseConfig struct {
	Driver     string `validate:"oneof=sqlite postgres"`
	Connection string // postgres DSN
	Path       string // sqlite file
}

type APIKeys struct {
	GoogleGemini string
	Jina         string
}

type AIConfig struct {
	EmbeddingProvider string `validate:"oneof=gemini ollama jina"` // "gemini", "ollama" or "jina"
	EmbeddingModel    string
	OllamaBaseURL     string
	OllamaModel       string
	LLMProvider       string `validate:"oneof=gemini ollama"`
	LLMModel          string `validate:"required"`
	StructuredModel   string // empty uses LLMModel for JSON generations
	MaxOutputTokens   int    `validate:"min=0"`
}

type EmbeddingConfig struct {
	BatchSize    int           `validate:"min=1"`
	BatchDelay   time.Duration `validate:"min=0"`
	MaxAttempts  int           `validate:"min=1"`
	CacheBackend string        `validate:"oneof=file redis"`
	CachePath    string
	RedisURL     string
}

type VectorConfig struct {
	Backend    string `validate:"oneof=memory pgvector"`
	Collection string `validate:"required"`
	BatchSize  int    `validate:"min=1"`
}

type ResearchConfig struct {
	ChunkSize        int           `validate:"min=1"`
	ChunkOverlap     int           `validate:"min=0,ltfield=ChunkSize"`
	ResultsPerDepth  int           `validate:"min=0"`
	CredibilityDelay time.Duration `validate:"min=0"`
	SummaryContextK  int           `validate:"min=1"`
	QuizQuestions    int           `validate:"min=1"`
	FetchTimeout     time.Duration `validate:"min=0"`
}

type TelemetryConfig struct {
	Enabled  bool
	Endpoint string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "prime_agent.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:8501"),
		},
		Database: DatabaseConfig{
			Driver:     getEnv("DB_DRIVER", "sqlite"),
			Connection: getEnv("DB_CONNECTION_STRING", ""),
			Path:       getEnv("DB_PATH", "prime_data.db"),
		},
		Keys: APIKeys{
			GoogleGemini: firstNonEmpty(getEnv("GEMINI_API_KEY", ""), getEnv("GOOGLE_GEMINI_API_KEY", "")),
			Jina:         getEnv("JINA_API_KEY", ""),
		},
		Ai: AIConfig{
			EmbeddingProvider: getEnv("EMBEDDING_PROVIDER", "gemini"),
			EmbeddingModel:    getEnv("EMBEDDING_MODEL", "text-embedding-004"),
			OllamaBaseURL:     getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OllamaModel:       getEnv("OLLAMA_EMBEDDING_MODEL", "nomic-embed-text"),
			LLMProvider:       getEnv("LLM_PROVIDER", "gemini"),
			LLMModel:          getEnv("LLM_MODEL", "gemini-1.5-flash"),
			StructuredModel:   getEnv("LLM_STRUCTURED_MODEL", ""),
			MaxOutputTokens:   getEnvAsInt("LLM_MAX_OUTPUT_TOKENS", 0),
		},
		Embedding: EmbeddingConfig{
			BatchSize:    getEnvAsInt("EMBED_BATCH_SIZE", 1),
			BatchDelay:   getEnvAsSeconds("EMBED_BATCH_SLEEP", 3*time.Second),
			MaxAttempts:  getEnvAsInt("EMBED_MAX_ATTEMPTS", 3),
			CacheBackend: getEnv("EMBED_CACHE_BACKEND", "file"),
			CachePath:    getEnv("EMBED_CACHE_PATH", defaultCachePath()),
			RedisURL:     getEnv("REDIS_URL", "redis://localhost:6379"),
		},
		Vector: VectorConfig{
			Backend:    getEnv("VECTOR_BACKEND", "memory"),
			Collection: getEnv("VECTOR_COLLECTION", "prime_docs"),
			BatchSize:  getEnvAsInt("VECTOR_BATCH_SIZE", 32),
		},
		Research: ResearchConfig{
			ChunkSize:        getEnvAsInt("CHUNK_SIZE", 1000),
			ChunkOverlap:     getEnvAsInt("CHUNK_OVERLAP", 100),
			ResultsPerDepth:  getEnvAsInt("SEARCH_RESULTS_PER_DEPTH", 3),
			CredibilityDelay: getEnvAsSeconds("CREDIBILITY_DELAY", 2*time.Second),
			SummaryContextK:  getEnvAsInt("SUMMARY_CONTEXT_K", 25),
			QuizQuestions:    getEnvAsInt("QUIZ_QUESTIONS", 5),
			FetchTimeout:     getEnvAsSeconds("FETCH_TIMEOUT", 10*time.Second),
		},
		Telemetry: TelemetryConfig{
			Enabled:  getEnv("OTEL_ENABLED", "false") == "true",
			Endpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
		},
	}
}

// Validate checks structural constraints and the credentials required by the
// selected providers.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if c.Ai.LLMProvider == "gemini" || c.Ai.EmbeddingProvider == "gemini" {
		if c.Keys.GoogleGemini == "" {
			return fmt.Errorf("%w: GEMINI_API_KEY not set", ErrMissingCredential)
		}
	}
	if c.Ai.EmbeddingProvider == "jina" && c.Keys.Jina == "" {
		return fmt.Errorf("%w: JINA_API_KEY not set", ErrMissingCredential)
	}
	if c.Database.Driver == "postgres" && c.Database.Connection == "" {
		return fmt.Errorf("%w: DB_CONNECTION_STRING not set", ErrMissingCredential)
	}
	if c.Vector.Backend == "pgvector" && c.Database.Driver != "postgres" {
		return fmt.Errorf("invalid configuration: pgvector backend requires DB_DRIVER=postgres")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

func defaultCachePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".prime_agent_embedding_cache.json"
	}
	return filepath.Join(home, ".prime_agent_embedding_cache.json")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
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

// getEnvAsSeconds accepts either a Go duration ("1500ms") or a plain number of
// seconds ("3.0").
func getEnvAsSeconds(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if strValue == "" {
		return fallback
	}
	if d, err := time.ParseDuration(strValue); err == nil {
		return d
	}
	if secs, err := strconv.ParseFloat(strValue, 64); err == nil {
		return time.Duration(secs * float64(time.Second))
	}
	return fallback
}
