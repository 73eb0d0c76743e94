package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	App        AppConfig
	Database   DatabaseConfig
	ElevenLabs ElevenLabsConfig
	Search     SearchConfig
	Ai         AIConfig
	Agent      AgentConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	RelayLogFilePath   string
	CorsAllowedOrigins string
	RedisURL           string
	NatsURL            string
}

type DatabaseConfig struct {
	Connection string
}

type ElevenLabsConfig struct {
	APIKey  string
	AgentID string
	BaseURL string
}

type SearchConfig struct {
	// Breadth is how many raw candidates the vector store returns before the
	// re-ranking pass; Depth is the final result count (Depth <= Breadth).
	Breadth       int
	Depth         int
	MinScore      float64
	CacheTTLSecs  int
	ExpandQueries bool
}

type AIConfig struct {
	EmbeddingProvider string // "gemini" or "ollama"
	OllamaBaseURL     string
	OllamaModel       string
	GeminiAPIKey      string
}

type AgentConfig struct {
	Prompt       string
	FirstMessage string
	Language     string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, using system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "8000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			RelayLogFilePath:   getEnv("RELAY_LOG_FILE_PATH", "logs/relay.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		ElevenLabs: ElevenLabsConfig{
			APIKey:  getEnv("ELEVENLABS_API_KEY", ""),
			AgentID: getEnv("ELEVENLABS_AGENT_ID", ""),
			BaseURL: getEnv("ELEVENLABS_WS_URL", "wss://api.elevenlabs.io/v1/convai/conversation"),
		},
		Search: SearchConfig{
			Breadth:       getEnvAsInt("SEARCH_BREADTH", 20),
			Depth:         getEnvAsInt("SEARCH_DEPTH", 5),
			MinScore:      getEnvAsFloat("SEARCH_MIN_SCORE", 0.35),
			CacheTTLSecs:  getEnvAsInt("SEARCH_CACHE_TTL_SECONDS", 30),
			ExpandQueries: getEnvAsBool("SEARCH_EXPAND_QUERIES", false),
		},
		Ai: AIConfig{
			EmbeddingProvider: getEnv("EMBEDDING_PROVIDER", "ollama"),
			OllamaBaseURL:     getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OllamaModel:       getEnv("OLLAMA_EMBEDDING_MODEL", "nomic-embed-text"),
			GeminiAPIKey:      getEnv("GOOGLE_GEMINI_API_KEY", ""),
		},
		Agent: AgentConfig{
			Prompt:       getEnv("AGENT_PROMPT", ""),
			FirstMessage: getEnv("AGENT_FIRST_MESSAGE", ""),
			Language:     getEnv("AGENT_LANGUAGE", "en"),
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

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}
