// Package config loads runtime settings from the environment.
package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

// Storage backends understood by kv.Open.
const (
	BackendMemory  = "memory"
	BackendFile    = "file"
	BackendBadger  = "badger"
	BackendSQLite  = "sqlite"
	BackendRedis   = "redis"
	BackendSurreal = "surreal"
)

// LLM providers understood by llm.NewGenerator.
const (
	ProviderOllama    = "ollama"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderBedrock   = "bedrock"
)

// Config holds all configuration values.
type Config struct {
	// Suggestion webhook
	WebhookURL string

	// Storage
	StorageBackend string
	DataDir        string
	RedisAddr      string
	RedisPassword  string
	RedisPrefix    string

	// SurrealDB connection (surreal backend)
	SurrealDBURL       string
	SurrealDBNamespace string
	SurrealDBDatabase  string
	SurrealDBUser      string
	SurrealDBPass      string
	SurrealDBAuthLevel string

	// Reference webhook server
	WebhookPort     string
	LLMProvider     string
	LLMModel        string
	OllamaHost      string
	OpenAIAPIKey    string
	AnthropicAPIKey string
	AWSRegion       string

	// Logging
	LogFile  string
	LogLevel slog.Level
}

// Load reads configuration from environment variables.
// A .env file in the working directory is applied first when present;
// variables already set in the environment win.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		WebhookURL: getEnv("FLIRTASSIST_WEBHOOK_URL", ""),

		StorageBackend: strings.ToLower(getEnv("FLIRTASSIST_STORAGE_BACKEND", BackendFile)),
		DataDir:        getEnv("FLIRTASSIST_DATA_DIR", defaultDataDir()),
		RedisAddr:      getEnv("FLIRTASSIST_REDIS_ADDR", "localhost:6379"),
		RedisPassword:  getEnv("FLIRTASSIST_REDIS_PASSWORD", ""),
		RedisPrefix:    getEnv("FLIRTASSIST_REDIS_PREFIX", ""),

		SurrealDBURL:       getEnv("SURREALDB_URL", "ws://localhost:8000/rpc"),
		SurrealDBNamespace: getEnv("SURREALDB_NAMESPACE", "flirtassist"),
		SurrealDBDatabase:  getEnv("SURREALDB_DATABASE", "local"),
		SurrealDBUser:      getEnv("SURREALDB_USER", "root"),
		SurrealDBPass:      getEnv("SURREALDB_PASS", "root"),
		SurrealDBAuthLevel: getEnv("SURREALDB_AUTH_LEVEL", "root"),

		WebhookPort:     getEnv("FLIRTASSIST_WEBHOOK_PORT", "8585"),
		LLMProvider:     strings.ToLower(getEnv("FLIRTASSIST_LLM_PROVIDER", ProviderOllama)),
		LLMModel:        getEnv("FLIRTASSIST_LLM_MODEL", "llava"),
		OllamaHost:      getEnv("OLLAMA_HOST", "http://localhost:11434"),
		OpenAIAPIKey:    getEnv("OPENAI_API_KEY", ""),
		AnthropicAPIKey: getEnv("ANTHROPIC_API_KEY", ""),
		AWSRegion:       getEnv("AWS_REGION", "us-east-1"),

		LogFile:  getEnv("FLIRTASSIST_LOG_FILE", filepath.Join(os.TempDir(), "flirtassist.log")),
		LogLevel: parseLogLevel(getEnv("FLIRTASSIST_LOG_LEVEL", "WARN")),
	}
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".flirtassist"
	}
	return filepath.Join(home, ".flirtassist")
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
