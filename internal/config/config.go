package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Auth     AuthConfig
	Ai       AIConfig
	Chat     ChatConfig
	Tracing  TracingConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
}

type DatabaseConfig struct {
	Driver      string // "postgres" or "memory"
	Connection  string
	AutoMigrate bool
}

type AuthConfig struct {
	JWTSecret    string
	TokenTTL     time.Duration
	UserCacheTTL time.Duration
}

type AIConfig struct {
	LLMProvider   string // "gemini", "ollama" or "static"
	LLMModel      string
	OllamaBaseURL string
	GoogleGemini  string
	Timeout       time.Duration
}

type ChatConfig struct {
	ContextWindow int
}

type TracingConfig struct {
	Enabled  bool
	Endpoint string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, using system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "8001"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
			NatsURL:            getEnv("NATS_URL", ""),
		},
		Database: DatabaseConfig{
			Driver:      strings.ToLower(getEnv("STORE_DRIVER", StoreDriverPostgres)),
			Connection:  getEnv("DB_CONNECTION_STRING", ""),
			AutoMigrate: getEnvAsBool("DB_AUTO_MIGRATE", false),
		},
		Auth: AuthConfig{
			JWTSecret:    getEnv("JWT_SECRET", ""),
			TokenTTL:     time.Duration(getEnvAsInt("ACCESS_TOKEN_EXPIRE_MINUTES", 30)) * time.Minute,
			UserCacheTTL: time.Duration(getEnvAsInt("AUTH_USER_CACHE_TTL_SECONDS", 30)) * time.Second,
		},
		Ai: AIConfig{
			LLMProvider:   strings.ToLower(getEnv("LLM_PROVIDER", "gemini")),
			LLMModel:      getEnv("LLM_MODEL", ""),
			OllamaBaseURL: getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			GoogleGemini:  getEnv("GOOGLE_GEMINI_API_KEY", ""),
			Timeout:       time.Duration(getEnvAsInt("LLM_TIMEOUT_SECONDS", 60)) * time.Second,
		},
		Chat: ChatConfig{
			ContextWindow: getEnvAsInt("CHAT_CONTEXT_WINDOW", 10),
		},
		Tracing: TracingConfig{
			Enabled:  getEnvAsBool("OTEL_ENABLED", false),
			Endpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
		},
	}
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// Validate checks values that would otherwise only fail on first use.
func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		if c.IsProduction() {
			return fmt.Errorf("JWT_SECRET is required in production")
		}
		log.Println("Warning: JWT_SECRET not set, using an insecure development key")
		c.Auth.JWTSecret = "dev-insecure-secret"
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("ACCESS_TOKEN_EXPIRE_MINUTES must be positive")
	}
	if c.Chat.ContextWindow < 0 {
		return fmt.Errorf("CHAT_CONTEXT_WINDOW must not be negative")
	}
	if c.Ai.Timeout <= 0 {
		return fmt.Errorf("LLM_TIMEOUT_SECONDS must be positive")
	}
	switch c.Database.Driver {
	case StoreDriverPostgres:
		if c.Database.Connection == "" {
			return fmt.Errorf("DB_CONNECTION_STRING is required for the postgres store")
		}
	case StoreDriverMemory:
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.Database.Driver)
	}
	return nil
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

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}
