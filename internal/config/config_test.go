package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_PORT", "8001")
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("ACCESS_TOKEN_EXPIRE_MINUTES", "30")
	t.Setenv("CHAT_CONTEXT_WINDOW", "not-a-number")

	cfg := Load()

	assert.Equal(t, "8001", cfg.App.Port)
	assert.Equal(t, StoreDriverMemory, cfg.Database.Driver)
	assert.Equal(t, 30*time.Minute, cfg.Auth.TokenTTL)
	assert.Equal(t, 10, cfg.Chat.ContextWindow, "unparsable values fall back")
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("STORE_DRIVER", "POSTGRES")
	t.Setenv("DB_CONNECTION_STRING", "postgres://localhost/chat")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("ACCESS_TOKEN_EXPIRE_MINUTES", "5")
	t.Setenv("AUTH_USER_CACHE_TTL_SECONDS", "0")
	t.Setenv("CHAT_CONTEXT_WINDOW", "4")
	t.Setenv("DB_AUTO_MIGRATE", "true")
	t.Setenv("LLM_PROVIDER", "Ollama")

	cfg := Load()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, StoreDriverPostgres, cfg.Database.Driver)
	assert.True(t, cfg.Database.AutoMigrate)
	assert.Equal(t, 5*time.Minute, cfg.Auth.TokenTTL)
	assert.Zero(t, cfg.Auth.UserCacheTTL)
	assert.Equal(t, 4, cfg.Chat.ContextWindow)
	assert.Equal(t, "ollama", cfg.Ai.LLMProvider)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			App:      AppConfig{Environment: "development"},
			Database: DatabaseConfig{Driver: StoreDriverMemory},
			Auth:     AuthConfig{JWTSecret: "k", TokenTTL: time.Minute},
			Ai:       AIConfig{Timeout: time.Second},
			Chat:     ChatConfig{ContextWindow: 10},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "dev without secret gets a fallback key", mutate: func(c *Config) { c.Auth.JWTSecret = "" }},
		{name: "prod without secret", mutate: func(c *Config) {
			c.App.Environment = "production"
			c.Auth.JWTSecret = ""
		}, wantErr: true},
		{name: "negative window", mutate: func(c *Config) { c.Chat.ContextWindow = -1 }, wantErr: true},
		{name: "zero token ttl", mutate: func(c *Config) { c.Auth.TokenTTL = 0 }, wantErr: true},
		{name: "postgres without dsn", mutate: func(c *Config) { c.Database.Driver = StoreDriverPostgres }, wantErr: true},
		{name: "unknown driver", mutate: func(c *Config) { c.Database.Driver = "sqlite" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.NotEmpty(t, cfg.Auth.JWTSecret)
		})
	}
}
