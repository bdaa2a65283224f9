package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 15*time.Minute, cfg.AccessTokenExpiration)
	assert.Equal(t, 30*24*time.Hour, cfg.RefreshTokenExpiration)
	assert.Equal(t, 10, cfg.CommandRateLimit)
	assert.Equal(t, 30, cfg.DashboardRateLimit)
	assert.Equal(t, time.Minute, cfg.RateLimitWindow)
	assert.Equal(t, "pt-BR", cfg.LabelLocale)
	assert.Equal(t, "hash", cfg.CategoryColors)
	assert.Equal(t, 5, cfg.TrendTopN)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("ENV", "production")
	t.Setenv("COMMAND_RATE_LIMIT", "3")
	t.Setenv("RATE_LIMIT_WINDOW_SECONDS", "10")
	t.Setenv("ASSISTANT_WEBHOOK_URL", "https://n8n.example.com/")
	t.Setenv("ASSISTANT_RPS", "0.5")
	t.Setenv("CORS_ORIGINS", "https://app.example.com, https://admin.example.com,")
	t.Setenv("TREND_TOP_N", "abc")

	cfg := Load()

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, 3, cfg.CommandRateLimit)
	assert.Equal(t, 10*time.Second, cfg.RateLimitWindow)
	assert.Equal(t, "https://n8n.example.com", cfg.AssistantWebhookURL)
	assert.Equal(t, 0.5, cfg.AssistantRPS)
	assert.Equal(t, []string{"https://app.example.com", "https://admin.example.com"}, cfg.CORSOrigins)
	assert.Equal(t, 5, cfg.TrendTopN)
}
