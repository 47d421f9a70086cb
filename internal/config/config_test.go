package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("JWT_SECRET", "test-secret")

	LoadConfig()

	assert.Equal(t, "test-key", AppConfig.GeminiAPIKey)
	assert.Equal(t, "local", AppConfig.StorageBackend)
	assert.NotEmpty(t, AppConfig.DataDir)
	assert.Equal(t, "daily_report.db", AppConfig.DatabaseURL)
	assert.Equal(t, "8080", AppConfig.HTTPPort)
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("STORAGE_BACKEND", "sqlite")
	t.Setenv("DATABASE_URL", "/tmp/other.db")
	t.Setenv("HTTP_PORT", "9090")

	LoadConfig()

	assert.Equal(t, "sqlite", AppConfig.StorageBackend)
	assert.Equal(t, "/tmp/other.db", AppConfig.DatabaseURL)
	assert.Equal(t, "9090", AppConfig.HTTPPort)
}
