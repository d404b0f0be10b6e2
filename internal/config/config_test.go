package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_ADMIN_USER", "")
	t.Setenv("APP_ADMIN_PASSWORD", "")
	t.Setenv("APP_DATABASE_URL", "")
	t.Setenv("APP_LISTEN_ADDR", "")
	t.Setenv("APP_RETENTION_DAYS", "")
	t.Setenv("APP_INGEST_API_KEY", "")
	t.Setenv("APP_LOG_LEVEL", "")

	cfg := Load()

	assert.Equal(t, "admin", cfg.AdminUser)
	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, 0, cfg.RetentionDays)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Empty(t, cfg.IngestAPIKey)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("APP_ADMIN_USER", "ops")
	t.Setenv("APP_DATABASE_URL", "postgres://localhost/authpulse")
	t.Setenv("APP_LISTEN_ADDR", ":9090")
	t.Setenv("APP_RETENTION_DAYS", "90")
	t.Setenv("APP_LOG_LEVEL", "debug")

	cfg := Load()

	assert.Equal(t, "ops", cfg.AdminUser)
	assert.Equal(t, "postgres://localhost/authpulse", cfg.DatabaseURL)
	assert.Equal(t, ":9090", cfg.ListenAddr)
	assert.Equal(t, 90, cfg.RetentionDays)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadRetentionIgnoresBadValues(t *testing.T) {
	t.Setenv("APP_RETENTION_DAYS", "not-a-number")
	assert.Equal(t, 0, Load().RetentionDays)

	t.Setenv("APP_RETENTION_DAYS", "-5")
	assert.Equal(t, 0, Load().RetentionDays)
}
