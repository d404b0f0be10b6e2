package config

import (
	"os"
	"strconv"
)

// Config holds the core runtime configuration for the service.
// Values are primarily sourced from environment variables, with
// sensible defaults where appropriate. See .env.example.
type Config struct {
	AdminUser     string
	AdminPassword string

	DatabaseURL string

	// RetentionDays is how long auth event rows are kept before the
	// retention worker deletes them. 0 disables cleanup entirely.
	RetentionDays int

	ListenAddr string

	// IngestAPIKey is a bootstrap bearer key for the StrathSpace web app
	// to report auth events with. If empty, a key must be created via
	// the dashboard before ingest works.
	IngestAPIKey string

	// LogLevel is a logrus level name (debug, info, warn, error).
	LogLevel string
}

// Load reads configuration from environment variables and applies defaults.
func Load() *Config {
	cfg := &Config{
		AdminUser:     getenv("APP_ADMIN_USER", "admin"),
		AdminPassword: getenv("APP_ADMIN_PASSWORD", "changeme"),
		DatabaseURL:   os.Getenv("APP_DATABASE_URL"),
		ListenAddr:    getenv("APP_LISTEN_ADDR", ":8080"),
		RetentionDays: 0,
		IngestAPIKey:  getenv("APP_INGEST_API_KEY", ""),
		LogLevel:      getenv("APP_LOG_LEVEL", "info"),
	}

	if v := os.Getenv("APP_RETENTION_DAYS"); v != "" {
		if days, err := strconv.Atoi(v); err == nil && days > 0 {
			cfg.RetentionDays = days
		}
	}

	return cfg
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
