// Package config loads service configuration from environment variables,
// with an optional .env file for local development.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// AppConfig holds all configuration for the application.
type AppConfig struct {
	// ListenAddr is the HTTP listen address, e.g. ":8080".
	ListenAddr string

	// DBPath is the SQLite database file path.
	DBPath string

	// JWTSecret signs admin session tokens. Required.
	JWTSecret string

	// TokenTTL is how long session tokens remain valid.
	TokenTTL time.Duration

	// SweepCronSpec schedules the daily unpaid-marking sweep,
	// e.g. "0 9 * * *" for 09:00 every day.
	SweepCronSpec string

	// MinExportMonth clamps the lower bound of spreadsheet exports
	// ("YYYY-MM"). Empty means no clamp.
	MinExportMonth string
}

// Load reads configuration from environment variables and .env file (if present).
func Load() (*AppConfig, error) {
	// Attempt to load .env file. Errors are ignored if the file doesn't
	// exist; godotenv will not override existing env variables.
	_ = godotenv.Load()

	cfg := &AppConfig{
		ListenAddr:     getEnv("LISTEN_ADDR", ":8080"),
		DBPath:         getEnv("DB_PATH", "./data/societyd.db"),
		SweepCronSpec:  getEnv("SWEEP_CRON_SPEC", "0 9 * * *"),
		MinExportMonth: os.Getenv("MIN_EXPORT_MONTH"),
	}

	cfg.JWTSecret = os.Getenv("JWT_SECRET")
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is not set")
	}

	ttl := getEnv("TOKEN_TTL", "24h")
	d, err := time.ParseDuration(ttl)
	if err != nil {
		return nil, fmt.Errorf("invalid TOKEN_TTL %q: %w", ttl, err)
	}
	cfg.TokenTTL = d

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
