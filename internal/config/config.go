// Package config loads and validates environment variables at startup.
// Fail-fast: if a required variable is missing, the process exits with an
// error. A local .env file is honoured when present.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration for the outreach service.
type Config struct {
	Port        string
	DatabaseURL string
	RedisURL    string

	// BulkFanOut bounds concurrent per-candidate dispatches in one batch.
	BulkFanOut int
	// DispatchPerSecond / DispatchBurst shape the per-channel send budget.
	DispatchPerSecond float64
	DispatchBurst     int

	// NoResponseAfterDays is the silence threshold: a contacted candidate
	// quiet this many days is swept into no_response.
	NoResponseAfterDays int
	SweepSpec           string
}

// Load reads environment variables and returns a validated Config.
func Load() (*Config, error) {
	_ = godotenv.Load() // optional; real deployments set the environment

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		return nil, fmt.Errorf("REDIS_URL is required")
	}

	cfg := &Config{
		Port:                getEnv("OUTREACH_PORT", "8084"),
		DatabaseURL:         dbURL,
		RedisURL:            redisURL,
		BulkFanOut:          8,
		DispatchPerSecond:   5,
		DispatchBurst:       10,
		NoResponseAfterDays: 2,
		SweepSpec:           getEnv("SWEEP_SPEC", "@every 1h"),
	}

	var err error
	if cfg.BulkFanOut, err = getEnvInt("BULK_FAN_OUT", cfg.BulkFanOut); err != nil {
		return nil, err
	}
	if cfg.DispatchBurst, err = getEnvInt("DISPATCH_BURST", cfg.DispatchBurst); err != nil {
		return nil, err
	}
	if cfg.NoResponseAfterDays, err = getEnvInt("NO_RESPONSE_AFTER_DAYS", cfg.NoResponseAfterDays); err != nil {
		return nil, err
	}
	if raw := os.Getenv("DISPATCH_PER_SECOND"); raw != "" {
		if cfg.DispatchPerSecond, err = strconv.ParseFloat(raw, 64); err != nil {
			return nil, fmt.Errorf("DISPATCH_PER_SECOND: %w", err)
		}
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return v, nil
}
