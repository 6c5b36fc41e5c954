// Package config loads application configuration from a .env file and
// environment variables. Environment variables always win over .env entries,
// so production deployments can ignore the file entirely.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all server configuration.
type Config struct {
	Port     int
	DBPath   string
	LogLevel string

	// JWTSecret signs access tokens. Required — every data route needs an
	// authenticated user, so the server refuses to start without it.
	JWTSecret string

	// ScryfallBaseURL points at the external card catalog. Overridable for
	// tests and for pointing a staging deploy at a mirror.
	ScryfallBaseURL string

	// GitHub OAuth is optional — sign-in routes are registered only when a
	// client ID is configured.
	GitHubClientID     string
	GitHubClientSecret string
	GitHubCallbackURL  string
}

// Load reads .env (if present) and the environment.
func Load() (*Config, error) {
	// Missing .env is fine — real environment variables may be set instead.
	_ = godotenv.Load()

	cfg := &Config{
		DBPath:             getEnv("DB_PATH", "data/deckhub.db"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		JWTSecret:          getEnv("JWT_SECRET", ""),
		ScryfallBaseURL:    getEnv("SCRYFALL_BASE_URL", "https://api.scryfall.com"),
		GitHubClientID:     getEnv("GITHUB_CLIENT_ID", ""),
		GitHubClientSecret: getEnv("GITHUB_CLIENT_SECRET", ""),
		GitHubCallbackURL:  getEnv("GITHUB_CALLBACK_URL", ""),
	}

	portStr := getEnv("PORT", "8080")
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("config: invalid PORT value %q: %w", portStr, err)
	}
	cfg.Port = port

	if cfg.GitHubCallbackURL == "" {
		cfg.GitHubCallbackURL = fmt.Sprintf("http://localhost:%d/auth/github/callback", cfg.Port)
	}

	return cfg, nil
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
