package config

import (
	"os"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the server binary.
type Config struct {
	Port      string
	Env       string
	LogLevel  string
	LogFormat string // json or console

	// BrowserBaseURL prefixes the browser join URL returned to agents.
	BrowserBaseURL string
}

// Load reads configuration from environment variables. In development it
// loads from a .env file if present.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:           getEnv("PORT", "8080"),
		Env:            getEnv("ENV", "development"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFormat:      getEnv("LOG_FORMAT", "json"),
		BrowserBaseURL: getEnv("BROWSER_BASE_URL", "http://localhost:8080"),
	}
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
