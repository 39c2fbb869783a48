// Package config provides application configuration.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds the application configuration. Everything comes from
// environment variables; there are no flags and no config file.
type Config struct {
	// Server settings
	Port string
	Host string

	// PollInterval is the pause between successful poll cycles.
	PollInterval time.Duration

	// APIBaseURL overrides the Wealthsimple API root. Empty selects
	// production.
	APIBaseURL string

	// HistoryDBPath enables poll-history recording when set. Left empty,
	// nothing is written to disk.
	HistoryDBPath string
}

// New creates a new Config with values from environment variables or defaults.
func New() *Config {
	return &Config{
		Port:          getEnv("PORT", "8080"),
		Host:          getEnv("HOST", "0.0.0.0"),
		PollInterval:  time.Duration(getEnvInt("POLL_INTERVAL", 300)) * time.Second,
		APIBaseURL:    os.Getenv("WS_API_URL"),
		HistoryDBPath: os.Getenv("HISTORY_DB_PATH"),
	}
}

// Address returns the full address to bind the server to.
func (c *Config) Address() string {
	return c.Host + ":" + c.Port
}

// getEnv returns the value of an environment variable or a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns an integer environment variable or a default value.
// Unparseable values fall back to the default.
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}
