package config

import (
	"errors"
	"os"
	"strconv"
)

// app config, loaded from environment variables
type Config struct {
	Port             string
	Provider         string
	StoreBackend     string // "memory" | "sqlite" | "postgres" | "redis"
	SQLitePath       string
	RedisAddr        string
	DataDir          string
	ArchiveSchedule  string
	ArchiveEnabled   bool
	CountdownSeconds int
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	config := &Config{
		Port:             getEnvOrDefault("PORT", "8080"),
		Provider:         getEnvOrDefault("AI_PROVIDER", "gemini"),
		StoreBackend:     getEnvOrDefault("STORE_BACKEND", "sqlite"),
		SQLitePath:       getEnvOrDefault("SQLITE_PATH", "./screening.db"),
		RedisAddr:        getEnvOrDefault("REDIS_ADDR", "localhost:6379"),
		DataDir:          getEnvOrDefault("DATA_DIR", "./data"),
		ArchiveSchedule:  getEnvOrDefault("ARCHIVE_SCHEDULE", "0 2 * * *"),
		ArchiveEnabled:   getEnvOrDefault("ARCHIVE_ENABLED", "false") == "true",
		CountdownSeconds: getEnvIntOrDefault("ANSWER_COUNTDOWN_SECONDS", 600),
	}
	if err := validateConfig(config); err != nil {
		return nil, err
	}
	return config, nil
}

func validateConfig(config *Config) error {
	if config.Provider != "gemini" {
		return errors.New("unsupported AI provider: " + config.Provider + ". Currently supported: gemini")
	}
	switch config.StoreBackend {
	case "memory", "sqlite", "postgres", "redis":
	default:
		return errors.New("unsupported store backend: " + config.StoreBackend)
	}
	if config.CountdownSeconds <= 0 {
		return errors.New("ANSWER_COUNTDOWN_SECONDS must be positive")
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}
