package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"chatfront/internal/models"
)

type Config struct {
	// Backends
	ConversationAPIURL string
	FloorPlanAPIURL    string

	// Identity
	UserID    int64
	AuthToken string
	JWTSecret string

	// Client behaviour
	DefaultModel models.ModelTag
	HTTPTimeout  time.Duration
	DownloadDir  string
	ToastTTL     time.Duration

	// Logging
	LogLevel  string
	LogFormat string
	LogFile   string

	// Stub backend
	StubAddr string
}

func Load() (*Config, error) {
	// Load .env file if it exists
	godotenv.Load()

	userID, err := strconv.ParseInt(getEnvOrDefault("USER_ID", "1"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid USER_ID: %w", err)
	}

	model, err := models.ParseModelTag(getEnvOrDefault("DEFAULT_MODEL", string(models.ModelOpenAI)))
	if err != nil {
		return nil, fmt.Errorf("invalid DEFAULT_MODEL: %w", err)
	}

	cfg := &Config{
		ConversationAPIURL: trimBaseURL(getEnvOrDefault("CONVERSATION_API_URL", "http://localhost:5000")),
		FloorPlanAPIURL:    trimBaseURL(getEnvOrDefault("FLOORPLAN_API_URL", "http://localhost:8000")),
		UserID:             userID,
		AuthToken:          getEnvOrDefault("AUTH_TOKEN", ""),
		JWTSecret:          getEnvOrDefault("JWT_SECRET", ""),
		DefaultModel:       model,
		HTTPTimeout:        time.Duration(getEnvAsIntOrDefault("HTTP_TIMEOUT_SECONDS", 0)) * time.Second,
		DownloadDir:        getEnvOrDefault("DOWNLOAD_DIR", "."),
		ToastTTL:           time.Duration(getEnvAsIntOrDefault("TOAST_TTL_SECONDS", 6)) * time.Second,
		LogLevel:           getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:          getEnvOrDefault("LOG_FORMAT", "json"),
		LogFile:            getEnvOrDefault("LOG_FILE", "chatfront.log"),
		StubAddr:           getEnvOrDefault("STUB_ADDR", ":5000"),
	}

	return cfg, nil
}

func getEnvOrDefault(key, defaultVal string) string {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return defaultVal
	}
	return val
}

func getEnvAsIntOrDefault(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil || n < 0 {
		return defaultVal
	}
	return n
}

func trimBaseURL(raw string) string {
	return strings.TrimRight(raw, "/")
}
