package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// AppConfig holds everything the server needs besides the database DSN
type AppConfig struct {
	ServerPort string
	AppEnv     string
	LogLevel   string

	JWTSecret          string
	JWTExpirationHours int64

	UploadsDir    string
	PublicBaseURL string

	MaxActiveBooks int
	WatchRetry     time.Duration

	SentryDSN string

	// Optional bootstrap account created at startup if missing
	AdminEmail    string
	AdminPassword string
}

// Load reads the application configuration from the environment
func Load() (*AppConfig, error) {
	cfg := &AppConfig{
		ServerPort:         getEnv("SERVER_PORT", "8080"),
		AppEnv:             getEnv("APP_ENV", "development"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		JWTSecret:          os.Getenv("JWT_SECRET_KEY"),
		JWTExpirationHours: int64(getEnvInt("JWT_EXPIRATION_HOURS", 24)),
		UploadsDir:         getEnv("UPLOADS_DIR", "uploads"),
		PublicBaseURL:      getEnv("PUBLIC_BASE_URL", ""),
		MaxActiveBooks:     getEnvInt("MAX_ACTIVE_BOOKS", 1),
		WatchRetry:         getEnvDuration("WATCH_RETRY", 5*time.Second),
		SentryDSN:          os.Getenv("SENTRY_DSN"),
		AdminEmail:         os.Getenv("ADMIN_EMAIL"),
		AdminPassword:      os.Getenv("ADMIN_PASSWORD"),
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET_KEY not set in environment")
	}
	if cfg.MaxActiveBooks < 1 {
		return nil, fmt.Errorf("MAX_ACTIVE_BOOKS must be at least 1, got %d", cfg.MaxActiveBooks)
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return d
}
