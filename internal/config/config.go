// Package config provides application configuration management.
// It loads settings from environment variables and provides defaults for
// the server, the chat-completion providers, storage and backup.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// DefaultChatModel is the chat-completion model used when none is configured.
const DefaultChatModel = "deepseek-chat"

// Config holds all application configuration
type Config struct {
	// LLM Configuration
	LLMProvider     string        // "deepseek" (OpenAI-compatible) or "gemini"
	DeepSeekAPIKey  string        // DeepSeek API key (bearer credential)
	DeepSeekBaseURL string        // DeepSeek endpoint base URL
	GeminiAPIKey    string        // Gemini API key (alternative provider)
	ChatModel       string        // Model identifier for chat completion
	LLMTimeout      time.Duration // Per-request timeout for the remote call

	// Server Configuration
	Port            string
	LogLevel        string
	Environment     string
	ShutdownTimeout time.Duration

	// Observability
	BetterstackToken string // Better Stack source token for log shipping (empty = disabled)
	SentryDSN        string // Sentry DSN for crash reporting (empty = disabled)
	MetricsUsername  string // Username for /metrics endpoint Basic Auth
	MetricsPassword  string // Password for /metrics endpoint Basic Auth (empty = no auth)

	// Data Configuration
	DataDir           string // Data directory for the SQLite database
	MaxQuestionLength int    // Maximum accepted question length in runes

	// Submit rate limit (token bucket, keyed by client)
	SubmitRateBurst  float64 // Maximum burst tokens per client
	SubmitRateRefill float64 // Tokens refilled per second

	// Snapshot backup (S3-compatible object storage; all empty = disabled)
	BackupEndpoint    string
	BackupAccessKeyID string
	BackupSecretKey   string
	BackupBucket      string
	BackupKey         string
	BackupInterval    time.Duration
}

// Load reads configuration from environment variables
// It attempts to load .env file first, then reads from env vars
func Load() (*Config, error) {
	// Try to load .env file (ignore error if file doesn't exist)
	_ = godotenv.Load()

	cfg := &Config{
		LLMProvider:     getEnv("LLM_PROVIDER", "deepseek"),
		DeepSeekAPIKey:  getEnv("DEEPSEEK_API_KEY", ""),
		DeepSeekBaseURL: getEnv("DEEPSEEK_BASE_URL", "https://api.deepseek.com"),
		GeminiAPIKey:    getEnv("GEMINI_API_KEY", ""),
		ChatModel:       getEnv("CHAT_MODEL", ""),
		LLMTimeout:      getDurationEnv("LLM_TIMEOUT", 30*time.Second),

		Port:            getEnv("PORT", "10000"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		Environment:     getEnv("ENVIRONMENT", "production"),
		ShutdownTimeout: getDurationEnv("SHUTDOWN_TIMEOUT", 30*time.Second),

		BetterstackToken: getEnv("BETTERSTACK_TOKEN", ""),
		SentryDSN:        getEnv("SENTRY_DSN", ""),
		MetricsUsername:  getEnv("METRICS_USERNAME", "prometheus"),
		MetricsPassword:  getEnv("METRICS_PASSWORD", ""),

		DataDir:           getEnv("DATA_DIR", getDefaultDataDir()),
		MaxQuestionLength: getIntEnv("MAX_QUESTION_LENGTH", 500),

		SubmitRateBurst:  getFloatEnv("SUBMIT_RATE_BURST", 5),
		SubmitRateRefill: getFloatEnv("SUBMIT_RATE_REFILL_PER_SEC", 0.1),

		BackupEndpoint:    getEnv("BACKUP_ENDPOINT", ""),
		BackupAccessKeyID: getEnv("BACKUP_ACCESS_KEY_ID", ""),
		BackupSecretKey:   getEnv("BACKUP_SECRET_KEY", ""),
		BackupBucket:      getEnv("BACKUP_BUCKET", ""),
		BackupKey:         getEnv("BACKUP_KEY", "snapshots/curiosity.db.zst"),
		BackupInterval:    getDurationEnv("BACKUP_INTERVAL", 6*time.Hour),
	}

	if cfg.ChatModel == "" {
		switch cfg.LLMProvider {
		case "gemini":
			cfg.ChatModel = "gemini-2.5-flash"
		default:
			cfg.ChatModel = DefaultChatModel
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that the configuration is internally consistent.
func (c *Config) Validate() error {
	switch c.LLMProvider {
	case "deepseek":
		if c.DeepSeekAPIKey == "" {
			return errors.New("DEEPSEEK_API_KEY is required when LLM_PROVIDER is deepseek")
		}
	case "gemini":
		if c.GeminiAPIKey == "" {
			return errors.New("GEMINI_API_KEY is required when LLM_PROVIDER is gemini")
		}
	default:
		return fmt.Errorf("unsupported LLM_PROVIDER: %s", c.LLMProvider)
	}

	if c.LLMTimeout <= 0 {
		return errors.New("LLM_TIMEOUT must be positive")
	}
	if c.MaxQuestionLength <= 0 {
		return errors.New("MAX_QUESTION_LENGTH must be positive")
	}

	if c.BackupEnabled() {
		if c.BackupAccessKeyID == "" || c.BackupSecretKey == "" || c.BackupBucket == "" {
			return errors.New("backup requires BACKUP_ACCESS_KEY_ID, BACKUP_SECRET_KEY and BACKUP_BUCKET")
		}
	}

	return nil
}

// BackupEnabled reports whether snapshot backup is configured.
func (c *Config) BackupEnabled() bool {
	return c.BackupEndpoint != ""
}

// SQLitePath returns the full path to the SQLite database file
func (c *Config) SQLitePath() string {
	return filepath.Join(c.DataDir, "curiosity.db")
}

// getDefaultDataDir returns a writable default data directory.
func getDefaultDataDir() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "curiosity-engine")
	}
	return "./data"
}

// getEnv reads an environment variable with a fallback default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getDurationEnv reads a duration environment variable with a fallback default
func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// getIntEnv reads an integer environment variable with a fallback default
func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

// getFloatEnv reads a float environment variable with a fallback default
func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}
