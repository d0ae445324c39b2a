package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds every environment-sourced setting. It is built once in main
// and passed by reference; nothing mutates it after Load returns.
type Config struct {
	// Server
	Port           string
	AllowedOrigins []string
	ServiceAPIKey  string

	// OpenAI
	OpenAIAPIKey      string
	OpenAIModel       string
	OpenAIMaxTokens   int
	OpenAITemperature float64
	GenerationTimeout time.Duration

	// Rate limiting
	RateLimitRequests int
	RateLimitWindow   time.Duration

	// Languages
	DefaultLanguage    string
	SupportedLanguages []string

	// Retention
	ConversationRetention time.Duration
	UsageRetention        time.Duration
	CleanupInterval       time.Duration

	// Optional Postgres archive
	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string
}

func Load() *Config {
	return &Config{
		Port:           getEnv("PORT", "8000"),
		AllowedOrigins: splitEnv("ALLOWED_ORIGINS", "http://localhost:5173"),
		ServiceAPIKey:  os.Getenv("AI_SERVICE_API_KEY"),

		OpenAIAPIKey:      os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:       getEnv("OPENAI_MODEL", "gpt-4"),
		OpenAIMaxTokens:   getEnvInt("OPENAI_MAX_TOKENS", 2000),
		OpenAITemperature: getEnvFloat("OPENAI_TEMPERATURE", 0.7),
		GenerationTimeout: getEnvSeconds("GENERATION_TIMEOUT_SECONDS", 30*time.Second),

		RateLimitRequests: getEnvInt("RATE_LIMIT_REQUESTS", 100),
		RateLimitWindow:   getEnvSeconds("RATE_LIMIT_WINDOW", 60*time.Second),

		DefaultLanguage:    getEnv("DEFAULT_LANGUAGE", "es"),
		SupportedLanguages: splitEnv("SUPPORTED_LANGUAGES", "es,en"),

		ConversationRetention: getEnvDays("CONVERSATION_RETENTION_DAYS", 30),
		UsageRetention:        getEnvDays("USAGE_RETENTION_DAYS", 90),
		CleanupInterval:       getEnvSeconds("CLEANUP_INTERVAL_SECONDS", time.Hour),

		DBHost:     os.Getenv("DB_HOST"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),
		DBPort:     getEnv("DB_PORT", "5432"),
	}
}

// ArchiveEnabled reports whether enough DB settings are present to open the
// Postgres archive.
func (c *Config) ArchiveEnabled() bool {
	return c.DBHost != "" && c.DBName != ""
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

// getEnvSeconds reads an integer number of seconds.
func getEnvSeconds(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return time.Duration(n) * time.Second
		}
	}
	return fallback
}

// getEnvDays reads an integer number of days.
func getEnvDays(key string, fallback int) time.Duration {
	days := getEnvInt(key, fallback)
	if days <= 0 {
		days = fallback
	}
	return time.Duration(days) * 24 * time.Hour
}

func splitEnv(key, fallback string) []string {
	raw := getEnv(key, fallback)
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
