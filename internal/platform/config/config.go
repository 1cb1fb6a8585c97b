package config

import (
	"os"
	"strconv"
	"time"
)

// Config captures everything the onboarding service reads from the
// environment so main stays lean.
type Config struct {
	Addr        string
	DatabaseURL string
	RedisURL    string

	// SimulateIntegrations keeps external sends (SMTP) as logged no-ops.
	SimulateIntegrations bool

	DefaultTimeZone string
	DefaultLocation string

	Assistant AssistantConfig
	SMTP      SMTPConfig
}

// AssistantConfig holds settings for the OpenAI-compatible assistant. An empty
// APIKey means the assistant is unconfigured and every call takes the
// deterministic local fallback.
type AssistantConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float64
	Timeout     time.Duration
}

// SMTPConfig holds mail transport settings. Host may stay empty when running
// in simulate mode.
type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

// FromEnv builds a Config from environment variables with development defaults.
func FromEnv() Config {
	return Config{
		Addr:                 getEnv("ONBOARD_ADDR", ":8080"),
		DatabaseURL:          os.Getenv("DATABASE_URL"),
		RedisURL:             os.Getenv("REDIS_URL"),
		SimulateIntegrations: getEnv("SIMULATE_INTEGRATIONS", "true") == "true",
		DefaultTimeZone:      getEnv("DEFAULT_TZ", "Asia/Bangkok"),
		DefaultLocation:      getEnv("DEFAULT_LOCATION", "HQ – Room A"),
		Assistant: AssistantConfig{
			APIKey:      os.Getenv("OPENAI_API_KEY"),
			BaseURL:     os.Getenv("OPENAI_BASE_URL"),
			Model:       getEnv("LLM_MODEL", "gpt-4o-mini"),
			Temperature: getEnvFloat("LLM_TEMPERATURE", 0.2),
			Timeout:     time.Duration(getEnvInt("LLM_TIMEOUT", 30)) * time.Second,
		},
		SMTP: SMTPConfig{
			Host:     os.Getenv("SMTP_HOST"),
			Port:     getEnvInt("SMTP_PORT", 587),
			User:     os.Getenv("SMTP_USER"),
			Password: os.Getenv("SMTP_PASSWORD"),
			From:     getEnv("SMTP_FROM", "hr@onboard.local"),
		},
	}
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
