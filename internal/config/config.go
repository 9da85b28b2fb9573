package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port          string
	Env           string
	LogLevel      string
	DatabaseURL   string
	RedisAddr     string
	RedisPassword string
	RedisTLS      bool

	// Booking defaults applied when a tenant profile does not override them.
	DefaultTimezone        string
	DefaultDurationMinutes int
	DefaultBufferMinutes   int
	BusinessHourStart      int
	BusinessHourEnd        int
	MaxSuggestedSlots      int

	// Conversation state
	SessionTTL time.Duration

	// Scheduler provider selection cache
	SchedulerCacheTTL time.Duration

	// Google OAuth application credentials (tenant tokens live in the config store)
	GoogleClientID     string
	GoogleClientSecret string

	// SendGrid confirmation notifications
	SendGridAPIKey    string
	SendGridFromEmail string
	SendGridFromName  string
	// NotificationEmail receives booking confirmations for every tenant
	// until per-tenant addresses exist.
	NotificationEmail string

	AdminJWTSecret string
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:          getEnv("PORT", "8080"),
		Env:           getEnv("ENV", "development"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		DatabaseURL:   getEnv("DATABASE_URL", ""),
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisTLS:      getEnvAsBool("REDIS_TLS", false),

		DefaultTimezone:        getEnv("DEFAULT_TIMEZONE", "America/Sao_Paulo"),
		DefaultDurationMinutes: getEnvAsInt("DEFAULT_DURATION_MINUTES", 30),
		DefaultBufferMinutes:   getEnvAsInt("DEFAULT_BUFFER_MINUTES", 0),
		BusinessHourStart:      getEnvAsInt("BUSINESS_HOUR_START", 9),
		BusinessHourEnd:        getEnvAsInt("BUSINESS_HOUR_END", 20),
		MaxSuggestedSlots:      getEnvAsInt("MAX_SUGGESTED_SLOTS", 3),

		SessionTTL:        getEnvAsDuration("SESSION_TTL", 30*time.Minute),
		SchedulerCacheTTL: getEnvAsDuration("SCHEDULER_CACHE_TTL", 5*time.Minute),

		GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),

		SendGridAPIKey:    getEnv("SENDGRID_API_KEY", ""),
		SendGridFromEmail: getEnv("SENDGRID_FROM_EMAIL", ""),
		SendGridFromName:  getEnv("SENDGRID_FROM_NAME", "Agenda"),
		NotificationEmail: getEnv("NOTIFICATION_EMAIL", ""),

		AdminJWTSecret: getEnv("ADMIN_JWT_SECRET", ""),
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	raw := strings.TrimSpace(getEnv(key, ""))
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}

func getEnvAsBool(key string, fallback bool) bool {
	raw := strings.TrimSpace(getEnv(key, ""))
	if raw == "" {
		return fallback
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}
	return value
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(getEnv(key, ""))
	if raw == "" {
		return fallback
	}
	value, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}
	return value
}
