package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	// Environment
	Env       string // "development", "production", etc.
	LogLevel  string // debug, info, warn, error
	LogFormat string // text or json

	// Server
	ServerAddr string
	BaseURL    string

	// Database
	DatabaseURL string

	// Redis backs the rate limiter when set; otherwise limits are kept in memory.
	RedisURL string

	// OIDC bearer token verification for the API. Disabled when issuer is empty.
	OIDCIssuer   string
	OIDCClientID string

	// CORS
	CORSOrigins string // Comma-separated allowed origins

	// Rate limiting
	RateLimitMax int // requests per minute per IP

	// Monitor
	MonitorEnabled     bool
	MonitorSchedule    string // robfig/cron spec, e.g. "@every 15m"
	MonitorBatchSize   int    // targets per scheduled pass
	MonitorConcurrency int    // pages fetched in parallel per target

	// Fetcher
	FetchTimeout      time.Duration
	FetchMaxBytes     int64
	FetchUserAgent    string
	FetchAllowPrivate bool // allow private addresses; never enable in production

	// SMTP
	SMTPEnabled  bool
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string
	SMTPFromName string
	SMTPTLS      string // none, tls, starttls

	// Site branding used in alert emails
	SiteTitle string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() *Config {
	return &Config{
		Env:       getEnv("ENV", "development"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", ""),

		ServerAddr:  getEnv("SERVER_ADDR", ":3000"),
		BaseURL:     getEnv("BASE_URL", "http://localhost:3000"),
		DatabaseURL: getEnv("DATABASE_URL", "postgres://localhost:5432/pagewatch?sslmode=disable"),
		RedisURL:    getEnv("REDIS_URL", ""),

		OIDCIssuer:   getEnv("OIDC_ISSUER", ""),
		OIDCClientID: getEnv("OIDC_CLIENT_ID", ""),

		CORSOrigins:  getEnv("CORS_ORIGINS", ""),
		RateLimitMax: getEnvInt("RATE_LIMIT_MAX", 100),

		MonitorEnabled:     getEnvBool("MONITOR_ENABLED", true),
		MonitorSchedule:    getEnv("MONITOR_SCHEDULE", "@every 15m"),
		MonitorBatchSize:   getEnvInt("MONITOR_BATCH_SIZE", 50),
		MonitorConcurrency: getEnvInt("MONITOR_CONCURRENCY", 4),

		FetchTimeout:      getEnvDuration("FETCH_TIMEOUT", 15*time.Second),
		FetchMaxBytes:     int64(getEnvInt("FETCH_MAX_BYTES", 5<<20)),
		FetchUserAgent:    getEnv("FETCH_USER_AGENT", "pagewatch/1.0"),
		FetchAllowPrivate: getEnvBool("FETCH_ALLOW_PRIVATE", false),

		SMTPEnabled:  getEnvBool("SMTP_ENABLED", false),
		SMTPHost:     getEnv("SMTP_HOST", ""),
		SMTPPort:     getEnvInt("SMTP_PORT", 587),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		SMTPFrom:     getEnv("SMTP_FROM", ""),
		SMTPFromName: getEnv("SMTP_FROM_NAME", "pagewatch"),
		SMTPTLS:      strings.ToLower(getEnv("SMTP_TLS", "starttls")),

		SiteTitle: getEnv("SITE_TITLE", "pagewatch"),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		slog.Warn("ignoring invalid integer setting", "key", key, "value", value)
		return fallback
	}
	return n
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		slog.Warn("ignoring invalid boolean setting", "key", key, "value", value)
		return fallback
	}
	return b
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		slog.Warn("ignoring invalid duration setting", "key", key, "value", value)
		return fallback
	}
	return d
}

// IsDev returns true if the environment is set to development.
func (c *Config) IsDev() bool {
	return c.Env == "development" || c.Env == "dev"
}

// IsEmailEnabled returns true if SMTP is switched on and minimally configured.
func (c *Config) IsEmailEnabled() bool {
	return c.SMTPEnabled && c.SMTPHost != "" && c.SMTPFrom != ""
}

// IsAuthEnabled returns true if API requests must carry an OIDC ID token.
func (c *Config) IsAuthEnabled() bool {
	return c.OIDCIssuer != ""
}

// NewLogger builds the process logger. JSON output is the default outside
// development.
func (c *Config) NewLogger() *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	format := c.LogFormat
	if format == "" {
		format = "json"
		if c.IsDev() {
			format = "text"
		}
	}

	if format == "text" {
		return slog.New(slog.NewTextHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, opts))
}
