package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	AppEnv             string
	LogLevel           slog.Level
	HTTPPort           string
	PostgreSQLHost     string
	PostgreSQLPort     int64
	PostgreSQLUser     string
	PostgreSQLPassword string
	PostgreSQLDatabase string
	JWTSecret          string
	TokenExpiration    int64 // seconds
	RedisHost          string
	RedisPort          int64
	RedisPassword      string
	RedisDB            int64
	RateLimitWindow    int64 // seconds
	RateLimitMax       int64
	StatsCacheTTL      int64 // seconds
	MaxImageSize       int64 // bytes, per uploaded image
	MaxImageCount      int64
	SMTPHost           string
	SMTPPort           int64
	SMTPUser           string
	SMTPPassword       string
	SMTPFrom           string
}

func LoadConfig() *Config {
	return &Config{
		AppEnv:             getEnv("APP_ENV", "development"),              // Default development
		LogLevel:           getLogLevel(),                                 // Default INFO
		HTTPPort:           getEnv("HTTP_PORT", "5002"),                   // Default 5002
		PostgreSQLHost:     getEnv("POSTGRESQL_HOST", "db"),               // Default db
		PostgreSQLPort:     getEnvAsInt64("POSTGRESQL_PORT", 5432),        // Default 5432
		PostgreSQLUser:     getEnv("POSTGRESQL_USER", "apnadera_user"),    // Default user
		PostgreSQLPassword: getEnv("POSTGRESQL_PASSWORD", ""),             // Required outside development
		PostgreSQLDatabase: getEnv("POSTGRESQL_DATABASE", "apnadera_db"),  // Default database name
		JWTSecret:          getEnv("JWT_SECRET", ""),                      // Required, validated at startup
		TokenExpiration:    getEnvAsInt64("TOKEN_EXPIRATION", 30*24*3600), // Default 30 days
		RedisHost:          getEnv("REDIS_HOST", "redis"),                 // Default redis
		RedisPort:          getEnvAsInt64("REDIS_PORT", 6379),             // Default 6379
		RedisPassword:      getEnv("REDIS_PASSWORD", ""),                  // Default empty
		RedisDB:            getEnvAsInt64("REDIS_DATABASE", 0),            // Default 0
		RateLimitWindow:    getEnvAsInt64("RATE_LIMIT_WINDOW", 15*60),     // Default 15 minutes
		RateLimitMax:       getEnvAsInt64("RATE_LIMIT_MAX", 100),          // Default 100 requests per window
		StatsCacheTTL:      getEnvAsInt64("STATS_CACHE_TTL", 60),          // Default 60 seconds
		MaxImageSize:       getEnvAsInt64("MAX_IMAGE_SIZE", 5*1024*1024),  // Default 5 MB per image
		MaxImageCount:      getEnvAsInt64("MAX_IMAGE_COUNT", 10),          // Default 10 files per upload
		SMTPHost:           getEnv("SMTP_HOST", "smtp.gmail.com"),         // Default gmail
		SMTPPort:           getEnvAsInt64("SMTP_PORT", 587),               // Default 587
		SMTPUser:           getEnv("SMTP_USER", ""),                       // Default empty (mailer disabled)
		SMTPPassword:       getEnv("SMTP_PASSWORD", ""),                   // Default empty
		SMTPFrom:           getEnv("SMTP_FROM", "noreply@apnadera.com"),   // Default sender address
	}
}

// Validate checks that configuration the process cannot run without is
// present. Called once at startup; a non-nil error aborts the process.
func (c *Config) Validate() error {
	var missing []string
	if c.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}
	if c.PostgreSQLHost == "" {
		missing = append(missing, "POSTGRESQL_HOST")
	}
	if c.PostgreSQLDatabase == "" {
		missing = append(missing, "POSTGRESQL_DATABASE")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt64(key string, fallback int64) int64 {
	if valueStr, exists := os.LookupEnv(key); exists {
		if value, err := strconv.ParseInt(valueStr, 10, 64); err == nil {
			return value
		}
	}
	return fallback
}

func getLogLevel() slog.Level {
	levelStr := getEnv("LOG_LEVEL", "INFO")

	switch strings.ToUpper(levelStr) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
