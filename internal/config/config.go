package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the application.
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	NewRelic  NewRelicConfig
	Email     EmailConfig
	Geocoder  GeocoderConfig
	RateLimit RateLimitConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DatabaseConfig holds PostgreSQL configuration.
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// RedisConfig holds Redis configuration.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// NewRelicConfig holds New Relic configuration.
type NewRelicConfig struct {
	AppName    string
	LicenseKey string
	Enabled    bool
}

// EmailConfig holds the outgoing email queue configuration.
// With SMTP disabled, deliveries go to the process log.
type EmailConfig struct {
	SMTPEnabled    bool
	SMTPHost       string
	SMTPPort       string
	SMTPFrom       string
	SMTPUser       string
	SMTPPassword   string
	WorkerInterval time.Duration
	BatchSize      int
	RetryBaseDelay time.Duration
	MaxAttempts    int
}

// GeocoderConfig holds the geocoding backend configuration.
type GeocoderConfig struct {
	BaseURL string
	Timeout time.Duration
}

// RateLimitConfig holds the per-user mutation rate limit.
type RateLimitConfig struct {
	Enabled bool
	Limit   int
	Window  time.Duration
}

// Load loads configuration from environment variables.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			ReadTimeout:  getDurationEnv("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout: getDurationEnv("SERVER_WRITE_TIMEOUT", 10*time.Second),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "rideshare_tahoe"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnv("REDIS_DB", 0),
		},
		NewRelic: NewRelicConfig{
			AppName:    getEnv("NEW_RELIC_APP_NAME", "rideshare-tahoe"),
			LicenseKey: getEnv("NEW_RELIC_LICENSE_KEY", ""),
			Enabled:    getBoolEnv("NEW_RELIC_ENABLED", false),
		},
		Email: EmailConfig{
			SMTPEnabled:    getBoolEnv("SMTP_ENABLED", false),
			SMTPHost:       getEnv("SMTP_HOST", "localhost"),
			SMTPPort:       getEnv("SMTP_PORT", "587"),
			SMTPFrom:       getEnv("SMTP_FROM", "rides@rideshare-tahoe.example"),
			SMTPUser:       getEnv("SMTP_USER", ""),
			SMTPPassword:   getEnv("SMTP_PASSWORD", ""),
			WorkerInterval: getDurationEnv("EMAIL_WORKER_INTERVAL", 15*time.Second),
			BatchSize:      getIntEnv("EMAIL_BATCH_SIZE", 25),
			RetryBaseDelay: getDurationEnv("EMAIL_RETRY_BASE_DELAY", time.Minute),
			MaxAttempts:    getIntEnv("EMAIL_MAX_ATTEMPTS", 5),
		},
		Geocoder: GeocoderConfig{
			BaseURL: getEnv("GEOCODER_BASE_URL", "https://nominatim.openstreetmap.org"),
			Timeout: getDurationEnv("GEOCODER_TIMEOUT", 5*time.Second),
		},
		RateLimit: RateLimitConfig{
			Enabled: getBoolEnv("RATE_LIMIT_ENABLED", true),
			Limit:   getIntEnv("RATE_LIMIT_MAX", 30),
			Window:  getDurationEnv("RATE_LIMIT_WINDOW", time.Minute),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
