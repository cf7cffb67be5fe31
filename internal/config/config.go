package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration, loaded once at startup and
// injected into the components that need it.
type Config struct {
	Environment string
	Port        string
	LogLevel    slog.Level

	DatabaseURL      string
	DBConnectRetries int
	DBRetryDelay     time.Duration

	RedisURL string

	// Comma-separated Kafka brokers; empty means in-process event delivery.
	KafkaBrokers []string

	JWT     JWTConfig
	Email   EmailConfig
	Uploads UploadConfig

	// Bootstrap admin account, created at startup when missing.
	AdminEmail    string
	AdminPassword string
}

type JWTConfig struct {
	Secret     string
	Expiry     time.Duration
	CookieName string

	// SecureCookie marks the session cookie HTTPS-only; set outside of
	// development so tokens never travel over plain HTTP.
	SecureCookie bool
}

type EmailConfig struct {
	Backend     string // "sendgrid" or "console"
	SendgridKey string
	FromName    string
	FromAddress string
	AppName     string
}

type UploadConfig struct {
	Dir          string
	MaxSizeBytes int64
}

// MaxUploadSize is the hard cap on submitted PDFs (exactly this size is
// still accepted).
const MaxUploadSize = 10 * 1024 * 1024

// LoadConfig reads .env (when present) and the environment into a Config.
// Missing required values are a startup failure.
func LoadConfig() (*Config, error) {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := &Config{
		Environment:      getEnv("ENVIRONMENT", "development"),
		Port:             getEnv("PORT", "8080"),
		LogLevel:         parseLogLevel(getEnv("LOG_LEVEL", "info")),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		DBConnectRetries: getEnvInt("DB_CONNECT_RETRIES", 3),
		DBRetryDelay:     getEnvDuration("DB_RETRY_DELAY", 2*time.Second),
		RedisURL:         os.Getenv("REDIS_URL"),
		JWT: JWTConfig{
			Secret:     os.Getenv("JWT_SECRET"),
			Expiry:     getEnvDuration("JWT_EXPIRY", 2*time.Hour),
			CookieName: getEnv("JWT_COOKIE_NAME", "token"),
		},
		Email: EmailConfig{
			Backend:     getEnv("EMAIL_BACKEND", "console"),
			SendgridKey: os.Getenv("SENDGRID_API_KEY"),
			FromName:    getEnv("EMAIL_FROM_NAME", "University Portal"),
			FromAddress: getEnv("EMAIL_FROM_ADDRESS", "no-reply@portal.local"),
			AppName:     getEnv("APP_NAME", "University Portal"),
		},
		Uploads: UploadConfig{
			Dir:          getEnv("UPLOAD_DIR", "uploads"),
			MaxSizeBytes: MaxUploadSize,
		},
		AdminEmail:    getEnv("ADMIN_EMAIL", "admin@portal.local"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
	}

	cfg.JWT.SecureCookie = cfg.Environment == "production"

	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		for _, b := range strings.Split(brokers, ",") {
			if b = strings.TrimSpace(b); b != "" {
				cfg.KafkaBrokers = append(cfg.KafkaBrokers, b)
			}
		}
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.JWT.Secret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.Email.Backend == "sendgrid" && cfg.Email.SendgridKey == "" {
		return nil, fmt.Errorf("SENDGRID_API_KEY is required with EMAIL_BACKEND=sendgrid")
	}

	return cfg, nil
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

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
