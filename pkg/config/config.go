package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config is the process configuration, read from the environment and an
// optional .env file.
type Config struct {
	AppEnv    string
	LogLevel  string
	LogFormat string

	// Database. An empty DatabaseURL selects the local SQLite file.
	DatabaseURL    string
	DatabaseDriver string
	SQLitePath     string

	// Optional infrastructure; empty disables the feature.
	RedisURL    string
	RabbitMQURL string

	HTTPAddr  string
	JWTSecret string

	MCPAddr      string
	MCPAuthToken string

	// Identity the CLI and MCP server act as.
	ActorID   string
	ActorRole string

	OutboxPollInterval     time.Duration
	OutboxBatchSize        int
	OutboxMaxRetries       int
	OutboxRetentionDays    int
	OutboxCleanupInterval  time.Duration
	OutboxProcessorEnabled bool

	SlotCacheTTL          time.Duration
	ReminderCron          string
	NotifyBreakerFailures int

	WorkerHealthAddr string
}

// Load reads .env (if present) and then the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		AppEnv:    getEnv("APP_ENV", "development"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),

		DatabaseURL:    getEnv("DATABASE_URL", ""),
		DatabaseDriver: getEnv("DATABASE_DRIVER", "auto"),
		SQLitePath:     getEnv("SQLITE_PATH", ""),

		RedisURL:    getEnv("REDIS_URL", ""),
		RabbitMQURL: getEnv("RABBITMQ_URL", ""),

		HTTPAddr:  getEnv("HTTP_ADDR", "0.0.0.0:8080"),
		JWTSecret: getEnv("JWT_SECRET", ""),

		MCPAddr:      getEnv("MCP_ADDR", "0.0.0.0:8082"),
		MCPAuthToken: getEnv("MCP_AUTH_TOKEN", ""),

		ActorID:   getEnv("CLINICQ_ACTOR_ID", ""),
		ActorRole: getEnv("CLINICQ_ACTOR_ROLE", "patient"),

		OutboxPollInterval:     getDurationEnv("OUTBOX_POLL_INTERVAL", 250*time.Millisecond),
		OutboxBatchSize:        getIntEnv("OUTBOX_BATCH_SIZE", 100),
		OutboxMaxRetries:       getIntEnv("OUTBOX_MAX_RETRIES", 5),
		OutboxRetentionDays:    getIntEnv("OUTBOX_RETENTION_DAYS", 14),
		OutboxCleanupInterval:  getDurationEnv("OUTBOX_CLEANUP_INTERVAL", 24*time.Hour),
		OutboxProcessorEnabled: getBoolEnv("OUTBOX_PROCESSOR_ENABLED", true),

		SlotCacheTTL:          getDurationEnv("SLOT_CACHE_TTL", 30*time.Second),
		ReminderCron:          getEnv("REMINDER_CRON", "0 9 * * *"),
		NotifyBreakerFailures: getIntEnv("NOTIFY_BREAKER_FAILURES", 5),

		WorkerHealthAddr: getEnv("WORKER_HEALTH_ADDR", "0.0.0.0:8081"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings that would misbehave at runtime.
func (c *Config) Validate() error {
	var errs []error

	switch strings.ToLower(c.DatabaseDriver) {
	case "", "auto", "postgres", "sqlite":
	default:
		errs = append(errs, fmt.Errorf("DATABASE_DRIVER %q is not one of auto, postgres, sqlite", c.DatabaseDriver))
	}
	if strings.EqualFold(c.DatabaseDriver, "postgres") && c.DatabaseURL == "" {
		errs = append(errs, errors.New("DATABASE_URL is required when DATABASE_DRIVER=postgres"))
	}
	if c.OutboxBatchSize <= 0 {
		errs = append(errs, errors.New("OUTBOX_BATCH_SIZE must be positive"))
	}
	if c.NotifyBreakerFailures <= 0 {
		errs = append(errs, errors.New("NOTIFY_BREAKER_FAILURES must be positive"))
	}
	if c.IsProduction() {
		if c.JWTSecret == "" {
			errs = append(errs, errors.New("JWT_SECRET is required in production"))
		}
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required in production"))
		}
	}
	return errors.Join(errs...)
}

func (c *Config) IsDevelopment() bool { return c.AppEnv == "development" }
func (c *Config) IsProduction() bool  { return c.AppEnv == "production" }

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getIntEnv(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func getBoolEnv(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
