package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configKeys = []string{
	"APP_ENV", "LOG_LEVEL", "LOG_FORMAT",
	"DATABASE_URL", "DATABASE_DRIVER", "SQLITE_PATH",
	"REDIS_URL", "RABBITMQ_URL", "HTTP_ADDR", "JWT_SECRET",
	"MCP_ADDR", "MCP_AUTH_TOKEN",
	"OUTBOX_POLL_INTERVAL", "OUTBOX_BATCH_SIZE", "OUTBOX_MAX_RETRIES",
	"OUTBOX_RETENTION_DAYS", "OUTBOX_CLEANUP_INTERVAL", "OUTBOX_PROCESSOR_ENABLED",
	"SLOT_CACHE_TTL", "REMINDER_CRON", "NOTIFY_BREAKER_FAILURES", "WORKER_HEALTH_ADDR",
}

// clearEnv blanks every key for the duration of the test. Load treats an
// empty value as unset.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range configKeys {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.AppEnv)
	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, "", cfg.DatabaseURL)
	assert.Equal(t, "auto", cfg.DatabaseDriver)
	assert.Equal(t, "", cfg.RedisURL)
	assert.Equal(t, "0.0.0.0:8080", cfg.HTTPAddr)
	assert.Equal(t, 100, cfg.OutboxBatchSize)
	assert.Equal(t, 30*time.Second, cfg.SlotCacheTTL)
	assert.Equal(t, "0 9 * * *", cfg.ReminderCron)
	assert.Equal(t, 5, cfg.NotifyBreakerFailures)
	assert.True(t, cfg.OutboxProcessorEnabled)
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "postgres://clinic@db/clinicq")
	t.Setenv("OUTBOX_BATCH_SIZE", "25")
	t.Setenv("SLOT_CACHE_TTL", "2m")
	t.Setenv("OUTBOX_PROCESSOR_ENABLED", "false")
	t.Setenv("REMINDER_CRON", "30 8 * * *")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres://clinic@db/clinicq", cfg.DatabaseURL)
	assert.Equal(t, 25, cfg.OutboxBatchSize)
	assert.Equal(t, 2*time.Minute, cfg.SlotCacheTTL)
	assert.False(t, cfg.OutboxProcessorEnabled)
	assert.Equal(t, "30 8 * * *", cfg.ReminderCron)
}

func TestLoad_IgnoresMalformedNumbers(t *testing.T) {
	clearEnv(t)
	t.Setenv("OUTBOX_MAX_RETRIES", "many")
	t.Setenv("OUTBOX_POLL_INTERVAL", "soon")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.OutboxMaxRetries)
	assert.Equal(t, 250*time.Millisecond, cfg.OutboxPollInterval)
}

func TestValidate(t *testing.T) {
	clearEnv(t)

	t.Run("production needs secrets", func(t *testing.T) {
		t.Setenv("APP_ENV", "production")
		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "JWT_SECRET")
		assert.Contains(t, err.Error(), "DATABASE_URL")
	})

	t.Run("unknown driver", func(t *testing.T) {
		cfg := &Config{DatabaseDriver: "mysql", OutboxBatchSize: 1, NotifyBreakerFailures: 1}
		assert.ErrorContains(t, cfg.Validate(), "DATABASE_DRIVER")
	})

	t.Run("postgres without url", func(t *testing.T) {
		cfg := &Config{DatabaseDriver: "postgres", OutboxBatchSize: 1, NotifyBreakerFailures: 1}
		assert.ErrorContains(t, cfg.Validate(), "DATABASE_URL")
	})
}
