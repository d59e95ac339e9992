package migrations_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/clinicq/internal/shared/infrastructure/database"
	"github.com/felixgeelhaar/clinicq/internal/shared/infrastructure/database/sqlite"
	"github.com/felixgeelhaar/clinicq/internal/shared/infrastructure/migrations"
)

func TestRun_SQLite(t *testing.T) {
	ctx := context.Background()
	conn, err := sqlite.Open(ctx, database.Config{SQLitePath: filepath.Join(t.TempDir(), "m.db")})
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, migrations.Run(ctx, conn))
	// second run is a no-op
	require.NoError(t, migrations.Run(ctx, conn))

	for _, table := range []string{"outbox", "availability_templates", "availability_blocks", "appointments", "reschedule_attempts"} {
		var n int
		err := conn.QueryRow(ctx, `SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&n)
		require.NoError(t, err)
		assert.Equal(t, 1, n, table)
	}
}

func TestRun_ActiveSlotIndexIgnoresCancelled(t *testing.T) {
	ctx := context.Background()
	conn, err := sqlite.Open(ctx, database.Config{SQLitePath: filepath.Join(t.TempDir(), "m.db")})
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, migrations.Run(ctx, conn))

	insert := `INSERT INTO appointments (id, patient_id, doctor_id, date, time, status) VALUES (?, 'p', 'd', '2026-03-02', '09:00', ?)`

	_, err = conn.Exec(ctx, insert, "a1", "Cancelled")
	require.NoError(t, err)
	_, err = conn.Exec(ctx, insert, "a2", "Pending")
	require.NoError(t, err)

	_, err = conn.Exec(ctx, insert, "a3", "Scheduled")
	require.Error(t, err)
	assert.True(t, database.IsUniqueViolation(err))
}
