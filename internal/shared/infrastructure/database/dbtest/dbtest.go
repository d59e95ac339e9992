// Package dbtest opens throwaway migrated SQLite databases for repository
// tests.
package dbtest

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/clinicq/internal/shared/infrastructure/database"
	"github.com/felixgeelhaar/clinicq/internal/shared/infrastructure/database/sqlite"
	"github.com/felixgeelhaar/clinicq/internal/shared/infrastructure/migrations"
)

// Open returns a connection to a fresh file-backed database with every
// migration applied. It is closed when the test ends.
func Open(t testing.TB) database.Connection {
	t.Helper()
	ctx := context.Background()
	conn, err := sqlite.Open(ctx, database.Config{
		Driver:     database.DriverSQLite,
		SQLitePath: filepath.Join(t.TempDir(), "clinicq.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	require.NoError(t, migrations.Run(ctx, conn))
	return conn
}
