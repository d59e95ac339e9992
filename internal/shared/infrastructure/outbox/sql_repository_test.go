package outbox_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/clinicq/internal/shared/infrastructure/database"
	"github.com/felixgeelhaar/clinicq/internal/shared/infrastructure/database/sqlite"
	"github.com/felixgeelhaar/clinicq/internal/shared/infrastructure/migrations"
	"github.com/felixgeelhaar/clinicq/internal/shared/infrastructure/outbox"
)

func newSQLRepo(t *testing.T) (*outbox.SQLRepository, database.Connection) {
	t.Helper()
	ctx := context.Background()
	conn, err := sqlite.Open(ctx, database.Config{SQLitePath: filepath.Join(t.TempDir(), "outbox.db")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	require.NoError(t, migrations.Run(ctx, conn))
	return outbox.NewSQLRepository(conn), conn
}

func TestSQLRepository_Lifecycle(t *testing.T) {
	ctx := context.Background()
	repo, _ := newSQLRepo(t)

	first := seed(t, repo, "appointment.requested")
	seed(t, repo, "appointment.approved")

	pending, err := repo.GetUnpublished(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, first.EventID, pending[0].EventID)
	assert.JSONEq(t, `{"date":"2026-03-02"}`, string(pending[0].Payload))
	assert.JSONEq(t, `{}`, string(pending[0].Metadata))
	assert.Nil(t, pending[0].PublishedAt)

	require.NoError(t, repo.MarkPublished(ctx, pending[0].ID))
	require.NoError(t, repo.MarkFailed(ctx, pending[1].ID, "nack", time.Now().Add(time.Hour)))

	pending, err = repo.GetUnpublished(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending)

	removed, err := repo.DeleteOld(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)
}

func TestSQLRepository_FailedThenDue(t *testing.T) {
	ctx := context.Background()
	repo, _ := newSQLRepo(t)
	seed(t, repo, "appointment.cancelled")

	pending, err := repo.GetUnpublished(ctx, 1)
	require.NoError(t, err)
	require.Len(t, pending, 1)

	require.NoError(t, repo.MarkFailed(ctx, pending[0].ID, "timeout", time.Now().Add(-time.Minute)))

	pending, err = repo.GetUnpublished(ctx, 1)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, 1, pending[0].RetryCount)
	require.NotNil(t, pending[0].LastError)
	assert.Equal(t, "timeout", *pending[0].LastError)

	require.NoError(t, repo.MarkDead(ctx, pending[0].ID, "gave up"))
	pending, err = repo.GetUnpublished(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestSQLRepository_SaveBatchJoinsTransaction(t *testing.T) {
	ctx := context.Background()
	repo, conn := newSQLRepo(t)
	uow := database.NewUnitOfWork(conn)

	seed(t, repo, "appointment.requested")
	discarded := seed(t, outbox.NewInMemoryRepository(), "appointment.declined")

	txCtx, err := uow.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, repo.SaveBatch(txCtx, []*outbox.Message{discarded}))
	require.NoError(t, uow.Rollback(txCtx))

	pending, err := repo.GetUnpublished(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, pending, 1)
}
