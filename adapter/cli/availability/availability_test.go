package availability

import (
	"bytes"
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/clinicq/adapter/cli"
	internalApp "github.com/felixgeelhaar/clinicq/internal/app"
	"github.com/felixgeelhaar/clinicq/internal/availability/domain"
	sharedDomain "github.com/felixgeelhaar/clinicq/internal/shared/domain"
	"github.com/felixgeelhaar/clinicq/internal/shared/infrastructure/database/dbtest"
)

var testDoctor = sharedDomain.Actor{ID: uuid.MustParse("00000000-0000-0000-0000-00000000d0c1"), Role: sharedDomain.RoleDoctor}

func setupTestApp(t *testing.T, actor sharedDomain.Actor) *cli.App {
	t.Helper()
	app := cli.NewApp(internalApp.NewContainerWithConnection(dbtest.Open(t), nil, nil), actor)
	cli.SetApp(app)
	t.Cleanup(func() { cli.SetApp(nil) })
	return app
}

func run(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetContext(context.Background())
	err := cmd.RunE(cmd, args)
	return out.String(), err
}

func TestParseDays(t *testing.T) {
	t.Run("multiple ranges", func(t *testing.T) {
		days, err := parseDays([]string{"Monday=09:00-12:00, 14:00-17:00", "Friday=09:00-13:00"})
		require.NoError(t, err)
		assert.Equal(t, []domain.Range{{Start: "09:00", End: "12:00"}, {Start: "14:00", End: "17:00"}}, days["Monday"])
		assert.Equal(t, []domain.Range{{Start: "09:00", End: "13:00"}}, days["Friday"])
	})

	t.Run("no flags keeps the week", func(t *testing.T) {
		days, err := parseDays(nil)
		require.NoError(t, err)
		assert.Nil(t, days)
	})

	t.Run("rejects malformed flags", func(t *testing.T) {
		for _, f := range []string{"Monday", "=09:00-10:00", "Monday=", "Monday=09:00"} {
			_, err := parseDays([]string{f})
			assert.Error(t, err, f)
		}
	})
}

func TestSetAndShow(t *testing.T) {
	setupTestApp(t, testDoctor)

	out, err := run(t, showCmd)
	require.NoError(t, err)
	assert.Contains(t, out, "No availability configured.")

	setDays, setDuration = []string{"Tuesday=08:00-10:00"}, 20
	out, err = run(t, setCmd)
	require.NoError(t, err)
	assert.Contains(t, out, "Slot length: 20 min")
	assert.Contains(t, out, "08:00-10:00")

	out, err = run(t, showCmd, testDoctor.ID.String())
	require.NoError(t, err)
	assert.Contains(t, out, "Tuesday")
}

func TestSetCmd_PartialUpdates(t *testing.T) {
	setupTestApp(t, testDoctor)

	setDays, setDuration = nil, 0
	_, err := run(t, setCmd)
	assert.ErrorContains(t, err, "--day, --slot or both")

	setDays, setDuration = []string{"Monday=09:00-10:00"}, 30
	_, err = run(t, setCmd)
	require.NoError(t, err)

	setDays, setDuration = nil, 20
	out, err := run(t, setCmd)
	require.NoError(t, err)
	assert.Contains(t, out, "Slot length: 20 min")
	assert.Contains(t, out, "09:00-10:00")

	setDays, setDuration = []string{"Friday=13:00-14:00"}, 0
	out, err = run(t, setCmd)
	require.NoError(t, err)
	assert.Contains(t, out, "Slot length: 20 min")
	assert.Contains(t, out, "13:00-14:00")
	assert.NotContains(t, out, "Monday")
}

func TestSetCmd_PatientForbidden(t *testing.T) {
	setupTestApp(t, sharedDomain.Actor{ID: uuid.New(), Role: sharedDomain.RolePatient})

	setDays, setDuration = []string{"Monday=09:00-10:00"}, 0
	_, err := run(t, setCmd)
	assert.ErrorIs(t, err, sharedDomain.ErrForbidden)
}

func TestBlocks(t *testing.T) {
	setupTestApp(t, testDoctor)

	listDate = ""
	out, err := run(t, listBlocksCmd)
	require.NoError(t, err)
	assert.Contains(t, out, "No blocks.")

	blockDate, blockStart, blockEnd, blockReason = "2026-03-02", "12:00", "13:00", "lunch"
	out, err = run(t, addBlockCmd)
	require.NoError(t, err)
	assert.Contains(t, out, "Blocked 2026-03-02 12:00-13:00")

	out, err = run(t, listBlocksCmd)
	require.NoError(t, err)
	assert.Contains(t, out, "lunch")

	_, err = run(t, removeBlockCmd, "not-a-uuid")
	assert.ErrorContains(t, err, "invalid block ID")
}

func TestCommands_WithoutApp(t *testing.T) {
	cli.SetApp(nil)

	for _, cmd := range []*cobra.Command{setCmd, showCmd, addBlockCmd, listBlocksCmd} {
		_, err := run(t, cmd)
		assert.ErrorIs(t, err, cli.ErrNotInitialized, cmd.Use)
	}
}
