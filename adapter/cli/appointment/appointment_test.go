package appointment

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
	availabilityCommands "github.com/felixgeelhaar/clinicq/internal/availability/application/commands"
	availability "github.com/felixgeelhaar/clinicq/internal/availability/domain"
	scheduleQueries "github.com/felixgeelhaar/clinicq/internal/scheduling/application/queries"
	scheduling "github.com/felixgeelhaar/clinicq/internal/scheduling/domain"
	sharedDomain "github.com/felixgeelhaar/clinicq/internal/shared/domain"
	"github.com/felixgeelhaar/clinicq/internal/shared/infrastructure/database/dbtest"
)

const monday = "2026-03-02"

var (
	testDoctor  = sharedDomain.Actor{ID: uuid.MustParse("00000000-0000-0000-0000-00000000d0c1"), Role: sharedDomain.RoleDoctor}
	testPatient = sharedDomain.Actor{ID: uuid.MustParse("00000000-0000-0000-0000-0000000000a1"), Role: sharedDomain.RolePatient}
)

// setupTestApp installs a CLI app acting as the patient over a fresh
// SQLite database where the doctor works Monday 09:00-10:00.
func setupTestApp(t *testing.T) *cli.App {
	t.Helper()

	container := internalApp.NewContainerWithConnection(dbtest.Open(t), nil, nil)
	_, err := container.SetAvailabilityHandler.Handle(context.Background(), availabilityCommands.SetAvailabilityCommand{
		Actor:               testDoctor,
		Days:                map[string][]availability.Range{"Monday": {{Start: "09:00", End: "10:00"}}},
		SlotDurationMinutes: 15,
	})
	require.NoError(t, err)

	app := cli.NewApp(container, testPatient)
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

func bookAt(t *testing.T, at string) (string, error) {
	t.Helper()
	bookDoctor, bookPatient, bookDate, bookTime = testDoctor.ID.String(), "", monday, at
	return run(t, bookCmd)
}

func TestSlotsCmd(t *testing.T) {
	setupTestApp(t)

	slotsDoctor, slotsDate = testDoctor.ID.String(), monday
	out, err := run(t, slotsCmd)
	require.NoError(t, err)
	assert.Contains(t, out, "4 open slots (15 min each)")
	assert.Contains(t, out, "09:00  09:15  09:30  09:45")
}

func TestSlotsCmd_InvalidDoctor(t *testing.T) {
	setupTestApp(t)

	slotsDoctor, slotsDate = "dr-who", monday
	_, err := run(t, slotsCmd)
	assert.ErrorContains(t, err, "invalid doctor ID")
}

func TestBookCmd_ThenConflict(t *testing.T) {
	app := setupTestApp(t)

	out, err := bookAt(t, "09:15")
	require.NoError(t, err)
	assert.Contains(t, out, "Requested:")
	assert.Contains(t, out, "Pending")

	_, err = bookAt(t, "09:15")
	assert.ErrorIs(t, err, scheduling.ErrSlotConflict)

	list, err := app.ListAppointmentsHandler.Handle(context.Background(), scheduleQueries.ListAppointmentsQuery{Actor: testPatient})
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestBookCmd_WithoutApp(t *testing.T) {
	cli.SetApp(nil)

	_, err := bookAt(t, "09:00")
	assert.ErrorIs(t, err, cli.ErrNotInitialized)
}

func TestApproveCmd_RequiresDoctor(t *testing.T) {
	app := setupTestApp(t)

	_, err := bookAt(t, "09:00")
	require.NoError(t, err)
	list, err := app.ListAppointmentsHandler.Handle(context.Background(), scheduleQueries.ListAppointmentsQuery{Actor: testPatient})
	require.NoError(t, err)
	id := list[0].ID.String()

	_, err = run(t, approveCmd, id)
	assert.ErrorIs(t, err, sharedDomain.ErrForbidden)

	app.DefaultActor = testDoctor
	out, err := run(t, approveCmd, id)
	require.NoError(t, err)
	assert.Contains(t, out, "Scheduled")

	queueDoctor, queueDate = testDoctor.ID.String(), monday
	out, err = run(t, queueCmd)
	require.NoError(t, err)
	assert.Contains(t, out, "1 in queue (15 min per visit)")
	assert.Contains(t, out, "#1  09:00")
}

func TestRescheduleCmd(t *testing.T) {
	app := setupTestApp(t)

	_, err := bookAt(t, "09:00")
	require.NoError(t, err)
	list, err := app.ListAppointmentsHandler.Handle(context.Background(), scheduleQueries.ListAppointmentsQuery{Actor: testPatient})
	require.NoError(t, err)
	id := list[0].ID.String()

	rescheduleDate, rescheduleTime = "", ""
	_, err = run(t, rescheduleCmd, id)
	assert.ErrorContains(t, err, "--date, --time or both")

	rescheduleTime = "09:45"
	out, err := run(t, rescheduleCmd, id)
	require.NoError(t, err)
	assert.Contains(t, out, monday+" 09:45")

	out, err = run(t, historyCmd, id)
	require.NoError(t, err)
	assert.Contains(t, out, monday+" 09:00 -> "+monday+" 09:45  ok")
}

func TestListCmd_Empty(t *testing.T) {
	setupTestApp(t)

	listStatus, listDate, listLimit = "", "", 0
	out, err := run(t, listCmd)
	require.NoError(t, err)
	assert.Contains(t, out, "No appointments.")
}
