package persistence

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	availability "github.com/felixgeelhaar/clinicq/internal/availability/domain"
	"github.com/felixgeelhaar/clinicq/internal/scheduling/domain"
	sharedDomain "github.com/felixgeelhaar/clinicq/internal/shared/domain"
	"github.com/felixgeelhaar/clinicq/internal/shared/infrastructure/database/dbtest"
)

var monday = availability.NewCalendarDate(2026, time.March, 2)

func book(doctorID uuid.UUID, date availability.CalendarDate, at string) *domain.Appointment {
	return domain.NewAppointment(uuid.New(), doctorID, date, availability.MustClockTime(at))
}

func TestLedger_InsertAndFind(t *testing.T) {
	ctx := context.Background()
	ledger := NewLedger(dbtest.Open(t))
	doctorID := uuid.New()

	a := book(doctorID, monday, "09:00")
	require.NoError(t, ledger.Insert(ctx, a))

	found, err := ledger.FindByID(ctx, a.ID())
	require.NoError(t, err)
	assert.Equal(t, a.PatientID(), found.PatientID())
	assert.Equal(t, doctorID, found.DoctorID())
	assert.Equal(t, "2026-03-02", found.Date().String())
	assert.Equal(t, "09:00", found.Time().String())
	assert.Equal(t, domain.StatusPending, found.Status())
	assert.Nil(t, found.RescheduledFrom())
	assert.Nil(t, found.RemindedAt())
	assert.Equal(t, 1, found.Version())

	_, err = ledger.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, domain.ErrAppointmentNotFound)
}

func TestLedger_InsertConflict(t *testing.T) {
	ctx := context.Background()
	ledger := NewLedger(dbtest.Open(t))
	doctorID := uuid.New()

	first := book(doctorID, monday, "09:00")
	require.NoError(t, ledger.Insert(ctx, first))
	assert.ErrorIs(t, ledger.Insert(ctx, book(doctorID, monday, "09:00")), domain.ErrSlotConflict)

	// Same time for another doctor or another day is free.
	require.NoError(t, ledger.Insert(ctx, book(uuid.New(), monday, "09:00")))
	require.NoError(t, ledger.Insert(ctx, book(doctorID, monday.AddDays(1), "09:00")))

	// A cancelled appointment releases the slot.
	require.NoError(t, first.Cancel(sharedDomain.Actor{ID: first.PatientID(), Role: sharedDomain.RolePatient}))
	require.NoError(t, ledger.Update(ctx, first))
	require.NoError(t, ledger.Insert(ctx, book(doctorID, monday, "09:00")))
}

func TestLedger_ConcurrentInsertsOneWins(t *testing.T) {
	ctx := context.Background()
	ledger := NewLedger(dbtest.Open(t))
	doctorID := uuid.New()

	const racers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		wins      int
		conflicts int
	)
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := ledger.Insert(ctx, book(doctorID, monday, "09:00"))
			mu.Lock()
			defer mu.Unlock()
			switch err {
			case nil:
				wins++
			case domain.ErrSlotConflict:
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, wins)
	assert.Equal(t, racers-1, conflicts)

	live, err := ledger.ListActiveByDoctorDate(ctx, doctorID, monday)
	require.NoError(t, err)
	assert.Len(t, live, 1)
}

func TestLedger_UpdateOntoTakenSlot(t *testing.T) {
	ctx := context.Background()
	ledger := NewLedger(dbtest.Open(t))
	doctorID := uuid.New()

	a := book(doctorID, monday, "09:00")
	b := book(doctorID, monday, "09:15")
	require.NoError(t, ledger.Insert(ctx, a))
	require.NoError(t, ledger.Insert(ctx, b))

	admin := sharedDomain.Actor{ID: uuid.New(), Role: sharedDomain.RoleAdmin}
	require.NoError(t, b.Reschedule(admin, monday, availability.MustClockTime("09:00")))
	assert.ErrorIs(t, ledger.Update(ctx, b), domain.ErrSlotConflict)

	require.NoError(t, b.Reschedule(admin, monday, availability.MustClockTime("09:30")))
	require.NoError(t, ledger.Update(ctx, b))

	found, err := ledger.FindByID(ctx, b.ID())
	require.NoError(t, err)
	assert.Equal(t, "09:30", found.Time().String())
	require.NotNil(t, found.RescheduledFrom())
	assert.Equal(t, b.ID(), *found.RescheduledFrom())
	assert.Equal(t, 2, found.Version())
}

func TestLedger_UpdateMissing(t *testing.T) {
	ledger := NewLedger(dbtest.Open(t))
	err := ledger.Update(context.Background(), book(uuid.New(), monday, "09:00"))
	assert.ErrorIs(t, err, domain.ErrAppointmentNotFound)
}

func TestLedger_FindActiveAt(t *testing.T) {
	ctx := context.Background()
	ledger := NewLedger(dbtest.Open(t))
	doctorID := uuid.New()
	nine := availability.MustClockTime("09:00")

	free, err := ledger.FindActiveAt(ctx, doctorID, monday, nine, uuid.Nil)
	require.NoError(t, err)
	assert.Nil(t, free)

	a := book(doctorID, monday, "09:00")
	require.NoError(t, ledger.Insert(ctx, a))

	taken, err := ledger.FindActiveAt(ctx, doctorID, monday, nine, uuid.Nil)
	require.NoError(t, err)
	require.NotNil(t, taken)
	assert.Equal(t, a.ID(), taken.ID())

	self, err := ledger.FindActiveAt(ctx, doctorID, monday, nine, a.ID())
	require.NoError(t, err)
	assert.Nil(t, self, "own slot is excluded")
}

func TestLedger_ListActiveByDoctorDate(t *testing.T) {
	ctx := context.Background()
	ledger := NewLedger(dbtest.Open(t))
	doctorID := uuid.New()

	late := book(doctorID, monday, "11:00")
	early := book(doctorID, monday, "08:30")
	gone := book(doctorID, monday, "10:00")
	for _, a := range []*domain.Appointment{late, early, gone} {
		require.NoError(t, ledger.Insert(ctx, a))
	}
	require.NoError(t, gone.Cancel(sharedDomain.Actor{ID: gone.PatientID(), Role: sharedDomain.RolePatient}))
	require.NoError(t, ledger.Update(ctx, gone))

	live, err := ledger.ListActiveByDoctorDate(ctx, doctorID, monday)
	require.NoError(t, err)
	require.Len(t, live, 2)
	assert.Equal(t, "08:30", live[0].Time().String())
	assert.Equal(t, "11:00", live[1].Time().String())
}

func TestLedger_List(t *testing.T) {
	ctx := context.Background()
	ledger := NewLedger(dbtest.Open(t))
	doctorID, otherDoctor := uuid.New(), uuid.New()

	mine := book(doctorID, monday, "09:00")
	tomorrow := book(doctorID, monday.AddDays(1), "08:00")
	theirs := book(otherDoctor, monday, "09:00")
	for _, a := range []*domain.Appointment{tomorrow, mine, theirs} {
		require.NoError(t, ledger.Insert(ctx, a))
	}
	doctor := sharedDomain.Actor{ID: doctorID, Role: sharedDomain.RoleDoctor}
	require.NoError(t, mine.Approve(doctor))
	require.NoError(t, ledger.Update(ctx, mine))

	all, err := ledger.List(ctx, domain.ListFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	byDoctor, err := ledger.List(ctx, domain.ListFilter{DoctorID: &doctorID})
	require.NoError(t, err)
	require.Len(t, byDoctor, 2)
	assert.Equal(t, mine.ID(), byDoctor[0].ID(), "ordered by date then time")

	patientID := theirs.PatientID()
	byPatient, err := ledger.List(ctx, domain.ListFilter{PatientID: &patientID})
	require.NoError(t, err)
	require.Len(t, byPatient, 1)
	assert.Equal(t, theirs.ID(), byPatient[0].ID())

	pending, err := ledger.List(ctx, domain.ListFilter{DoctorID: &doctorID, Statuses: []domain.Status{domain.StatusPending}})
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, tomorrow.ID(), pending[0].ID())

	either, err := ledger.List(ctx, domain.ListFilter{Statuses: []domain.Status{domain.StatusPending, domain.StatusScheduled}, Date: &monday})
	require.NoError(t, err)
	assert.Len(t, either, 2)

	limited, err := ledger.List(ctx, domain.ListFilter{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestLedger_Reminders(t *testing.T) {
	ctx := context.Background()
	ledger := NewLedger(dbtest.Open(t))
	doctorID := uuid.New()

	due := book(doctorID, monday, "09:00")
	cancelled := book(doctorID, monday, "09:15")
	otherDay := book(doctorID, monday.AddDays(1), "09:00")
	for _, a := range []*domain.Appointment{due, cancelled, otherDay} {
		require.NoError(t, ledger.Insert(ctx, a))
	}
	require.NoError(t, cancelled.Cancel(sharedDomain.Actor{ID: cancelled.PatientID(), Role: sharedDomain.RolePatient}))
	require.NoError(t, ledger.Update(ctx, cancelled))

	list, err := ledger.ListDueForReminder(ctx, monday)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, due.ID(), list[0].ID())

	at := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	require.NoError(t, ledger.MarkReminded(ctx, due.ID(), at))

	list, err = ledger.ListDueForReminder(ctx, monday)
	require.NoError(t, err)
	assert.Empty(t, list)

	found, err := ledger.FindByID(ctx, due.ID())
	require.NoError(t, err)
	require.NotNil(t, found.RemindedAt())
	assert.True(t, at.Equal(*found.RemindedAt()))
	assert.Equal(t, domain.StatusPending, found.Status())
	assert.Equal(t, "09:00", found.Time().String())
}

func TestRescheduleAttemptRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewRescheduleAttemptRepository(dbtest.Open(t))
	a := book(uuid.New(), monday, "09:00")

	failed := domain.NewRescheduleAttempt(a, a.PatientID(), "2026-03-02", "09:15", domain.ErrSlotConflict)
	failed.AttemptedAt = time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	ok := domain.NewRescheduleAttempt(a, a.PatientID(), "2026-03-02", "09:30", nil)
	ok.AttemptedAt = time.Date(2026, 3, 1, 8, 5, 0, 0, time.UTC)

	require.NoError(t, repo.Create(ctx, ok))
	require.NoError(t, repo.Create(ctx, failed))
	require.NoError(t, repo.Create(ctx, domain.NewRescheduleAttempt(book(uuid.New(), monday, "10:00"), uuid.New(), "", "", nil)))

	list, err := repo.ListByAppointment(ctx, a.ID())
	require.NoError(t, err)
	require.Len(t, list, 2)

	assert.False(t, list[0].Success)
	assert.Equal(t, domain.ErrSlotConflict.Error(), list[0].FailureReason)
	assert.Equal(t, "09:15", list[0].ToTime)
	assert.Equal(t, "09:00", list[0].FromTime)

	assert.True(t, list[1].Success)
	assert.Empty(t, list[1].FailureReason)
	assert.Equal(t, "09:30", list[1].ToTime)
}
