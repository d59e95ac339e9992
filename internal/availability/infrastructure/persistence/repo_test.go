package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/clinicq/internal/availability/domain"
	"github.com/felixgeelhaar/clinicq/internal/shared/infrastructure/database"
	"github.com/felixgeelhaar/clinicq/internal/shared/infrastructure/database/dbtest"
)

func TestTemplateRepository_SaveAndFind(t *testing.T) {
	ctx := context.Background()
	repo := NewTemplateRepository(dbtest.Open(t))
	doctorID := uuid.New()

	missing, err := repo.FindByDoctor(ctx, doctorID)
	require.NoError(t, err)
	assert.Nil(t, missing)

	tmpl := domain.NewTemplate(doctorID)
	require.NoError(t, tmpl.Configure(map[string][]domain.Range{
		"Monday":    {{Start: "09:00", End: "10:00"}},
		"Wednesday": {{Start: "14:00", End: "15:00"}, {Start: "08:00", End: "09:00"}},
	}, 20))
	require.NoError(t, repo.Save(ctx, tmpl))

	found, err := repo.FindByDoctor(ctx, doctorID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, doctorID, found.DoctorID())
	assert.Equal(t, 20, found.SlotDurationMinutes())
	assert.Equal(t, 1, found.Version())
	assert.Equal(t, tmpl.DaysByName(), found.DaysByName())

	// Range order survives the round trip.
	wednesday := domain.NewCalendarDate(2026, time.March, 4)
	assert.Equal(t, []string{"14:00", "14:20", "14:40", "08:00", "08:20", "08:40"}, found.SlotsFor(wednesday))
}

func TestTemplateRepository_SaveReplaces(t *testing.T) {
	ctx := context.Background()
	repo := NewTemplateRepository(dbtest.Open(t))
	doctorID := uuid.New()

	tmpl := domain.NewTemplate(doctorID)
	require.NoError(t, tmpl.Configure(map[string][]domain.Range{"Monday": {{Start: "09:00", End: "10:00"}}}, 15))
	require.NoError(t, repo.Save(ctx, tmpl))

	require.NoError(t, tmpl.Configure(map[string][]domain.Range{"Friday": {{Start: "10:00", End: "11:00"}}}, 30))
	require.NoError(t, repo.Save(ctx, tmpl))

	found, err := repo.FindByDoctor(ctx, doctorID)
	require.NoError(t, err)
	assert.Equal(t, 30, found.SlotDurationMinutes())
	assert.Equal(t, 2, found.Version())
	assert.Equal(t, map[string][]domain.Range{"Friday": {{Start: "10:00", End: "11:00"}}}, found.DaysByName())
}

func TestBlockRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewBlockRepository(dbtest.Open(t))
	doctorID := uuid.New()
	monday := domain.NewCalendarDate(2026, time.March, 2)

	afternoon, err := domain.NewBlock(doctorID, monday, domain.MustClockTime("14:00"), domain.MustClockTime("15:00"), "")
	require.NoError(t, err)
	lunch, err := domain.NewBlock(doctorID, monday, domain.MustClockTime("12:00"), domain.MustClockTime("13:00"), "lunch")
	require.NoError(t, err)
	tuesday, err := domain.NewBlock(doctorID, monday.AddDays(1), domain.MustClockTime("08:00"), domain.MustClockTime("09:00"), "")
	require.NoError(t, err)
	other, err := domain.NewBlock(uuid.New(), monday, domain.MustClockTime("08:00"), domain.MustClockTime("09:00"), "")
	require.NoError(t, err)

	for _, b := range []*domain.Block{afternoon, lunch, tuesday, other} {
		require.NoError(t, repo.Save(ctx, b))
	}

	found, err := repo.FindByID(ctx, lunch.ID())
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "lunch", found.Reason())
	assert.Equal(t, "2026-03-02", found.Date().String())
	assert.Equal(t, "12:00", found.Start().String())
	assert.Equal(t, "13:00", found.End().String())

	onMonday, err := repo.ListByDoctor(ctx, doctorID, &monday)
	require.NoError(t, err)
	require.Len(t, onMonday, 2)
	assert.Equal(t, lunch.ID(), onMonday[0].ID())
	assert.Equal(t, afternoon.ID(), onMonday[1].ID())

	all, err := repo.ListByDoctor(ctx, doctorID, nil)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	removed, err := repo.Delete(ctx, lunch.ID(), other.DoctorID())
	require.NoError(t, err)
	assert.False(t, removed, "only the owner may delete")

	removed, err = repo.Delete(ctx, lunch.ID(), doctorID)
	require.NoError(t, err)
	assert.True(t, removed)

	gone, err := repo.FindByID(ctx, lunch.ID())
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func TestBlockRepository_SaveJoinsUnitOfWork(t *testing.T) {
	conn := dbtest.Open(t)
	repo := NewBlockRepository(conn)
	uow := database.NewUnitOfWork(conn)
	doctorID := uuid.New()

	b, err := domain.NewBlock(doctorID, domain.NewCalendarDate(2026, time.March, 2),
		domain.MustClockTime("09:00"), domain.MustClockTime("10:00"), "")
	require.NoError(t, err)

	txCtx, err := uow.Begin(context.Background())
	require.NoError(t, err)
	require.NoError(t, repo.Save(txCtx, b))
	require.NoError(t, uow.Rollback(txCtx))

	list, err := repo.ListByDoctor(context.Background(), doctorID, nil)
	require.NoError(t, err)
	assert.Empty(t, list)
}
