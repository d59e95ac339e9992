package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/google/uuid"
	"github.com/lib/pq"

	availability "github.com/felixgeelhaar/clinicq/internal/availability/domain"
	"github.com/felixgeelhaar/clinicq/internal/scheduling/domain"
	"github.com/felixgeelhaar/clinicq/internal/shared/infrastructure/convert"
	"github.com/felixgeelhaar/clinicq/internal/shared/infrastructure/database"
)

const appointmentsTable = "appointments"

var appointmentColumns = []any{
	"id", "patient_id", "doctor_id", "date", "time", "status",
	"rescheduled_from", "reminded_at", "version", "created_at", "updated_at",
}

// Ledger stores appointments in either backend. The one-live-booking-per
// slot rule is enforced by the uq_appointments_active_slot partial index.
type Ledger struct {
	conn    database.Connection
	dialect goqu.DialectWrapper
}

// NewLedger creates a ledger bound to conn.
func NewLedger(conn database.Connection) *Ledger {
	return &Ledger{conn: conn, dialect: database.Builder(conn)}
}

// Insert relies on ON CONFLICT DO NOTHING (INSERT OR IGNORE on SQLite):
// a statement that touches no row lost the slot.
func (l *Ledger) Insert(ctx context.Context, a *domain.Appointment) error {
	query, args, err := l.dialect.Insert(appointmentsTable).
		Rows(goqu.Record{
			"id":               a.ID(),
			"patient_id":       a.PatientID(),
			"doctor_id":        a.DoctorID(),
			"date":             a.Date().String(),
			"time":             a.Time().String(),
			"status":           a.Status().String(),
			"rescheduled_from": nullableID(a.RescheduledFrom()),
			"reminded_at":      database.NullableTime(a.RemindedAt()),
			"version":          1,
			"created_at":       a.CreatedAt().UTC(),
			"updated_at":       a.UpdatedAt().UTC(),
		}).
		OnConflict(goqu.DoNothing()).
		Prepared(true).ToSQL()
	if err != nil {
		return fmt.Errorf("build appointment insert: %w", err)
	}

	res, err := database.ExecutorFromContext(ctx, l.conn).Exec(ctx, query, args...)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return domain.ErrSlotConflict
		}
		return fmt.Errorf("insert appointment: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrSlotConflict
	}
	return nil
}

// Update writes the appointment's mutable fields.
func (l *Ledger) Update(ctx context.Context, a *domain.Appointment) error {
	query, args, err := l.dialect.Update(appointmentsTable).
		Set(goqu.Record{
			"date":             a.Date().String(),
			"time":             a.Time().String(),
			"status":           a.Status().String(),
			"rescheduled_from": nullableID(a.RescheduledFrom()),
			"reminded_at":      database.NullableTime(a.RemindedAt()),
			"version":          goqu.L("version + 1"),
			"updated_at":       time.Now().UTC(),
		}).
		Where(goqu.C("id").Eq(a.ID())).
		Prepared(true).ToSQL()
	if err != nil {
		return fmt.Errorf("build appointment update: %w", err)
	}

	res, err := database.ExecutorFromContext(ctx, l.conn).Exec(ctx, query, args...)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return domain.ErrSlotConflict
		}
		return fmt.Errorf("update appointment: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrAppointmentNotFound
	}
	return nil
}

// FindByID returns ErrAppointmentNotFound for an unknown id.
func (l *Ledger) FindByID(ctx context.Context, id uuid.UUID) (*domain.Appointment, error) {
	appts, err := l.query(ctx, l.selectAll().Where(goqu.C("id").Eq(id)))
	if err != nil {
		return nil, err
	}
	if len(appts) == 0 {
		return nil, domain.ErrAppointmentNotFound
	}
	return appts[0], nil
}

// FindActiveAt returns the uncancelled appointment holding the doctor's
// slot, skipping excludeID. It returns nil, nil when the slot is free.
func (l *Ledger) FindActiveAt(
	ctx context.Context,
	doctorID uuid.UUID,
	date availability.CalendarDate,
	at availability.ClockTime,
	excludeID uuid.UUID,
) (*domain.Appointment, error) {
	ds := l.selectAll().Where(
		goqu.C("doctor_id").Eq(doctorID),
		goqu.C("date").Eq(date.String()),
		goqu.C("time").Eq(at.String()),
		goqu.C("status").Neq(domain.StatusCancelled.String()),
	).Limit(1)
	if excludeID != uuid.Nil {
		ds = ds.Where(goqu.C("id").Neq(excludeID))
	}

	appts, err := l.query(ctx, ds)
	if err != nil || len(appts) == 0 {
		return nil, err
	}
	return appts[0], nil
}

// ListActiveByDoctorDate lists the day's uncancelled entries by time.
func (l *Ledger) ListActiveByDoctorDate(ctx context.Context, doctorID uuid.UUID, date availability.CalendarDate) ([]*domain.Appointment, error) {
	return l.query(ctx, l.selectAll().
		Where(
			goqu.C("doctor_id").Eq(doctorID),
			goqu.C("date").Eq(date.String()),
			goqu.C("status").Neq(domain.StatusCancelled.String()),
		).
		Order(goqu.C("time").Asc(), goqu.C("created_at").Asc()))
}

// List applies the filter and orders by date and time.
func (l *Ledger) List(ctx context.Context, f domain.ListFilter) ([]*domain.Appointment, error) {
	ds := l.selectAll()
	if f.DoctorID != nil {
		ds = ds.Where(goqu.C("doctor_id").Eq(*f.DoctorID))
	}
	if f.PatientID != nil {
		ds = ds.Where(goqu.C("patient_id").Eq(*f.PatientID))
	}
	if f.Date != nil {
		ds = ds.Where(goqu.C("date").Eq(f.Date.String()))
	}
	if len(f.Statuses) > 0 {
		ds = ds.Where(l.statusIn(f.Statuses))
	}
	ds = ds.Order(goqu.C("date").Asc(), goqu.C("time").Asc(), goqu.C("created_at").Asc())
	if f.Limit > 0 {
		ds = ds.Limit(convert.IntToUintClamped(f.Limit))
	}
	return l.query(ctx, ds)
}

// ListDueForReminder lists uncancelled, unreminded appointments on date.
func (l *Ledger) ListDueForReminder(ctx context.Context, date availability.CalendarDate) ([]*domain.Appointment, error) {
	return l.query(ctx, l.selectAll().
		Where(
			goqu.C("date").Eq(date.String()),
			goqu.C("status").Neq(domain.StatusCancelled.String()),
			goqu.C("reminded_at").IsNull(),
		).
		Order(goqu.C("doctor_id").Asc(), goqu.C("time").Asc()))
}

// MarkReminded stamps the reminder time.
func (l *Ledger) MarkReminded(ctx context.Context, id uuid.UUID, at time.Time) error {
	query, args, err := l.dialect.Update(appointmentsTable).
		Set(goqu.Record{"reminded_at": at.UTC()}).
		Where(goqu.C("id").Eq(id)).
		Prepared(true).ToSQL()
	if err != nil {
		return fmt.Errorf("build reminder update: %w", err)
	}
	_, err = database.ExecutorFromContext(ctx, l.conn).Exec(ctx, query, args...)
	return err
}

// statusIn binds the set as one array parameter on Postgres and expands
// it into IN (...) on SQLite.
func (l *Ledger) statusIn(statuses []domain.Status) exp.Expression {
	labels := make([]string, len(statuses))
	for i, s := range statuses {
		labels[i] = s.String()
	}
	if l.conn.Driver() == database.DriverPostgres {
		return goqu.L("status = ANY(?)", pq.Array(labels))
	}
	return goqu.C("status").In(labels)
}

func (l *Ledger) selectAll() *goqu.SelectDataset {
	return l.dialect.From(appointmentsTable).Select(appointmentColumns...)
}

func (l *Ledger) query(ctx context.Context, ds *goqu.SelectDataset) ([]*domain.Appointment, error) {
	query, args, err := ds.Prepared(true).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build appointment select: %w", err)
	}

	rows, err := database.ExecutorFromContext(ctx, l.conn).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	appts := []*domain.Appointment{}
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		appts = append(appts, a)
	}
	return appts, rows.Err()
}

func scanAppointment(row database.Row) (*domain.Appointment, error) {
	var (
		s                    domain.Snapshot
		date, at, status     string
		rescheduledFrom      uuid.NullUUID
		remindedAt           database.Timestamp
		createdAt, updatedAt database.Timestamp
	)
	if err := row.Scan(
		&s.ID, &s.PatientID, &s.DoctorID, &date, &at, &status,
		&rescheduledFrom, &remindedAt, &s.Version, &createdAt, &updatedAt,
	); err != nil {
		return nil, err
	}

	var err error
	if s.Date, err = availability.ParseCalendarDate(date); err != nil {
		return nil, err
	}
	if s.Time, err = availability.ParseClockTime(at); err != nil {
		return nil, err
	}
	if s.Status, err = domain.ParseStatus(status); err != nil {
		return nil, err
	}
	if rescheduledFrom.Valid {
		id := rescheduledFrom.UUID
		s.RescheduledFrom = &id
	}
	s.RemindedAt = remindedAt.Ptr()
	s.CreatedAt = createdAt.Time
	s.UpdatedAt = updatedAt.Time
	return domain.RehydrateAppointment(s), nil
}

func nullableID(id *uuid.UUID) any {
	if id == nil {
		return nil
	}
	return *id
}
