package persistence

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"

	"github.com/felixgeelhaar/clinicq/internal/availability/domain"
	"github.com/felixgeelhaar/clinicq/internal/shared/infrastructure/database"
)

const templatesTable = "availability_templates"

// TemplateRepository persists weekly templates with the days stored as a
// JSON object keyed by weekday name.
type TemplateRepository struct {
	conn    database.Connection
	dialect goqu.DialectWrapper
}

// NewTemplateRepository creates a repository bound to conn.
func NewTemplateRepository(conn database.Connection) *TemplateRepository {
	return &TemplateRepository{conn: conn, dialect: database.Builder(conn)}
}

// Save updates the doctor's row and inserts it when none exists yet.
func (r *TemplateRepository) Save(ctx context.Context, t *domain.Template) error {
	days, err := json.Marshal(t.DaysByName())
	if err != nil {
		return fmt.Errorf("encode template days: %w", err)
	}
	exec := database.ExecutorFromContext(ctx, r.conn)
	now := time.Now().UTC()

	update, args, err := r.dialect.Update(templatesTable).
		Set(goqu.Record{
			"days":                  string(days),
			"slot_duration_minutes": t.SlotDurationMinutes(),
			"version":               goqu.L("version + 1"),
			"updated_at":            now,
		}).
		Where(goqu.C("doctor_id").Eq(t.DoctorID())).
		Prepared(true).ToSQL()
	if err != nil {
		return fmt.Errorf("build template update: %w", err)
	}
	res, err := exec.Exec(ctx, update, args...)
	if err != nil {
		return fmt.Errorf("update template: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return err
	} else if n > 0 {
		return nil
	}

	insert, args, err := r.dialect.Insert(templatesTable).
		Rows(goqu.Record{
			"doctor_id":             t.DoctorID(),
			"days":                  string(days),
			"slot_duration_minutes": t.SlotDurationMinutes(),
			"version":               1,
			"created_at":            t.CreatedAt().UTC(),
			"updated_at":            now,
		}).
		Prepared(true).ToSQL()
	if err != nil {
		return fmt.Errorf("build template insert: %w", err)
	}
	if _, err := exec.Exec(ctx, insert, args...); err != nil {
		return fmt.Errorf("insert template: %w", err)
	}
	return nil
}

// FindByDoctor returns nil, nil for a doctor without a template.
func (r *TemplateRepository) FindByDoctor(ctx context.Context, doctorID uuid.UUID) (*domain.Template, error) {
	query, args, err := r.dialect.From(templatesTable).
		Select("doctor_id", "days", "slot_duration_minutes", "version", "created_at", "updated_at").
		Where(goqu.C("doctor_id").Eq(doctorID)).
		Prepared(true).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build template select: %w", err)
	}

	var (
		id                uuid.UUID
		rawDays           []byte
		duration, version int
		created, updated  database.Timestamp
	)
	err = database.ExecutorFromContext(ctx, r.conn).QueryRow(ctx, query, args...).
		Scan(&id, &rawDays, &duration, &version, &created, &updated)
	if database.IsNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	byName := map[string][]domain.Range{}
	if len(rawDays) > 0 {
		if err := json.Unmarshal(rawDays, &byName); err != nil {
			return nil, fmt.Errorf("decode template days: %w", err)
		}
	}
	days := make(map[time.Weekday][]domain.Range, len(byName))
	for name, ranges := range byName {
		wd, err := domain.ParseWeekday(name)
		if err != nil {
			// Unknown keys are ignored rather than failing the whole doctor.
			continue
		}
		days[wd] = ranges
	}

	return domain.RehydrateTemplate(id, days, duration, created.Time, updated.Time, version), nil
}
