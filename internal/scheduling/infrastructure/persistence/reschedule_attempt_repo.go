package persistence

import (
	"context"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"

	"github.com/felixgeelhaar/clinicq/internal/scheduling/domain"
	"github.com/felixgeelhaar/clinicq/internal/shared/infrastructure/database"
)

const attemptsTable = "reschedule_attempts"

// RescheduleAttemptRepository persists reschedule attempts.
type RescheduleAttemptRepository struct {
	conn    database.Connection
	dialect goqu.DialectWrapper
}

// NewRescheduleAttemptRepository creates a new repository.
func NewRescheduleAttemptRepository(conn database.Connection) *RescheduleAttemptRepository {
	return &RescheduleAttemptRepository{conn: conn, dialect: database.Builder(conn)}
}

// Create stores a new reschedule attempt.
func (r *RescheduleAttemptRepository) Create(ctx context.Context, attempt domain.RescheduleAttempt) error {
	var reason any
	if attempt.FailureReason != "" {
		reason = attempt.FailureReason
	}
	query, args, err := r.dialect.Insert(attemptsTable).
		Rows(goqu.Record{
			"id":             attempt.ID,
			"appointment_id": attempt.AppointmentID,
			"actor_id":       attempt.ActorID,
			"from_date":      attempt.FromDate,
			"from_time":      attempt.FromTime,
			"to_date":        attempt.ToDate,
			"to_time":        attempt.ToTime,
			"success":        attempt.Success,
			"failure_reason": reason,
			"attempted_at":   attempt.AttemptedAt.UTC(),
		}).
		Prepared(true).ToSQL()
	if err != nil {
		return fmt.Errorf("build attempt insert: %w", err)
	}
	_, err = database.ExecutorFromContext(ctx, r.conn).Exec(ctx, query, args...)
	return err
}

// ListByAppointment returns attempts oldest first.
func (r *RescheduleAttemptRepository) ListByAppointment(ctx context.Context, appointmentID uuid.UUID) ([]domain.RescheduleAttempt, error) {
	query, args, err := r.dialect.From(attemptsTable).
		Select("id", "appointment_id", "actor_id", "from_date", "from_time", "to_date", "to_time",
			"success", "failure_reason", "attempted_at").
		Where(goqu.C("appointment_id").Eq(appointmentID)).
		Order(goqu.C("attempted_at").Asc()).
		Prepared(true).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build attempt select: %w", err)
	}

	rows, err := database.ExecutorFromContext(ctx, r.conn).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	attempts := make([]domain.RescheduleAttempt, 0)
	for rows.Next() {
		var (
			attempt   domain.RescheduleAttempt
			reason    *string
			attempted database.Timestamp
		)
		if err := rows.Scan(
			&attempt.ID, &attempt.AppointmentID, &attempt.ActorID,
			&attempt.FromDate, &attempt.FromTime, &attempt.ToDate, &attempt.ToTime,
			&attempt.Success, &reason, &attempted,
		); err != nil {
			return nil, err
		}
		if reason != nil {
			attempt.FailureReason = *reason
		}
		attempt.AttemptedAt = attempted.Time
		attempts = append(attempts, attempt)
	}
	return attempts, rows.Err()
}
