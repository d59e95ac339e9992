package persistence

import (
	"context"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"

	"github.com/felixgeelhaar/clinicq/internal/availability/domain"
	"github.com/felixgeelhaar/clinicq/internal/shared/infrastructure/database"
)

const blocksTable = "availability_blocks"

var blockColumns = []any{"id", "doctor_id", "date", "start_time", "end_time", "reason", "created_at"}

// BlockRepository persists availability blocks.
type BlockRepository struct {
	conn    database.Connection
	dialect goqu.DialectWrapper
}

// NewBlockRepository creates a new block repository.
func NewBlockRepository(conn database.Connection) *BlockRepository {
	return &BlockRepository{conn: conn, dialect: database.Builder(conn)}
}

// Save inserts a new block.
func (r *BlockRepository) Save(ctx context.Context, b *domain.Block) error {
	var reason any
	if b.Reason() != "" {
		reason = b.Reason()
	}
	query, args, err := r.dialect.Insert(blocksTable).
		Rows(goqu.Record{
			"id":         b.ID(),
			"doctor_id":  b.DoctorID(),
			"date":       b.Date().String(),
			"start_time": b.Start().String(),
			"end_time":   b.End().String(),
			"reason":     reason,
			"created_at": b.CreatedAt().UTC(),
		}).
		Prepared(true).ToSQL()
	if err != nil {
		return fmt.Errorf("build block insert: %w", err)
	}
	_, err = database.ExecutorFromContext(ctx, r.conn).Exec(ctx, query, args...)
	return err
}

// FindByID returns nil, nil when no block has the id.
func (r *BlockRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Block, error) {
	query, args, err := r.dialect.From(blocksTable).Select(blockColumns...).
		Where(goqu.C("id").Eq(id)).
		Prepared(true).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build block select: %w", err)
	}
	b, err := scanBlock(database.ExecutorFromContext(ctx, r.conn).QueryRow(ctx, query, args...))
	if database.IsNoRows(err) {
		return nil, nil
	}
	return b, err
}

// Delete removes the block if doctorID owns it and reports whether a
// row went.
func (r *BlockRepository) Delete(ctx context.Context, id, doctorID uuid.UUID) (bool, error) {
	query, args, err := r.dialect.Delete(blocksTable).
		Where(goqu.C("id").Eq(id), goqu.C("doctor_id").Eq(doctorID)).
		Prepared(true).ToSQL()
	if err != nil {
		return false, fmt.Errorf("build block delete: %w", err)
	}
	res, err := database.ExecutorFromContext(ctx, r.conn).Exec(ctx, query, args...)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// ListByDoctor lists blocks by date and start, optionally for one date.
func (r *BlockRepository) ListByDoctor(ctx context.Context, doctorID uuid.UUID, date *domain.CalendarDate) ([]*domain.Block, error) {
	ds := r.dialect.From(blocksTable).Select(blockColumns...).
		Where(goqu.C("doctor_id").Eq(doctorID)).
		Order(goqu.C("date").Asc(), goqu.C("start_time").Asc())
	if date != nil {
		ds = ds.Where(goqu.C("date").Eq(date.String()))
	}
	query, args, err := ds.Prepared(true).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build block list: %w", err)
	}

	rows, err := database.ExecutorFromContext(ctx, r.conn).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	blocks := []*domain.Block{}
	for rows.Next() {
		b, err := scanBlock(rows)
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, b)
	}
	return blocks, rows.Err()
}

func scanBlock(row database.Row) (*domain.Block, error) {
	var (
		id, doctorID     uuid.UUID
		date, start, end string
		reason           *string
		created          database.Timestamp
	)
	if err := row.Scan(&id, &doctorID, &date, &start, &end, &reason, &created); err != nil {
		return nil, err
	}

	day, err := domain.ParseCalendarDate(date)
	if err != nil {
		return nil, err
	}
	from, err := domain.ParseClockTime(start)
	if err != nil {
		return nil, err
	}
	to, err := domain.ParseEndClockTime(end)
	if err != nil {
		return nil, err
	}
	var why string
	if reason != nil {
		why = *reason
	}
	return domain.RehydrateBlock(id, doctorID, day, from, to, why, created.Time), nil
}
