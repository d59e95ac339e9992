package outbox

import (
	"context"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"

	"github.com/felixgeelhaar/clinicq/internal/shared/infrastructure/convert"
	"github.com/felixgeelhaar/clinicq/internal/shared/infrastructure/database"
)

const table = "outbox"

var columns = []any{
	"id", "event_id", "aggregate_type", "aggregate_id", "event_type", "routing_key",
	"payload", "metadata", "created_at", "published_at", "next_retry_at",
	"retry_count", "last_error", "dead_lettered_at", "dead_letter_reason",
}

// SQLRepository stores messages in the outbox table of either backend.
type SQLRepository struct {
	conn    database.Connection
	dialect goqu.DialectWrapper
}

// NewSQLRepository creates a repository bound to conn.
func NewSQLRepository(conn database.Connection) *SQLRepository {
	return &SQLRepository{conn: conn, dialect: database.Builder(conn)}
}

func (r *SQLRepository) Save(ctx context.Context, msg *Message) error {
	return r.SaveBatch(ctx, []*Message{msg})
}

func (r *SQLRepository) SaveBatch(ctx context.Context, msgs []*Message) error {
	if len(msgs) == 0 {
		return nil
	}

	rows := make([]any, 0, len(msgs))
	for _, msg := range msgs {
		meta := string(msg.Metadata)
		if meta == "" {
			meta = "{}"
		}
		rows = append(rows, goqu.Record{
			"event_id":       msg.EventID,
			"aggregate_type": msg.AggregateType,
			"aggregate_id":   msg.AggregateID,
			"event_type":     msg.EventType,
			"routing_key":    msg.RoutingKey,
			"payload":        string(msg.Payload),
			"metadata":       meta,
			"created_at":     msg.CreatedAt.UTC(),
			"retry_count":    msg.RetryCount,
		})
	}

	query, args, err := r.dialect.Insert(table).Rows(rows...).Prepared(true).ToSQL()
	if err != nil {
		return fmt.Errorf("build outbox insert: %w", err)
	}
	_, err = database.ExecutorFromContext(ctx, r.conn).Exec(ctx, query, args...)
	return err
}

func (r *SQLRepository) GetUnpublished(ctx context.Context, limit int) ([]*Message, error) {
	now := time.Now().UTC()
	ds := r.dialect.From(table).Select(columns...).
		Where(
			goqu.C("published_at").IsNull(),
			goqu.C("dead_lettered_at").IsNull(),
			goqu.Or(goqu.C("next_retry_at").IsNull(), goqu.C("next_retry_at").Lte(now)),
		).
		Order(goqu.C("id").Asc())
	if limit > 0 {
		ds = ds.Limit(convert.IntToUintClamped(limit))
	}

	query, args, err := ds.Prepared(true).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build outbox select: %w", err)
	}

	rows, err := database.ExecutorFromContext(ctx, r.conn).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var msgs []*Message
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, msg)
	}
	return msgs, rows.Err()
}

func (r *SQLRepository) MarkPublished(ctx context.Context, id int64) error {
	return r.update(ctx, id, goqu.Record{
		"published_at":     time.Now().UTC(),
		"dead_lettered_at": nil,
	})
}

func (r *SQLRepository) MarkFailed(ctx context.Context, id int64, errMsg string, nextRetryAt time.Time) error {
	return r.update(ctx, id, goqu.Record{
		"retry_count":   goqu.L("retry_count + 1"),
		"last_error":    errMsg,
		"next_retry_at": nextRetryAt.UTC(),
	})
}

func (r *SQLRepository) MarkDead(ctx context.Context, id int64, reason string) error {
	return r.update(ctx, id, goqu.Record{
		"dead_lettered_at":   time.Now().UTC(),
		"dead_letter_reason": reason,
	})
}

func (r *SQLRepository) DeleteOld(ctx context.Context, olderThanDays int) (int64, error) {
	cutoff := time.Now().UTC().AddDate(0, 0, -olderThanDays)
	query, args, err := r.dialect.Delete(table).
		Where(goqu.C("published_at").IsNotNull(), goqu.C("published_at").Lt(cutoff)).
		Prepared(true).ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build outbox delete: %w", err)
	}
	res, err := database.ExecutorFromContext(ctx, r.conn).Exec(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *SQLRepository) update(ctx context.Context, id int64, set goqu.Record) error {
	query, args, err := r.dialect.Update(table).Set(set).Where(goqu.C("id").Eq(id)).Prepared(true).ToSQL()
	if err != nil {
		return fmt.Errorf("build outbox update: %w", err)
	}
	_, err = database.ExecutorFromContext(ctx, r.conn).Exec(ctx, query, args...)
	return err
}

func scanMessage(row database.Row) (*Message, error) {
	var (
		msg                        Message
		payload, metadata          []byte
		created                    database.Timestamp
		published, retryAt, deadAt database.Timestamp
		lastError, deadReason      *string
	)
	err := row.Scan(
		&msg.ID, &msg.EventID, &msg.AggregateType, &msg.AggregateID, &msg.EventType, &msg.RoutingKey,
		&payload, &metadata, &created, &published, &retryAt,
		&msg.RetryCount, &lastError, &deadAt, &deadReason,
	)
	if err != nil {
		return nil, err
	}

	msg.Payload = payload
	msg.Metadata = metadata
	msg.CreatedAt = created.Time
	msg.PublishedAt = published.Ptr()
	msg.NextRetryAt = retryAt.Ptr()
	msg.LastError = lastError
	msg.DeadLetteredAt = deadAt.Ptr()
	msg.DeadLetterReason = deadReason
	return &msg, nil
}
