package outbox

import (
	"context"
	"time"
)

// Repository persists outbox messages. SaveBatch must honour the
// transaction carried in ctx so events commit with the aggregate.
type Repository interface {
	Save(ctx context.Context, msg *Message) error
	SaveBatch(ctx context.Context, msgs []*Message) error
	GetUnpublished(ctx context.Context, limit int) ([]*Message, error)
	MarkPublished(ctx context.Context, id int64) error
	MarkFailed(ctx context.Context, id int64, err string, nextRetryAt time.Time) error
	MarkDead(ctx context.Context, id int64, reason string) error
	DeleteOld(ctx context.Context, olderThanDays int) (int64, error)
}
