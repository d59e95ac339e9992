package outbox

import (
	"context"
	"sync"
	"time"
)

// InMemoryRepository keeps messages in process. It backs tests and the
// single-process development mode.
type InMemoryRepository struct {
	mu       sync.Mutex
	messages []*Message
	nextID   int64
}

// NewInMemoryRepository creates an empty repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{nextID: 1}
}

func (r *InMemoryRepository) Save(_ context.Context, msg *Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	msg.ID = r.nextID
	r.nextID++
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}
	r.messages = append(r.messages, msg)
	return nil
}

func (r *InMemoryRepository) SaveBatch(ctx context.Context, msgs []*Message) error {
	for _, msg := range msgs {
		if err := r.Save(ctx, msg); err != nil {
			return err
		}
	}
	return nil
}

func (r *InMemoryRepository) GetUnpublished(_ context.Context, limit int) ([]*Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	var out []*Message
	for _, msg := range r.messages {
		if msg.PublishedAt != nil || msg.DeadLetteredAt != nil {
			continue
		}
		if msg.NextRetryAt != nil && msg.NextRetryAt.After(now) {
			continue
		}
		out = append(out, msg)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (r *InMemoryRepository) MarkPublished(_ context.Context, id int64) error {
	r.with(id, func(m *Message) {
		now := time.Now()
		m.PublishedAt = &now
		m.DeadLetteredAt = nil
	})
	return nil
}

func (r *InMemoryRepository) MarkFailed(_ context.Context, id int64, errMsg string, nextRetryAt time.Time) error {
	r.with(id, func(m *Message) {
		m.RetryCount++
		m.LastError = &errMsg
		m.NextRetryAt = &nextRetryAt
	})
	return nil
}

func (r *InMemoryRepository) MarkDead(_ context.Context, id int64, reason string) error {
	r.with(id, func(m *Message) {
		now := time.Now()
		m.DeadLetteredAt = &now
		m.DeadLetterReason = &reason
	})
	return nil
}

func (r *InMemoryRepository) DeleteOld(_ context.Context, olderThanDays int) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := time.Now().AddDate(0, 0, -olderThanDays)
	kept := r.messages[:0]
	var removed int64
	for _, msg := range r.messages {
		if msg.PublishedAt != nil && msg.PublishedAt.Before(cutoff) {
			removed++
			continue
		}
		kept = append(kept, msg)
	}
	r.messages = kept
	return removed, nil
}

// Messages returns a snapshot of everything stored, in insertion order.
func (r *InMemoryRepository) Messages() []*Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Message, len(r.messages))
	copy(out, r.messages)
	return out
}

func (r *InMemoryRepository) with(id int64, fn func(*Message)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, msg := range r.messages {
		if msg.ID == id {
			fn(msg)
			return
		}
	}
}
