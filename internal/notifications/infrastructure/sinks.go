package infrastructure

import (
	"context"
	"log/slog"
	"sync"

	"github.com/felixgeelhaar/clinicq/internal/notifications/domain"
)

// LogSink writes notifications to the log. It stands in for email or SMS
// delivery, which is handled elsewhere.
type LogSink struct {
	logger *slog.Logger
}

func NewLogSink(logger *slog.Logger) *LogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSink{logger: logger}
}

func (s *LogSink) Send(ctx context.Context, n domain.Notification) error {
	s.logger.InfoContext(ctx, "notification",
		"recipient", n.Recipient,
		"subject", n.Subject,
		"body", n.Body,
	)
	return nil
}

// RecordingSink keeps every notification in memory.
type RecordingSink struct {
	mu   sync.Mutex
	sent []domain.Notification
	err  error
}

func NewRecordingSink() *RecordingSink {
	return &RecordingSink{}
}

func (s *RecordingSink) Send(_ context.Context, n domain.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, n)
	return nil
}

func (s *RecordingSink) Sent() []domain.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Notification, len(s.sent))
	copy(out, s.sent)
	return out
}

// SetErr makes subsequent sends fail with err. Nil restores delivery.
func (s *RecordingSink) SetErr(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}
