package services

import (
	"context"
	"log/slog"
	"time"

	availability "github.com/felixgeelhaar/clinicq/internal/availability/domain"
	"github.com/felixgeelhaar/clinicq/internal/scheduling/domain"
	sharedApplication "github.com/felixgeelhaar/clinicq/internal/shared/application"
	sharedDomain "github.com/felixgeelhaar/clinicq/internal/shared/domain"
	"github.com/felixgeelhaar/clinicq/internal/shared/infrastructure/outbox"
	"github.com/felixgeelhaar/clinicq/pkg/observability"
	"github.com/google/uuid"
)

// ReminderSweeper flags tomorrow's live appointments for a reminder. Each
// appointment is reminded at most once.
type ReminderSweeper struct {
	ledger     domain.Ledger
	outboxRepo outbox.Repository
	uow        sharedApplication.UnitOfWork
	logger     *slog.Logger
	metrics    observability.Metrics
}

// NewReminderSweeper creates a new sweeper. Nil logger and metrics are
// replaced with defaults.
func NewReminderSweeper(
	ledger domain.Ledger,
	outboxRepo outbox.Repository,
	uow sharedApplication.UnitOfWork,
	logger *slog.Logger,
	metrics observability.Metrics,
) *ReminderSweeper {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}
	return &ReminderSweeper{
		ledger:     ledger,
		outboxRepo: outboxRepo,
		uow:        uow,
		logger:     logger,
		metrics:    metrics,
	}
}

// Sweep reminds appointments on the local calendar day after now and
// returns how many were queued. now's own location is ignored;
// appointment dates are local dates.
func (s *ReminderSweeper) Sweep(ctx context.Context, now time.Time) (int, error) {
	tomorrow := availability.Today(now).AddDays(1)

	var queued int
	err := observability.TimeOperation(ctx, s.logger, s.metrics, "reminder_sweep", func() error {
		return sharedApplication.WithUnitOfWork(ctx, s.uow, func(txCtx context.Context) error {
			due, err := s.ledger.ListDueForReminder(txCtx, tomorrow)
			if err != nil {
				return err
			}

			var events []sharedDomain.DomainEvent
			for _, a := range due {
				a.MarkReminded(now)
				if err := s.ledger.MarkReminded(txCtx, a.ID(), now); err != nil {
					return err
				}
				events = append(events, a.DomainEvents()...)
			}
			if len(events) == 0 {
				return nil
			}

			sharedApplication.ApplyEventMetadata(events, sharedApplication.NewEventMetadata(ctx, uuid.Nil))
			msgs, err := outbox.NewMessages(events)
			if err != nil {
				return err
			}
			if err := s.outboxRepo.SaveBatch(txCtx, msgs); err != nil {
				return err
			}
			queued = len(due)
			return nil
		})
	})
	if err != nil {
		return 0, err
	}

	s.metrics.Counter(observability.MetricRemindersQueued, int64(queued))
	s.logger.InfoContext(ctx, "reminder sweep finished", "date", tomorrow.String(), "queued", queued)
	return queued, nil
}
