// Package worker runs the background side of clinicq: relaying the outbox,
// delivering notifications and firing the daily reminder sweep.
package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/felixgeelhaar/clinicq/internal/app"
	notifications "github.com/felixgeelhaar/clinicq/internal/notifications/application"
	notificationDomain "github.com/felixgeelhaar/clinicq/internal/notifications/domain"
	"github.com/felixgeelhaar/clinicq/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/clinicq/pkg/observability"
)

// NotificationQueue is the RabbitMQ queue the dispatcher consumes.
const NotificationQueue = "clinicq.notifications"

// Worker owns the long-running background loops.
type Worker struct {
	c          *app.Container
	logger     *slog.Logger
	dispatcher *notifications.Dispatcher
	consumer   *eventbus.RabbitMQConsumer
	reminders  reminderScheduler
}

// New wires the dispatcher onto the broker (or the in-process bus when no
// broker is configured) and picks a reminder scheduler.
func New(c *app.Container, sink notificationDomain.Sink) (*Worker, error) {
	cfg, logger := c.Config, c.Logger

	breaker := notifications.DefaultBreakerConfig()
	if cfg.NotifyBreakerFailures > 0 {
		breaker.FailureThreshold = uint32(cfg.NotifyBreakerFailures)
	}
	w := &Worker{
		c:          c,
		logger:     logger,
		dispatcher: notifications.NewDispatcher(sink, breaker, logger, c.Metrics),
	}

	if cfg.RabbitMQURL != "" {
		consumer, err := eventbus.NewRabbitMQConsumer(eventbus.RabbitMQConsumerConfig{
			URL:       cfg.RabbitMQURL,
			QueueName: NotificationQueue,
			Logger:    logger,
		}, eventbus.NewConsumerRegistry(logger))
		if err != nil {
			return nil, fmt.Errorf("connect notification consumer: %w", err)
		}
		consumer.RegisterConsumer(w.dispatcher)
		w.consumer = consumer
	} else {
		c.InProcessBus.RegisterConsumer(w.dispatcher)
	}

	spec := cfg.ReminderCron
	if spec == "" {
		spec = "0 9 * * *"
	}
	var err error
	if cfg.RedisURL != "" {
		w.reminders, err = newAsynqReminders(cfg.RedisURL, spec, c.ReminderSweeper, logger)
	} else {
		w.reminders, err = newCronReminders(spec, c.ReminderSweeper, logger)
	}
	if err != nil {
		w.close()
		return nil, err
	}
	return w, nil
}

// Run blocks until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	cfg := w.c.Config

	if err := w.c.OutboxProcessor.Start(ctx); err != nil {
		return fmt.Errorf("start outbox processor: %w", err)
	}
	defer w.c.OutboxProcessor.Stop()

	if err := w.reminders.Start(); err != nil {
		return err
	}
	defer w.reminders.Stop()
	w.logger.Info("reminder sweep scheduled", "cron", cfg.ReminderCron, "distributed", cfg.RedisURL != "")

	if w.consumer != nil {
		go func() {
			if err := w.consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				w.logger.Error("notification consumer stopped", "error", err)
			}
		}()
	}

	if cfg.OutboxCleanupInterval > 0 {
		go w.cleanupLoop(ctx, cfg.OutboxCleanupInterval, cfg.OutboxRetentionDays)
	}

	if cfg.WorkerHealthAddr != "" {
		srv := &http.Server{
			Addr:              cfg.WorkerHealthAddr,
			Handler:           w.HealthHandler(),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			w.logger.Info("health server starting", "addr", cfg.WorkerHealthAddr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				w.logger.Error("health server error", "error", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				w.logger.Warn("health server shutdown error", "error", err)
			}
		}()
	}

	<-ctx.Done()
	w.logger.Info("shutting down worker")
	w.close()
	return nil
}

func (w *Worker) close() {
	if w.consumer != nil {
		if err := w.consumer.Close(); err != nil {
			w.logger.Warn("failed to close notification consumer", "error", err)
		}
	}
}

func (w *Worker) cleanupLoop(ctx context.Context, every time.Duration, retentionDays int) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			deleted, err := w.c.Repos.Outbox.DeleteOld(ctx, retentionDays)
			if err != nil {
				w.logger.Error("outbox cleanup failed", "error", err)
				continue
			}
			if deleted > 0 {
				w.logger.Info("outbox cleanup completed", "deleted", deleted, "retention_days", retentionDays)
			}
		}
	}
}

// HealthHandler serves /healthz (liveness plus relay stats) and /readyz
// (dependency checks).
func (w *Worker) HealthHandler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", func(rw http.ResponseWriter, r *http.Request) {
		stats := w.c.OutboxProcessor.GetStats()
		writeJSON(rw, http.StatusOK, map[string]any{
			"status":            "ok",
			"outbox_running":    stats.IsRunning,
			"published":         stats.PublishedCount,
			"failed":            stats.FailedCount,
			"dead":              stats.DeadCount,
			"last_processed_at": stats.LastProcessedAt,
			"last_error":        stats.LastError,
			"notify_breaker":    w.dispatcher.State(),
			"counters":          w.c.Metrics.Snapshot(),
		})
	})
	mux.HandleFunc("GET /readyz", func(rw http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		health := w.c.Health.Check(ctx)
		status := http.StatusOK
		if health.Status == observability.HealthStatusUnhealthy {
			status = http.StatusServiceUnavailable
		}
		writeJSON(rw, status, health)
	})
	return mux
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
