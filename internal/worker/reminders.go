package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/robfig/cron/v3"
)

// TypeReminderSweep is the asynq task that queues next-day reminders.
const TypeReminderSweep = "reminder:sweep"

// Sweeper marks tomorrow's appointments reminded.
type Sweeper interface {
	Sweep(ctx context.Context, now time.Time) (int, error)
}

type reminderScheduler interface {
	Start() error
	Stop()
}

func sweepHandler(sweeper Sweeper, now func() time.Time, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, _ *asynq.Task) error {
		n, err := sweeper.Sweep(ctx, now())
		if err != nil {
			return fmt.Errorf("reminder sweep: %w", err)
		}
		logger.InfoContext(ctx, "reminder sweep finished", "reminded", n)
		return nil
	}
}

// asynqReminders registers the sweep as a periodic task in Redis so only
// one worker replica runs it per tick.
type asynqReminders struct {
	scheduler *asynq.Scheduler
	server    *asynq.Server
	mux       *asynq.ServeMux
}

func newAsynqReminders(redisURL, spec string, sweeper Sweeper, logger *slog.Logger) (*asynqReminders, error) {
	opt, err := asynq.ParseRedisURI(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url for asynq: %w", err)
	}
	log := asynqLogger{logger: logger.With("component", "asynq")}

	scheduler := asynq.NewScheduler(opt, &asynq.SchedulerOpts{Location: time.Local, Logger: log})
	if _, err := scheduler.Register(spec, asynq.NewTask(TypeReminderSweep, nil), asynq.Unique(time.Hour), asynq.MaxRetry(3)); err != nil {
		return nil, fmt.Errorf("register reminder sweep %q: %w", spec, err)
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: 1,
		Queues:      map[string]int{"default": 1},
		Logger:      log,
	})
	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeReminderSweep, sweepHandler(sweeper, time.Now, logger))

	return &asynqReminders{scheduler: scheduler, server: server, mux: mux}, nil
}

func (r *asynqReminders) Start() error {
	if err := r.server.Start(r.mux); err != nil {
		return fmt.Errorf("start asynq server: %w", err)
	}
	if err := r.scheduler.Start(); err != nil {
		r.server.Shutdown()
		return fmt.Errorf("start asynq scheduler: %w", err)
	}
	return nil
}

func (r *asynqReminders) Stop() {
	r.scheduler.Shutdown()
	r.server.Shutdown()
}

// cronReminders runs the sweep in-process when no Redis is configured.
// Every replica fires, so run a single worker in that mode.
type cronReminders struct {
	cron *cron.Cron
}

func newCronReminders(spec string, sweeper Sweeper, logger *slog.Logger) (*cronReminders, error) {
	c := cron.New(cron.WithLocation(time.Local))
	handle := sweepHandler(sweeper, time.Now, logger)
	_, err := c.AddFunc(spec, func() {
		if err := handle(context.Background(), nil); err != nil {
			logger.Error("scheduled reminder sweep failed", "error", err)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("schedule reminder sweep %q: %w", spec, err)
	}
	return &cronReminders{cron: c}, nil
}

func (r *cronReminders) Start() error {
	r.cron.Start()
	return nil
}

func (r *cronReminders) Stop() {
	<-r.cron.Stop().Done()
}

type asynqLogger struct {
	logger *slog.Logger
}

func (l asynqLogger) Debug(args ...any) { l.logger.Debug(fmt.Sprint(args...)) }
func (l asynqLogger) Info(args ...any)  { l.logger.Info(fmt.Sprint(args...)) }
func (l asynqLogger) Warn(args ...any)  { l.logger.Warn(fmt.Sprint(args...)) }
func (l asynqLogger) Error(args ...any) { l.logger.Error(fmt.Sprint(args...)) }
func (l asynqLogger) Fatal(args ...any) { l.logger.Error(fmt.Sprint(args...), "fatal", true) }
