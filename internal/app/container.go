package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	availabilityCommands "github.com/felixgeelhaar/clinicq/internal/availability/application/commands"
	availabilityQueries "github.com/felixgeelhaar/clinicq/internal/availability/application/queries"
	availabilityDomain "github.com/felixgeelhaar/clinicq/internal/availability/domain"
	availabilityCache "github.com/felixgeelhaar/clinicq/internal/availability/infrastructure/cache"
	scheduleCommands "github.com/felixgeelhaar/clinicq/internal/scheduling/application/commands"
	scheduleQueries "github.com/felixgeelhaar/clinicq/internal/scheduling/application/queries"
	scheduleServices "github.com/felixgeelhaar/clinicq/internal/scheduling/application/services"
	sharedApplication "github.com/felixgeelhaar/clinicq/internal/shared/application"
	"github.com/felixgeelhaar/clinicq/internal/shared/infrastructure/database"
	_ "github.com/felixgeelhaar/clinicq/internal/shared/infrastructure/database/postgres" // Register Postgres driver
	_ "github.com/felixgeelhaar/clinicq/internal/shared/infrastructure/database/sqlite"   // Register SQLite driver
	"github.com/felixgeelhaar/clinicq/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/clinicq/internal/shared/infrastructure/migrations"
	"github.com/felixgeelhaar/clinicq/internal/shared/infrastructure/outbox"
	"github.com/felixgeelhaar/clinicq/pkg/config"
	"github.com/felixgeelhaar/clinicq/pkg/observability"
)

// Container holds all application dependencies.
type Container struct {
	Config  *config.Config
	Logger  *slog.Logger
	Metrics *observability.InMemoryMetrics
	Health  *observability.HealthRegistry

	DBConn      database.Connection
	RedisClient *redis.Client

	Repos      Repositories
	UnitOfWork sharedApplication.UnitOfWork
	SlotCache  availabilityDomain.SlotCache

	// EventPublisher is RabbitMQ when configured, otherwise InProcessBus.
	// An unreachable broker in development falls back to a noop publisher.
	EventPublisher  eventbus.Publisher
	InProcessBus    *eventbus.InProcessBus
	OutboxProcessor *outbox.Processor

	// Availability
	SetAvailabilityHandler *availabilityCommands.SetAvailabilityHandler
	GetAvailabilityHandler *availabilityQueries.GetAvailabilityHandler
	AddBlockHandler        *availabilityCommands.AddBlockHandler
	RemoveBlockHandler     *availabilityCommands.RemoveBlockHandler
	ListBlocksHandler      *availabilityQueries.ListBlocksHandler

	// Appointments
	BookAppointmentHandler       *scheduleCommands.BookAppointmentHandler
	ApproveAppointmentHandler    *scheduleCommands.ApproveAppointmentHandler
	DeclineAppointmentHandler    *scheduleCommands.DeclineAppointmentHandler
	RescheduleAppointmentHandler *scheduleCommands.RescheduleAppointmentHandler
	CancelAppointmentHandler     *scheduleCommands.CancelAppointmentHandler
	CompleteAppointmentHandler   *scheduleCommands.CompleteAppointmentHandler
	MarkNoShowHandler            *scheduleCommands.MarkNoShowHandler

	ResolveAvailableSlotsHandler  *scheduleQueries.ResolveAvailableSlotsHandler
	ComputeQueueHandler           *scheduleQueries.ComputeQueueHandler
	ListAppointmentsHandler       *scheduleQueries.ListAppointmentsHandler
	ListPendingRequestsHandler    *scheduleQueries.ListPendingRequestsHandler
	ListRescheduleAttemptsHandler *scheduleQueries.ListRescheduleAttemptsHandler

	ReminderSweeper *scheduleServices.ReminderSweeper
}

// NewContainer connects to the configured database, applies migrations
// and wires every handler. Redis and RabbitMQ are optional: without them
// slot lists are not cached and events stay in process.
func NewContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Container, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	conn, err := database.NewConnection(ctx, database.Config{
		Driver:     database.Driver(cfg.DatabaseDriver),
		URL:        cfg.DatabaseURL,
		SQLitePath: cfg.SQLitePath,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	logger.Info("connected to database", "driver", conn.Driver().String())

	if err := migrations.Run(ctx, conn); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	c := newContainer(conn, cfg, logger)

	if cfg.RedisURL != "" {
		if err := c.connectRedis(ctx); err != nil {
			if !cfg.IsDevelopment() {
				c.Close()
				return nil, err
			}
			logger.Warn("Redis not available, slot cache disabled", "error", err)
		}
	}

	if cfg.RabbitMQURL != "" {
		publisher, err := eventbus.NewRabbitMQPublisher(cfg.RabbitMQURL, logger)
		if err != nil {
			if !cfg.IsDevelopment() {
				c.Close()
				return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
			}
			logger.Warn("RabbitMQ not available, using noop publisher", "error", err)
			c.EventPublisher = eventbus.NewNoopPublisher(logger)
		} else {
			c.EventPublisher = publisher
		}
	}

	c.wire()
	return c, nil
}

// NewContainerWithConnection wires handlers over an already migrated
// connection, without Redis or RabbitMQ.
func NewContainerWithConnection(conn database.Connection, cfg *config.Config, logger *slog.Logger) *Container {
	c := newContainer(conn, cfg, logger)
	c.wire()
	return c
}

func newContainer(conn database.Connection, cfg *config.Config, logger *slog.Logger) *Container {
	if cfg == nil {
		cfg = &config.Config{AppEnv: "development"}
	}
	if logger == nil {
		logger = slog.Default()
	}
	bus := eventbus.NewInProcessBus(logger)
	c := &Container{
		Config:         cfg,
		Logger:         logger,
		Metrics:        observability.NewInMemoryMetrics(),
		Health:         observability.NewHealthRegistry(),
		DBConn:         conn,
		Repos:          NewRepositories(conn),
		UnitOfWork:     database.NewUnitOfWork(conn),
		SlotCache:      availabilityDomain.NoopSlotCache{},
		InProcessBus:   bus,
		EventPublisher: bus,
	}
	c.Health.Register("database", observability.PingChecker(conn.Ping, false))
	return c
}

func (c *Container) connectRedis(ctx context.Context) error {
	opt, err := redis.ParseURL(c.Config.RedisURL)
	if err != nil {
		return fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}

	c.RedisClient = client
	c.SlotCache = availabilityCache.NewRedisSlotCache(client, c.Config.SlotCacheTTL, c.Logger)
	c.Health.Register("redis", observability.PingChecker(func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	}, true))
	c.Logger.Info("connected to Redis")
	return nil
}

func (c *Container) wire() {
	repos, uow, cache, logger := c.Repos, c.UnitOfWork, c.SlotCache, c.Logger

	c.SetAvailabilityHandler = availabilityCommands.NewSetAvailabilityHandler(repos.Templates, repos.Outbox, uow, cache)
	c.GetAvailabilityHandler = availabilityQueries.NewGetAvailabilityHandler(repos.Templates)
	c.AddBlockHandler = availabilityCommands.NewAddBlockHandler(repos.Blocks, repos.Outbox, uow, cache)
	c.RemoveBlockHandler = availabilityCommands.NewRemoveBlockHandler(repos.Blocks, repos.Outbox, uow, cache)
	c.ListBlocksHandler = availabilityQueries.NewListBlocksHandler(repos.Blocks)

	c.BookAppointmentHandler = scheduleCommands.NewBookAppointmentHandler(repos.Ledger, repos.Templates, repos.Outbox, uow, cache, c.Metrics)
	c.ApproveAppointmentHandler = scheduleCommands.NewApproveAppointmentHandler(repos.Ledger, repos.Outbox, uow, cache)
	c.DeclineAppointmentHandler = scheduleCommands.NewDeclineAppointmentHandler(repos.Ledger, repos.Outbox, uow, cache)
	c.RescheduleAppointmentHandler = scheduleCommands.NewRescheduleAppointmentHandler(repos.Ledger, repos.RescheduleAttempt, repos.Outbox, uow, cache, logger)
	c.CancelAppointmentHandler = scheduleCommands.NewCancelAppointmentHandler(repos.Ledger, repos.Outbox, uow, cache)
	c.CompleteAppointmentHandler = scheduleCommands.NewCompleteAppointmentHandler(repos.Ledger, repos.Outbox, uow, cache)
	c.MarkNoShowHandler = scheduleCommands.NewMarkNoShowHandler(repos.Ledger, repos.Outbox, uow, cache)

	c.ResolveAvailableSlotsHandler = scheduleQueries.NewResolveAvailableSlotsHandler(repos.Templates, repos.Blocks, repos.Ledger, cache, c.Metrics)
	c.ComputeQueueHandler = scheduleQueries.NewComputeQueueHandler(repos.Templates, repos.Ledger)
	c.ListAppointmentsHandler = scheduleQueries.NewListAppointmentsHandler(repos.Ledger)
	c.ListPendingRequestsHandler = scheduleQueries.NewListPendingRequestsHandler(repos.Ledger)
	c.ListRescheduleAttemptsHandler = scheduleQueries.NewListRescheduleAttemptsHandler(repos.Ledger, repos.RescheduleAttempt)

	c.ReminderSweeper = scheduleServices.NewReminderSweeper(repos.Ledger, repos.Outbox, uow, logger, c.Metrics)

	processorConfig := outbox.DefaultProcessorConfig()
	if c.Config.OutboxPollInterval > 0 {
		processorConfig.PollInterval = c.Config.OutboxPollInterval
	}
	if c.Config.OutboxBatchSize > 0 {
		processorConfig.BatchSize = c.Config.OutboxBatchSize
	}
	if c.Config.OutboxMaxRetries > 0 {
		processorConfig.MaxRetries = c.Config.OutboxMaxRetries
	}
	c.OutboxProcessor = outbox.NewProcessor(repos.Outbox, c.EventPublisher, processorConfig, logger)
}

// Close releases connections.
func (c *Container) Close() {
	if c.OutboxProcessor != nil && c.OutboxProcessor.IsRunning() {
		c.OutboxProcessor.Stop()
	}
	if err := c.EventPublisher.Close(); err != nil {
		c.Logger.Warn("failed to close event publisher", "error", err)
	}
	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			c.Logger.Warn("failed to close Redis client", "error", err)
		}
	}
	if c.DBConn != nil {
		if err := c.DBConn.Close(); err != nil {
			c.Logger.Warn("failed to close database", "error", err)
		}
	}
}
