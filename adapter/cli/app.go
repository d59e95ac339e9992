package cli

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	internalApp "github.com/felixgeelhaar/clinicq/internal/app"
	availabilityCommands "github.com/felixgeelhaar/clinicq/internal/availability/application/commands"
	availabilityQueries "github.com/felixgeelhaar/clinicq/internal/availability/application/queries"
	scheduleCommands "github.com/felixgeelhaar/clinicq/internal/scheduling/application/commands"
	scheduleQueries "github.com/felixgeelhaar/clinicq/internal/scheduling/application/queries"
	scheduleServices "github.com/felixgeelhaar/clinicq/internal/scheduling/application/services"
	sharedDomain "github.com/felixgeelhaar/clinicq/internal/shared/domain"
	"github.com/felixgeelhaar/clinicq/pkg/config"
)

// App holds the CLI application dependencies.
type App struct {
	// Availability
	SetAvailabilityHandler *availabilityCommands.SetAvailabilityHandler
	GetAvailabilityHandler *availabilityQueries.GetAvailabilityHandler
	AddBlockHandler        *availabilityCommands.AddBlockHandler
	RemoveBlockHandler     *availabilityCommands.RemoveBlockHandler
	ListBlocksHandler      *availabilityQueries.ListBlocksHandler

	// Appointment commands
	BookAppointmentHandler       *scheduleCommands.BookAppointmentHandler
	ApproveAppointmentHandler    *scheduleCommands.ApproveAppointmentHandler
	DeclineAppointmentHandler    *scheduleCommands.DeclineAppointmentHandler
	RescheduleAppointmentHandler *scheduleCommands.RescheduleAppointmentHandler
	CancelAppointmentHandler     *scheduleCommands.CancelAppointmentHandler
	CompleteAppointmentHandler   *scheduleCommands.CompleteAppointmentHandler
	MarkNoShowHandler            *scheduleCommands.MarkNoShowHandler

	// Appointment queries
	ResolveAvailableSlotsHandler  *scheduleQueries.ResolveAvailableSlotsHandler
	ComputeQueueHandler           *scheduleQueries.ComputeQueueHandler
	ListAppointmentsHandler       *scheduleQueries.ListAppointmentsHandler
	ListPendingRequestsHandler    *scheduleQueries.ListPendingRequestsHandler
	ListRescheduleAttemptsHandler *scheduleQueries.ListRescheduleAttemptsHandler

	ReminderSweeper *scheduleServices.ReminderSweeper

	// Container backs the serve commands.
	Container *internalApp.Container

	// DefaultActor is used when --as is not given.
	DefaultActor sharedDomain.Actor
}

// NewApp creates a CLI application over the container's handlers.
func NewApp(c *internalApp.Container, actor sharedDomain.Actor) *App {
	return &App{
		SetAvailabilityHandler:        c.SetAvailabilityHandler,
		GetAvailabilityHandler:        c.GetAvailabilityHandler,
		AddBlockHandler:               c.AddBlockHandler,
		RemoveBlockHandler:            c.RemoveBlockHandler,
		ListBlocksHandler:             c.ListBlocksHandler,
		BookAppointmentHandler:        c.BookAppointmentHandler,
		ApproveAppointmentHandler:     c.ApproveAppointmentHandler,
		DeclineAppointmentHandler:     c.DeclineAppointmentHandler,
		RescheduleAppointmentHandler:  c.RescheduleAppointmentHandler,
		CancelAppointmentHandler:      c.CancelAppointmentHandler,
		CompleteAppointmentHandler:    c.CompleteAppointmentHandler,
		MarkNoShowHandler:             c.MarkNoShowHandler,
		ResolveAvailableSlotsHandler:  c.ResolveAvailableSlotsHandler,
		ComputeQueueHandler:           c.ComputeQueueHandler,
		ListAppointmentsHandler:       c.ListAppointmentsHandler,
		ListPendingRequestsHandler:    c.ListPendingRequestsHandler,
		ListRescheduleAttemptsHandler: c.ListRescheduleAttemptsHandler,
		ReminderSweeper:               c.ReminderSweeper,
		Container:                     c,
		DefaultActor:                  actor,
	}
}

// app is the global CLI application instance
var app *App

// SetApp sets the global CLI application instance.
func SetApp(a *App) {
	app = a
}

// GetApp returns the global CLI application instance.
func GetApp() *App {
	return app
}

// ErrNotInitialized is returned by commands run without a database.
var ErrNotInitialized = errors.New("clinicq is not connected to a database; check DATABASE_URL or SQLITE_PATH")

// CurrentActor resolves who the command acts as: the --as/--role flags
// when given, otherwise the configured default.
func CurrentActor() (sharedDomain.Actor, error) {
	if app == nil {
		return sharedDomain.Actor{}, ErrNotInitialized
	}
	actor := app.DefaultActor
	if actorFlag != "" {
		id, err := uuid.Parse(actorFlag)
		if err != nil {
			return sharedDomain.Actor{}, fmt.Errorf("invalid --as: %w", err)
		}
		actor.ID = id
	}
	if roleFlag != "" {
		role, err := sharedDomain.ParseRole(roleFlag)
		if err != nil {
			return sharedDomain.Actor{}, err
		}
		actor.Role = role
	}
	if actor.ID == uuid.Nil {
		return sharedDomain.Actor{}, fmt.Errorf("no acting identity; pass --as or set CLINICQ_ACTOR_ID")
	}
	return actor, nil
}

// ConfiguredActor reads the default identity from CLINICQ_ACTOR_ID and
// CLINICQ_ACTOR_ROLE. A missing ID is not an error; commands that need an
// actor fail later unless --as is given.
func ConfiguredActor(cfg *config.Config) (sharedDomain.Actor, error) {
	role, err := sharedDomain.ParseRole(cfg.ActorRole)
	if err != nil {
		return sharedDomain.Actor{}, fmt.Errorf("CLINICQ_ACTOR_ROLE: %w", err)
	}
	if cfg.ActorID == "" {
		return sharedDomain.Actor{Role: role}, nil
	}
	id, err := uuid.Parse(cfg.ActorID)
	if err != nil {
		return sharedDomain.Actor{}, fmt.Errorf("CLINICQ_ACTOR_ID: %w", err)
	}
	return sharedDomain.NewActor(id, role)
}
