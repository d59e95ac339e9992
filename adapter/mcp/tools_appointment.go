package mcp

import (
	"context"
	"errors"

	"github.com/felixgeelhaar/mcp-go"

	"github.com/felixgeelhaar/clinicq/adapter/cli"
	scheduleCommands "github.com/felixgeelhaar/clinicq/internal/scheduling/application/commands"
	scheduleQueries "github.com/felixgeelhaar/clinicq/internal/scheduling/application/queries"
	scheduling "github.com/felixgeelhaar/clinicq/internal/scheduling/domain"
)

type slotsInput struct {
	DoctorID string `json:"doctor_id" jsonschema:"required"`
	Date     string `json:"date" jsonschema:"required"`
}

type bookInput struct {
	DoctorID  string `json:"doctor_id" jsonschema:"required"`
	PatientID string `json:"patient_id,omitempty"`
	Date      string `json:"date" jsonschema:"required"`
	Time      string `json:"time" jsonschema:"required"`
}

type appointmentIDInput struct {
	AppointmentID string `json:"appointment_id" jsonschema:"required"`
}

type rescheduleInput struct {
	AppointmentID string `json:"appointment_id" jsonschema:"required"`
	Date          string `json:"date,omitempty"`
	Time          string `json:"time,omitempty"`
}

type listInput struct {
	Status string `json:"status,omitempty"`
	Date   string `json:"date,omitempty"`
	Limit  int    `json:"limit,omitempty"`
}

func registerAppointmentTools(srv *mcp.Server, deps ToolDependencies) {
	app := deps.App

	srv.Tool("slots.list").
		Description("List a doctor's open slots for a date (YYYY-MM-DD)").
		Handler(slotsTool(app))

	srv.Tool("queue.show").
		Description("Show a doctor's queue for a date with estimated waits").
		Handler(queueTool(app))

	srv.Tool("appointment.book").
		Description("Request an appointment in an open slot (HH:mm)").
		Handler(bookTool(app))

	srv.Tool("appointment.reschedule").
		Description("Move an appointment; omitted date or time keeps the current value").
		Handler(rescheduleTool(app))

	srv.Tool("appointment.list").
		Description("List appointments visible to the acting identity").
		Handler(listTool(app))

	srv.Tool("appointment.requests").
		Description("List pending requests awaiting the acting doctor").
		Handler(func(ctx context.Context, input struct{}) ([]scheduleQueries.AppointmentDTO, error) {
			if app.ListPendingRequestsHandler == nil {
				return nil, errNoDatabase
			}
			actor, err := actorOf(app)
			if err != nil {
				return nil, err
			}
			return app.ListPendingRequestsHandler.Handle(ctx, scheduleQueries.ListPendingRequestsQuery{Actor: actor})
		})

	srv.Tool("appointment.approve").
		Description("Approve a pending request").
		Handler(transitionTool(app, func() transitionFunc {
			if app.ApproveAppointmentHandler == nil {
				return nil
			}
			return app.ApproveAppointmentHandler.Handle
		}))
	srv.Tool("appointment.decline").
		Description("Decline a pending request").
		Handler(transitionTool(app, func() transitionFunc {
			if app.DeclineAppointmentHandler == nil {
				return nil
			}
			return app.DeclineAppointmentHandler.Handle
		}))
	srv.Tool("appointment.cancel").
		Description("Cancel an appointment").
		Handler(transitionTool(app, func() transitionFunc {
			if app.CancelAppointmentHandler == nil {
				return nil
			}
			return app.CancelAppointmentHandler.Handle
		}))
	srv.Tool("appointment.complete").
		Description("Mark a scheduled appointment as seen").
		Handler(transitionTool(app, func() transitionFunc {
			if app.CompleteAppointmentHandler == nil {
				return nil
			}
			return app.CompleteAppointmentHandler.Handle
		}))
	srv.Tool("appointment.no_show").
		Description("Mark a scheduled appointment as missed").
		Handler(transitionTool(app, func() transitionFunc {
			if app.MarkNoShowHandler == nil {
				return nil
			}
			return app.MarkNoShowHandler.Handle
		}))
}

func slotsTool(app *cli.App) func(context.Context, slotsInput) (*scheduleQueries.AvailableSlots, error) {
	return func(ctx context.Context, input slotsInput) (*scheduleQueries.AvailableSlots, error) {
		if app.ResolveAvailableSlotsHandler == nil {
			return nil, errNoDatabase
		}
		doctorID, err := parseUUID(input.DoctorID)
		if err != nil {
			return nil, err
		}
		return app.ResolveAvailableSlotsHandler.Handle(ctx, scheduleQueries.ResolveAvailableSlotsQuery{
			DoctorID: doctorID,
			Date:     input.Date,
		})
	}
}

func queueTool(app *cli.App) func(context.Context, slotsInput) (*scheduleQueries.Queue, error) {
	return func(ctx context.Context, input slotsInput) (*scheduleQueries.Queue, error) {
		if app.ComputeQueueHandler == nil {
			return nil, errNoDatabase
		}
		doctorID, err := parseUUID(input.DoctorID)
		if err != nil {
			return nil, err
		}
		return app.ComputeQueueHandler.Handle(ctx, scheduleQueries.ComputeQueueQuery{
			DoctorID: doctorID,
			Date:     input.Date,
		})
	}
}

func bookTool(app *cli.App) func(context.Context, bookInput) (*scheduleQueries.AppointmentDTO, error) {
	return func(ctx context.Context, input bookInput) (*scheduleQueries.AppointmentDTO, error) {
		if app.BookAppointmentHandler == nil {
			return nil, errNoDatabase
		}
		actor, err := actorOf(app)
		if err != nil {
			return nil, err
		}
		doctorID, err := parseUUID(input.DoctorID)
		if err != nil {
			return nil, err
		}
		patientID, err := parseOptionalUUID(input.PatientID)
		if err != nil {
			return nil, err
		}

		appt, err := app.BookAppointmentHandler.Handle(ctx, scheduleCommands.BookAppointmentCommand{
			Actor:     actor,
			PatientID: patientID,
			DoctorID:  doctorID,
			Date:      input.Date,
			Time:      input.Time,
		})
		if err != nil {
			return nil, err
		}
		dto := scheduleQueries.ToAppointmentDTO(appt)
		return &dto, nil
	}
}

func rescheduleTool(app *cli.App) func(context.Context, rescheduleInput) (*scheduleQueries.AppointmentDTO, error) {
	return func(ctx context.Context, input rescheduleInput) (*scheduleQueries.AppointmentDTO, error) {
		if app.RescheduleAppointmentHandler == nil {
			return nil, errNoDatabase
		}
		if input.Date == "" && input.Time == "" {
			return nil, errors.New("date or time is required")
		}
		actor, err := actorOf(app)
		if err != nil {
			return nil, err
		}
		id, err := parseUUID(input.AppointmentID)
		if err != nil {
			return nil, err
		}

		appt, err := app.RescheduleAppointmentHandler.Handle(ctx, scheduleCommands.RescheduleAppointmentCommand{
			Actor:         actor,
			AppointmentID: id,
			Date:          input.Date,
			Time:          input.Time,
		})
		if err != nil {
			return nil, err
		}
		dto := scheduleQueries.ToAppointmentDTO(appt)
		return &dto, nil
	}
}

func listTool(app *cli.App) func(context.Context, listInput) ([]scheduleQueries.AppointmentDTO, error) {
	return func(ctx context.Context, input listInput) ([]scheduleQueries.AppointmentDTO, error) {
		if app.ListAppointmentsHandler == nil {
			return nil, errNoDatabase
		}
		actor, err := actorOf(app)
		if err != nil {
			return nil, err
		}
		return app.ListAppointmentsHandler.Handle(ctx, scheduleQueries.ListAppointmentsQuery{
			Actor:  actor,
			Status: input.Status,
			Date:   input.Date,
			Limit:  input.Limit,
		})
	}
}

type transitionFunc func(context.Context, scheduleCommands.TransitionCommand) (*scheduling.Appointment, error)

// transitionTool adapts a lifecycle handler. pick is resolved per call so
// a server started without a database reports it instead of panicking.
func transitionTool(app *cli.App, pick func() transitionFunc) func(context.Context, appointmentIDInput) (*scheduleQueries.AppointmentDTO, error) {
	return func(ctx context.Context, input appointmentIDInput) (*scheduleQueries.AppointmentDTO, error) {
		handle := pick()
		if handle == nil {
			return nil, errNoDatabase
		}
		actor, err := actorOf(app)
		if err != nil {
			return nil, err
		}
		id, err := parseUUID(input.AppointmentID)
		if err != nil {
			return nil, err
		}

		appt, err := handle(ctx, scheduleCommands.TransitionCommand{Actor: actor, AppointmentID: id})
		if err != nil {
			return nil, err
		}
		dto := scheduleQueries.ToAppointmentDTO(appt)
		return &dto, nil
	}
}
