package api

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	scheduleCommands "github.com/felixgeelhaar/clinicq/internal/scheduling/application/commands"
	scheduleQueries "github.com/felixgeelhaar/clinicq/internal/scheduling/application/queries"
	scheduling "github.com/felixgeelhaar/clinicq/internal/scheduling/domain"
	sharedDomain "github.com/felixgeelhaar/clinicq/internal/shared/domain"
)

type bookRequest struct {
	DoctorID  uuid.UUID `json:"doctorId"`
	PatientID uuid.UUID `json:"patientId,omitempty"`
	Date      string    `json:"date"`
	Time      string    `json:"time"`
}

type rescheduleRequest struct {
	Date string `json:"date,omitempty"`
	Time string `json:"time,omitempty"`
}

// listSlots handles GET /api/v1/slots?doctorId&date
func (s *Server) listSlots(w http.ResponseWriter, r *http.Request, _ sharedDomain.Actor) {
	doctorID, err := uuid.Parse(r.URL.Query().Get("doctorId"))
	if err != nil {
		s.writeError(w, r, badRequest("doctorId must be a UUID"))
		return
	}
	result, err := s.c.ResolveAvailableSlotsHandler.Handle(r.Context(), scheduleQueries.ResolveAvailableSlotsQuery{
		DoctorID: doctorID,
		Date:     r.URL.Query().Get("date"),
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// getQueue handles GET /api/v1/queue?doctorId&date
func (s *Server) getQueue(w http.ResponseWriter, r *http.Request, _ sharedDomain.Actor) {
	doctorID, err := uuid.Parse(r.URL.Query().Get("doctorId"))
	if err != nil {
		s.writeError(w, r, badRequest("doctorId must be a UUID"))
		return
	}
	result, err := s.c.ComputeQueueHandler.Handle(r.Context(), scheduleQueries.ComputeQueueQuery{
		DoctorID: doctorID,
		Date:     r.URL.Query().Get("date"),
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// bookAppointment handles POST /api/v1/appointments
func (s *Server) bookAppointment(w http.ResponseWriter, r *http.Request, actor sharedDomain.Actor) {
	var req bookRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, badRequest("invalid request body"))
		return
	}
	if req.DoctorID == uuid.Nil || req.Date == "" || req.Time == "" {
		s.writeError(w, r, badRequest("doctorId, date and time are required"))
		return
	}

	appt, err := s.c.BookAppointmentHandler.Handle(r.Context(), scheduleCommands.BookAppointmentCommand{
		Actor:     actor,
		PatientID: req.PatientID,
		DoctorID:  req.DoctorID,
		Date:      req.Date,
		Time:      req.Time,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, scheduleQueries.ToAppointmentDTO(appt))
}

// listAppointments handles GET /api/v1/appointments
func (s *Server) listAppointments(w http.ResponseWriter, r *http.Request, actor sharedDomain.Actor) {
	result, err := s.c.ListAppointmentsHandler.Handle(r.Context(), scheduleQueries.ListAppointmentsQuery{
		Actor:  actor,
		Status: r.URL.Query().Get("status"),
		Date:   r.URL.Query().Get("date"),
		Limit:  parseIntParam(r, "limit", 0),
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// listRequests handles GET /api/v1/appointments/requests
func (s *Server) listRequests(w http.ResponseWriter, r *http.Request, actor sharedDomain.Actor) {
	result, err := s.c.ListPendingRequestsHandler.Handle(r.Context(), scheduleQueries.ListPendingRequestsQuery{Actor: actor})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// rescheduleAppointment handles PUT /api/v1/appointments/{id}
func (s *Server) rescheduleAppointment(w http.ResponseWriter, r *http.Request, actor sharedDomain.Actor) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, scheduling.ErrAppointmentNotFound)
		return
	}
	var req rescheduleRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, badRequest("invalid request body"))
		return
	}

	appt, err := s.c.RescheduleAppointmentHandler.Handle(r.Context(), scheduleCommands.RescheduleAppointmentCommand{
		Actor:         actor,
		AppointmentID: id,
		Date:          req.Date,
		Time:          req.Time,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, scheduleQueries.ToAppointmentDTO(appt))
}

// transition adapts a lifecycle handler to PUT/DELETE /api/v1/appointments/{id}[/action].
func (s *Server) transition(
	handle func(context.Context, scheduleCommands.TransitionCommand) (*scheduling.Appointment, error),
) actorHandler {
	return func(w http.ResponseWriter, r *http.Request, actor sharedDomain.Actor) {
		id, err := uuid.Parse(r.PathValue("id"))
		if err != nil {
			s.writeError(w, r, scheduling.ErrAppointmentNotFound)
			return
		}
		appt, err := handle(r.Context(), scheduleCommands.TransitionCommand{Actor: actor, AppointmentID: id})
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, scheduleQueries.ToAppointmentDTO(appt))
	}
}

// listReschedules handles GET /api/v1/appointments/{id}/reschedules
func (s *Server) listReschedules(w http.ResponseWriter, r *http.Request, actor sharedDomain.Actor) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, scheduling.ErrAppointmentNotFound)
		return
	}
	result, err := s.c.ListRescheduleAttemptsHandler.Handle(r.Context(), scheduleQueries.ListRescheduleAttemptsQuery{
		Actor:         actor,
		AppointmentID: id,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
