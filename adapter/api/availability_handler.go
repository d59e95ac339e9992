package api

import (
	"net/http"

	"github.com/google/uuid"

	availabilityCommands "github.com/felixgeelhaar/clinicq/internal/availability/application/commands"
	availabilityQueries "github.com/felixgeelhaar/clinicq/internal/availability/application/queries"
	availability "github.com/felixgeelhaar/clinicq/internal/availability/domain"
	sharedDomain "github.com/felixgeelhaar/clinicq/internal/shared/domain"
)

type availabilityRequest struct {
	Days         map[string][]availability.Range `json:"days,omitempty"`
	SlotDuration int                             `json:"slotDuration,omitempty"`
}

type blockRequest struct {
	Date   string `json:"date"`
	Start  string `json:"start"`
	End    string `json:"end"`
	Reason string `json:"reason,omitempty"`
}

// setAvailability handles PUT /api/v1/availability
func (s *Server) setAvailability(w http.ResponseWriter, r *http.Request, actor sharedDomain.Actor) {
	var req availabilityRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, badRequest("invalid request body"))
		return
	}
	result, err := s.c.SetAvailabilityHandler.Handle(r.Context(), availabilityCommands.SetAvailabilityCommand{
		Actor:               actor,
		Days:                req.Days,
		SlotDurationMinutes: req.SlotDuration,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, availabilityQueries.AvailabilityDTO{
		DoctorID:            result.DoctorID,
		Days:                result.Days,
		SlotDurationMinutes: result.SlotDurationMinutes,
		Configured:          true,
	})
}

// getAvailability handles GET /api/v1/availability/{doctorId}
func (s *Server) getAvailability(w http.ResponseWriter, r *http.Request, _ sharedDomain.Actor) {
	doctorID, err := uuid.Parse(r.PathValue("doctorId"))
	if err != nil {
		s.writeError(w, r, badRequest("doctorId must be a UUID"))
		return
	}
	result, err := s.c.GetAvailabilityHandler.Handle(r.Context(), availabilityQueries.GetAvailabilityQuery{DoctorID: doctorID})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// addBlock handles POST /api/v1/blocks
func (s *Server) addBlock(w http.ResponseWriter, r *http.Request, actor sharedDomain.Actor) {
	var req blockRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, badRequest("invalid request body"))
		return
	}
	result, err := s.c.AddBlockHandler.Handle(r.Context(), availabilityCommands.AddBlockCommand{
		Actor:  actor,
		Date:   req.Date,
		Start:  req.Start,
		End:    req.End,
		Reason: req.Reason,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]uuid.UUID{"id": result.BlockID})
}

// listBlocks handles GET /api/v1/blocks?date
func (s *Server) listBlocks(w http.ResponseWriter, r *http.Request, actor sharedDomain.Actor) {
	result, err := s.c.ListBlocksHandler.Handle(r.Context(), availabilityQueries.ListBlocksQuery{
		Actor: actor,
		Date:  r.URL.Query().Get("date"),
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// removeBlock handles DELETE /api/v1/blocks/{id}
func (s *Server) removeBlock(w http.ResponseWriter, r *http.Request, actor sharedDomain.Actor) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, availability.ErrBlockNotFound)
		return
	}
	if err := s.c.RemoveBlockHandler.Handle(r.Context(), availabilityCommands.RemoveBlockCommand{Actor: actor, BlockID: id}); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
