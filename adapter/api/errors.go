package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	availability "github.com/felixgeelhaar/clinicq/internal/availability/domain"
	scheduleCommands "github.com/felixgeelhaar/clinicq/internal/scheduling/application/commands"
	scheduling "github.com/felixgeelhaar/clinicq/internal/scheduling/domain"
	sharedDomain "github.com/felixgeelhaar/clinicq/internal/shared/domain"
)

// APIError is the JSON error body.
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func badRequest(msg string) *APIError {
	return &APIError{Status: http.StatusBadRequest, Code: "bad_request", Message: msg}
}

// toAPIError maps domain failures onto HTTP statuses. Anything
// unrecognised is a 500 and its detail is not leaked.
func toAPIError(err error) *APIError {
	var apiErr *APIError
	switch {
	case errors.As(err, &apiErr):
		return apiErr
	case errors.Is(err, scheduling.ErrSlotConflict):
		return &APIError{Status: http.StatusConflict, Code: "slot_conflict", Message: err.Error()}
	case errors.Is(err, scheduling.ErrOutsideAvailability):
		return &APIError{Status: http.StatusBadRequest, Code: "outside_availability", Message: err.Error()}
	case errors.Is(err, scheduling.ErrInvalidState):
		return &APIError{Status: http.StatusBadRequest, Code: "invalid_state", Message: err.Error()}
	case errors.Is(err, scheduling.ErrAppointmentNotFound), errors.Is(err, availability.ErrBlockNotFound):
		return &APIError{Status: http.StatusNotFound, Code: "not_found", Message: err.Error()}
	case errors.Is(err, sharedDomain.ErrForbidden), errors.Is(err, sharedDomain.ErrUnknownRole):
		return &APIError{Status: http.StatusForbidden, Code: "forbidden", Message: err.Error()}
	case errors.Is(err, availability.ErrInvalidDate),
		errors.Is(err, availability.ErrInvalidClockTime),
		errors.Is(err, availability.ErrInvalidWeekday),
		errors.Is(err, availability.ErrInvalidBlockRange),
		errors.Is(err, scheduleCommands.ErrPatientRequired):
		return badRequest(err.Error())
	default:
		return &APIError{Status: http.StatusInternalServerError, Code: "internal_error", Message: "Internal server error"}
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	apiErr := toAPIError(err)
	if apiErr.Status >= http.StatusInternalServerError {
		s.logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "error", err)
	} else {
		s.logger.Log(r.Context(), slog.LevelDebug, "request rejected", "path", r.URL.Path, "error", err)
	}
	writeJSON(w, apiErr.Status, apiErr)
}
