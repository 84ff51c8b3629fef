package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/pkordes/trip-booking/backend/internal/domain"
)

// notFoundBody returns an ErrorResponse for a missing resource.
// The caller supplies the human-readable message (e.g. "trip 1f0c... not found").
func notFoundBody(message string) ErrorResponse {
	return ErrorResponse{Error: ErrorDetail{Code: "not_found", Message: message}}
}

// validationBody returns an ErrorResponse for a domain validation failure.
// The message is extracted from the wrapped domain.ErrValidation error.
func validationBody(err error) ErrorResponse {
	return ErrorResponse{Error: ErrorDetail{Code: "validation_error", Message: unwrapMessage(err, domain.ErrValidation)}}
}

// requestBody returns an ErrorResponse for a bad request rejected before
// reaching the service layer (e.g. missing body or missing field).
func requestBody(message string) ErrorResponse {
	return ErrorResponse{Error: ErrorDetail{Code: "validation_error", Message: message}}
}

// badRequestBody returns an ErrorResponse for input that could not be parsed at all.
func badRequestBody(message string) ErrorResponse {
	return ErrorResponse{Error: ErrorDetail{Code: "bad_request", Message: message}}
}

// writeServiceError maps an error returned by a service to its HTTP response.
// Anything that is not a known domain error is logged and reported as 500
// without leaking its text.
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		capErr *domain.CapacityError
		nfErr  *domain.NotFoundError
	)
	switch {
	case errors.As(err, &capErr):
		remaining := capErr.Remaining
		writeJSON(w, http.StatusConflict, ErrorResponse{Error: ErrorDetail{
			Code:           "capacity_exceeded",
			Message:        capErr.Error(),
			SeatsRemaining: &remaining,
		}})
	case errors.Is(err, domain.ErrCapacityExceeded):
		writeJSON(w, http.StatusConflict, ErrorResponse{Error: ErrorDetail{
			Code:    "capacity_exceeded",
			Message: unwrapMessage(err, domain.ErrCapacityExceeded),
		}})
	case errors.As(err, &nfErr):
		writeJSON(w, http.StatusNotFound, notFoundBody(nfErr.Error()))
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, notFoundBody("resource not found"))
	case errors.Is(err, domain.ErrValidation):
		writeJSON(w, http.StatusUnprocessableEntity, validationBody(err))
	case errors.Is(err, domain.ErrConflict):
		writeJSON(w, http.StatusConflict, ErrorResponse{Error: ErrorDetail{
			Code:    "conflict",
			Message: unwrapMessage(err, domain.ErrConflict),
		}})
	default:
		s.log.ErrorContext(r.Context(), "unhandled service error",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: ErrorDetail{
			Code:    "internal_error",
			Message: "internal server error",
		}})
	}
}

// unwrapMessage extracts the human-readable part that follows a wrapped sentinel.
// e.g. "service.ReservationService.Create: validation error: seat count must be at least 1"
// → "seat count must be at least 1"
func unwrapMessage(err error, sentinel error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	marker := sentinel.Error() + ": "
	if i := strings.LastIndex(msg, marker); i >= 0 && len(msg) > i+len(marker) {
		return msg[i+len(marker):]
	}
	return sentinel.Error()
}
