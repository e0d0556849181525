package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/comunityalert/backend/internal/domain"
)

// errorResponse is the JSON shape of every error body.
type errorResponse struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func errorBody(code, message string) errorResponse {
	return errorResponse{Error: errorDetail{Code: code, Message: message}}
}

// respondError maps a service/repo error onto the HTTP surface. Sentinel
// errors carry the status; anything else is a 500 with the detail kept out
// of the response body.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		s.respondJSON(w, http.StatusNotFound, errorBody("not_found", unwrapMessage(err)))
	case errors.Is(err, domain.ErrValidation):
		s.respondJSON(w, http.StatusUnprocessableEntity, errorBody("validation_error", unwrapMessage(err)))
	case errors.Is(err, domain.ErrConflict):
		s.respondJSON(w, http.StatusConflict, errorBody("conflict", unwrapMessage(err)))
	case errors.Is(err, domain.ErrForbidden):
		s.respondJSON(w, http.StatusForbidden, errorBody("forbidden", "forbidden"))
	case errors.Is(err, domain.ErrUnauthenticated):
		s.respondJSON(w, http.StatusUnauthorized, errorBody("unauthenticated", "authentication required"))
	default:
		s.log.ErrorContext(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		s.respondJSON(w, http.StatusInternalServerError, errorBody("internal", "internal server error"))
	}
}

// unwrapMessage strips the wrapping prefixes from a sentinel error so the
// response carries only the human-readable tail.
// e.g. "service.IssueService.Create: location: not found" → "location: not found"
func unwrapMessage(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	for {
		i := strings.Index(msg, ": ")
		if i < 0 {
			break
		}
		prefix := msg[:i]
		if !strings.HasPrefix(prefix, "service.") && !strings.HasPrefix(prefix, "repo.") {
			break
		}
		msg = msg[i+2:]
	}
	return msg
}
