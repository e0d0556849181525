package handler

import (
	"net/http"

	"github.com/comunityalert/backend/internal/domain"
	"github.com/comunityalert/backend/internal/middleware"
)

// ListNotifications handles GET /api/notifications. Administrators see all
// notifications, residents only their own.
func (s *Server) ListNotifications(w http.ResponseWriter, r *http.Request) {
	p := paginationFromQuery(r)

	notes, total, err := s.notifications.ListScoped(r.Context(), middleware.UserFrom(r.Context()), p, sortFromQuery(r))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, newPageResponse(notes, p, total))
}

// SearchNotifications handles GET /api/notifications/search?q=.
func (s *Server) SearchNotifications(w http.ResponseWriter, r *http.Request) {
	notes, err := s.notifications.SearchScoped(r.Context(), middleware.UserFrom(r.Context()), r.URL.Query().Get("q"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if notes == nil {
		notes = []domain.Notification{}
	}
	s.respondJSON(w, http.StatusOK, notes)
}

// ListUserNotifications handles GET /api/notifications/user/{userID}.
// A resident may only list their own notifications; administrators may
// list anyone's.
func (s *Server) ListUserNotifications(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.idParam(w, r, "userID")
	if !ok {
		return
	}

	caller := middleware.UserFrom(r.Context())
	if caller == nil {
		s.respondError(w, r, domain.ErrUnauthenticated)
		return
	}
	if !domain.ScopeFor(caller).Allows(&userID) {
		s.respondError(w, r, domain.ErrForbidden)
		return
	}

	notes, err := s.notifications.ByRecipient(r.Context(), userID)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if notes == nil {
		notes = []domain.Notification{}
	}
	s.respondJSON(w, http.StatusOK, notes)
}

// MarkNotificationRead handles PUT /api/notifications/{id}/read. The service
// enforces that only the recipient or an administrator may mark it.
func (s *Server) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	id, ok := s.idParam(w, r, "id")
	if !ok {
		return
	}

	note, err := s.notifications.MarkAsRead(r.Context(), middleware.UserFrom(r.Context()), id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, note)
}
