package handler

import (
	"net/http"

	"github.com/comunityalert/backend/internal/middleware"
)

// DashboardStats handles GET /api/dashboard/stats. The aggregates are scoped
// to the caller; the global user and location totals are only populated for
// administrators.
func (s *Server) DashboardStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.issues.Stats(r.Context(), middleware.UserFrom(r.Context()))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, stats)
}
