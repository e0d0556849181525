package handler

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/comunityalert/backend/internal/domain"
	"github.com/comunityalert/backend/internal/middleware"
)

// createIssueRequest is the JSON body for POST /api/issues.
// ReportedBy is optional; when absent the authenticated caller is the reporter.
type createIssueRequest struct {
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Category    string      `json:"category"`
	LocationID  *uuid.UUID  `json:"location_id"`
	ReportedBy  *uuid.UUID  `json:"reported_by"`
	PhotoURL    string      `json:"photo_url"`
	TagIDs      []uuid.UUID `json:"tag_ids"`
}

// updateIssueRequest is the JSON body for PUT /api/issues/{id}.
type updateIssueRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Category    string     `json:"category"`
	LocationID  *uuid.UUID `json:"location_id"`
}

// updateStatusRequest is the JSON body for PUT /api/issues/{id}/status.
type updateStatusRequest struct {
	Status domain.Status `json:"status"`
}

// CreateIssue handles POST /api/issues.
func (s *Server) CreateIssue(w http.ResponseWriter, r *http.Request) {
	var req createIssueRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	reportedBy := req.ReportedBy
	if reportedBy == nil {
		if user := middleware.UserFrom(r.Context()); user != nil {
			reportedBy = &user.ID
		}
	}

	issue, err := s.issues.Create(r.Context(), domain.CreateIssue{
		Title:        req.Title,
		Description:  req.Description,
		Category:     req.Category,
		LocationID:   req.LocationID,
		ReportedByID: reportedBy,
		PhotoURL:     req.PhotoURL,
		TagIDs:       req.TagIDs,
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusCreated, issue)
}

// GetIssue handles GET /api/issues/{id}.
func (s *Server) GetIssue(w http.ResponseWriter, r *http.Request) {
	id, ok := s.idParam(w, r, "id")
	if !ok {
		return
	}

	issue, err := s.issues.GetByID(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, issue)
}

// UpdateIssue handles PUT /api/issues/{id}.
func (s *Server) UpdateIssue(w http.ResponseWriter, r *http.Request) {
	id, ok := s.idParam(w, r, "id")
	if !ok {
		return
	}
	var req updateIssueRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	issue, err := s.issues.Update(r.Context(), id, domain.UpdateIssue{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		LocationID:  req.LocationID,
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, issue)
}

// UpdateIssueStatus handles PUT /api/issues/{id}/status.
func (s *Server) UpdateIssueStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := s.idParam(w, r, "id")
	if !ok {
		return
	}
	var req updateStatusRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	issue, err := s.issues.UpdateStatus(r.Context(), id, req.Status)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, issue)
}

// DeleteIssue handles DELETE /api/issues/{id}.
func (s *Server) DeleteIssue(w http.ResponseWriter, r *http.Request) {
	id, ok := s.idParam(w, r, "id")
	if !ok {
		return
	}

	if err := s.issues.Delete(r.Context(), id); err != nil {
		s.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListIssues handles GET /api/issues. The result is scoped to the caller:
// administrators see everything, residents their own reports, anonymous
// callers an empty page.
func (s *Server) ListIssues(w http.ResponseWriter, r *http.Request) {
	p := paginationFromQuery(r)

	issues, total, err := s.issues.ListScoped(r.Context(), middleware.UserFrom(r.Context()), p, sortFromQuery(r))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, newPageResponse(issues, p, total))
}

// SearchIssues handles GET /api/issues/search?q=.
func (s *Server) SearchIssues(w http.ResponseWriter, r *http.Request) {
	issues, err := s.issues.SearchScoped(r.Context(), middleware.UserFrom(r.Context()), r.URL.Query().Get("q"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if issues == nil {
		issues = []domain.Issue{}
	}
	s.respondJSON(w, http.StatusOK, issues)
}

// ListIssueTags handles GET /api/issues/{id}/tags.
func (s *Server) ListIssueTags(w http.ResponseWriter, r *http.Request) {
	id, ok := s.idParam(w, r, "id")
	if !ok {
		return
	}

	issue, err := s.issues.GetByID(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	tags := issue.Tags
	if tags == nil {
		tags = []domain.Tag{}
	}
	s.respondJSON(w, http.StatusOK, tags)
}

// AddIssueTag handles POST /api/issues/{id}/tags/{tagID}.
func (s *Server) AddIssueTag(w http.ResponseWriter, r *http.Request) {
	id, ok := s.idParam(w, r, "id")
	if !ok {
		return
	}
	tagID, ok := s.idParam(w, r, "tagID")
	if !ok {
		return
	}

	issue, err := s.issues.AddTag(r.Context(), id, tagID)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, issue)
}

// RemoveIssueTag handles DELETE /api/issues/{id}/tags/{tagID}.
func (s *Server) RemoveIssueTag(w http.ResponseWriter, r *http.Request) {
	id, ok := s.idParam(w, r, "id")
	if !ok {
		return
	}
	tagID, ok := s.idParam(w, r, "tagID")
	if !ok {
		return
	}

	issue, err := s.issues.RemoveTag(r.Context(), id, tagID)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, issue)
}

// ListIssueNotifications handles GET /api/issues/{id}/notifications.
func (s *Server) ListIssueNotifications(w http.ResponseWriter, r *http.Request) {
	id, ok := s.idParam(w, r, "id")
	if !ok {
		return
	}

	notes, err := s.notifications.ByIssue(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if notes == nil {
		notes = []domain.Notification{}
	}
	s.respondJSON(w, http.StatusOK, notes)
}
