package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/comunityalert/backend/internal/domain"
)

// createTagRequest is the JSON body for POST /api/tags.
type createTagRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// updateTagRequest is the JSON body for PUT /api/tags/{id}. A nil
// Description leaves the stored description untouched.
type updateTagRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
	Active      bool    `json:"active"`
}

// CreateTag handles POST /api/tags.
func (s *Server) CreateTag(w http.ResponseWriter, r *http.Request) {
	var req createTagRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	tag, err := s.tags.Create(r.Context(), req.Name, req.Description)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusCreated, tag)
}

// GetTag handles GET /api/tags/{id}.
func (s *Server) GetTag(w http.ResponseWriter, r *http.Request) {
	id, ok := s.idParam(w, r, "id")
	if !ok {
		return
	}

	tag, err := s.tags.GetByID(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, tag)
}

// GetTagByName handles GET /api/tags/name/{name}. The match is exact and
// case-sensitive, mirroring the uniqueness rule.
func (s *Server) GetTagByName(w http.ResponseWriter, r *http.Request) {
	tag, err := s.tags.GetByName(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, tag)
}

// ListTags handles GET /api/tags. With ?active=true only active tags are
// returned. When ?page= or ?limit= is present the response is paged,
// otherwise the full list is returned flat.
func (s *Server) ListTags(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("active") == "true"

	q := r.URL.Query()
	if q.Get("page") == "" && q.Get("limit") == "" {
		tags, err := s.tags.List(r.Context(), activeOnly)
		if err != nil {
			s.respondError(w, r, err)
			return
		}
		s.respondJSON(w, http.StatusOK, tags)
		return
	}

	p := paginationFromQuery(r)
	tags, total, err := s.tags.ListPaged(r.Context(), activeOnly, p, sortFromQuery(r))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, newPageResponse(tags, p, total))
}

// SearchTags handles GET /api/tags/search?q=.
func (s *Server) SearchTags(w http.ResponseWriter, r *http.Request) {
	tags, err := s.tags.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if tags == nil {
		tags = []domain.Tag{}
	}
	s.respondJSON(w, http.StatusOK, tags)
}

// ListUsedTags handles GET /api/tags/used.
func (s *Server) ListUsedTags(w http.ResponseWriter, r *http.Request) {
	tags, err := s.tags.ListUsed(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if tags == nil {
		tags = []domain.Tag{}
	}
	s.respondJSON(w, http.StatusOK, tags)
}

// ListUnusedTags handles GET /api/tags/unused.
func (s *Server) ListUnusedTags(w http.ResponseWriter, r *http.Request) {
	tags, err := s.tags.ListUnused(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if tags == nil {
		tags = []domain.Tag{}
	}
	s.respondJSON(w, http.StatusOK, tags)
}

// UpdateTag handles PUT /api/tags/{id}.
func (s *Server) UpdateTag(w http.ResponseWriter, r *http.Request) {
	id, ok := s.idParam(w, r, "id")
	if !ok {
		return
	}
	var req updateTagRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	tag, err := s.tags.Update(r.Context(), id, domain.UpdateTag{
		Name:        req.Name,
		Description: req.Description,
		Active:      req.Active,
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, tag)
}

// ActivateTag handles PUT /api/tags/{id}/activate.
func (s *Server) ActivateTag(w http.ResponseWriter, r *http.Request) {
	id, ok := s.idParam(w, r, "id")
	if !ok {
		return
	}

	tag, err := s.tags.Activate(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, tag)
}

// DeactivateTag handles PUT /api/tags/{id}/deactivate.
func (s *Server) DeactivateTag(w http.ResponseWriter, r *http.Request) {
	id, ok := s.idParam(w, r, "id")
	if !ok {
		return
	}

	tag, err := s.tags.Deactivate(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, tag)
}

// DeleteTag handles DELETE /api/tags/{id}. The tag is detached from every
// issue before removal.
func (s *Server) DeleteTag(w http.ResponseWriter, r *http.Request) {
	id, ok := s.idParam(w, r, "id")
	if !ok {
		return
	}

	if err := s.tags.Delete(r.Context(), id); err != nil {
		s.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
