package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/comunityalert/backend/internal/domain"
)

// pageResponse is the envelope for every paged listing.
type pageResponse[T any] struct {
	Data       []T            `json:"data"`
	Pagination paginationMeta `json:"pagination"`
}

type paginationMeta struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
}

func newPageResponse[T any](data []T, p domain.PaginationParams, total int64) pageResponse[T] {
	if data == nil {
		data = []T{}
	}
	return pageResponse[T]{
		Data:       data,
		Pagination: paginationMeta{Page: p.Page, Limit: p.Limit, Total: total},
	}
}

// respondJSON writes v as a JSON response body with the given status.
func (s *Server) respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error("encoding response failed", "error", err)
	}
}

// decodeJSON decodes the request body into dst, responding 400 itself on
// failure. The bool result tells the handler whether to continue.
func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		s.respondJSON(w, http.StatusBadRequest, errorBody("bad_request", "invalid request body"))
		return false
	}
	return true
}

// idParam parses the named chi URL parameter as a uuid, responding 400
// itself on failure.
func (s *Server) idParam(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		s.respondJSON(w, http.StatusBadRequest, errorBody("bad_request", "invalid "+name))
		return uuid.Nil, false
	}
	return id, true
}

// paginationFromQuery builds PaginationParams from ?page= and ?limit=.
// Absent or malformed values fall back to the domain defaults.
func paginationFromQuery(r *http.Request) domain.PaginationParams {
	return domain.NewPaginationParams(intQuery(r, "page"), intQuery(r, "limit"))
}

// sortFromQuery builds SortParams from ?sort= and ?dir=. Unknown sort keys
// are filtered against a whitelist at the repo layer.
func sortFromQuery(r *http.Request) domain.SortParams {
	return domain.NewSortParams(strQuery(r, "sort"), strQuery(r, "dir"))
}

func intQuery(r *http.Request, name string) *int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil
	}
	return &n
}

func strQuery(r *http.Request, name string) *string {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil
	}
	return &raw
}
