package domain

// PaginationParams carries page/limit values from the HTTP layer to the repo layer.
// Page is 1-indexed. Limit is capped at 100 by NewPaginationParams.
type PaginationParams struct {
	// Page is the current page number, starting at 1.
	Page int
	// Limit is the maximum number of items to return.
	Limit int
}

// NewPaginationParams builds a PaginationParams from optional HTTP query params.
// Nil pointers fall back to sane defaults (page=1, limit=20).
// The limit is capped at 100 to prevent runaway queries.
func NewPaginationParams(page, limit *int) PaginationParams {
	p := PaginationParams{Page: 1, Limit: 20}
	if page != nil && *page >= 1 {
		p.Page = *page
	}
	if limit != nil && *limit >= 1 {
		p.Limit = *limit
		if p.Limit > 100 {
			p.Limit = 100
		}
	}
	return p
}

// Offset returns the zero-based row offset for a SQL OFFSET clause.
func (p PaginationParams) Offset() int {
	return (p.Page - 1) * p.Limit
}

// SortParams carries a sort column and direction from the HTTP layer.
// Column holds a caller-supplied sort key; repos translate it through a
// per-surface whitelist and fall back to their default ordering when the
// key is unknown, so arbitrary input can never reach the SQL text.
type SortParams struct {
	Column string
	Desc   bool
}

// NewSortParams builds a SortParams from optional HTTP query params.
// dir is case-insensitive "asc"/"desc"; anything else means ascending.
func NewSortParams(column, dir *string) SortParams {
	s := SortParams{}
	if column != nil {
		s.Column = *column
	}
	if dir != nil && (*dir == "desc" || *dir == "DESC") {
		s.Desc = true
	}
	return s
}
