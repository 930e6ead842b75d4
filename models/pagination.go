package models

// PageRequest selects a page either by cursor or by page number.
// When Cursor is set the page starts at that row (inclusive) and Page is ignored.
type PageRequest struct {
	Limit  int
	Page   int
	Cursor string
}

// Pagination describes the returned page. Cursor mode fills NextCursor only;
// page mode fills the counters.
type Pagination struct {
	NextCursor      string `json:"nextCursor,omitempty"`
	Page            int    `json:"page,omitempty"`
	Limit           int    `json:"limit"`
	TotalCount      int    `json:"totalCount,omitempty"`
	TotalPages      int    `json:"totalPages,omitempty"`
	HasNextPage     bool   `json:"hasNextPage"`
	HasPreviousPage bool   `json:"hasPreviousPage"`
}

// Normalize clamps the limit into [1, max] using def when unset and
// defaults the page to 1.
func (p PageRequest) Normalize(def, max int) PageRequest {
	if p.Limit <= 0 {
		p.Limit = def
	}
	if p.Limit > max {
		p.Limit = max
	}
	if p.Page < 1 {
		p.Page = 1
	}
	return p
}

// Offset is the number of rows skipped in page mode
func (p PageRequest) Offset() int {
	return (p.Page - 1) * p.Limit
}

// NewPagePagination fills the page-mode counters
func NewPagePagination(p PageRequest, total int) Pagination {
	pages := 0
	if p.Limit > 0 {
		pages = (total + p.Limit - 1) / p.Limit
	}
	return Pagination{
		Page:            p.Page,
		Limit:           p.Limit,
		TotalCount:      total,
		TotalPages:      pages,
		HasNextPage:     p.Page < pages,
		HasPreviousPage: p.Page > 1,
	}
}
