package pagination

import (
	"net/http"
	"strconv"
)

// Catalog defaults.
const (
	DefaultPerPage = 12
	MaxPerPage     = 100
	DefaultWindow  = 5
	// MaxPage caps requested page numbers so offsets cannot overflow.
	MaxPage = 1 << 20
)

// Params holds pagination parameters extracted from query strings.
type Params struct {
	Page    int `json:"page"`
	PerPage int `json:"per_page"`
	Offset  int `json:"-"`
}

// DefaultParams returns the first page at the catalog page size.
func DefaultParams() Params {
	return NewParams(1, DefaultPerPage)
}

// NewParams builds Params, replacing out-of-range values with defaults.
func NewParams(page, perPage int) Params {
	if page < 1 {
		page = 1
	}
	if page > MaxPage {
		page = MaxPage
	}
	if perPage < 1 || perPage > MaxPerPage {
		perPage = DefaultPerPage
	}
	return Params{Page: page, PerPage: perPage, Offset: (page - 1) * perPage}
}

// FromRequest extracts pagination parameters from an HTTP request.
func FromRequest(r *http.Request) Params {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	perPage, _ := strconv.Atoi(q.Get("per_page"))
	return NewParams(page, perPage)
}

// Result wraps one page of an in-memory list.
type Result[T any] struct {
	Data       []T   `json:"data"`
	TotalCount int   `json:"total_count"`
	Page       int   `json:"page"`
	PerPage    int   `json:"per_page"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
	HasPrev    bool  `json:"has_prev"`
	Pages      []int `json:"pages,omitempty"`
}

// Paginate slices items to the requested page. A page past the end yields an
// empty Data slice, not an error.
func Paginate[T any](items []T, params Params) Result[T] {
	if params.PerPage < 1 {
		params = NewParams(params.Page, params.PerPage)
	}
	total := len(items)
	totalPages := total / params.PerPage
	if total%params.PerPage > 0 {
		totalPages++
	}

	start := params.Offset
	if start < 0 {
		start = total
	}
	if start > total {
		start = total
	}
	end := start + params.PerPage
	if end > total {
		end = total
	}

	data := make([]T, end-start)
	copy(data, items[start:end])

	return Result[T]{
		Data:       data,
		TotalCount: total,
		Page:       params.Page,
		PerPage:    params.PerPage,
		TotalPages: totalPages,
		HasNext:    params.Page < totalPages,
		HasPrev:    params.Page > 1,
		Pages:      Window(params.Page, totalPages, DefaultWindow),
	}
}

// Window returns at most size page numbers centred on current. It returns nil
// when there is only one page, since no page buttons are shown then.
func Window(current, totalPages, size int) []int {
	if totalPages <= 1 || size < 1 {
		return nil
	}
	if current > totalPages {
		current = totalPages
	}
	start := current - size/2
	if start < 1 {
		start = 1
	}
	end := start + size - 1
	if end > totalPages {
		end = totalPages
	}
	if end-start+1 < size {
		start = end - size + 1
		if start < 1 {
			start = 1
		}
	}

	pages := make([]int, 0, end-start+1)
	for i := start; i <= end; i++ {
		pages = append(pages, i)
	}
	return pages
}
