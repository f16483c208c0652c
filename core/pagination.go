package core

import "math"

const (
	DefaultPerPage = 15
	MaxPerPage     = 100

	// MaxPage keeps Offset from overflowing.
	MaxPage = math.MaxInt32 / MaxPerPage
)

// PageRequest selects a page of a listing. Page is 1-based.
type PageRequest struct {
	Page    int `query:"page"`
	PerPage int `query:"per_page"`
}

// Clean applies defaults and bounds.
func (pr *PageRequest) Clean() {
	if pr.Page < 1 {
		pr.Page = 1
	}
	if pr.Page > MaxPage {
		pr.Page = MaxPage
	}
	if pr.PerPage < 1 {
		pr.PerPage = DefaultPerPage
	}
	if pr.PerPage > MaxPerPage {
		pr.PerPage = MaxPerPage
	}
}

func (pr PageRequest) Offset() int { return (pr.Page - 1) * pr.PerPage }
func (pr PageRequest) Limit() int  { return pr.PerPage }

// All is a PageRequest that disables pagination (used by exports).
var All = PageRequest{}

func (pr PageRequest) IsAll() bool { return pr.PerPage == 0 }

// Page is a paginated listing, shaped the way the frontend paginator expects it.
type Page struct {
	Data        interface{} `json:"data"`
	CurrentPage int         `json:"current_page"`
	PerPage     int         `json:"per_page"`
	Total       int         `json:"total"`
	LastPage    int         `json:"last_page"`
}

func NewPage(data interface{}, pr PageRequest, total int) Page {
	lastPage := 1
	if pr.PerPage > 0 && total > 0 {
		lastPage = (total + pr.PerPage - 1) / pr.PerPage
	}
	return Page{
		Data:        data,
		CurrentPage: pr.Page,
		PerPage:     pr.PerPage,
		Total:       total,
		LastPage:    lastPage,
	}
}

// Paginate returns the [start, end) bounds of page `pr` over `n` items.
// Used by in-memory stores.
func Paginate(n int, pr PageRequest) (start, end int) {
	if pr.IsAll() {
		return 0, n
	}
	start = pr.Offset()
	if start < 0 || start > n {
		start = n
	}
	end = start + pr.Limit()
	if end > n {
		end = n
	}
	return start, end
}
