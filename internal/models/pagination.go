package models

const (
	DefaultPageSize = 10
	MaxPageSize     = 50
)

// Page is a 1-based page request.
type Page struct {
	Number int
	Size   int
}

// NewPage clamps user input to a valid page.
func NewPage(number, size int) Page {
	if number < 1 {
		number = 1
	}
	if size < 1 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	return Page{Number: number, Size: size}
}

func (p Page) Skip() int64 {
	return int64((p.Number - 1) * p.Size)
}

func (p Page) Limit() int64 {
	return int64(p.Size)
}

// PageMeta is the pagination block returned with every list response.
type PageMeta struct {
	CurrentPage     int   `json:"currentPage"`
	TotalPages      int   `json:"totalPages"`
	TotalItems      int64 `json:"totalItems"`
	ItemsPerPage    int   `json:"itemsPerPage"`
	HasNextPage     bool  `json:"hasNextPage"`
	HasPreviousPage bool  `json:"hasPreviousPage"`
}

func NewPageMeta(p Page, total int64) PageMeta {
	totalPages := int((total + int64(p.Size) - 1) / int64(p.Size))
	return PageMeta{
		CurrentPage:     p.Number,
		TotalPages:      totalPages,
		TotalItems:      total,
		ItemsPerPage:    p.Size,
		HasNextPage:     p.Number < totalPages,
		HasPreviousPage: p.Number > 1,
	}
}
