package history

import "smartstore-backend/internal/models"

// PageSize is fixed; the history table shows ten rows per page.
const PageSize = 10

// Page is one page of visible records.
type Page struct {
	Records    []models.ApplicationRecord `json:"records"`
	Page       int                        `json:"page"`
	TotalPages int                        `json:"total_pages"`
	Total      int                        `json:"total"`
	PageSize   int                        `json:"page_size"`
}

// TotalPages is ceil(n / PageSize), never less than 1.
func TotalPages(n int) int {
	if n <= 0 {
		return 1
	}
	return (n + PageSize - 1) / PageSize
}

// ClampPage moves page into [1, TotalPages(n)].
func ClampPage(page, n int) int {
	if page < 1 {
		return 1
	}
	if total := TotalPages(n); page > total {
		return total
	}
	return page
}

// Paginate cuts the page-th page out of records.
func Paginate(records []models.ApplicationRecord, page int) Page {
	n := len(records)
	page = ClampPage(page, n)

	start := (page - 1) * PageSize
	end := start + PageSize
	if end > n {
		end = n
	}

	items := make([]models.ApplicationRecord, 0, end-start)
	items = append(items, records[start:end]...)

	return Page{
		Records:    items,
		Page:       page,
		TotalPages: TotalPages(n),
		Total:      n,
		PageSize:   PageSize,
	}
}
