package note

// MaxPerPage bounds the page size on every listing and search path.
const MaxPerPage = 100

// Pagination describes one page of a result set. TotalPages is never
// zero: an empty result is still "page 1 of 1". The same convention is
// applied on the plain-list and search paths alike.
type Pagination struct {
	CurrentPage int   `json:"current_page"`
	TotalPages  int   `json:"total_pages"`
	TotalNotes  int64 `json:"total_notes"`
	PerPage     int   `json:"notes_per_page"`
	HasNext     bool  `json:"has_next"`
	HasPrevious bool  `json:"has_previous"`
}

// ValidatePage rejects out-of-range pagination parameters. The page is
// 1-based and deliberately not clamped: asking for a page past the end
// is answered with an empty list, not an error.
func ValidatePage(page, perPage int) error {
	if page < 1 {
		return invalidf("page must be at least 1, got %d", page)
	}
	if perPage < 1 || perPage > MaxPerPage {
		return invalidf("limit must be between 1 and %d, got %d", MaxPerPage, perPage)
	}
	return nil
}

// Offset converts a 1-based page into a row offset.
func Offset(page, perPage int) int {
	return (page - 1) * perPage
}

// Paginate computes page metadata for a result set of totalNotes rows.
// page and perPage must already be validated.
func Paginate(totalNotes int64, page, perPage int) Pagination {
	totalPages := 1
	if totalNotes > 0 {
		totalPages = int((totalNotes + int64(perPage) - 1) / int64(perPage))
	}
	return Pagination{
		CurrentPage: page,
		TotalPages:  totalPages,
		TotalNotes:  totalNotes,
		PerPage:     perPage,
		HasNext:     page < totalPages,
		HasPrevious: page > 1,
	}
}
