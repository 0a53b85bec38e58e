package pagination

const (
	// DefaultLimit is the standard page size when a limit is not provided.
	DefaultLimit = 20
	// MaxLimit caps how many rows any listing query can request.
	MaxLimit = 100
)

// Params holds offset pagination inputs from controllers or services.
type Params struct {
	Page  int
	Limit int
}

// Page describes the slice of results a listing returned.
type Page struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalItems int64 `json:"total_items"`
	TotalPages int64 `json:"total_pages"`
}

// NormalizeLimit enforces the configured default and maximum limits.
func NormalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// NormalizePage clamps the requested page to 1 or greater.
func NormalizePage(page int) int {
	if page <= 0 {
		return 1
	}
	return page
}

// Offset computes the row offset for the normalized params.
func (p Params) Offset() int {
	return (NormalizePage(p.Page) - 1) * NormalizeLimit(p.Limit)
}

// Describe builds page metadata for a total row count.
func Describe(p Params, total int64) Page {
	limit := NormalizeLimit(p.Limit)
	pages := total / int64(limit)
	if total%int64(limit) != 0 {
		pages++
	}
	if pages == 0 {
		pages = 1
	}
	return Page{
		Page:       NormalizePage(p.Page),
		Limit:      limit,
		TotalItems: total,
		TotalPages: pages,
	}
}
