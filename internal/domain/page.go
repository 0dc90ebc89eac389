package domain

// Page is a normalized pagination request: page numbers start at 1 and the
// page size is clamped to 1..100 with a default of 10.
type Page struct {
	Number int
	Size   int
}

// DefaultPageSize and MaxPageSize bound listing queries.
const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// NewPage normalizes raw pagination parameters.
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

// Offset returns the number of rows to skip.
func (p Page) Offset() int {
	return (p.Number - 1) * p.Size
}

// Paged is a page of results plus the totals the wire contract requires.
type Paged[T any] struct {
	Data       []T
	Total      int
	Page       int
	Limit      int
	TotalPages int
}

// NewPaged assembles a page of results, computing TotalPages by ceiling
// division.
func NewPaged[T any](data []T, total int, page Page) Paged[T] {
	totalPages := (total + page.Size - 1) / page.Size
	return Paged[T]{
		Data:       data,
		Total:      total,
		Page:       page.Number,
		Limit:      page.Size,
		TotalPages: totalPages,
	}
}
