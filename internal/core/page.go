package core

const (
	DefaultPageSize = 9
	MaxPageSize     = 100
)

// Page is one slice of a longer list.
type Page[T any] struct {
	Items      []T `json:"items"`
	Page       int `json:"page"`
	Size       int `json:"size"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// Paginate cuts items into pages of size and returns the requested one.
// page < 1 becomes 1, size < 1 becomes DefaultPageSize and size is capped at
// MaxPageSize. A page past the end has no items but correct totals.
func Paginate[T any](items []T, page, size int) Page[T] {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	total := len(items)
	p := Page[T]{
		Items:      []T{},
		Page:       page,
		Size:       size,
		Total:      total,
		TotalPages: (total + size - 1) / size,
	}
	// compare page numbers before multiplying so huge pages cannot overflow
	if page-1 >= p.TotalPages {
		return p
	}
	start := (page - 1) * size
	end := start + size
	if end > total {
		end = total
	}
	p.Items = append(p.Items, items[start:end]...)
	return p
}
