package listing

// Pagination mirrors the API's 1-based pagination block.
type Pagination struct {
	CurrentPage int `json:"current_page"`
	TotalPages  int `json:"total_pages"`
}

type Page[T any] struct {
	Items      []T
	Pagination Pagination
}

func (p Page[T]) HasPrev() bool { return p.Pagination.CurrentPage > 1 }

func (p Page[T]) HasNext() bool { return p.Pagination.CurrentPage < p.Pagination.TotalPages }

func (p Page[T]) PrevPage() int {
	if p.Pagination.CurrentPage <= 1 {
		return 1
	}
	return p.Pagination.CurrentPage - 1
}

func (p Page[T]) NextPage() int { return p.Pagination.CurrentPage + 1 }
