package pagination

// Metadata describes the page returned.
type Metadata struct {
	Total      int  `json:"total"`
	Page       int  `json:"page"`
	Limit      int  `json:"limit"`
	TotalPages int  `json:"total_pages"`
	HasMore    bool `json:"has_more"`
}

// Response is the JSON envelope of a paginated list.
type Response[T any] struct {
	Data       []T      `json:"data"`
	Pagination Metadata `json:"pagination"`
}

// TotalPages is at least 1 so that an empty result still has a first page.
func TotalPages(total, limit int) int {
	if total == 0 || limit <= 0 {
		return 1
	}
	return (total + limit - 1) / limit
}

// Paginate slices items for p. A page past the end yields an empty, non-nil
// Data slice with the metadata still describing the whole list.
func Paginate[T any](items []T, p Params) Response[T] {
	total := len(items)
	start := min(p.Offset(), total)
	end := min(start+p.Limit, total)

	data := make([]T, end-start)
	copy(data, items[start:end])

	RecordRequest(p.Page)
	return Response[T]{
		Data: data,
		Pagination: Metadata{
			Total:      total,
			Page:       p.Page,
			Limit:      p.Limit,
			TotalPages: TotalPages(total, p.Limit),
			HasMore:    end < total,
		},
	}
}

// Map converts the data of a page, keeping its metadata.
func Map[T, U any](r Response[T], f func(T) U) Response[U] {
	out := make([]U, len(r.Data))
	for i, v := range r.Data {
		out[i] = f(v)
	}
	return Response[U]{Data: out, Pagination: r.Pagination}
}
