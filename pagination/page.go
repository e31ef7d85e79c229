// Package pagination splits an ordered listing into numbered pages.
package pagination

const (
	DefaultPageSize = 20
	DefaultMaxSize  = 100
)

// Request selects one page. Zero values mean "first page" and
// "default size".
type Request struct {
	PageNumber int `query:"page_number"`
	PageSize   int `query:"page_size"`
}

type Option func(*limits)

type limits struct {
	defaultSize int
	maxSize     int
}

// WithMaxPageSize caps the page size.
func WithMaxPageSize(n int) Option {
	return func(l *limits) { l.maxSize = n }
}

// WithDefaultPageSize sets the size used when the request leaves it empty.
func WithDefaultPageSize(n int) Option {
	return func(l *limits) { l.defaultSize = n }
}

// Normalize clamps the request to the configured limits.
func (r *Request) Normalize(opts ...Option) {
	l := limits{defaultSize: DefaultPageSize, maxSize: DefaultMaxSize}
	for _, opt := range opts {
		opt(&l)
	}

	r.PageNumber = max(r.PageNumber, 1)
	if r.PageSize <= 0 {
		r.PageSize = l.defaultSize
	}
	r.PageSize = max(min(r.PageSize, l.maxSize), 1)
}

// Offset is the index of the first item on the page.
func (r Request) Offset() int {
	return (r.PageNumber - 1) * r.PageSize
}

// Limit is the maximum number of items on the page.
func (r Request) Limit() int {
	return r.PageSize
}

// Page is one slice of a listing plus what is needed to render a footer.
type Page[T any] struct {
	PageNumber int   `json:"page_number"`
	PageSize   int   `json:"page_size"`
	PageCount  int   `json:"page_count"`
	TotalCount int64 `json:"total_count"`
	Items      []T   `json:"items"`
}

// HasNext reports whether a later page has items.
func (p Page[T]) HasNext() bool {
	return p.PageNumber < p.PageCount
}

// Of cuts the page req selects out of all. A page past the end has no
// items but still reports the totals.
func Of[T any](all []T, req Request, opts ...Option) Page[T] {
	req.Normalize(opts...)

	start := min(req.Offset(), len(all))
	end := min(start+req.Limit(), len(all))

	return Page[T]{
		PageNumber: req.PageNumber,
		PageSize:   req.PageSize,
		PageCount:  (len(all) + req.PageSize - 1) / req.PageSize,
		TotalCount: int64(len(all)),
		Items:      all[start:end],
	}
}
