package order

// DefaultPageSize is the number of products requested per page
const DefaultPageSize = 10

// Pager tracks the position within a paged search result
type Pager struct {
	Page         int // 1-based
	PageSize     int
	TotalRecords int
}

// NewPager creates a pager on page 1. Non-positive sizes use DefaultPageSize.
func NewPager(pageSize int) Pager {
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	return Pager{Page: 1, PageSize: pageSize}
}

// Reset returns to page 1 and forgets the total
func (p *Pager) Reset() {
	p.Page = 1
	p.TotalRecords = 0
}

// TotalPages returns ceil(TotalRecords / PageSize)
func (p Pager) TotalPages() int {
	if p.TotalRecords <= 0 || p.PageSize <= 0 {
		return 0
	}
	return (p.TotalRecords + p.PageSize - 1) / p.PageSize
}

// IsFirstPage reports whether the pager is on page 1
func (p Pager) IsFirstPage() bool {
	return p.Page == 1
}

// IsLastPage reports whether there is no next page
func (p Pager) IsLastPage() bool {
	return p.Page >= p.TotalPages() || p.TotalRecords == 0
}

// Offset returns the record offset of the given page
func (p Pager) Offset(page int) int {
	if page < 1 {
		page = 1
	}
	return (page - 1) * p.PageSize
}
