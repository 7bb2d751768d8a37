package paginate

import "franchise-engine/internal/domain"

// Page is one window over a Result Set.
type Page struct {
	Items      []domain.Listing `json:"items"`
	Page       int              `json:"page"`
	TotalPages int              `json:"totalPages"`
	Total      int              `json:"total"`
}

// TotalPages is ceil(n/size), or 0 when there is nothing to page.
func TotalPages(n, size int) int {
	if n <= 0 || size <= 0 {
		return 0
	}
	return (n + size - 1) / size
}

// Paginate returns the half-open slice [(page-1)*size, page*size) of results,
// clipped to bounds. It never errors; an out-of-range page yields no items.
// The returned items share no memory with results.
func Paginate(results []domain.Listing, page, size int) Page {
	p := Page{
		Items:      []domain.Listing{},
		Page:       page,
		TotalPages: TotalPages(len(results), size),
		Total:      len(results),
	}
	if size <= 0 || page < 1 {
		return p
	}
	start := (page - 1) * size
	if start >= len(results) {
		return p
	}
	end := min(start+size, len(results))
	p.Items = append(p.Items, results[start:end]...)
	return p
}

// Pager tracks the current page of one controller.
type Pager struct {
	Size    int
	current int
}

func NewPager(size int) *Pager {
	return &Pager{Size: size, current: 1}
}

func (p *Pager) Current() int { return p.current }

// Reset goes back to page 1; a new query always starts there.
func (p *Pager) Reset() { p.current = 1 }

// Go moves to page n of a result set with total items. Out-of-range pages
// are rejected and leave the pager untouched.
func (p *Pager) Go(n, total int) bool {
	if n < 1 || n > TotalPages(total, p.Size) {
		return false
	}
	p.current = n
	return true
}

// Window returns the page numbers shown in the pagination bar: at most
// maxVisible pages centred on current where possible.
func Window(current, totalPages, maxVisible int) []int {
	if totalPages <= 0 || maxVisible <= 0 {
		return nil
	}
	start := max(1, current-maxVisible/2)
	end := min(totalPages, start+maxVisible-1)
	if end-start < maxVisible-1 {
		start = max(1, end-maxVisible+1)
	}
	out := make([]int, 0, end-start+1)
	for i := start; i <= end; i++ {
		out = append(out, i)
	}
	return out
}
