package page

import (
	"net/url"
	"strings"

	"franchise-engine/internal/domain"
	"franchise-engine/internal/paginate"
)

// View is what a renderer needs for one page.
type View struct {
	Kind       Kind             `json:"kind"`
	Query      domain.Query     `json:"query"`
	Items      []domain.Listing `json:"items"`
	Page       int              `json:"page"`
	TotalPages int              `json:"totalPages"`
	Total      int              `json:"total"`
	Pages      []int            `json:"pages"`
	Empty      bool             `json:"empty"`

	// Home only: the next [NextStart,NextEnd) batch, when there is one.
	HasMore   bool `json:"hasMore,omitempty"`
	NextStart int  `json:"nextStart,omitempty"`
	NextEnd   int  `json:"nextEnd,omitempty"`
}

func (c *Controller) View() View {
	if c.kind == Home {
		shown := append([]domain.Listing{}, c.state.Results...)
		v := View{
			Kind:       Home,
			Query:      c.state.Query,
			Items:      shown,
			Page:       1,
			TotalPages: min(1, len(shown)),
			Total:      len(shown),
			Empty:      len(shown) == 0,
		}
		if c.store != nil && c.store.Len() < c.state.Total {
			v.HasMore = true
			v.NextStart = c.store.Len()
			v.NextEnd = min(v.NextStart+c.opts.PageSize, c.state.Total)
		}
		return v
	}

	p := paginate.Paginate(c.state.Results, c.pager.Current(), c.opts.PageSize)
	return View{
		Kind:       c.kind,
		Query:      c.state.Query,
		Items:      p.Items,
		Page:       p.Page,
		TotalPages: p.TotalPages,
		Total:      p.Total,
		Pages:      paginate.Window(p.Page, p.TotalPages, c.opts.MaxVisible),
		Empty:      p.Total == 0,
	}
}

// HasFilterParams reports whether the URL carries any filter parameter.
func HasFilterParams(params url.Values) bool {
	for _, k := range []string{"q", "industry", "order", "category"} {
		if params.Has(k) {
			return true
		}
	}
	return false
}

// ResolveQuery builds the search query from URL parameters. A non-blank
// category wins over industry. Any field the URL does not mention comes from
// the saved snapshot, when there is one.
func ResolveQuery(params url.Values, saved *domain.SearchSnapshot) domain.Query {
	var snap domain.SearchSnapshot
	if saved != nil {
		snap = *saved
	}

	q := domain.Query{
		SearchTerm: snap.SearchTerm,
		Industry:   snap.Industry,
		Order:      domain.Order(snap.OrderBy),
	}
	if params.Has("q") {
		q.SearchTerm = params.Get("q")
	}
	if params.Has("industry") {
		q.Industry = params.Get("industry")
	}
	if c := params.Get("category"); strings.TrimSpace(c) != "" {
		q.Industry = c
	}
	if params.Has("order") {
		q.Order = domain.Order(params.Get("order"))
	}
	return q
}
