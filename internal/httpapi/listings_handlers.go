package httpapi

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"franchise-engine/internal/catalog"
	"franchise-engine/internal/domain"
	"franchise-engine/internal/page"
)

type ListingsHandler struct {
	Deps
}

// catalogUnavailable is the terminal response for a failed catalog fetch.
func (h ListingsHandler) catalogUnavailable(w http.ResponseWriter, r *http.Request, err error) {
	h.Logger().Error("catalog unavailable",
		zap.String("request_id", RequestIDFrom(r.Context())),
		zap.Error(err),
	)
	WriteError(w, r, http.StatusServiceUnavailable, CodeCatalogUnavailable, catalog.UnavailableHint)
}

// Search runs the search page pipeline: q, industry/category and order from
// the URL, one page of the result set back.
func (h ListingsHandler) Search(w http.ResponseWriter, r *http.Request) {
	n, ok := intParam(r, "page", 1)
	if !ok || n == 0 {
		WriteError(w, r, http.StatusBadRequest, "bad_page", "page must be a positive integer")
		return
	}

	listings, err := h.Catalog.Load(r.Context())
	if err != nil {
		h.catalogUnavailable(w, r, err)
		return
	}

	c := h.Page(page.Search)
	defer c.Close()
	if err := c.Load(r.Context(), listings); err != nil {
		writeFailure(w, r, h.Logger(), "filter_failed", err)
		return
	}
	if err := c.Apply(r.Context(), page.ResolveQuery(r.URL.Query(), nil)); err != nil {
		writeFailure(w, r, h.Logger(), "filter_failed", err)
		return
	}
	if n != 1 && !c.ChangePage(n) {
		WriteError(w, r, http.StatusBadRequest, "page_out_of_range", "page is past the last page")
		return
	}
	writeJSON(w, c.View())
}

// idFromPath pulls {id} out of /api/listings/{id} and /api/listings/{id}/recommendations.
func idFromPath(path string) (id string, recommendations bool) {
	rest := strings.Trim(strings.TrimPrefix(path, "/api/listings/"), "/")
	if r, ok := strings.CutSuffix(rest, "/recommendations"); ok {
		return r, true
	}
	return rest, false
}

// ByPath serves GET /api/listings/{id} and GET /api/listings/{id}/recommendations.
// An unknown id falls back to the first listing, like the detail page does.
func (h ListingsHandler) ByPath(w http.ResponseWriter, r *http.Request) {
	id, recs := idFromPath(r.URL.Path)
	if id == "" || strings.Contains(id, "/") {
		WriteError(w, r, http.StatusNotFound, CodeNotFound, "no such listing route")
		return
	}

	listings, err := h.Catalog.Load(r.Context())
	if err != nil {
		h.catalogUnavailable(w, r, err)
		return
	}
	st := catalog.NewStore(listings)

	if recs {
		n, ok := intParam(r, "n", h.Config().Pages.Recommendations)
		if !ok {
			WriteError(w, r, http.StatusBadRequest, "bad_n", "n must be a non-negative integer")
			return
		}
		writeJSON(w, map[string]any{"id": id, "items": nonNil(st.Recommend(id, n, nil))})
		return
	}

	l, ok := st.Find(id)
	if !ok {
		WriteError(w, r, http.StatusNotFound, CodeNotFound, "the catalog is empty")
		return
	}
	writeJSON(w, l)
}

// Home returns the home page's initial batch, or the [start,end) batch when
// start is given.
func (h ListingsHandler) Home(w http.ResponseWriter, r *http.Request) {
	listings, err := h.Catalog.Load(r.Context())
	if err != nil {
		h.catalogUnavailable(w, r, err)
		return
	}

	c := h.Page(page.Home)
	defer c.Close()
	if err := c.Load(r.Context(), listings); err != nil {
		writeFailure(w, r, h.Logger(), "load_failed", err)
		return
	}
	if !r.URL.Query().Has("start") {
		writeJSON(w, c.View())
		return
	}

	start, ok1 := intParam(r, "start", 0)
	end, ok2 := intParam(r, "end", start+h.Config().Pages.HomeBatch)
	if !ok1 || !ok2 {
		WriteError(w, r, http.StatusBadRequest, "bad_range", "start and end must be non-negative integers")
		return
	}
	batch, err := c.LoadMore(r.Context(), start, end)
	if err != nil {
		writeFailure(w, r, h.Logger(), "load_failed", err)
		return
	}
	writeJSON(w, map[string]any{
		"items":   batch,
		"start":   start,
		"end":     end,
		"total":   len(listings),
		"hasMore": end < len(listings),
	})
}

func nonNil(ls []domain.Listing) []domain.Listing {
	if ls == nil {
		return []domain.Listing{}
	}
	return ls
}
