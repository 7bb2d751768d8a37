// Package web renders the directory's HTML pages: home, search and the
// franchise detail view.
package web

import (
	"bytes"
	"errors"
	"html/template"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"franchise-engine/internal/catalog"
	"franchise-engine/internal/domain"
	"franchise-engine/internal/events"
	"franchise-engine/internal/httpapi"
	"franchise-engine/internal/page"
	"franchise-engine/internal/store"
)

// Detail stats fall back to these when a listing leaves them out.
const (
	defaultLiquidity = "$10,000"
	defaultYear      = "2017"
)

type Handler struct {
	httpapi.Deps

	tmpl map[string]*template.Template
	md   markdown
}

func New(d httpapi.Deps) (*Handler, error) {
	tmpl, err := parseTemplates(d.Logos)
	if err != nil {
		return nil, err
	}
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	return &Handler{Deps: d, tmpl: tmpl, md: newMarkdown()}, nil
}

// Mount registers the pages on mux.
func (h *Handler) Mount(mux *http.ServeMux, publicDir string) {
	mux.Handle("/static/", staticFiles(publicDir))
	mux.HandleFunc("/", h.Home)
	mux.HandleFunc("/search", h.Search)
	mux.HandleFunc("/franchise", h.Franchise)
}

type layout struct {
	Page        string
	Title       string
	Year        int
	Unavailable string
}

func newLayout(p, title string) layout {
	return layout{Page: p, Title: title, Year: time.Now().Year()}
}

type homeData struct {
	layout
	View       page.View
	Categories []string
	Total      int
}

type searchData struct {
	layout
	View       page.View
	Categories []string
	Orders     []domain.Order
}

type detailStats struct {
	Liquidity string
	Year      string
	Financing string
	Coaching  string
}

type franchiseData struct {
	layout
	Listing         domain.Listing
	Stats           detailStats
	Description     template.HTML
	Recommendations []domain.Listing
}

func statsOf(l domain.Listing) detailStats {
	s := detailStats{
		Liquidity: l.Liquidity.String(),
		Year:      l.Year.String(),
		Financing: l.Financing.YesNo(),
		Coaching:  l.Coaching.YesNo(),
	}
	if s.Liquidity == "" {
		s.Liquidity = defaultLiquidity
	}
	if s.Year == "" {
		s.Year = defaultYear
	}
	return s
}

// Home serves "/": industry links, the first batch of cards and a link to the
// next batch. ?shown=n renders the first n listings.
func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		h.render(w, r, http.StatusNotFound, "notfound", newLayout("notfound", "Not found"))
		return
	}
	if !h.allowGet(w, r) {
		return
	}

	listings, err := h.Catalog.Load(r.Context())
	if err != nil {
		h.unavailable(w, r, "home", err)
		return
	}

	c := h.Page(page.Home)
	defer c.Close()
	if err := c.Load(r.Context(), listings); err != nil {
		h.fail(w, r, err)
		return
	}
	if shown, err := strconv.Atoi(r.URL.Query().Get("shown")); err == nil {
		for v := c.View(); v.HasMore && v.NextStart < shown; v = c.View() {
			batch, err := c.LoadMore(r.Context(), v.NextStart, min(v.NextEnd, shown))
			if err != nil {
				h.fail(w, r, err)
				return
			}
			if len(batch) == 0 {
				break
			}
		}
	}

	h.render(w, r, http.StatusOK, "home", homeData{
		layout:     newLayout("home", ""),
		View:       c.View(),
		Categories: catalog.NewStore(listings).Categories(),
		Total:      len(listings),
	})
}

// Search serves "/search". Filters come from the URL and, for anything the
// URL leaves out, from the visitor's last search. A URL with filters becomes
// the new last search; ?clear=1 forgets it and shows the catalog in load
// order.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	if !h.allowGet(w, r) {
		return
	}
	ctx := r.Context()
	params := r.URL.Query()
	clientID := httpapi.ClientIDFrom(ctx)
	reqID := httpapi.RequestIDFrom(ctx)
	clearing := params.Has("clear")

	var q domain.Query
	switch {
	case clearing:
		if err := store.ClearSearch(ctx, h.DB, clientID); err != nil {
			h.Log.Warn("clear last search", zap.Error(err))
		} else {
			h.Hub.Emit(reqID, events.SearchCleared, nil)
		}
	case page.HasFilterParams(params):
		q = page.ResolveQuery(params, nil)
		snap := domain.SnapshotOf(q)
		if err := store.SaveSearch(ctx, h.DB, clientID, snap); err != nil {
			h.Log.Warn("save last search", zap.Error(err))
		} else {
			h.Hub.Emit(reqID, events.SearchSaved, snap)
		}
	default:
		var saved *domain.SearchSnapshot
		snap, ok, err := store.LastSearch(ctx, h.DB, clientID)
		switch {
		case errors.Is(err, store.ErrCorruptSnapshot):
			h.Log.Warn("ignoring corrupt last search", zap.String("client_id", clientID), zap.Error(err))
		case err != nil:
			h.Log.Warn("read last search", zap.Error(err))
		case ok:
			saved = &snap
		}
		q = page.ResolveQuery(params, saved)
	}

	listings, err := h.Catalog.Load(ctx)
	if err != nil {
		h.unavailable(w, r, "search", err)
		return
	}

	c := h.Page(page.Search)
	defer c.Close()
	if err := c.Load(ctx, listings); err != nil {
		h.fail(w, r, err)
		return
	}
	if clearing {
		c.Clear()
	} else if err := c.Apply(ctx, q); err != nil {
		h.fail(w, r, err)
		return
	}
	if n, err := strconv.Atoi(params.Get("page")); err == nil {
		c.ChangePage(n) // out of range stays on page 1
	}

	h.render(w, r, http.StatusOK, "search", searchData{
		layout:     newLayout("search", "Search"),
		View:       c.View(),
		Categories: c.Store().Categories(),
		Orders:     domain.Orders,
	})
}

// Franchise serves "/franchise?id=": one listing with its stats and a few
// random others. An unknown id shows the first listing.
func (h *Handler) Franchise(w http.ResponseWriter, r *http.Request) {
	if !h.allowGet(w, r) {
		return
	}
	listings, err := h.Catalog.Load(r.Context())
	if err != nil {
		h.unavailable(w, r, "franchise", err)
		return
	}

	st := catalog.NewStore(listings)
	l, ok := st.Find(r.URL.Query().Get("id"))
	if !ok {
		h.render(w, r, http.StatusNotFound, "notfound", newLayout("notfound", "Not found"))
		return
	}

	h.render(w, r, http.StatusOK, "franchise", franchiseData{
		layout:          newLayout("franchise", l.Name),
		Listing:         l,
		Stats:           statsOf(l),
		Description:     h.md.render(l.Description),
		Recommendations: st.Recommend(string(l.ID), h.recommendations(), nil),
	})
}

func (h *Handler) recommendations() int {
	if n := h.Config().Pages.Recommendations; n >= 0 {
		return n
	}
	return 4
}

func (h *Handler) allowGet(w http.ResponseWriter, r *http.Request) bool {
	if r.Method == http.MethodGet || r.Method == http.MethodHead {
		return true
	}
	w.Header().Set("Allow", "GET, HEAD")
	http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	return false
}

func (h *Handler) unavailable(w http.ResponseWriter, r *http.Request, p string, err error) {
	h.Log.Error("catalog unavailable",
		zap.String("request_id", httpapi.RequestIDFrom(r.Context())),
		zap.String("page", p),
		zap.Error(err),
	)
	l := newLayout(p, "Unavailable")
	l.Unavailable = catalog.UnavailableHint
	h.render(w, r, http.StatusServiceUnavailable, "notfound", l)
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	h.Log.Error("render page", zap.String("path", r.URL.Path), zap.Error(err))
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

// render executes the base layout into a buffer so a template error never
// leaves a half-written page.
func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	t := h.tmpl[name]
	if t == nil {
		h.fail(w, r, errors.New("no template "+name))
		return
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "base", data); err != nil {
		h.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
