package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"franchise-engine/internal/domain"
	"franchise-engine/internal/events"
	"franchise-engine/internal/httpapi"
	"franchise-engine/internal/page"
	"franchise-engine/internal/store"
	"franchise-engine/internal/worker"
)

type fakeCatalog struct {
	listings []domain.Listing
	err      error
}

func (f fakeCatalog) Load(context.Context) ([]domain.Listing, error) {
	return append([]domain.Listing(nil), f.listings...), f.err
}

func sample() []domain.Listing {
	out := []domain.Listing{
		{ID: "1", Name: "Alpha Pizza", Category: "Food", MinInvestment: "$20,000", AvgInvestment: "$50,000", Outlets: "30",
			Description: "**Fresh** pizza. <script>alert(1)</script> [site](https://alpha.example.com)",
			Liquidity:   "$75,000", Year: "1998", Financing: true},
		{ID: "2", Name: "Beta Fitness", Category: "Fitness", MinInvestment: "$10,000", AvgInvestment: "$80,000", Outlets: "120+ outlets"},
	}
	for i := 3; i <= 20; i++ {
		out = append(out, domain.Listing{
			ID:            domain.Text(strconv.Itoa(i)),
			Name:          fmt.Sprintf("Gamma %02d", i),
			Category:      "Education",
			MinInvestment: domain.Text(fmt.Sprintf("$%d,000", 100-i)),
		})
	}
	return out
}

type env struct {
	h      http.Handler
	db     *store.DB
	hub    *events.Hub
	cookie string
}

func newEnv(t *testing.T, cat httpapi.CatalogSource) *env {
	return newEnvWith(t, httpapi.Deps{Catalog: cat})
}

// newWorkerEnv serves pages backed by one worker per page load.
func newWorkerEnv(t *testing.T, cat httpapi.CatalogSource) *env {
	return newEnvWith(t, httpapi.Deps{
		Catalog: cat,
		NewPage: func(kind page.Kind) *page.Controller {
			return page.New(kind, page.Options{
				NewWorker: func() *worker.Client { return worker.NewClient(2) },
			})
		},
	})
}

func newEnvWith(t *testing.T, d httpapi.Deps) *env {
	t.Helper()
	db, err := store.Open(filepath.Join(t.TempDir(), "franchise.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	hub := events.NewHub()
	d.Log, d.DB, d.Hub = zap.NewNop(), db.Pool, hub
	wh, err := New(d)
	require.NoError(t, err)

	mux := http.NewServeMux()
	wh.Mount(mux, "")
	return &env{
		h:      httpapi.Chain(mux, httpapi.RequestID, httpapi.ClientID),
		db:     db,
		hub:    hub,
		cookie: httpapi.ClientCookie + "=0f8fad5b-d9cb-469f-a165-70867728950e",
	}
}

func (e *env) get(t *testing.T, target string) (*httptest.ResponseRecorder, *goquery.Document) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	req.Header.Set("Cookie", e.cookie)
	rec := httptest.NewRecorder()
	e.h.ServeHTTP(rec, req)
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rec.Body.String()))
	require.NoError(t, err, "html must parse")
	return rec, doc
}

func cardIDs(doc *goquery.Document) []string {
	var out []string
	doc.Find(".card-grid .franchise-card").Each(func(_ int, s *goquery.Selection) {
		out = append(out, s.AttrOr("data-id", ""))
	})
	return out
}

func TestHomePage(t *testing.T) {
	e := newEnv(t, fakeCatalog{listings: sample()})

	rec, doc := e.get(t, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, cardIDs(doc), 12)
	assert.Equal(t, 3, doc.Find(".category-link").Length())
	href, _ := doc.Find(".category-link").First().Attr("href")
	assert.Equal(t, "/search?category=Food", href)
	more, ok := doc.Find(".load-more a").Attr("href")
	require.True(t, ok)
	assert.Equal(t, "/?shown=20", more)

	_, doc = e.get(t, "/?shown=20")
	assert.Len(t, cardIDs(doc), 20)
	assert.Zero(t, doc.Find(".load-more").Length())

	rec, _ = e.get(t, "/nope")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHomePageWorkerBacked(t *testing.T) {
	e := newWorkerEnv(t, fakeCatalog{listings: sample()})
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	_, doc := e.get(t, "/")
	assert.Len(t, cardIDs(doc), 12)

	// asking for more than the catalog holds renders everything and returns
	rec, doc := e.get(t, "/?shown=500")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, cardIDs(doc), 20)
	assert.Zero(t, doc.Find(".load-more").Length())

	_, doc = e.get(t, "/search?order=min-low")
	assert.Equal(t, []string{"2", "1", "20", "19", "18", "17", "16", "15"}, cardIDs(doc))
}

func TestSearchPage(t *testing.T) {
	e := newEnv(t, fakeCatalog{listings: sample()})

	rec, doc := e.get(t, "/search?order=min-low")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"2", "1", "20", "19", "18", "17", "16", "15"}, cardIDs(doc))
	assert.Equal(t, "20 franchises found", strings.TrimSpace(doc.Find(".result-count").Text()))
	assert.Equal(t, "1", strings.TrimSpace(doc.Find(".pagination .current").Text()))
	assert.Equal(t, 2, doc.Find(".pagination a.page").Length())
	selected, _ := doc.Find(`select[name="order"] option[selected]`).Attr("value")
	assert.Equal(t, "min-low", selected)

	_, doc = e.get(t, "/search?order=min-low&page=3")
	assert.Equal(t, []string{"6", "5", "4", "3"}, cardIDs(doc))
	assert.Zero(t, doc.Find(".pagination a.next").Length())

	_, doc = e.get(t, "/search?category=fitness&industry=Food")
	assert.Equal(t, []string{"2"}, cardIDs(doc))
	assert.Equal(t, "1 franchise found", strings.TrimSpace(doc.Find(".result-count").Text()))
	assert.Zero(t, doc.Find(".pagination").Length())
}

func TestSearchRemembersLastSearch(t *testing.T) {
	e := newEnv(t, fakeCatalog{listings: sample()})
	sub := e.hub.Subscribe()
	defer e.hub.Unsubscribe(sub)

	e.get(t, "/search?q=pizza")
	assert.Contains(t, <-sub, `"type":"search_saved"`)

	// no params: the saved search is used
	_, doc := e.get(t, "/search")
	assert.Equal(t, []string{"1"}, cardIDs(doc))
	v, _ := doc.Find(`.filters input[name="q"]`).Attr("value")
	assert.Equal(t, "pizza", v)

	rec, doc := e.get(t, "/search?clear=1")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, <-sub, `"type":"search_cleared"`)
	v, _ = doc.Find(`.filters input[name="q"]`).Attr("value")
	assert.Empty(t, v)
	assert.Len(t, cardIDs(doc), 8)

	_, doc = e.get(t, "/search")
	assert.Len(t, cardIDs(doc), 8)
}

func TestSearchIgnoresCorruptLastSearch(t *testing.T) {
	e := newEnv(t, fakeCatalog{listings: sample()})
	_, err := e.db.Pool.Exec(`INSERT INTO searches(client_id, key, value, updated_at) VALUES(?, 'lastSearch', '{nope', '2026-01-01T00:00:00Z');`,
		strings.TrimPrefix(e.cookie, httpapi.ClientCookie+"="))
	require.NoError(t, err)

	rec, doc := e.get(t, "/search")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, cardIDs(doc), 8)
}

func TestSearchNoResults(t *testing.T) {
	e := newEnv(t, fakeCatalog{listings: sample()})
	_, doc := e.get(t, "/search?q=laundromat")
	assert.Equal(t, 1, doc.Find(".no-results").Length())
	assert.Empty(t, cardIDs(doc))
	assert.Equal(t, "0 franchises found", strings.TrimSpace(doc.Find(".result-count").Text()))
}

func TestFranchisePage(t *testing.T) {
	e := newEnv(t, fakeCatalog{listings: sample()})

	rec, doc := e.get(t, "/franchise?id=1")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Alpha Pizza", doc.Find(".franchise-detail h1").Text())
	assert.Equal(t, "$75,000", doc.Find(".stat-liquidity").Text())
	assert.Equal(t, "1998", doc.Find(".stat-year").Text())
	assert.Equal(t, "Yes", doc.Find(".stat-financing").Text())
	assert.Equal(t, "No", doc.Find(".stat-coaching").Text())

	desc := doc.Find(".description")
	assert.Equal(t, "Fresh", desc.Find("strong").Text())
	assert.Zero(t, desc.Find("script").Length())
	rel, _ := desc.Find("a").Attr("rel")
	assert.Contains(t, rel, "nofollow")

	recs := cardIDs(doc)
	assert.Len(t, recs, 4)
	assert.NotContains(t, recs, "1")

	_, doc = e.get(t, "/franchise?id=2")
	assert.Equal(t, "$10,000", doc.Find(".stat-liquidity").Text())
	assert.Equal(t, "2017", doc.Find(".stat-year").Text())

	_, doc = e.get(t, "/franchise?id=404")
	assert.Equal(t, "Alpha Pizza", doc.Find(".franchise-detail h1").Text())

	e = newEnv(t, fakeCatalog{})
	rec, _ = e.get(t, "/franchise?id=1")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCatalogUnavailablePages(t *testing.T) {
	e := newEnv(t, fakeCatalog{err: errors.New("open franchises.json: no such file")})
	for _, target := range []string{"/", "/search?q=x", "/franchise?id=1"} {
		rec, doc := e.get(t, target)
		require.Equal(t, http.StatusServiceUnavailable, rec.Code, target)
		msg := doc.Find(".load-error")
		assert.Equal(t, "Unable to load franchise data", msg.Find("h1").Text(), target)
		assert.Contains(t, msg.Find("p").Text(), "local HTTP endpoint", target)
	}
}

func TestStaticAssets(t *testing.T) {
	e := newEnv(t, fakeCatalog{})
	rec, _ := e.get(t, "/static/site.css")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), ".franchise-card")
}

func TestPageURL(t *testing.T) {
	assert.Equal(t, "/search?page=2", pageURL(domain.Query{}, 2))
	assert.Equal(t, "/search?industry=Food+%26+Drink&order=alpha&page=1&q=pizza",
		pageURL(domain.Query{SearchTerm: "pizza", Industry: "Food & Drink", Order: domain.OrderAlpha}, 1))
}
