package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"

	"franchise-engine/internal/domain"
	"franchise-engine/internal/httpapi"
	"franchise-engine/internal/store"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// pages are the templates that fill the "content" block of base.tmpl.
var pages = []string{"home", "search", "franchise", "notfound"}

// parseTemplates builds one template set per page: base and partials plus
// the page's own content block.
func parseTemplates(logos *store.LogoCache) (map[string]*template.Template, error) {
	funcMap := template.FuncMap{
		"logo":    func(raw string) string { return httpapi.LogoSrc(logos, raw) },
		"pageURL": pageURL,
		"comma":   func(n int) string { return humanize.Comma(int64(n)) },
		"add":     func(a, b int) int { return a + b },
		"sub":     func(a, b int) int { return a - b },
		"eqFold":  strings.EqualFold,
	}
	out := make(map[string]*template.Template, len(pages))
	for _, p := range pages {
		t, err := template.New("_root").Funcs(funcMap).ParseFS(templateFS,
			"templates/base.tmpl", "templates/partials.tmpl", "templates/"+p+".tmpl")
		if err != nil {
			return nil, fmt.Errorf("parse %s template: %w", p, err)
		}
		out[p] = t
	}
	return out, nil
}

// pageURL links page n of the search results for q.
func pageURL(q domain.Query, n int) string {
	v := url.Values{}
	if q.SearchTerm != "" {
		v.Set("q", q.SearchTerm)
	}
	if q.Industry != "" {
		v.Set("industry", q.Industry)
	}
	if q.Order.IsSet() {
		v.Set("order", string(q.Order))
	}
	v.Set("page", strconv.Itoa(n))
	return "/search?" + v.Encode()
}

// markdown renders listing descriptions: Markdown to HTML, then sanitised.
type markdown struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
}

func newMarkdown() markdown {
	policy := bluemonday.UGCPolicy()
	policy.RequireNoFollowOnLinks(true)
	policy.AddTargetBlankToFullyQualifiedLinks(true)
	return markdown{md: goldmark.New(), policy: policy}
}

func (m markdown) render(src string) template.HTML {
	if strings.TrimSpace(src) == "" {
		return ""
	}
	var buf bytes.Buffer
	if err := m.md.Convert([]byte(src), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(src))
	}
	return template.HTML(m.policy.SanitizeBytes(buf.Bytes()))
}

// staticFiles serves dir when it exists on disk and the embedded assets
// otherwise.
func staticFiles(dir string) http.Handler {
	if dir != "" {
		if st, err := os.Stat(dir); err == nil && st.IsDir() {
			return http.StripPrefix("/static/", http.FileServer(http.Dir(dir)))
		}
	}
	sub, _ := fs.Sub(staticFS, "static")
	return http.StripPrefix("/static/", http.FileServerFS(sub))
}
