package httpapi

import (
	"net/http"
	"strings"

	"franchise-engine/internal/store"
)

type LogosHandler struct {
	Deps
}

// GetByPath serves /logo/{key}. A key that is not cached yet redirects to the
// listing's own logo URL.
func (h LogosHandler) GetByPath(w http.ResponseWriter, r *http.Request) {
	key := strings.TrimSpace(strings.TrimPrefix(r.URL.Path, "/logo/"))
	if key == "" {
		WriteError(w, r, http.StatusBadRequest, "missing_key", "missing key")
		return
	}

	l, ok, err := store.GetLogo(r.Context(), h.DB, key)
	if err != nil {
		writeFailure(w, r, h.Logger(), CodeDB, err)
		return
	}
	if !ok {
		if u := h.originalLogo(r, key); u != "" {
			http.Redirect(w, r, u, http.StatusFound)
			return
		}
		WriteError(w, r, http.StatusNotFound, CodeNotFound, "unknown logo")
		return
	}

	ct := l.ContentType
	if ct == "" {
		ct = "image/*"
	}
	w.Header().Set("Content-Type", ct)
	w.Header().Set("Cache-Control", "public, max-age=604800")
	_, _ = w.Write(l.Bytes)
}

func (h LogosHandler) originalLogo(r *http.Request, key string) string {
	if h.Catalog == nil {
		return ""
	}
	listings, err := h.Catalog.Load(r.Context())
	if err != nil {
		return ""
	}
	for _, l := range listings {
		if l.Logo != "" && store.LogoKeyFromURL(l.Logo) == key {
			return l.Logo
		}
	}
	return ""
}

// LogoSrc is the image URL a page should use for raw: the cached copy when
// the cache would take it, raw otherwise.
func LogoSrc(c *store.LogoCache, raw string) string {
	if c == nil || !c.Cacheable(raw) {
		return raw
	}
	return "/logo/" + store.LogoKeyFromURL(raw)
}
