package httpapi

import (
	"net/http"
)

type HealthHandler struct {
	Catalog CatalogSource
}

func (h HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{"ok": true}
	if h.Catalog != nil {
		listings, err := h.Catalog.Load(r.Context())
		if err != nil {
			resp["catalog"] = "unavailable"
		} else {
			resp["catalog"] = "ok"
			resp["listings"] = len(listings)
		}
	}
	writeJSON(w, resp)
}
