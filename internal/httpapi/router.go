package httpapi

import "net/http"

// NewMux returns the raw mux so main() can still attach /shutdown (needs srv+token)
// and the web pages.
func NewMux(d Deps) *http.ServeMux {
	mux := http.NewServeMux()

	hh := HealthHandler{Catalog: d.Catalog}
	mux.HandleFunc("/health", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: hh.Health,
	}))

	// Listings
	lh := ListingsHandler{Deps: d}
	mux.HandleFunc("/api/listings", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: lh.Search,
	}))
	mux.HandleFunc("/api/listings/", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: lh.ByPath, // /api/listings/{id}[/recommendations]
	}))
	mux.HandleFunc("/api/home", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: lh.Home,
	}))

	// Saved search
	sh := SearchesHandler{Deps: d}
	mux.HandleFunc("/api/searches/last", methodMux(map[string]http.HandlerFunc{
		http.MethodGet:    sh.GetLast,
		http.MethodPut:    sh.PutLast,
		http.MethodDelete: sh.DeleteLast,
	}))

	// Config
	ch := ConfigHandler{
		CfgVal:      d.CfgVal,
		UserCfgPath: d.UserCfgPath,
		LoadCfg:     d.LoadCfg,
	}
	mux.HandleFunc("/config", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Get,
		http.MethodPut: RequireToken(d.AdminToken, ch.Put),
	}))
	mux.HandleFunc("/config/path", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Path,
	}))
	mux.HandleFunc("/config/validate", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Validate,
	}))

	// SSE events
	eh := EventsHandler{Hub: d.Hub}
	mux.HandleFunc("/events", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: eh.ServeSSE,
	}))

	// Logos
	loh := LogosHandler{Deps: d}
	mux.HandleFunc("/logo/", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: loh.GetByPath,
	}))

	dh := DBHandler{DB: d.DB}
	mux.HandleFunc("/db/checkpoint", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: dh.Checkpoint,
	}))

	return mux
}
